package varint

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
)

func TestRoundTrip(t *testing.T) {
	cases := []uint64{
		0, 1, 127, 128, 16383, 16384,
		1 << 20, 1<<35 - 1, 1 << 48, 1<<56 - 1,
		1 << 56, 1<<63 - 1, 1 << 63, ^uint64(0),
	}
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 500; i++ {
		cases = append(cases, r.Uint64())
	}

	for _, v := range cases {
		encoded := Encode(nil, v)
		if len(encoded) > MaxLen {
			t.Fatalf("encode(%d) produced %d bytes, want <= %d", v, len(encoded), MaxLen)
		}
		got, n, err := Decode(encoded, 0)
		if err != nil {
			t.Fatalf("decode(encode(%d)) failed: %v", v, err)
		}
		if got != v {
			t.Fatalf("round trip mismatch: encoded %d, decoded %d", v, got)
		}
		if n != len(encoded) {
			t.Fatalf("decode consumed %d bytes, encode produced %d", n, len(encoded))
		}
	}
}

func TestDecodeNeverConsumesMoreThanNineBytes(t *testing.T) {
	allOnes := make([]byte, 20)
	for i := range allOnes {
		allOnes[i] = 0xff
	}
	_, n, err := Decode(allOnes, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != MaxLen {
		t.Fatalf("decode consumed %d bytes, want %d", n, MaxLen)
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := Decode([]byte{0x81, 0x81}, 0)
	if !errors.Is(err, dberr.ErrTruncatedVarint) {
		t.Fatalf("expected ErrTruncatedVarint, got %v", err)
	}
}

func TestDecodeSingleByte(t *testing.T) {
	got, n, err := Decode([]byte{0x05}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 || n != 1 {
		t.Fatalf("got (%d, %d), want (5, 1)", got, n)
	}
}

func TestDecodeAtOffset(t *testing.T) {
	data := []byte{0xff, 0xff, 0x05}
	got, n, err := Decode(data, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 || n != 1 {
		t.Fatalf("got (%d, %d), want (5, 1)", got, n)
	}
}
