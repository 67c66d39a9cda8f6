package page

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/codecrafters-io/sqlite-starter-go/internal/dberr"
	"github.com/codecrafters-io/sqlite-starter-go/internal/dbglog"
)

// Source is the minimal file-like interface the Reader needs. *os.File
// satisfies it.
type Source interface {
	io.ReaderAt
}

// Reader fetches whole pages out of a database file by 1-based page number.
type Reader struct {
	src         Source
	pageSize    int
	log         logrus.FieldLogger
	readTimeout time.Duration
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithLogger attaches a logger that receives byte-level page-fetch tracing.
func WithLogger(log logrus.FieldLogger) ReaderOption {
	return func(r *Reader) { r.log = log }
}

// WithReadTimeout bounds how long a single page fetch may wait before the
// context passed to Fetch is considered expired. Zero means no bound beyond
// whatever the caller's context already carries.
func WithReadTimeout(d time.Duration) ReaderOption {
	return func(r *Reader) { r.readTimeout = d }
}

// NewReader builds a Reader over src using the database's fixed page size.
func NewReader(src Source, pageSize int, opts ...ReaderOption) *Reader {
	r := &Reader{src: src, pageSize: pageSize, log: dbglog.Noop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Page is a single page's raw bytes along with its parsed B-tree header and
// cell pointer array. For page 1, Data holds the full pageSize bytes
// including the leading 100-byte file header; HeaderOffset is 100 for page 1
// and 0 otherwise.
type Page struct {
	Number       int
	Data         []byte
	HeaderOffset int
	Header       Header
	CellPointers []uint16
}

// CellOffset returns the absolute offset within Data of the cell at index i.
func (p Page) CellOffset(i int) int {
	return int(p.CellPointers[i])
}

// Fetch reads page number (1-based) and parses its header and cell pointer
// array. Page 1 additionally carries the 100-byte file header, which callers
// needing it should parse separately from the same Data slice.
func (r *Reader) Fetch(ctx context.Context, number int) (Page, error) {
	if number < 1 {
		return Page{}, dberr.Wrap("page.Fetch", dberr.ErrInvalidPageType, map[string]interface{}{
			"page_number": number,
		})
	}
	if r.readTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.readTimeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	data := make([]byte, r.pageSize)
	offset := int64(number-1) * int64(r.pageSize)
	n, err := r.src.ReadAt(data, offset)
	if err != nil && err != io.EOF {
		return Page{}, dberr.Wrap("page.Fetch", err, map[string]interface{}{
			"page_number": number,
			"offset":      offset,
		})
	}
	if n < r.pageSize {
		return Page{}, dberr.Wrap("page.Fetch", dberr.ErrShortRead, map[string]interface{}{
			"page_number": number,
			"want":        r.pageSize,
			"got":         n,
		})
	}

	headerOffset := 0
	if number == 1 {
		headerOffset = 100
	}

	header, err := ParseHeader(data, headerOffset)
	if err != nil {
		return Page{}, dberr.Wrap("page.Fetch", err, map[string]interface{}{"page_number": number})
	}

	pointers, err := CellPointers(data, headerOffset, header)
	if err != nil {
		return Page{}, dberr.Wrap("page.Fetch", err, map[string]interface{}{"page_number": number})
	}

	r.log.WithFields(logrus.Fields{
		"page": number, "type": header.Type, "cells": header.CellCount,
	}).Trace("fetched page")

	return Page{
		Number:       number,
		Data:         data,
		HeaderOffset: headerOffset,
		Header:       header,
		CellPointers: pointers,
	}, nil
}
