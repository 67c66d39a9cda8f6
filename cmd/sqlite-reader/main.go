// Command sqlite-reader is a read-only command-line front end over a
// SQLite 3 database file: it prints header metadata, lists user tables, or
// runs a single restricted SELECT statement.
//
// Usage: sqlite-reader <database-file> <command> [--debug] [--trace]
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codecrafters-io/sqlite-starter-go/internal/engine"
	"github.com/codecrafters-io/sqlite-starter-go/internal/format"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	positional, debug, trace := splitFlags(args)

	if len(positional) < 2 {
		fmt.Fprintln(os.Stderr, "usage: sqlite-reader <database-file> <command> [--debug] [--trace]")
		return 2
	}
	dbPath, command := positional[0], strings.Join(positional[1:], " ")

	ctx := context.Background()
	eng, err := engine.Open(ctx, dbPath, engine.WithDebug(debug), engine.WithTrace(trace))
	if err != nil {
		printErr(err)
		return 1
	}
	defer eng.Close()

	switch {
	case command == ".dbinfo":
		fmt.Print(format.DBInfo(eng.PageSize(), eng.TableCount()))
	case command == ".tables":
		fmt.Println(format.Tables(eng.TableNames()))
	case strings.HasPrefix(strings.ToUpper(command), "SELECT"):
		result, err := eng.Select(ctx, command)
		if err != nil {
			printErr(err)
			return 1
		}
		if looksLikeCount(command) {
			fmt.Println(format.Count(result.Count))
		} else {
			fmt.Println(format.Rows(result.Rows))
		}
	default:
		fmt.Fprintf(os.Stderr, "sqlite-reader: unknown command: %s\n", command)
		return 1
	}
	return 0
}

// splitFlags pulls --debug/--trace out of args regardless of where they
// appear, since the documented usage allows them after the positional
// arguments and the standard flag.FlagSet stops scanning at the first
// non-flag token.
func splitFlags(args []string) (positional []string, debug, trace bool) {
	for _, a := range args {
		switch a {
		case "--debug":
			debug = true
		case "--trace":
			trace = true
			debug = true
		default:
			positional = append(positional, a)
		}
	}
	return positional, debug, trace
}

// printErr prints err prefixed with the program name, per the documented
// failure format.
func printErr(err error) {
	fmt.Fprintf(os.Stderr, "sqlite-reader: %v\n", err)
}

func looksLikeCount(sql string) bool {
	return strings.Contains(strings.ToLower(sql), "count(*)")
}
