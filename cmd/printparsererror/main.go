// Command printparsererror tokenizes and parses an embedded fixture
// script that is known to fail parsing and prints the resulting
// diagnostic, mirroring the original sqparse crate's print_parser_error
// example.
package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/juju/loggo"

	"github.com/flyclops/sqgs"
)

//go:embed script.nut
var script string

var logger = loggo.GetLogger("sqgs.cmd.printparsererror")

func main() {
	tokens, err := sqgs.Tokenize(script, sqgs.WithFilename("script.nut"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "script.nut failed to tokenize; fixture no longer exercises a parser failure")
		os.Exit(1)
	}

	logger.Debugf("parsing %d tokens", len(tokens))
	_, err = sqgs.Parse(tokens, sqgs.WithParseFilename("script.nut"))
	if err == nil {
		fmt.Fprintln(os.Stderr, "script.nut parsed without error; fixture no longer exercises a parser failure")
		os.Exit(1)
	}

	parseErr, ok := err.(*sqgs.ParseError)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(parseErr.Diagnostic(tokens).Render(script, "script.nut"))
}
