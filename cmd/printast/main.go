// Command printast tokenizes and parses an embedded fixture script and
// pretty-prints the resulting AST, mirroring the original sqparse crate's
// print_ast example.
package main

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/juju/loggo"
	"github.com/kr/pretty"

	"github.com/flyclops/sqgs"
)

//go:embed script.nut
var script string

var logger = loggo.GetLogger("sqgs.cmd.printast")

func main() {
	logger.Debugf("tokenizing script.nut (%d bytes)", len(script))
	tokens, err := sqgs.Tokenize(script, sqgs.WithFilename("script.nut"))
	if err != nil {
		fmt.Fprintln(os.Stderr, renderLexError(err))
		os.Exit(1)
	}

	logger.Debugf("parsing %d tokens", len(tokens))
	program, err := sqgs.Parse(tokens, sqgs.WithParseFilename("script.nut"))
	if err != nil {
		fmt.Fprintln(os.Stderr, renderParseError(err, tokens))
		os.Exit(1)
	}

	fmt.Printf("%# v\n", pretty.Formatter(program))
}

func renderLexError(err error) string {
	if lexErr, ok := err.(*sqgs.LexError); ok {
		return lexErr.Diagnostic().Render(script, "script.nut")
	}
	return err.Error()
}

func renderParseError(err error, tokens []sqgs.Token) string {
	if parseErr, ok := err.(*sqgs.ParseError); ok {
		return parseErr.Diagnostic(tokens).Render(script, "script.nut")
	}
	return err.Error()
}
