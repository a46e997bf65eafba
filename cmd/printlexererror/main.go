// Command printlexererror tokenizes an embedded fixture script that is
// known to fail lexing and prints the resulting diagnostic, mirroring
// the original sqparse crate's print_lexer_error example.
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

var logger = loggo.GetLogger("sqgs.cmd.printlexererror")

func main() {
	logger.Debugf("tokenizing script.nut (%d bytes)", len(script))
	_, err := sqgs.Tokenize(script, sqgs.WithFilename("script.nut"))
	if err == nil {
		fmt.Fprintln(os.Stderr, "script.nut tokenized without error; fixture no longer exercises a lexer failure")
		os.Exit(1)
	}

	lexErr, ok := err.(*sqgs.LexError)
	if !ok {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(lexErr.Diagnostic().Render(script, "script.nut"))
}
