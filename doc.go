// Package sqgs implements a source-preserving lexer and parser for a
// Squirrel dialect enriched with game-engine extensions: structs, typed
// declarations, threading keywords, a `vector` literal, an `expect`
// type-assertion, a `delegate` expression, preprocessor conditionals
// (`#if`/`#elseif`/`#else`/`#endif`) embedded directly in the token
// stream, and a small "RUI" sub-grammar for render-definition blocks.
//
// The package is split into two stages. Tokenize turns a source string
// into a flat slice of Tokens, attaching every comment and blank line to
// exactly one owning token. Parse turns that token slice into a Program,
// the root of the abstract syntax tree.
//
//	tokens, err := sqgs.Tokenize(source)
//	if err != nil {
//	    var lexErr *sqgs.LexError
//	    if errors.As(err, &lexErr) {
//	        fmt.Println(lexErr.Diagnostic().Render(source, "myfile.nut"))
//	    }
//	    return
//	}
//	program, err := sqgs.Parse(tokens)
//	if err != nil {
//	    var parseErr *sqgs.ParseError
//	    if errors.As(err, &parseErr) {
//	        fmt.Println(parseErr.Diagnostic(tokens).Render(source, "myfile.nut"))
//	    }
//	    return
//	}
//
// Neither stage executes or evaluates the program; that, along with name
// resolution and code generation, is left to downstream consumers.
package sqgs
