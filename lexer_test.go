package sqgs

import (
	"strings"
	"testing"
)

func mustTokenize(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) = %v", source, err)
	}
	return tokens
}

// TestTokenizeRoundTrip checks that concatenating every token's raw text
// (Token.Text) in order reproduces the source exactly — the "source
// preserving" property the lexer exists to guarantee.
func TestTokenizeRoundTrip(t *testing.T) {
	sources := []string{
		"",
		"local x = 1;",
		"function foo(a, b) { return a + b; }",
		"// a comment\nlocal x = 1; // trailing\n",
		"/* block\ncomment */ local y = 2;",
		"#if FOO\nlocal z = 3;\n#endif",
		"local s = \"hello\\nworld\";",
		"local v = @\"raw \"\"quoted\"\" text\";",
		"local c = 'a';",
		"0x1F 017 3.14 42",
	}
	for _, src := range sources {
		tokens := mustTokenize(t, src)
		var b strings.Builder
		for _, tok := range tokens {
			b.WriteString(tok.Text(src))
		}
		if b.String() != src {
			t.Errorf("round trip mismatch for %q: got %q", src, b.String())
		}
	}
}

// TestTokenizeEndsWithEmpty checks every successful tokenization ends in
// exactly one TokenEmpty sentinel.
func TestTokenizeEndsWithEmpty(t *testing.T) {
	for _, src := range []string{"", "local x;", "// trailing only\n"} {
		tokens := mustTokenize(t, src)
		if len(tokens) == 0 {
			t.Fatalf("Tokenize(%q) returned no tokens", src)
		}
		last := tokens[len(tokens)-1]
		if last.Type != TokenEmpty {
			t.Errorf("Tokenize(%q) last token = %+v, want TokenEmpty", src, last)
		}
		for _, tok := range tokens[:len(tokens)-1] {
			if tok.Type == TokenEmpty {
				t.Errorf("Tokenize(%q) has a non-trailing TokenEmpty", src)
			}
		}
	}
}

// TestSymbolLongestMatch exercises the ordered, longest-match-wins symbol
// scan: a three-char operator must not be split into a two-char operator
// plus a one-char operator.
func TestSymbolLongestMatch(t *testing.T) {
	cases := []struct {
		src  string
		want []Terminal
	}{
		{"<=>", []Terminal{TermThreeWay}},
		{"<=", []Terminal{TermLessEqual}},
		{"<", []Terminal{TermLess}},
		{"...", []Terminal{TermEllipsis}},
		{"+=", []Terminal{TermAddEqual}},
		{"++", []Terminal{TermIncrement}},
		{"+", []Terminal{TermAdd}},
		{"==", []Terminal{TermEqual}},
		{"=", []Terminal{TermAssign}},
	}
	for _, tc := range cases {
		tokens := mustTokenize(t, tc.src)
		var got []Terminal
		for _, tok := range tokens {
			if tok.Type == TokenTerminal {
				got = append(got, tok.Terminal)
			}
		}
		if len(got) != len(tc.want) {
			t.Fatalf("Tokenize(%q) terminals = %v, want %v", tc.src, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("Tokenize(%q) terminal %d = %v, want %v", tc.src, i, got[i], tc.want[i])
			}
		}
	}
}

// TestReservedIdentifiersAreTerminals checks that reserved words lex as
// their terminal, not as a plain identifier, while a name sharing a
// prefix with a reserved word still lexes as an identifier.
func TestReservedIdentifiersAreTerminals(t *testing.T) {
	tokens := mustTokenize(t, "local localvar function functionref")
	want := []struct {
		typ  TokenType
		term Terminal
	}{
		{TokenTerminal, TermLocal},
		{TokenIdentifier, 0},
		{TokenTerminal, TermFunction},
		{TokenTerminal, TermFunctionRef},
	}
	if len(tokens)-1 != len(want) {
		t.Fatalf("got %d tokens (excluding sentinel), want %d", len(tokens)-1, len(want))
	}
	for i, w := range want {
		tok := tokens[i]
		if tok.Type != w.typ {
			t.Errorf("token %d: type = %v, want %v", i, tok.Type, w.typ)
			continue
		}
		if w.typ == TokenTerminal && tok.Terminal != w.term {
			t.Errorf("token %d: terminal = %v, want %v", i, tok.Terminal, w.term)
		}
	}
	if tokens[1].Identifier != "localvar" {
		t.Errorf("token 1 identifier = %q, want localvar", tokens[1].Identifier)
	}
}

// TestCommentOwnership checks every comment is attached to exactly one
// token: a same-line trailing comment becomes the previous token's
// NewLine, a leading comment on its own line becomes a BeforeLines entry
// of the following real token.
func TestCommentOwnership(t *testing.T) {
	src := "local x = 1; // trailing\n// leading\nlocal y = 2;"
	tokens := mustTokenize(t, src)

	var semicolon *Token
	for i := range tokens {
		if tokens[i].Type == TokenTerminal && tokens[i].Terminal == TermSemicolon {
			semicolon = &tokens[i]
			break
		}
	}
	if semicolon == nil {
		t.Fatal("no semicolon token found")
	}
	if semicolon.NewLine == nil || len(semicolon.NewLine.Comments) != 1 {
		t.Fatalf("semicolon.NewLine = %+v, want one trailing comment", semicolon.NewLine)
	}

	var second *Token
	count := 0
	for i := range tokens {
		if tokens[i].Type == TokenTerminal && tokens[i].Terminal == TermLocal {
			count++
			if count == 2 {
				second = &tokens[i]
				break
			}
		}
	}
	if second == nil {
		t.Fatal("second `local` token not found")
	}
	if len(second.BeforeLines) != 1 || len(second.BeforeLines[0].Comments) != 1 {
		t.Fatalf("second local.BeforeLines = %+v, want one line with one comment", second.BeforeLines)
	}
}

// TestPreprocessorTerminalsExcludeIfdef checks the resolved open question
// (SPEC_FULL.md / DESIGN.md): `#ifdef`/`#ifndef` are not lexed as
// preprocessor terminals and fall through as ScriptStyle comments.
func TestPreprocessorTerminalsExcludeIfdef(t *testing.T) {
	tokens := mustTokenize(t, "#ifdef FOO\nlocal x = 1;\n#endif")
	if tokens[0].Type == TokenTerminal && tokens[0].Terminal == TermPreprocessorIf {
		t.Fatal("#ifdef must not lex as TermPreprocessorIf")
	}
	foundLocal := false
	for _, tok := range tokens {
		if tok.Type == TokenTerminal && tok.Terminal == TermLocal {
			foundLocal = true
		}
	}
	if !foundLocal {
		t.Fatal("expected `local` to lex as a real token despite the leading #ifdef line")
	}
}

func TestTokenizeUnterminatedStringError(t *testing.T) {
	_, err := Tokenize(`local s = "unterminated`)
	if err == nil {
		t.Fatal("expected an error for an unterminated string literal")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("error type = %T, want *LexError", err)
	}
	if lexErr.Kind != UnterminatedString {
		t.Errorf("Kind = %v, want UnterminatedString", lexErr.Kind)
	}
}

func TestTokenizeBarePreprocessorDirectiveError(t *testing.T) {
	// A `#` with no directive word following it at all (unlike `#ifdef`,
	// which lexes as a ScriptStyle comment) is not a comment lead-in and
	// must be rejected.
	_, err := Tokenize("local x = 1; #")
	if err == nil {
		t.Fatal("expected an error for a bare `#` with no directive word")
	}
	lexErr, ok := err.(*LexError)
	if !ok {
		t.Fatalf("error type = %T, want *LexError", err)
	}
	if lexErr.Kind != InvalidPreprocessorDirective {
		t.Errorf("Kind = %v, want InvalidPreprocessorDirective", lexErr.Kind)
	}
}

func FuzzTokenize(f *testing.F) {
	f.Add("local x = 1;")
	f.Add("function foo(a, b) { return a + b; }")
	f.Add("#if FOO\nlocal z = 3;\n#endif")
	f.Add(`local s = "hello\nworld";`)
	f.Add("local v = @\"raw\"\"quoted\"\";")
	f.Add("0x1F 017 3.14")
	f.Add("<1,2,3>")
	f.Add("")
	f.Fuzz(func(t *testing.T, src string) {
		// Totality (property 6): Tokenize must never panic, for any input.
		_, _ = Tokenize(src)
	})
}
