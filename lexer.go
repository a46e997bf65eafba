package sqgs

import (
	"strconv"
	"strings"
)

// EOF is the sentinel byte value used by the cursor's peek to signal that
// all input has been consumed.
const EOF = -1

// lexer is a byte-offset cursor over the source, plus the scanners that
// turn it into tokens. Every scanner is a method that advances lx.pos and
// either returns a token or a *LexError; none of them retain state across
// calls beyond lx.pos, so a lexer is reusable only for a single
// Tokenize call.
type lexer struct {
	source string
	pos    int
	// filename is threaded into every LexError this lexer produces, set
	// from WithFilename.
	filename string
	// ifdefAsDirective, set from WithIfdefAsDirective, makes
	// peekPreprocessorTerminal also recognize #ifdef/#ifndef as
	// structural directives (aliases of #if) instead of letting them
	// fall through to ScriptStyle comments. See DESIGN.md.
	ifdefAsDirective bool
}

func (lx *lexer) peekByte(n int) int {
	i := lx.pos + n
	if i < 0 || i >= len(lx.source) {
		return EOF
	}
	return int(lx.source[i])
}

func isDigitByte(b int) bool      { return b >= '0' && b <= '9' }
func isHexDigitByte(b int) bool   { return isDigitByte(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isIdentStartByte(b int) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isIdentContByte(b byte) bool {
	return isIdentStartByte(int(b)) || isDigitByte(int(b))
}

func (lx *lexer) consumeDigitRun() {
	for isDigitByte(lx.peekByte(0)) {
		lx.pos++
	}
}

// triviaLine is one physical line's worth of comments accumulated while
// scanning trivia. terminated is true iff the line ended with an actual
// '\n' (as opposed to ending because the next real token, or EOF, was
// reached).
type triviaLine struct {
	comments   []Comment
	terminated bool
}

// peekPreprocessorTerminal reports whether the bytes at lx.pos form one
// of the recognized preprocessor directives (#if, #elseif, #else,
// #endif). It does not mutate lx.pos. #ifdef/#ifndef are excluded by
// default — see the open-question resolution in DESIGN.md — so they
// fall through to ordinary ScriptStyle comments, unless
// lx.ifdefAsDirective (set via WithIfdefAsDirective) treats them as
// aliases of #if.
func (lx *lexer) peekPreprocessorTerminal() (Terminal, int, bool) {
	if lx.peekByte(0) != '#' {
		return 0, 0, false
	}
	i := lx.pos + 1
	j := i
	for j < len(lx.source) && isIdentContByte(lx.source[j]) {
		j++
	}
	if j == i {
		return 0, 0, false
	}
	word := lx.source[i:j]
	if term, ok := preprocessorTerminals[word]; ok {
		return term, j - lx.pos, true
	}
	if lx.ifdefAsDirective && (word == "ifdef" || word == "ifndef") {
		return TermPreprocessorIf, j - lx.pos, true
	}
	return 0, 0, false
}

// scanMultiLineComment scans a `/* ... */` comment. lx.pos must be at the
// opening '/'. Embedded newlines do not end the current trivia line;
// they are part of the comment's text.
func (lx *lexer) scanMultiLineComment() (string, *LexError) {
	start := lx.pos
	lx.pos += 2
	innerStart := lx.pos
	for {
		if lx.peekByte(0) == EOF {
			return "", lx.newLexError(UnterminatedComment, Range{start, lx.pos}, "while scanning a multi-line comment")
		}
		if lx.peekByte(0) == '*' && lx.peekByte(1) == '/' {
			text := lx.source[innerStart:lx.pos]
			lx.pos += 2
			return text, nil
		}
		lx.pos++
	}
}

// scanLineComment scans from lx.pos (which must be at the start of the
// comment's lead-in, e.g. the '#' or the first '/' of "//") up to but not
// including the terminating newline or EOF. leadLen is the length of the
// lead-in to skip ("//" is 2, "#" is 1).
func (lx *lexer) scanLineComment(leadLen int) string {
	lx.pos += leadLen
	start := lx.pos
	for lx.peekByte(0) != EOF && lx.peekByte(0) != '\n' {
		lx.pos++
	}
	return lx.source[start:lx.pos]
}

// scanTrivia consumes a maximal run of whitespace and comments starting
// at lx.pos, splitting it into lines at each '\n'. It stops, without
// consuming, at the first byte that starts a real token (including a
// recognized preprocessor directive) or at EOF. The returned slice always
// has at least one element, and its last element always has
// terminated == false.
func (lx *lexer) scanTrivia() ([]triviaLine, *LexError) {
	var lines []triviaLine
	var cur []Comment
	for {
		b := lx.peekByte(0)
		switch {
		case b == EOF:
			lines = append(lines, triviaLine{comments: cur, terminated: false})
			return lines, nil
		case b == '\n':
			lx.pos++
			lines = append(lines, triviaLine{comments: cur, terminated: true})
			cur = nil
		case b == ' ' || b == '\t' || b == '\r':
			lx.pos++
		case b == '/' && lx.peekByte(1) == '*':
			text, err := lx.scanMultiLineComment()
			if err != nil {
				return nil, err
			}
			cur = append(cur, Comment{Kind: CommentMultiLine, Text: text})
		case b == '/' && lx.peekByte(1) == '/':
			text := lx.scanLineComment(2)
			cur = append(cur, Comment{Kind: CommentSingleLine, Text: text})
		case b == '#':
			if _, _, ok := lx.peekPreprocessorTerminal(); ok {
				lines = append(lines, triviaLine{comments: cur, terminated: false})
				return lines, nil
			}
			if isIdentStartByte(lx.peekByte(1)) {
				// An unrecognized directive word (e.g. `#ifdef`) is
				// intentionally treated as a comment line, not an error —
				// see the #ifdef/#ifndef resolution in DESIGN.md.
				text := lx.scanLineComment(1)
				cur = append(cur, Comment{Kind: CommentScriptStyle, Text: text})
				break
			}
			// A bare `#` with no directive word following it at all is not
			// a comment lead-in; stop trivia scanning so scanRealToken can
			// report it as InvalidPreprocessorDirective.
			lines = append(lines, triviaLine{comments: cur, terminated: false})
			return lines, nil
		default:
			lines = append(lines, triviaLine{comments: cur, terminated: false})
			return lines, nil
		}
	}
}

// assembleTrivia implements the comment-ownership rule (spec.md §4.2):
// it attaches trivia either to prevTok's NewLine field (mutating it in
// place) or returns it as the BeforeLines/leading-comments of whichever
// token comes next.
func assembleTrivia(lines []triviaLine, prevTok *Token) (beforeLines []TokenLine, leadingComments []Comment) {
	if len(lines) == 0 {
		return nil, nil
	}
	start := 0
	if prevTok != nil {
		if lines[0].terminated {
			nl := TokenLine{Comments: lines[0].comments}
			prevTok.NewLine = &nl
			start = 1
		} else {
			return nil, lines[0].comments
		}
	}
	for i := start; i < len(lines); i++ {
		ln := lines[i]
		if ln.terminated {
			if len(ln.comments) > 0 {
				beforeLines = append(beforeLines, TokenLine{Comments: ln.comments})
			}
		} else {
			leadingComments = ln.comments
		}
	}
	return beforeLines, leadingComments
}

func (lx *lexer) consumeOptionalExponent() (bool, *LexError) {
	if lx.peekByte(0) != 'e' && lx.peekByte(0) != 'E' {
		return false, nil
	}
	save := lx.pos
	lx.pos++
	if lx.peekByte(0) == '+' || lx.peekByte(0) == '-' {
		lx.pos++
	}
	digitsStart := lx.pos
	lx.consumeDigitRun()
	if lx.pos == digitsStart {
		return false, lx.newLexError(InvalidFloatLiteral, Range{save, lx.pos}, "while scanning an exponent")
	}
	return true, nil
}

func (lx *lexer) intToken(start, textStart int, base LiteralBase, radix int) (Token, *LexError) {
	text := lx.source[textStart:lx.pos]
	val, err := strconv.ParseInt(text, radix, 64)
	if err != nil {
		return Token{}, lx.newLexError(InvalidIntLiteral, Range{start, lx.pos}, "while scanning an integer literal")
	}
	return Token{
		Type:    TokenLiteralTok,
		Literal: Literal{Kind: LiteralInt, IntValue: val, IntBase: base},
		Range:   Range{start, lx.pos},
	}, nil
}

func (lx *lexer) floatToken(start int) (Token, *LexError) {
	text := lx.source[start:lx.pos]
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return Token{}, lx.newLexError(InvalidFloatLiteral, Range{start, lx.pos}, "while scanning a float literal")
	}
	return Token{
		Type:    TokenLiteralTok,
		Literal: Literal{Kind: LiteralFloat, FloatValue: val},
		Range:   Range{start, lx.pos},
	}, nil
}

// scanNumber scans an integer or float literal. lx.pos is at either a
// digit or a '.' known to be followed by a digit.
func (lx *lexer) scanNumber() (Token, *LexError) {
	start := lx.pos

	if lx.peekByte(0) == '.' {
		lx.pos++
		digitsStart := lx.pos
		lx.consumeDigitRun()
		if lx.pos == digitsStart {
			return Token{}, lx.newLexError(InvalidFloatLiteral, Range{start, lx.pos}, "while scanning a float literal")
		}
		if _, err := lx.consumeOptionalExponent(); err != nil {
			return Token{}, err
		}
		return lx.floatToken(start)
	}

	if lx.peekByte(0) == '0' && (lx.peekByte(1) == 'x' || lx.peekByte(1) == 'X') {
		lx.pos += 2
		digitsStart := lx.pos
		for isHexDigitByte(lx.peekByte(0)) {
			lx.pos++
		}
		if lx.pos == digitsStart {
			return Token{}, lx.newLexError(InvalidIntLiteral, Range{start, lx.pos}, "while scanning a hexadecimal literal")
		}
		return lx.intToken(start, digitsStart, Hexadecimal, 16)
	}

	lx.consumeDigitRun()
	leadingZero := lx.source[start] == '0' && lx.pos-start > 1

	sawDotOrExp := false
	if lx.peekByte(0) == '.' && lx.peekByte(1) != '.' {
		sawDotOrExp = true
		lx.pos++
		lx.consumeDigitRun()
		if _, err := lx.consumeOptionalExponent(); err != nil {
			return Token{}, err
		}
	} else if lx.peekByte(0) == 'e' || lx.peekByte(0) == 'E' {
		if ok, err := lx.consumeOptionalExponent(); err != nil {
			return Token{}, err
		} else if ok {
			sawDotOrExp = true
		}
	}

	if sawDotOrExp {
		return lx.floatToken(start)
	}

	if leadingZero {
		allOctal := true
		for i := start + 1; i < lx.pos; i++ {
			if lx.source[i] < '0' || lx.source[i] > '7' {
				allOctal = false
				break
			}
		}
		if allOctal {
			return lx.intToken(start, start, Octal, 8)
		}
	}
	return lx.intToken(start, start, Decimal, 10)
}

// scanChar scans a single-quoted character literal. lx.pos is at the
// opening quote.
func (lx *lexer) scanChar() (Token, *LexError) {
	start := lx.pos
	lx.pos++
	innerStart := lx.pos
	for {
		b := lx.peekByte(0)
		if b == EOF || b == '\n' {
			return Token{}, lx.newLexError(InvalidCharLiteral, Range{start, lx.pos}, "while scanning a character literal")
		}
		if b == '\\' {
			lx.pos++
			if lx.peekByte(0) == EOF {
				return Token{}, lx.newLexError(InvalidCharLiteral, Range{start, lx.pos}, "while scanning a character literal")
			}
			lx.pos++
			continue
		}
		if b == '\'' {
			break
		}
		lx.pos++
	}
	innerEnd := lx.pos
	lx.pos++
	return Token{
		Type:    TokenLiteralTok,
		Literal: Literal{Kind: LiteralChar, Text: lx.source[innerStart:innerEnd]},
		Range:   Range{start, lx.pos},
	}, nil
}

// scanString scans a string literal of the given flavor. lx.pos is at
// the opening sigil; openLen is the sigil's byte length (1 for `"`, 2
// for `@"`/`$"`).
func (lx *lexer) scanString(flavor StringFlavor, openLen int) (Token, *LexError) {
	start := lx.pos
	lx.pos += openLen
	innerStart := lx.pos
	for {
		b := lx.peekByte(0)
		if b == EOF {
			return Token{}, lx.newLexError(UnterminatedString, Range{start, lx.pos}, "while scanning a string literal")
		}
		if flavor == StringVerbatim {
			if b == '"' {
				if lx.peekByte(1) == '"' {
					lx.pos += 2
					continue
				}
				break
			}
			lx.pos++
			continue
		}
		if b == '\n' {
			return Token{}, lx.newLexError(UnterminatedString, Range{start, lx.pos}, "while scanning a string literal")
		}
		if b == '\\' {
			lx.pos++
			if lx.peekByte(0) == EOF {
				return Token{}, lx.newLexError(UnterminatedString, Range{start, lx.pos}, "while scanning a string literal")
			}
			lx.pos++
			continue
		}
		if b == '"' {
			break
		}
		lx.pos++
	}
	innerEnd := lx.pos
	lx.pos++
	return Token{
		Type:    TokenLiteralTok,
		Literal: Literal{Kind: LiteralString, Text: lx.source[innerStart:innerEnd], StringFlavor: flavor},
		Range:   Range{start, lx.pos},
	}, nil
}

func (lx *lexer) scanIdentifierText() string {
	start := lx.pos
	if !isIdentStartByte(lx.peekByte(0)) {
		return ""
	}
	lx.pos++
	for isIdentContByte(byte(lx.peekByte(0))) && lx.peekByte(0) != EOF {
		lx.pos++
	}
	return lx.source[start:lx.pos]
}

func (lx *lexer) scanIdentifierOrKeyword() Token {
	start := lx.pos
	text := lx.scanIdentifierText()
	if term, ok := reservedIdentifiers[text]; ok {
		return Token{Type: TokenTerminal, Terminal: term, Range: Range{start, lx.pos}}
	}
	return Token{Type: TokenIdentifier, Identifier: text, Range: Range{start, lx.pos}}
}

// tryMatchSymbol performs the longest-match scan over symbolTerminals,
// which is already ordered longest-spelling-first.
func (lx *lexer) tryMatchSymbol() (Terminal, bool) {
	rest := lx.source[lx.pos:]
	for _, term := range symbolTerminals {
		s := terminalSpelling[term]
		if strings.HasPrefix(rest, s) {
			return term, true
		}
	}
	return 0, false
}

// scanRealToken scans the next non-trivia token (or the EOF sentinel).
// Trivia must already have been consumed by scanTrivia; lx.pos sits at
// the start of a real token or at EOF.
func (lx *lexer) scanRealToken() (Token, *LexError) {
	start := lx.pos
	b := lx.peekByte(0)
	switch {
	case b == EOF:
		return Token{Type: TokenEmpty, Range: Range{start, start}}, nil
	case isDigitByte(b):
		return lx.scanNumber()
	case b == '.' && isDigitByte(lx.peekByte(1)):
		return lx.scanNumber()
	case b == '\'':
		return lx.scanChar()
	case b == '"':
		return lx.scanString(StringLiteral, 1)
	case b == '@' && lx.peekByte(1) == '"':
		return lx.scanString(StringVerbatim, 2)
	case b == '$' && lx.peekByte(1) == '"':
		return lx.scanString(StringAsset, 2)
	case b == '#':
		if term, n, ok := lx.peekPreprocessorTerminal(); ok {
			lx.pos += n
			return Token{Type: TokenTerminal, Terminal: term, Range: Range{start, lx.pos}}, nil
		}
		return Token{}, lx.newLexError(InvalidPreprocessorDirective, Range{start, start + 1}, "while scanning a preprocessor directive")
	case isIdentStartByte(b):
		return lx.scanIdentifierOrKeyword(), nil
	default:
		if term, ok := lx.tryMatchSymbol(); ok {
			lx.pos += len(terminalSpelling[term])
			return Token{Type: TokenTerminal, Terminal: term, Range: Range{start, lx.pos}}, nil
		}
		return Token{}, lx.newLexError(UnexpectedByte, Range{start, start + 1}, "while scanning a token")
	}
}

// Tokenize turns source into a flat slice of Tokens. It always returns at
// least one token (possibly only the trailing Empty sentinel), and
// surfaces at most one LexError per call.
func Tokenize(source string, opts ...TokenizeOption) ([]Token, error) {
	cfg := newTokenizeConfig(opts)
	lx := &lexer{source: source, filename: cfg.filename, ifdefAsDirective: cfg.ifdefAsDirective}
	var tokens []Token
	for {
		lines, err := lx.scanTrivia()
		if err != nil {
			return nil, err
		}

		var prevTok *Token
		if len(tokens) > 0 {
			prevTok = &tokens[len(tokens)-1]
		}
		beforeLines, leadingComments := assembleTrivia(lines, prevTok)

		tok, err := lx.scanRealToken()
		if err != nil {
			return nil, err
		}
		tok.BeforeLines = beforeLines
		tok.Comments = leadingComments
		tokens = append(tokens, tok)

		if tok.Type == TokenEmpty {
			return tokens, nil
		}
	}
}
