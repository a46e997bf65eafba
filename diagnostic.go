package sqgs

import (
	"fmt"
	"strings"

	"github.com/juju/errors"
)

// LexErrorKind enumerates the ways Tokenize can fail.
type LexErrorKind int

const (
	UnterminatedString LexErrorKind = iota
	UnterminatedComment
	InvalidCharLiteral
	InvalidIntLiteral
	InvalidFloatLiteral
	UnexpectedByte
	InvalidPreprocessorDirective
)

func (k LexErrorKind) String() string {
	switch k {
	case UnterminatedString:
		return "unterminated string"
	case UnterminatedComment:
		return "unterminated comment"
	case InvalidCharLiteral:
		return "invalid character literal"
	case InvalidIntLiteral:
		return "invalid integer literal"
	case InvalidFloatLiteral:
		return "invalid float literal"
	case UnexpectedByte:
		return "unexpected byte"
	case InvalidPreprocessorDirective:
		return "invalid preprocessor directive"
	default:
		return "lexer error"
	}
}

// LexError is returned by Tokenize. The lexer surfaces at most one error
// per call (fail-fast, per the propagation policy).
type LexError struct {
	Kind  LexErrorKind
	Range Range
	// Filename is the display filename passed to Tokenize via
	// WithFilename, threaded through to Diagnostic for rendering.
	Filename string
	// cause is the juju/errors annotation chain built up while the
	// failing scanner unwound; it carries a human stage description
	// ("while scanning a string literal") without discarding Kind/Range.
	cause error
}

func (lx *lexer) newLexError(kind LexErrorKind, rng Range, stage string) *LexError {
	e := &LexError{Kind: kind, Range: rng, Filename: lx.filename}
	e.cause = errors.Annotate(errors.New(kind.String()), stage)
	return e
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s at byte %d: %s", e.Kind, e.Range.Start, e.cause)
}

func (e *LexError) Unwrap() error { return e.cause }

// Diagnostic renders this error's source-annotated message.
func (e *LexError) Diagnostic() *Diagnostic {
	return &Diagnostic{
		Message:  e.Kind.String(),
		Range:    e.Range,
		Filename: e.Filename,
	}
}

// ParseErrorKind enumerates the ways Parse can fail. Some kinds carry a
// payload (the ExpectedTerminal, the unclosed ContextType); those are
// stored on ParseError itself rather than as Go sum-type payloads.
type ParseErrorKind int

const (
	ErrExpectedTerminal ParseErrorKind = iota
	ErrExpectedExpression
	ErrExpectedStatement
	ErrExpectedType
	ErrExpectedIdentifier
	ErrExpectedStringLiteral
	ErrExpectedTableSlot
	ErrExpectedRuiParent
	ErrInvalidAssignmentTarget
	ErrUnclosedContext
)

func (k ParseErrorKind) String() string {
	switch k {
	case ErrExpectedTerminal:
		return "expected terminal"
	case ErrExpectedExpression:
		return "expected an expression"
	case ErrExpectedStatement:
		return "expected a statement"
	case ErrExpectedType:
		return "expected a type"
	case ErrExpectedIdentifier:
		return "expected an identifier"
	case ErrExpectedStringLiteral:
		return "expected a string literal"
	case ErrExpectedTableSlot:
		return "expected a table slot"
	case ErrExpectedRuiParent:
		return "expected a rui render parent (self, topology, or an identifier)"
	case ErrInvalidAssignmentTarget:
		return "invalid assignment target"
	case ErrUnclosedContext:
		return "unclosed context"
	default:
		return "parse error"
	}
}

// ParseError is the structured diagnostic produced by Parse. It carries
// the deepest token index reached across every alternative that was
// tried, and the context stack at that point, so that the single
// diagnostic ultimately surfaced is the most informative one available.
type ParseError struct {
	Kind ParseErrorKind

	// ExpectedTerm is set when Kind == ErrExpectedTerminal.
	ExpectedTerm Terminal
	// UnclosedKind is set when Kind == ErrUnclosedContext.
	UnclosedKind ContextType
	// OpenerRange is set when Kind == ErrUnclosedContext: the range of
	// the token that opened the context which was never closed.
	OpenerRange Range

	// Found describes what was actually present at DeepestIndex, for
	// rendering "expected X, found Y". Empty if there was no token
	// (e.g. DeepestIndex is past the end).
	Found string

	// DeepestIndex is the deepest token index reached by any attempt
	// that contributed to this error.
	DeepestIndex int

	// Context is a snapshot of the context stack at DeepestIndex,
	// outermost frame first.
	Context []ContextFrame

	// Fatal distinguishes "no match was found here" (false) from "a
	// commit point was passed; alternatives must not be tried" (true).
	Fatal bool

	// Filename is the display filename passed to Parse via
	// WithParseFilename, threaded through to Diagnostic for rendering.
	Filename string

	cause error
}

func (e *ParseError) Error() string {
	msg := e.Kind.String()
	if e.Kind == ErrExpectedTerminal {
		msg = fmt.Sprintf("expected %s", e.ExpectedTerm.String())
	}
	if e.Found != "" {
		msg = fmt.Sprintf("%s, found %s", msg, e.Found)
	}
	return fmt.Sprintf("%s (token %d)", msg, e.DeepestIndex)
}

func (e *ParseError) Unwrap() error { return e.cause }

// merge implements error-merge monotonicity (testable property 7): the
// result's DeepestIndex is max(a.idx, b.idx); ties favor a (the earlier
// alternative, by convention of call order in or_try(a, b)).
func mergeParseErrors(a, b *ParseError) *ParseError {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if b.DeepestIndex > a.DeepestIndex {
		return b
	}
	return a
}

// asFatal returns a copy of e with Fatal forced to true, used by
// `.determines` to promote a non-fatal failure past a commit point.
func (e *ParseError) asFatal() *ParseError {
	if e == nil {
		return nil
	}
	cp := *e
	cp.Fatal = true
	return &cp
}

// Diagnostic is the information content of either a LexError or a
// ParseError: enough to render a human-readable, source-annotated
// message without prescribing the exact rendering.
type Diagnostic struct {
	Message string
	Range   Range
	// Filename is the display filename carried over from the LexError
	// or ParseError this Diagnostic was built from, if any. Render uses
	// it only when its own filename argument is empty.
	Filename string
	// Notes are rendered outermost-first, one per open context frame
	// ("inside <context> opened at line:col").
	Notes []DiagnosticNote
}

// DiagnosticNote is one context-stack annotation.
type DiagnosticNote struct {
	Text  string
	Range Range
}

// Diagnostic renders this parse error's source-annotated message. tokens
// is required to resolve DeepestIndex to a byte range.
func (e *ParseError) Diagnostic(tokens []Token) *Diagnostic {
	rng := Range{}
	if e.DeepestIndex >= 0 && e.DeepestIndex < len(tokens) {
		rng = tokens[e.DeepestIndex].Range
	} else if len(tokens) > 0 {
		rng = tokens[len(tokens)-1].Range
	}

	msg := e.Kind.String()
	if e.Kind == ErrExpectedTerminal {
		msg = fmt.Sprintf("expected %s", e.ExpectedTerm.String())
	}
	if e.Kind == ErrUnclosedContext {
		msg = fmt.Sprintf("unclosed %s", e.UnclosedKind)
	}
	if e.Found != "" {
		msg = fmt.Sprintf("%s, found %s", msg, e.Found)
	}

	d := &Diagnostic{Message: msg, Range: rng, Filename: e.Filename}
	if e.Kind == ErrUnclosedContext {
		d.Notes = append(d.Notes, DiagnosticNote{
			Text:  fmt.Sprintf("%s opened here", e.UnclosedKind),
			Range: e.OpenerRange,
		})
	}
	for i := len(e.Context) - 1; i >= 0; i-- {
		frame := e.Context[i]
		d.Notes = append(d.Notes, DiagnosticNote{
			Text:  fmt.Sprintf("inside %s opened here", frame.Type),
			Range: frame.Range,
		})
	}
	return d
}

// lineCol computes the 1-based (line, column) of a byte offset in source.
func lineCol(source string, offset int) (line, col int) {
	line, col = 1, 1
	if offset > len(source) {
		offset = len(source)
	}
	for i := 0; i < offset; i++ {
		if source[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return line, col
}

// sourceLine returns the full physical line of source containing offset.
func sourceLine(source string, offset int) string {
	if offset > len(source) {
		offset = len(source)
	}
	start := strings.LastIndexByte(source[:offset], '\n') + 1
	end := strings.IndexByte(source[offset:], '\n')
	if end == -1 {
		return source[start:]
	}
	return source[start : offset+end]
}

// Render produces a human-readable, source-annotated rendering of the
// diagnostic: the offending line, a caret span, and one note per open
// context frame (outermost first). filename is used only for display;
// pass "" to fall back to d.Filename (set via WithFilename/
// WithParseFilename), or omit both to render without one.
func (d *Diagnostic) Render(source string, filename string) string {
	if filename == "" {
		filename = d.Filename
	}
	line, col := lineCol(source, d.Range.Start)
	var b strings.Builder
	if filename != "" {
		fmt.Fprintf(&b, "%s:%d:%d: %s\n", filename, line, col, d.Message)
	} else {
		fmt.Fprintf(&b, "%d:%d: %s\n", line, col, d.Message)
	}
	srcLine := sourceLine(source, d.Range.Start)
	fmt.Fprintf(&b, "  %s\n", srcLine)
	width := d.Range.End - d.Range.Start
	if width < 1 {
		width = 1
	}
	if col-1 >= 0 {
		fmt.Fprintf(&b, "  %s%s\n", strings.Repeat(" ", col-1), strings.Repeat("^", width))
	}
	for _, n := range d.Notes {
		nl, nc := lineCol(source, n.Range.Start)
		fmt.Fprintf(&b, "  note: %s (%d:%d)\n", n.Text, nl, nc)
	}
	return b.String()
}
