package sqgs

import "github.com/juju/errors"

// tokenCursor is an immutable view over a token slice plus the current
// index and context stack. Every parsing function is a pure function
// from a tokenCursor to either a value and an advanced tokenCursor, or a
// *ParseError: a tokenCursor is always passed and returned by value, so
// an alternative that fails never mutates the cursor its caller holds,
// and the context stack (itself copy-on-push, see context.go) never
// leaks frames from a failed branch into a sibling attempt.
type tokenCursor struct {
	tokens   []Token
	idx      int
	ctx      contextStack
	filename string
}

func newCursor(tokens []Token, filename string) tokenCursor {
	return tokenCursor{tokens: tokens, filename: filename}
}

// current returns the token at the cursor, or false past the end of the
// slice (which should not normally happen, since Tokenize always emits a
// trailing Empty sentinel).
func (c tokenCursor) current() (Token, bool) {
	if c.idx < len(c.tokens) {
		return c.tokens[c.idx], true
	}
	return Token{}, false
}

// isEnded is true at the Empty terminator or past the end of the slice.
func (c tokenCursor) isEnded() bool {
	t, ok := c.current()
	return !ok || t.Type == TokenEmpty
}

func (c tokenCursor) advance() tokenCursor {
	nc := c
	nc.idx++
	return nc
}

func (c tokenCursor) peekTerminal(t Terminal) bool {
	tok, ok := c.current()
	return ok && tok.Type == TokenTerminal && tok.Terminal == t
}

func (c tokenCursor) peekOneOfTerminal(ts ...Terminal) (Terminal, bool) {
	tok, ok := c.current()
	if !ok || tok.Type != TokenTerminal {
		return 0, false
	}
	for _, t := range ts {
		if tok.Terminal == t {
			return t, true
		}
	}
	return 0, false
}

// matchTerminal consumes the current token if it is exactly t.
func (c tokenCursor) matchTerminal(t Terminal) (TokenIndex, tokenCursor, bool) {
	if c.peekTerminal(t) {
		return TokenIndex(c.idx), c.advance(), true
	}
	return 0, c, false
}

func (c tokenCursor) matchIdentifier() (Identifier, tokenCursor, bool) {
	tok, ok := c.current()
	if !ok || tok.Type != TokenIdentifier {
		return Identifier{}, c, false
	}
	return Identifier{Token: TokenIndex(c.idx), Name: tok.Identifier}, c.advance(), true
}

// foundDescription renders what's actually at the cursor, for "expected
// X, found Y" diagnostics.
func (c tokenCursor) foundDescription() string {
	tok, ok := c.current()
	if !ok {
		return "end of input"
	}
	return tok.String()
}

func (c tokenCursor) errorAt(kind ParseErrorKind) *ParseError {
	return &ParseError{
		Kind:         kind,
		DeepestIndex: c.idx,
		Context:      c.ctx.snapshot(),
		Found:        c.foundDescription(),
		Filename:     c.filename,
		cause:        errors.New(kind.String()),
	}
}

func (c tokenCursor) errorExpectedTerminal(t Terminal) *ParseError {
	e := c.errorAt(ErrExpectedTerminal)
	e.ExpectedTerm = t
	return e
}

// expectTerminal consumes t or returns a non-fatal ErrExpectedTerminal.
func (c tokenCursor) expectTerminal(t Terminal) (TokenIndex, tokenCursor, *ParseError) {
	if idx, nc, ok := c.matchTerminal(t); ok {
		return idx, nc, nil
	}
	return 0, c, c.errorExpectedTerminal(t)
}

// expectIdentifier consumes an identifier or returns a non-fatal
// ErrExpectedIdentifier.
func (c tokenCursor) expectIdentifier() (Identifier, tokenCursor, *ParseError) {
	if id, nc, ok := c.matchIdentifier(); ok {
		return id, nc, nil
	}
	return Identifier{}, c, c.errorAt(ErrExpectedIdentifier)
}

// pushContext returns a cursor with ctxType pushed, attributed to
// openerRange. The returned cursor must only be used to parse the body
// of that context; the caller should go on using the ORIGINAL cursor's
// ctx (not this one) once the context closes, which falls out naturally
// because tokenCursor is copied by value everywhere.
func (c tokenCursor) pushContext(ctxType ContextType, openerRange Range) tokenCursor {
	nc := c
	nc.ctx = c.ctx.push(ContextFrame{Type: ctxType, Range: openerRange})
	return nc
}

// withCtx returns a copy of c with its idx taken from other but its
// context stack restored to c's own — used to "pop" a context after
// successfully parsing a bracketed body with pushContext.
func (c tokenCursor) withIdxFrom(other tokenCursor) tokenCursor {
	nc := c
	nc.idx = other.idx
	return nc
}

// closeUnclosed converts a failure to find a context's closing token
// into an ErrUnclosedContext, annotated with the opener's range and
// promoted to fatal — the ".opens" discipline from spec.md §4.3.
func closeUnclosed(err *ParseError, ctxType ContextType, openerRange Range) *ParseError {
	if err == nil {
		return nil
	}
	return &ParseError{
		Kind:         ErrUnclosedContext,
		UnclosedKind: ctxType,
		OpenerRange:  openerRange,
		DeepestIndex: err.DeepestIndex,
		Context:      err.Context,
		Found:        err.Found,
		Fatal:        true,
		Filename:     err.Filename,
		cause:        errors.Annotate(err.cause, "while looking for the closing token"),
	}
}

// withSpan runs body under ctxType pushed at openerRange and pops the
// context back off on success. Any failure from body is reported as
// ErrUnclosedContext pointing at openerRange — used by multi-step
// bracketed headers (`for (...)`, `foreach (...)`) where the opening and
// closing brackets are matched by hand rather than through opens.
func withSpan[T any](c tokenCursor, ctxType ContextType, openerRange Range, body altFn[T]) (T, tokenCursor, *ParseError) {
	v, nc, err := body(c.pushContext(ctxType, openerRange))
	if err != nil {
		var zero T
		return zero, c, closeUnclosed(err.asFatal(), ctxType, openerRange)
	}
	return v, c.withIdxFrom(nc), nil
}

// altFn is the signature shared by every alternative passed to orTry.
type altFn[T any] func(tokenCursor) (T, tokenCursor, *ParseError)

// determines implements the `.determines` discipline: f is assumed to run
// only after some leading token has already matched, so any failure
// inside it is promoted to fatal — an or_try above this point must not
// silently swallow it and try a sibling alternative instead.
func determines[T any](c tokenCursor, f altFn[T]) (T, tokenCursor, *ParseError) {
	v, nc, err := f(c)
	if err != nil {
		return v, c, err.asFatal()
	}
	return v, nc, nil
}

// opens implements the `.determines_and_opens` discipline: it matches
// opener (a non-fatal failure here means "this alternative doesn't apply
// at all"), pushes ctxType onto the context stack for the duration of
// body, requires the matching closer, and on any failure from body or the
// missing closer, promotes the error to fatal and annotates it with
// ErrUnclosedContext pointing back at the opener — the tool that lets
// "I saw `{`, now I require `}`" produce a good diagnostic instead of a
// generic backtrack.
func opens[T any](c tokenCursor, opener Terminal, ctxType ContextType, closer Terminal, body altFn[T]) (TokenIndex, T, TokenIndex, tokenCursor, *ParseError) {
	var zero T
	openIdx, nc, ok := c.matchTerminal(opener)
	if !ok {
		return 0, zero, 0, c, c.errorExpectedTerminal(opener)
	}
	openerRange := c.tokens[openIdx].Range
	bodyCursor := nc.pushContext(ctxType, openerRange)
	v, nc2, err := body(bodyCursor)
	if err != nil {
		return 0, zero, 0, c, closeUnclosed(err.asFatal(), ctxType, openerRange)
	}
	closeIdx, nc3, closeErr := nc2.expectTerminal(closer)
	if closeErr != nil {
		return 0, zero, 0, c, closeUnclosed(closeErr.asFatal(), ctxType, openerRange)
	}
	final := c.withIdxFrom(nc3)
	return openIdx, v, closeIdx, final, nil
}

// orTry implements the `.or_try` discipline over N alternatives: the
// first alternative that succeeds wins; a fatal failure short-circuits
// immediately (no further alternative is tried); non-fatal failures are
// merged keeping the deepest-reached one (ties favor the earlier
// alternative).
func orTry[T any](c tokenCursor, alts ...altFn[T]) (T, tokenCursor, *ParseError) {
	var zero T
	if len(alts) == 0 {
		return zero, c, c.errorAt(ErrExpectedExpression)
	}
	v, nc, err := alts[0](c)
	if err == nil {
		return v, nc, nil
	}
	if err.Fatal || len(alts) == 1 {
		return zero, c, err
	}
	v2, nc2, err2 := orTry(c, alts[1:]...)
	if err2 == nil {
		return v2, nc2, nil
	}
	return zero, c, mergeParseErrors(err, err2)
}

// maybe converts a non-fatal failure into (zero, c, nil, false); a fatal
// failure is returned as-is via the bool being false with err non-nil
// left to the caller to detect via the returned error — callers that
// want strict "maybe" semantics (never propagate an error) should only
// use this where a fatal failure is impossible at that grammar position.
func maybe[T any](c tokenCursor, f altFn[T]) (T, tokenCursor, bool) {
	v, nc, err := f(c)
	if err != nil {
		return v, c, false
	}
	return v, nc, true
}

// separatedList1 parses a nonempty separated list: item (sep item)*.
func separatedList1[T any](c tokenCursor, sep Terminal, item altFn[T]) (SeparatedList1[T], tokenCursor, *ParseError) {
	var list SeparatedList1[T]
	v, nc, err := item(c)
	if err != nil {
		return list, c, err
	}
	list.Items = append(list.Items, v)
	c = nc
	for {
		sepIdx, nc2, ok := c.matchTerminal(sep)
		if !ok {
			break
		}
		v2, nc3, err2 := item(nc2)
		if err2 != nil {
			return list, c, err2.asFatal()
		}
		list.Separators = append(list.Separators, sepIdx)
		list.Items = append(list.Items, v2)
		c = nc3
	}
	return list, c, nil
}

// separatedListTrailing0 parses a possibly-empty separated list with an
// optional trailing separator: (item (sep item)* sep?)?. Parsing stops,
// without error, the first time item fails to match (non-fatally) at
// the start of an iteration.
func separatedListTrailing0[T any](c tokenCursor, sep Terminal, item altFn[T]) (SeparatedListTrailing0[T], tokenCursor, *ParseError) {
	var list SeparatedListTrailing0[T]
	for {
		v, nc, err := item(c)
		if err != nil {
			if err.Fatal {
				return list, c, err
			}
			break
		}
		list.Items = append(list.Items, v)
		c = nc
		sepIdx, nc2, ok := c.matchTerminal(sep)
		if !ok {
			list.Trailing = false
			break
		}
		list.Separators = append(list.Separators, sepIdx)
		c = nc2
		list.Trailing = true
	}
	return list, c, nil
}

// Parse turns tokens (as returned by Tokenize) into a Program, the root
// AST node. Parsing is total over any token slice Tokenize could have
// produced: it either succeeds or returns a *ParseError with a deepest
// index in [0, len(tokens)).
func Parse(tokens []Token, opts ...ParseOption) (*Program, error) {
	cfg := newParseConfig(opts)
	c := newCursor(tokens, cfg.filename)
	body, nc, err := parsePreprocessableList(c, TermCloseBracket /* never matches; body runs to EOF */, parseStatement)
	if err != nil {
		return nil, err
	}
	if !nc.isEnded() {
		return nil, nc.errorAt(ErrExpectedStatement)
	}
	return &Program{Body: body}, nil
}
