package sqgs

// atPreprocessorBoundary reports whether the cursor sits at one of the
// tokens that end a preprocessor conditional's current branch: `#elseif`,
// `#else`, or `#endif`.
func (c tokenCursor) atPreprocessorBoundary() bool {
	_, ok := c.peekOneOfTerminal(TermPreprocessorElseIf, TermPreprocessorElse, TermPreprocessorEndIf)
	return ok
}

// parsePreprocessableItems is the generic engine behind both
// parsePreprocessableList (stops at a grammar closer) and the bodies
// parsed inside a preprocessor branch (stop at the next `#elseif`/`#else`/
// `#endif`). Every item is tried as a nested `#if` conditional first; if
// the cursor isn't at `#if`, it falls through to the plain item parser.
func parsePreprocessableItems[T any](c tokenCursor, stop func(tokenCursor) bool, item altFn[T]) ([]Preprocessable[T], tokenCursor, *ParseError) {
	var out []Preprocessable[T]
	for {
		if stop(c) {
			return out, c, nil
		}
		v, nc, err := parsePreprocessableItem(c, item)
		if err != nil {
			return out, c, err
		}
		out = append(out, v)
		c = nc
	}
}

// parsePreprocessableList parses a list of Preprocessable[T] up to (but
// not including) closer or end-of-input — the shape every bracketed body
// that admits `#if` wrapping uses (table slots, array values, struct
// properties, class members, enum values, statement blocks).
func parsePreprocessableList[T any](c tokenCursor, closer Terminal, item altFn[T]) ([]Preprocessable[T], tokenCursor, *ParseError) {
	return parsePreprocessableItems(c, func(cc tokenCursor) bool {
		return cc.isEnded() || cc.peekTerminal(closer)
	}, item)
}

// parsePreprocessorBody parses the body of one `#if`/`#elseif`/`#else`
// branch: a list of Preprocessable[T] that runs until the next branch
// marker or `#endif`.
func parsePreprocessorBody[T any](c tokenCursor, item altFn[T]) ([]Preprocessable[T], tokenCursor, *ParseError) {
	return parsePreprocessableItems(c, func(cc tokenCursor) bool {
		return cc.isEnded() || cc.atPreprocessorBoundary()
	}, item)
}

func parsePreprocessableItem[T any](c tokenCursor, item altFn[T]) (Preprocessable[T], tokenCursor, *ParseError) {
	if c.peekTerminal(TermPreprocessorIf) {
		pp, nc, err := parsePreprocessorIf(c, item)
		if err != nil {
			return Preprocessable[T]{}, c, err
		}
		return Preprocessable[T]{Preprocessed: pp}, nc, nil
	}
	v, nc, err := item(c)
	if err != nil {
		return Preprocessable[T]{}, c, err
	}
	return Preprocessable[T]{Unconditional: &v}, nc, nil
}

// parsePreprocessorIf parses `#if` Expression Body (`#elseif` Expression
// Body)* (`#else` Body)? `#endif`, generic over the body grammar's item
// parser. `#if` is a commit point (spec.md §4.6): once matched, every
// failure below it — including a missing `#endif` — is fatal and, for the
// missing-closer case, reported as ErrUnclosedContext pointing back at the
// `#if`.
func parsePreprocessorIf[T any](c tokenCursor, item altFn[T]) (*PreprocessorIf[[]Preprocessable[T]], tokenCursor, *ParseError) {
	ifIdx, nc, ok := c.matchTerminal(TermPreprocessorIf)
	if !ok {
		return nil, c, c.errorExpectedTerminal(TermPreprocessorIf)
	}
	openerRange := c.tokens[ifIdx].Range
	bodyCursor := nc.pushContext(CtxPreProcessorIf, openerRange)

	result, nc2, err := determines(bodyCursor, func(cc tokenCursor) (*PreprocessorIf[[]Preprocessable[T]], tokenCursor, *ParseError) {
		cond, cc2, cerr := parseExpression(cc, PrecNone)
		if cerr != nil {
			return nil, cc, cerr
		}
		content, cc3, cerr2 := parsePreprocessorBody(cc2, item)
		if cerr2 != nil {
			return nil, cc, cerr2
		}
		elseIf, cc4, _ := maybe(cc3, func(cccc tokenCursor) (*PreprocessorElseIf[[]Preprocessable[T]], tokenCursor, *ParseError) {
			return parsePreprocessorElseIf(cccc, item)
		})
		elseClause, cc5, _ := maybe(cc4, func(cccc tokenCursor) (*PreprocessorElse[[]Preprocessable[T]], tokenCursor, *ParseError) {
			return parsePreprocessorElse(cccc, item)
		})
		endifIdx, cc6, eerr := cc5.expectTerminal(TermPreprocessorEndIf)
		if eerr != nil {
			return nil, cc, eerr
		}
		return &PreprocessorIf[[]Preprocessable[T]]{
			If:        ifIdx,
			Condition: cond,
			Content:   content,
			ElseIf:    elseIf,
			Else:      elseClause,
			EndIf:     endifIdx,
		}, cc6, nil
	})
	if err != nil {
		return nil, c, closeUnclosed(err, CtxPreProcessorIf, openerRange)
	}
	return result, c.withIdxFrom(nc2), nil
}

// parsePreprocessorElseIf parses one `#elseif` clause and recursively
// chains the next one, forming the singly linked list the AST shape
// requires (see SPEC_FULL.md §12).
func parsePreprocessorElseIf[T any](c tokenCursor, item altFn[T]) (*PreprocessorElseIf[[]Preprocessable[T]], tokenCursor, *ParseError) {
	elseIfIdx, nc, ok := c.matchTerminal(TermPreprocessorElseIf)
	if !ok {
		return nil, c, c.errorExpectedTerminal(TermPreprocessorElseIf)
	}
	return determines(nc, func(cc tokenCursor) (*PreprocessorElseIf[[]Preprocessable[T]], tokenCursor, *ParseError) {
		cond, cc2, err := parseExpression(cc, PrecNone)
		if err != nil {
			return nil, cc, err
		}
		content, cc3, err := parsePreprocessorBody(cc2, item)
		if err != nil {
			return nil, cc, err
		}
		next, cc4, _ := maybe(cc3, func(cccc tokenCursor) (*PreprocessorElseIf[[]Preprocessable[T]], tokenCursor, *ParseError) {
			return parsePreprocessorElseIf(cccc, item)
		})
		return &PreprocessorElseIf[[]Preprocessable[T]]{
			ElseIf:    elseIfIdx,
			Condition: cond,
			Content:   content,
			ElseIf2:   next,
		}, cc4, nil
	})
}

func parsePreprocessorElse[T any](c tokenCursor, item altFn[T]) (*PreprocessorElse[[]Preprocessable[T]], tokenCursor, *ParseError) {
	elseIdx, nc, ok := c.matchTerminal(TermPreprocessorElse)
	if !ok {
		return nil, c, c.errorExpectedTerminal(TermPreprocessorElse)
	}
	return determines(nc, func(cc tokenCursor) (*PreprocessorElse[[]Preprocessable[T]], tokenCursor, *ParseError) {
		content, cc2, err := parsePreprocessorBody(cc, item)
		if err != nil {
			return nil, cc, err
		}
		return &PreprocessorElse[[]Preprocessable[T]]{Else: elseIdx, Content: content}, cc2, nil
	})
}
