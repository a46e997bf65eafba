package sqgs

// parseStatement is the statement-level dispatch: a keyword at the
// cursor routes directly to its dedicated parser; otherwise the cursor
// might be at a typed function expression used as a statement, a bare
// typed variable declaration, or a plain expression statement — tried
// in that order since each is a strict superset of the tokens the next
// one would also accept.
func parseStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	tok, ok := c.current()
	if ok && tok.Type == TokenTerminal {
		switch tok.Terminal {
		case TermOpenBrace:
			return parseBlockStatement(c)
		case TermIf:
			return parseIfStatement(c)
		case TermWhile:
			return parseWhileStatement(c)
		case TermDo:
			return parseDoWhileStatement(c)
		case TermFor:
			return parseForStatement(c)
		case TermForeach:
			return parseForeachStatement(c)
		case TermSwitch:
			return parseSwitchStatement(c)
		case TermBreak:
			return parseBreakStatement(c)
		case TermContinue:
			return parseContinueStatement(c)
		case TermReturn:
			return parseReturnStatement(c)
		case TermThrow:
			return parseThrowStatement(c)
		case TermYield:
			return parseYieldStatement(c)
		case TermTry:
			return parseTryStatement(c)
		case TermClass:
			return parseClassDeclarationStatement(c)
		case TermStruct:
			return parseStructDeclarationStatement(c)
		case TermEnum:
			return parseEnumDeclarationStatement(c)
		case TermTypedef:
			return parseTypedefStatement(c)
		case TermRui:
			return parseRuiStatement(c)
		case TermLocal, TermGlobal, TermConst:
			return parseVariableDeclarationStatement(c)
		case TermFunction:
			return parseFunctionDeclarationStatement(c, nil)
		case TermSemicolon:
			idx, nc, _ := c.matchTerminal(TermSemicolon)
			return &ExpressionStatement{stmtBase: stmtBase{rng: c.tokens[idx].Range}, Semicolon: &idx}, nc, nil
		}
	}

	// `Type function ...` as a statement (a typed function declaration
	// with no preceding scope keyword).
	if typ, nc, ok := maybeParseTypedFunctionLead(c); ok {
		return parseFunctionDeclarationStatement(nc, typ)
	}

	// `Type Identifier ...` as a bare typed variable declaration. This
	// is deliberately stricter than parseOptionalTypeAndName: a single
	// bare identifier at statement start is left to fall through to
	// parseExpressionStatement, since it is just as likely to be a call
	// or assignment (`foo();`, `foo = 1;`) as a (typeless, which this
	// dialect does not have at statement level without a scope keyword)
	// declaration.
	if typ, name, nc, ok := parseTypedDeclLead(c); ok {
		return finishTypedVarDeclStatement(c, typ, name, nc)
	}

	return parseExpressionStatement(c)
}

func parseBlockStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	openIdx, body, closeIdx, nc, err := opens(c, TermOpenBrace, CtxBlock, TermCloseBrace,
		func(cc tokenCursor) ([]Preprocessable[Statement], tokenCursor, *ParseError) {
			return parsePreprocessableList(cc, TermCloseBrace, parseStatement)
		})
	if err != nil {
		return nil, c, err
	}
	return &BlockStatement{
		stmtBase: stmtBase{rng: Range{c.tokens[openIdx].Range.Start, nc.tokens[closeIdx].Range.End}},
		Open:     openIdx,
		Body:     body,
		Close:    closeIdx,
	}, nc, nil
}

func parseIfStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	ifIdx, nc, _ := c.matchTerminal(TermIf)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		openIdx, cond, closeIdx, cc2, err := opens(cc, TermOpenBracket, CtxExpression, TermCloseBracket,
			func(ccc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(ccc, PrecNone) })
		if err != nil {
			return nil, cc, err
		}
		then, cc3, err := parseStatement(cc2)
		if err != nil {
			return nil, cc, err
		}
		var elseClause *ElseClause
		if elseIdx, cc4, ok := cc3.matchTerminal(TermElse); ok {
			elseBody, cc5, eerr := parseStatement(cc4)
			if eerr != nil {
				return nil, cc, eerr.asFatal()
			}
			elseClause = &ElseClause{Else: elseIdx, Body: elseBody}
			cc3 = cc5
		}
		end := then.Range().End
		if elseClause != nil {
			end = elseClause.Body.Range().End
		}
		return &IfStatement{
			stmtBase:  stmtBase{rng: Range{c.tokens[ifIdx].Range.Start, end}},
			If:        ifIdx,
			Open:      openIdx,
			Condition: cond,
			Close:     closeIdx,
			Then:      then,
			Else:      elseClause,
		}, cc3, nil
	})
}

func parseWhileStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	whileIdx, nc, _ := c.matchTerminal(TermWhile)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		openIdx, cond, closeIdx, cc2, err := opens(cc, TermOpenBracket, CtxExpression, TermCloseBracket,
			func(ccc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(ccc, PrecNone) })
		if err != nil {
			return nil, cc, err
		}
		body, cc3, err2 := parseStatement(cc2)
		if err2 != nil {
			return nil, cc, err2
		}
		return &WhileStatement{
			stmtBase:  stmtBase{rng: Range{c.tokens[whileIdx].Range.Start, body.Range().End}},
			While:     whileIdx,
			Open:      openIdx,
			Condition: cond,
			Close:     closeIdx,
			Body:      body,
		}, cc3, nil
	})
}

func parseDoWhileStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	doIdx, nc, _ := c.matchTerminal(TermDo)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		body, cc2, err := parseStatement(cc)
		if err != nil {
			return nil, cc, err
		}
		whileIdx, cc3, err2 := cc2.expectTerminal(TermWhile)
		if err2 != nil {
			return nil, cc, err2
		}
		openIdx, cond, closeIdx, cc4, err3 := opens(cc3, TermOpenBracket, CtxExpression, TermCloseBracket,
			func(ccc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(ccc, PrecNone) })
		if err3 != nil {
			return nil, cc, err3
		}
		semi, cc5 := optionalSemicolon(cc4)
		end := cc4.tokens[closeIdx].Range.End
		if semi != nil {
			end = cc5.tokens[*semi].Range.End
		}
		return &DoWhileStatement{
			stmtBase:  stmtBase{rng: Range{c.tokens[doIdx].Range.Start, end}},
			Do:        doIdx,
			Body:      body,
			While:     whileIdx,
			Open:      openIdx,
			Condition: cond,
			Close:     closeIdx,
			Semicolon: semi,
		}, cc5, nil
	})
}

// parseTypedDeclLead implements the strict two-token lookahead used to
// recognize a typed declaration lead (`Type Identifier`) wherever it
// must be told apart from a bare expression: statement-level
// declarations and `for`-loop initializers. It never falls back to
// treating a lone identifier as a typeless name — callers that have
// already committed to "this position is a declaration" should use
// parseOptionalTypeAndName instead.
func parseTypedDeclLead(c tokenCursor) (Type, Identifier, tokenCursor, bool) {
	typ, nc, err := parseType(c)
	if err != nil {
		return nil, Identifier{}, c, false
	}
	name, nc2, ok := nc.matchIdentifier()
	if !ok {
		return nil, Identifier{}, c, false
	}
	return typ, name, nc2, true
}

// parseOptionalTypeAndName implements "Type? Identifier" at positions
// where the grammar has already committed to a declaration (parameters,
// struct/class properties, `local`/`global`/`const` declarations): it
// falls back to treating a single bare identifier as the Name with no
// Type, since there is no competing "this might just be an expression"
// interpretation at these positions.
func parseOptionalTypeAndName(c tokenCursor) (Type, Identifier, tokenCursor, *ParseError) {
	if typ, name, nc, ok := parseTypedDeclLead(c); ok {
		return typ, name, nc, nil
	}
	name, nc, ok := c.matchIdentifier()
	if !ok {
		return nil, Identifier{}, c, c.errorAt(ErrExpectedIdentifier)
	}
	return nil, name, nc, nil
}

func parseVarInitializer(c tokenCursor) (*VarInitializer, tokenCursor, *ParseError) {
	assignIdx, nc, ok := c.matchTerminal(TermAssign)
	if !ok {
		return nil, c, nil
	}
	value, nc2, err := parseExpression(nc, PrecComma+1)
	if err != nil {
		return nil, c, err.asFatal()
	}
	return &VarInitializer{Assign: assignIdx, Value: value}, nc2, nil
}

func optionalSemicolon(c tokenCursor) (*TokenIndex, tokenCursor) {
	if idx, nc, ok := c.matchTerminal(TermSemicolon); ok {
		return &idx, nc
	}
	return nil, c
}

func optionalComma(c tokenCursor) (*TokenIndex, tokenCursor) {
	if idx, nc, ok := c.matchTerminal(TermComma); ok {
		return &idx, nc
	}
	return nil, c
}

// startsVoidTail reports whether the cursor is already at a token that
// ends a statement (`;`, `}`, or end of input) — used by `return`/`yield`
// to tell a bare `return;` from `return Expression;` without having to
// attempt (and discard an error from) a failed expression parse.
func startsVoidTail(c tokenCursor) bool {
	return c.isEnded() || c.peekTerminal(TermSemicolon) || c.peekTerminal(TermCloseBrace)
}

func finishTypedVarDeclStatement(c tokenCursor, typ Type, name Identifier, nc tokenCursor) (Statement, tokenCursor, *ParseError) {
	init, nc2, err := parseVarInitializer(nc)
	if err != nil {
		return nil, c, err.asFatal()
	}
	semi, nc3 := optionalSemicolon(nc2)
	end := nc3.tokens[name.Token].Range.End
	if init != nil {
		end = init.Value.Range().End
	}
	if semi != nil {
		end = nc3.tokens[*semi].Range.End
	}
	decl := VariableDeclaration{Type: typ, Name: name, Initializer: init}
	return &VariableDeclarationStatement{
		stmtBase:    stmtBase{rng: Range{typ.Range().Start, end}},
		Declaration: decl,
		Semicolon:   semi,
	}, nc3, nil
}

func parseVariableDeclarationStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	tok, _ := c.current()
	var scope VarScope
	switch tok.Terminal {
	case TermLocal:
		scope = ScopeLocal
	case TermGlobal:
		scope = ScopeGlobal
	case TermConst:
		scope = ScopeConst
	}
	scopeIdx := TokenIndex(c.idx)
	nc := c.advance()
	decl, nc2, err := determines(nc, func(cc tokenCursor) (VariableDeclaration, tokenCursor, *ParseError) {
		typ, name, cc2, terr := parseOptionalTypeAndName(cc)
		if terr != nil {
			return VariableDeclaration{}, cc, terr
		}
		init, cc3, ierr := parseVarInitializer(cc2)
		if ierr != nil {
			return VariableDeclaration{}, cc, ierr
		}
		return VariableDeclaration{Scope: scope, ScopeToken: &scopeIdx, Type: typ, Name: name, Initializer: init}, cc3, nil
	})
	if err != nil {
		return nil, c, err
	}
	semi, nc3 := optionalSemicolon(nc2)
	end := nc3.tokens[decl.Name.Token].Range.End
	if decl.Initializer != nil {
		end = decl.Initializer.Value.Range().End
	}
	if semi != nil {
		end = nc3.tokens[*semi].Range.End
	}
	return &VariableDeclarationStatement{
		stmtBase:    stmtBase{rng: Range{c.tokens[scopeIdx].Range.Start, end}},
		Declaration: decl,
		Semicolon:   semi,
	}, nc3, nil
}

// ---- for / foreach ----

func parseForInit(c tokenCursor) (*ForInit, tokenCursor, *ParseError) {
	if c.peekTerminal(TermSemicolon) {
		return nil, c, nil
	}
	if tok, ok := c.current(); ok && tok.Type == TokenTerminal {
		var scope VarScope
		matched := true
		switch tok.Terminal {
		case TermLocal:
			scope = ScopeLocal
		case TermGlobal:
			scope = ScopeGlobal
		case TermConst:
			scope = ScopeConst
		default:
			matched = false
		}
		if matched {
			scopeIdx := TokenIndex(c.idx)
			nc := c.advance()
			typ, name, nc2, err := parseOptionalTypeAndName(nc)
			if err != nil {
				return nil, c, err.asFatal()
			}
			init, nc3, err2 := parseVarInitializer(nc2)
			if err2 != nil {
				return nil, c, err2.asFatal()
			}
			return &ForInit{VarDecl: &VariableDeclaration{Scope: scope, ScopeToken: &scopeIdx, Type: typ, Name: name, Initializer: init}}, nc3, nil
		}
	}
	if typ, name, nc, ok := parseTypedDeclLead(c); ok {
		init, nc2, err := parseVarInitializer(nc)
		if err != nil {
			return nil, c, err.asFatal()
		}
		return &ForInit{VarDecl: &VariableDeclaration{Type: typ, Name: name, Initializer: init}}, nc2, nil
	}
	expr, nc, err := parseExpression(c, PrecNone)
	if err != nil {
		return nil, c, err
	}
	return &ForInit{Expr: expr}, nc, nil
}

func parseForStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	forIdx, nc, _ := c.matchTerminal(TermFor)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		openIdx, cc2, err := cc.expectTerminal(TermOpenBracket)
		if err != nil {
			return nil, cc, err
		}
		openerRange := cc.tokens[openIdx].Range

		type forHeader struct {
			init     *ForInit
			semi1    TokenIndex
			cond     Expression
			semi2    TokenIndex
			update   Expression
			closeIdx TokenIndex
		}
		header, cc3, err2 := withSpan(cc2, CtxSpan, openerRange, func(ccc tokenCursor) (forHeader, tokenCursor, *ParseError) {
			init, ccc2, e := parseForInit(ccc)
			if e != nil {
				return forHeader{}, ccc, e
			}
			semi1, ccc3, e2 := ccc2.expectTerminal(TermSemicolon)
			if e2 != nil {
				return forHeader{}, ccc, e2
			}
			var cond Expression
			if !ccc3.peekTerminal(TermSemicolon) {
				cond, ccc3, e = parseExpression(ccc3, PrecNone)
				if e != nil {
					return forHeader{}, ccc, e
				}
			}
			semi2, ccc4, e3 := ccc3.expectTerminal(TermSemicolon)
			if e3 != nil {
				return forHeader{}, ccc, e3
			}
			var update Expression
			if !ccc4.peekTerminal(TermCloseBracket) {
				update, ccc4, e = parseExpression(ccc4, PrecNone)
				if e != nil {
					return forHeader{}, ccc, e
				}
			}
			closeIdx, ccc5, e4 := ccc4.expectTerminal(TermCloseBracket)
			if e4 != nil {
				return forHeader{}, ccc, e4
			}
			return forHeader{init, semi1, cond, semi2, update, closeIdx}, ccc5, nil
		})
		if err2 != nil {
			return nil, cc, err2
		}
		body, cc4, err3 := parseStatement(cc3)
		if err3 != nil {
			return nil, cc, err3
		}
		return &ForStatement{
			stmtBase:  stmtBase{rng: Range{c.tokens[forIdx].Range.Start, body.Range().End}},
			For:       forIdx,
			Open:      openIdx,
			Init:      header.init,
			Semi1:     header.semi1,
			Condition: header.cond,
			Semi2:     header.semi2,
			Update:    header.update,
			Close:     header.closeIdx,
			Body:      body,
		}, cc4, nil
	})
}

func parseForeachBinding(c tokenCursor) (ForeachBinding, tokenCursor, *ParseError) {
	if typ, name, nc, ok := parseTypedDeclLead(c); ok {
		return ForeachBinding{Type: typ, Name: name}, nc, nil
	}
	name, nc, err := c.expectIdentifier()
	if err != nil {
		return ForeachBinding{}, c, err
	}
	return ForeachBinding{Name: name}, nc, nil
}

func parseForeachStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	foreachIdx, nc, _ := c.matchTerminal(TermForeach)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		openIdx, cc2, err := cc.expectTerminal(TermOpenBracket)
		if err != nil {
			return nil, cc, err
		}
		openerRange := cc.tokens[openIdx].Range

		type foreachHeader struct {
			bindings []ForeachBinding
			inIdx    TokenIndex
			iterable Expression
			closeIdx TokenIndex
		}
		header, cc3, err2 := withSpan(cc2, CtxExpression, openerRange, func(ccc tokenCursor) (foreachHeader, tokenCursor, *ParseError) {
			first, ccc2, e := parseForeachBinding(ccc)
			if e != nil {
				return foreachHeader{}, ccc, e
			}
			bindings := []ForeachBinding{first}
			if _, ccc3, ok := ccc2.matchTerminal(TermComma); ok {
				second, ccc4, e2 := parseForeachBinding(ccc3)
				if e2 != nil {
					return foreachHeader{}, ccc, e2
				}
				bindings = append(bindings, second)
				ccc2 = ccc4
			}
			inIdx, ccc5, e3 := ccc2.expectTerminal(TermIn)
			if e3 != nil {
				return foreachHeader{}, ccc, e3
			}
			iterable, ccc6, e4 := parseExpression(ccc5, PrecNone)
			if e4 != nil {
				return foreachHeader{}, ccc, e4
			}
			closeIdx, ccc7, e5 := ccc6.expectTerminal(TermCloseBracket)
			if e5 != nil {
				return foreachHeader{}, ccc, e5
			}
			return foreachHeader{bindings, inIdx, iterable, closeIdx}, ccc7, nil
		})
		if err2 != nil {
			return nil, cc, err2
		}
		body, cc4, err3 := parseStatement(cc3)
		if err3 != nil {
			return nil, cc, err3
		}
		return &ForeachStatement{
			stmtBase: stmtBase{rng: Range{c.tokens[foreachIdx].Range.Start, body.Range().End}},
			Foreach:  foreachIdx,
			Open:     openIdx,
			Bindings: header.bindings,
			In:       header.inIdx,
			Iterable: header.iterable,
			Close:    header.closeIdx,
			Body:     body,
		}, cc4, nil
	})
}

// ---- switch ----

func parseCaseBody(c tokenCursor) ([]Preprocessable[Statement], tokenCursor, *ParseError) {
	return parsePreprocessableItems(c, func(cc tokenCursor) bool {
		return cc.isEnded() || cc.peekTerminal(TermCloseBrace) || cc.peekTerminal(TermCase) || cc.peekTerminal(TermDefault)
	}, parseStatement)
}

func parseSwitchStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	switchIdx, nc, _ := c.matchTerminal(TermSwitch)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		openIdx, value, closeIdx, cc2, err := opens(cc, TermOpenBracket, CtxExpression, TermCloseBracket,
			func(ccc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(ccc, PrecNone) })
		if err != nil {
			return nil, cc, err
		}

		type switchBody struct {
			cases []SwitchCase
			def   *SwitchDefault
		}
		openBraceIdx, body, closeBraceIdx, cc3, err2 := opens(cc2, TermOpenBrace, CtxBlock, TermCloseBrace,
			func(ccc tokenCursor) (switchBody, tokenCursor, *ParseError) {
				var cases []SwitchCase
				for ccc.peekTerminal(TermCase) {
					caseIdx, ccc2, _ := ccc.matchTerminal(TermCase)
					caseVal, ccc3, e := parseExpression(ccc2, PrecNone)
					if e != nil {
						return switchBody{}, ccc, e.asFatal()
					}
					colonIdx, ccc4, e2 := ccc3.expectTerminal(TermColon)
					if e2 != nil {
						return switchBody{}, ccc, e2.asFatal()
					}
					stmts, ccc5, e3 := parseCaseBody(ccc4)
					if e3 != nil {
						return switchBody{}, ccc, e3
					}
					cases = append(cases, SwitchCase{Case: caseIdx, Value: caseVal, Colon: colonIdx, Body: stmts})
					ccc = ccc5
				}
				var def *SwitchDefault
				if defIdx, ccc2, ok := ccc.matchTerminal(TermDefault); ok {
					colonIdx, ccc3, e := ccc2.expectTerminal(TermColon)
					if e != nil {
						return switchBody{}, ccc, e.asFatal()
					}
					stmts, ccc4, e2 := parseCaseBody(ccc3)
					if e2 != nil {
						return switchBody{}, ccc, e2
					}
					def = &SwitchDefault{Default: defIdx, Colon: colonIdx, Body: stmts}
					ccc = ccc4
				}
				return switchBody{cases: cases, def: def}, ccc, nil
			})
		if err2 != nil {
			return nil, cc, err2
		}
		end := cc3.tokens[closeBraceIdx].Range.End
		return &SwitchStatement{
			stmtBase:   stmtBase{rng: Range{c.tokens[switchIdx].Range.Start, end}},
			Switch:     switchIdx,
			Open:       openIdx,
			Value:      value,
			Close:      closeIdx,
			OpenBrace:  openBraceIdx,
			Cases:      body.cases,
			Default:    body.def,
			CloseBrace: closeBraceIdx,
		}, cc3, nil
	})
}

// ---- simple jump statements ----

func parseBreakStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	idx, nc, _ := c.matchTerminal(TermBreak)
	semi, nc2 := optionalSemicolon(nc)
	end := c.tokens[idx].Range.End
	if semi != nil {
		end = nc2.tokens[*semi].Range.End
	}
	return &BreakStatement{stmtBase: stmtBase{rng: Range{c.tokens[idx].Range.Start, end}}, Break: idx, Semicolon: semi}, nc2, nil
}

func parseContinueStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	idx, nc, _ := c.matchTerminal(TermContinue)
	semi, nc2 := optionalSemicolon(nc)
	end := c.tokens[idx].Range.End
	if semi != nil {
		end = nc2.tokens[*semi].Range.End
	}
	return &ContinueStatement{stmtBase: stmtBase{rng: Range{c.tokens[idx].Range.Start, end}}, Continue: idx, Semicolon: semi}, nc2, nil
}

func parseReturnStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	idx, nc, _ := c.matchTerminal(TermReturn)
	var val Expression
	if !startsVoidTail(nc) {
		v, nc2, err := parseExpression(nc, PrecNone)
		if err != nil {
			return nil, c, err.asFatal()
		}
		val = v
		nc = nc2
	}
	semi, nc3 := optionalSemicolon(nc)
	end := c.tokens[idx].Range.End
	if val != nil {
		end = val.Range().End
	}
	if semi != nil {
		end = nc3.tokens[*semi].Range.End
	}
	return &ReturnStatement{stmtBase: stmtBase{rng: Range{c.tokens[idx].Range.Start, end}}, Return: idx, Value: val, Semicolon: semi}, nc3, nil
}

func parseThrowStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	idx, nc, _ := c.matchTerminal(TermThrow)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		val, cc2, err := parseExpression(cc, PrecNone)
		if err != nil {
			return nil, cc, err
		}
		semi, cc3 := optionalSemicolon(cc2)
		end := val.Range().End
		if semi != nil {
			end = cc3.tokens[*semi].Range.End
		}
		return &ThrowStatement{stmtBase: stmtBase{rng: Range{c.tokens[idx].Range.Start, end}}, Throw: idx, Value: val, Semicolon: semi}, cc3, nil
	})
}

func parseYieldStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	idx, nc, _ := c.matchTerminal(TermYield)
	var val Expression
	if !startsVoidTail(nc) {
		v, nc2, err := parseExpression(nc, PrecNone)
		if err != nil {
			return nil, c, err.asFatal()
		}
		val = v
		nc = nc2
	}
	semi, nc3 := optionalSemicolon(nc)
	end := c.tokens[idx].Range.End
	if val != nil {
		end = val.Range().End
	}
	if semi != nil {
		end = nc3.tokens[*semi].Range.End
	}
	return &YieldStatement{stmtBase: stmtBase{rng: Range{c.tokens[idx].Range.Start, end}}, Yield: idx, Value: val, Semicolon: semi}, nc3, nil
}

func parseTryStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	tryIdx, nc, _ := c.matchTerminal(TermTry)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		body, cc2, err := parseStatement(cc)
		if err != nil {
			return nil, cc, err
		}
		catchIdx, cc3, err2 := cc2.expectTerminal(TermCatch)
		if err2 != nil {
			return nil, cc, err2
		}
		openIdx, param, closeIdx, cc4, err3 := opens(cc3, TermOpenBracket, CtxParameters, TermCloseBracket,
			func(ccc tokenCursor) (Identifier, tokenCursor, *ParseError) { return ccc.expectIdentifier() })
		if err3 != nil {
			return nil, cc, err3
		}
		catchBody, cc5, err4 := parseStatement(cc4)
		if err4 != nil {
			return nil, cc, err4
		}
		return &TryStatement{
			stmtBase:  stmtBase{rng: Range{c.tokens[tryIdx].Range.Start, catchBody.Range().End}},
			Try:       tryIdx,
			Body:      body,
			Catch:     catchIdx,
			Open:      openIdx,
			Param:     param,
			Close:     closeIdx,
			CatchBody: catchBody,
		}, cc5, nil
	})
}

func parseExpressionStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	value, nc, err := parseExpression(c, PrecNone)
	if err != nil {
		return nil, c, err
	}
	semi, nc2 := optionalSemicolon(nc)
	end := value.Range().End
	if semi != nil {
		end = nc2.tokens[*semi].Range.End
	}
	return &ExpressionStatement{
		stmtBase:  stmtBase{rng: Range{value.Range().Start, end}},
		Value:     value,
		Semicolon: semi,
	}, nc2, nil
}

// ---- functions ----

func parseParameter(c tokenCursor) (Parameter, tokenCursor, *ParseError) {
	if variadicIdx, nc, ok := c.matchTerminal(TermEllipsis); ok {
		return Parameter{Variadic: &variadicIdx}, nc, nil
	}
	typ, name, nc, err := parseOptionalTypeAndName(c)
	if err != nil {
		return Parameter{}, c, err
	}
	def, nc2, err2 := parseVarInitializer(nc)
	if err2 != nil {
		return Parameter{}, c, err2.asFatal()
	}
	return Parameter{Type: typ, Name: name, Default: def}, nc2, nil
}

func parseParameters(c tokenCursor) (Parameters, tokenCursor, *ParseError) {
	openIdx, list, closeIdx, nc, err := opens(c, TermOpenBracket, CtxParameters, TermCloseBracket,
		func(cc tokenCursor) (SeparatedListTrailing0[Parameter], tokenCursor, *ParseError) {
			return separatedListTrailing0(cc, TermComma, parseParameter)
		})
	if err != nil {
		return Parameters{}, c, err
	}
	return Parameters{Open: openIdx, List: list, Close: closeIdx}, nc, nil
}

// parseFunctionDeclaration parses Identifier? Parameters Statement(block),
// the shared body of every `function` form (statement, expression, table
// slot, class method). requireName selects whether the leading identifier
// is mandatory (table/class member functions always name themselves;
// function expressions may be anonymous).
func parseFunctionDeclaration(c tokenCursor, requireName bool) (FunctionDeclaration, tokenCursor, *ParseError) {
	var name *Identifier
	if id, nc, ok := c.matchIdentifier(); ok {
		name = &id
		c = nc
	} else if requireName {
		return FunctionDeclaration{}, c, c.errorAt(ErrExpectedIdentifier)
	}
	params, nc, err := parseParameters(c)
	if err != nil {
		return FunctionDeclaration{}, c, err.asFatal()
	}
	body, nc2, err2 := parseBlockStatement(nc)
	if err2 != nil {
		return FunctionDeclaration{}, c, err2.asFatal()
	}
	return FunctionDeclaration{Name: name, Params: params, Body: body}, nc2, nil
}

func parseFunctionDeclarationStatement(c tokenCursor, returnType Type) (Statement, tokenCursor, *ParseError) {
	funcIdx, nc, ok := c.matchTerminal(TermFunction)
	if !ok {
		return nil, c, c.errorExpectedTerminal(TermFunction)
	}
	decl, nc2, err := determines(nc, func(cc tokenCursor) (FunctionDeclaration, tokenCursor, *ParseError) {
		return parseFunctionDeclaration(cc, true)
	})
	if err != nil {
		return nil, c, err
	}
	start := c.tokens[funcIdx].Range.Start
	if returnType != nil {
		start = returnType.Range().Start
	}
	return &FunctionDeclarationStatement{
		stmtBase:    stmtBase{rng: Range{start, decl.Body.Range().End}},
		ReturnType:  returnType,
		Function:    funcIdx,
		Declaration: decl,
	}, nc2, nil
}

// ---- classes ----

// parseClassDeclaration parses (`extends` Expression)? `{` ClassMember* `}`,
// shared by both the anonymous ClassExpression and the named
// ClassDeclarationStatement (the class name, where present, is parsed by
// the caller before this runs).
func parseClassDeclaration(c tokenCursor) (ClassDeclaration, tokenCursor, *ParseError) {
	var extends *ExtendsClause
	if extIdx, nc, ok := c.matchTerminal(TermExtends); ok {
		base, nc2, err := parseExpression(nc, PrecTernary+1)
		if err != nil {
			return ClassDeclaration{}, c, err.asFatal()
		}
		extends = &ExtendsClause{Extends: extIdx, Base: base}
		c = nc2
	}
	openIdx, members, closeIdx, nc, err := opens(c, TermOpenBrace, CtxClass, TermCloseBrace,
		func(cc tokenCursor) ([]Preprocessable[ClassMember], tokenCursor, *ParseError) {
			return parsePreprocessableList(cc, TermCloseBrace, parseClassMember)
		})
	if err != nil {
		return ClassDeclaration{}, c, err
	}
	return ClassDeclaration{Extends: extends, Open: openIdx, Members: members, Close: closeIdx}, nc, nil
}

func parseClassDeclarationStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	classIdx, nc, _ := c.matchTerminal(TermClass)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		name, cc2, err := cc.expectIdentifier()
		if err != nil {
			return nil, cc, err
		}
		decl, cc3, err2 := parseClassDeclaration(cc2)
		if err2 != nil {
			return nil, cc, err2
		}
		return &ClassDeclarationStatement{
			stmtBase:    stmtBase{rng: Range{c.tokens[classIdx].Range.Start, decl.Close.toEnd(cc3)}},
			Class:       classIdx,
			Name:        name,
			Declaration: decl,
		}, cc3, nil
	})
}

func parseClassMethodTail(c tokenCursor, staticIdx *TokenIndex, retType Type, funcIdx TokenIndex) (ClassMember, tokenCursor, *ParseError) {
	return determines(c, func(cc tokenCursor) (ClassMember, tokenCursor, *ParseError) {
		name, cc2, err := cc.expectMethodIdentifier()
		if err != nil {
			return nil, cc, err
		}
		params, cc3, err2 := parseParameters(cc2)
		if err2 != nil {
			return nil, cc, err2.asFatal()
		}
		body, cc4, err3 := parseBlockStatement(cc3)
		if err3 != nil {
			return nil, cc, err3.asFatal()
		}
		return &ClassMethodMember{Static: staticIdx, ReturnType: retType, Function: funcIdx, Name: name, Params: params, Body: body}, cc4, nil
	})
}

func parseClassPropertyMember(c tokenCursor, staticIdx *TokenIndex) (ClassMember, tokenCursor, *ParseError) {
	typ, name, nc, err := parseOptionalTypeAndName(c)
	if err != nil {
		return nil, c, err
	}
	init, nc2, err2 := parseVarInitializer(nc)
	if err2 != nil {
		return nil, c, err2.asFatal()
	}
	sep, nc3 := optionalComma(nc2)
	return &ClassPropertyMember{Static: staticIdx, Type: typ, Name: name, Initializer: init, Separator: sep}, nc3, nil
}

func parseClassMember(c tokenCursor) (ClassMember, tokenCursor, *ParseError) {
	var staticIdx *TokenIndex
	nc := c
	if idx, ncc, ok := c.matchTerminal(TermStatic); ok {
		staticIdx = &idx
		nc = ncc
	}
	body := func(cc tokenCursor) (ClassMember, tokenCursor, *ParseError) {
		if funcIdx, ccc, ok := cc.matchTerminal(TermFunction); ok {
			return parseClassMethodTail(ccc, staticIdx, nil, funcIdx)
		}
		if typ, ccc, ok := maybeParseTypedFunctionLead(cc); ok {
			funcIdx, ccc2, _ := ccc.matchTerminal(TermFunction)
			return parseClassMethodTail(ccc2, staticIdx, typ, funcIdx)
		}
		return parseClassPropertyMember(cc, staticIdx)
	}
	if staticIdx != nil {
		return determines(nc, body)
	}
	return body(nc)
}

// ---- structs ----

func parseStructProperty(c tokenCursor) (StructProperty, tokenCursor, *ParseError) {
	typ, nc, err := parseType(c)
	if err != nil {
		return StructProperty{}, c, err
	}
	return determines(nc, func(cc tokenCursor) (StructProperty, tokenCursor, *ParseError) {
		name, cc2, err2 := cc.expectIdentifier()
		if err2 != nil {
			return StructProperty{}, cc, err2
		}
		init, cc3, err3 := parseVarInitializer(cc2)
		if err3 != nil {
			return StructProperty{}, cc, err3
		}
		sep, cc4 := optionalComma(cc3)
		return StructProperty{Type: typ, Name: name, Initializer: init, Separator: sep}, cc4, nil
	})
}

func parseStructDeclarationStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	structIdx, nc, _ := c.matchTerminal(TermStruct)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		name, cc2, err := cc.expectIdentifier()
		if err != nil {
			return nil, cc, err
		}
		openIdx, props, closeIdx, cc3, err2 := opens(cc2, TermOpenBrace, CtxStruct, TermCloseBrace,
			func(ccc tokenCursor) ([]Preprocessable[StructProperty], tokenCursor, *ParseError) {
				return parsePreprocessableList(ccc, TermCloseBrace, parseStructProperty)
			})
		if err2 != nil {
			return nil, cc, err2
		}
		decl := StructDeclaration{Name: name, Open: openIdx, Properties: props, Close: closeIdx}
		return &StructDeclarationStatement{
			stmtBase:    stmtBase{rng: Range{c.tokens[structIdx].Range.Start, cc3.tokens[closeIdx].Range.End}},
			Struct:      structIdx,
			Declaration: decl,
		}, cc3, nil
	})
}

// ---- enums ----

func parseEnumValue(c tokenCursor) (EnumValue, tokenCursor, *ParseError) {
	name, nc, err := c.expectIdentifier()
	if err != nil {
		return EnumValue{}, c, err
	}
	init, nc2, err2 := parseVarInitializer(nc)
	if err2 != nil {
		return EnumValue{}, c, err2.asFatal()
	}
	sep, nc3 := optionalComma(nc2)
	return EnumValue{Name: name, Initializer: init, Separator: sep}, nc3, nil
}

func parseEnumDeclarationStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	enumIdx, nc, _ := c.matchTerminal(TermEnum)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		name, cc2, err := cc.expectIdentifier()
		if err != nil {
			return nil, cc, err
		}
		openIdx, values, closeIdx, cc3, err2 := opens(cc2, TermOpenBrace, CtxEnum, TermCloseBrace,
			func(ccc tokenCursor) ([]Preprocessable[EnumValue], tokenCursor, *ParseError) {
				return parsePreprocessableList(ccc, TermCloseBrace, parseEnumValue)
			})
		if err2 != nil {
			return nil, cc, err2
		}
		decl := EnumDeclaration{Name: name, Open: openIdx, Values: values, Close: closeIdx}
		return &EnumDeclarationStatement{
			stmtBase:    stmtBase{rng: Range{c.tokens[enumIdx].Range.Start, cc3.tokens[closeIdx].Range.End}},
			Enum:        enumIdx,
			Declaration: decl,
		}, cc3, nil
	})
}

// ---- typedef ----

func parseTypedefStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	typedefIdx, nc, _ := c.matchTerminal(TermTypedef)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		name, cc2, err := cc.expectIdentifier()
		if err != nil {
			return nil, cc, err
		}
		assignIdx, cc3, err2 := cc2.expectTerminal(TermAssign)
		if err2 != nil {
			return nil, cc, err2
		}
		typ, cc4, err3 := parseType(cc3)
		if err3 != nil {
			return nil, cc, err3.asFatal()
		}
		semi, cc5 := optionalSemicolon(cc4)
		end := typ.Range().End
		if semi != nil {
			end = cc5.tokens[*semi].Range.End
		}
		return &TypedefStatement{
			stmtBase:  stmtBase{rng: Range{c.tokens[typedefIdx].Range.Start, end}},
			Typedef:   typedefIdx,
			Name:      name,
			Assign:    assignIdx,
			Type:      typ,
			Semicolon: semi,
		}, cc5, nil
	})
}

// ---- rui ----

func parseRuiStatement(c tokenCursor) (Statement, tokenCursor, *ParseError) {
	ruiIdx, nc, _ := c.matchTerminal(TermRui)
	return determines(nc, func(cc tokenCursor) (Statement, tokenCursor, *ParseError) {
		defs, cc2, err := parseRuiRenderDefinitions(cc)
		if err != nil {
			return nil, cc, err
		}
		return &RuiStatement{
			stmtBase:    stmtBase{rng: Range{c.tokens[ruiIdx].Range.Start, defs.Close.toEnd(cc2)}},
			Rui:         ruiIdx,
			Definitions: defs,
		}, cc2, nil
	})
}
