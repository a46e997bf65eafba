package sqgs

// parseRuiRenderDefinitions parses `[` RenderDefinition* `]`, the body of
// a `rui` statement (spec.md's RUI render-definition-list extension),
// grounded on the original grammar's `rui.rs` render_definition_list.
func parseRuiRenderDefinitions(c tokenCursor) (RenderDefinitionList, tokenCursor, *ParseError) {
	openIdx, defs, closeIdx, nc, err := opens(c, TermOpenSquare, CtxRuiRenderDefinitionList, TermCloseSquare,
		func(cc tokenCursor) ([]RenderDefinition, tokenCursor, *ParseError) {
			var out []RenderDefinition
			for !cc.isEnded() && !cc.peekTerminal(TermCloseSquare) {
				def, nc2, derr := parseRenderDefinition(cc)
				if derr != nil {
					return out, cc, derr
				}
				out = append(out, def)
				cc = nc2
			}
			return out, cc, nil
		})
	if err != nil {
		return RenderDefinitionList{}, c, err
	}
	return RenderDefinitionList{Open: openIdx, Definitions: defs, Close: closeIdx}, nc, nil
}

// parseRenderDefinition parses `Type` `Identifier` RenderParentClause
// RenderParameters (spec.md's `type ident <parent> { params }` shape).
func parseRenderDefinition(c tokenCursor) (RenderDefinition, tokenCursor, *ParseError) {
	typ, nc, err := parseType(c)
	if err != nil {
		return RenderDefinition{}, c, err
	}
	return determines(nc, func(cc tokenCursor) (RenderDefinition, tokenCursor, *ParseError) {
		name, cc2, err2 := cc.expectIdentifier()
		if err2 != nil {
			return RenderDefinition{}, cc, err2
		}
		parent, cc3, err3 := parseRenderParentClause(cc2)
		if err3 != nil {
			return RenderDefinition{}, cc, err3
		}
		params, cc4, err4 := parseRenderParameters(cc3)
		if err4 != nil {
			return RenderDefinition{}, cc, err4
		}
		return RenderDefinition{Type: typ, Name: name, Parent: parent, Params: params}, cc4, nil
	})
}

// parseRenderParentClause parses `<` RenderParent `>`. Inside the angle
// brackets `<`/`>` are always brackets, never the comparison/vector
// operators they can be elsewhere in the grammar — there is no
// lookahead ambiguity here the way there is for VectorExpression,
// because a render definition's parent clause always follows an
// identifier at a position no expression can occupy.
func parseRenderParentClause(c tokenCursor) (RenderParentClause, tokenCursor, *ParseError) {
	openIdx, parent, closeIdx, nc, err := opens(c, TermLess, CtxSpan, TermGreater,
		parseRenderParent)
	if err != nil {
		return RenderParentClause{}, c, err
	}
	return RenderParentClause{Open: openIdx, Parent: parent, Close: closeIdx}, nc, nil
}

func parseRenderParent(c tokenCursor) (RenderParent, tokenCursor, *ParseError) {
	if idx, nc, ok := c.matchTerminal(TermSelf); ok {
		return RenderParent{Kind: RenderParentSelf, Token: idx}, nc, nil
	}
	if idx, nc, ok := c.matchTerminal(TermTopology); ok {
		return RenderParent{Kind: RenderParentTopology, Token: idx}, nc, nil
	}
	if name, nc, ok := c.matchIdentifier(); ok {
		return RenderParent{Kind: RenderParentIdentifier, Identifier: name}, nc, nil
	}
	return RenderParent{}, c, c.errorAt(ErrExpectedRuiParent)
}

// parseRenderParameters parses `{` SeparatedListTrailing0<RenderParameter,`,`> `}`.
func parseRenderParameters(c tokenCursor) (RenderParameters, tokenCursor, *ParseError) {
	openIdx, params, closeIdx, nc, err := opens(c, TermOpenBrace, CtxRuiRenderParameterList, TermCloseBrace,
		func(cc tokenCursor) (SeparatedListTrailing0[RenderParameter], tokenCursor, *ParseError) {
			return separatedListTrailing0(cc, TermComma, parseRenderParameter)
		})
	if err != nil {
		return RenderParameters{}, c, err
	}
	return RenderParameters{Open: openIdx, Params: params, Close: closeIdx}, nc, nil
}

// parseRenderParameter parses `Identifier` `=` `Expression` — unlike a
// VarInitializer elsewhere in the grammar, the `=` value is mandatory
// here: a render parameter with no value is meaningless.
func parseRenderParameter(c tokenCursor) (RenderParameter, tokenCursor, *ParseError) {
	name, nc, err := c.expectIdentifier()
	if err != nil {
		return RenderParameter{}, c, err
	}
	return determines(nc, func(cc tokenCursor) (RenderParameter, tokenCursor, *ParseError) {
		assignIdx, cc2, err2 := cc.expectTerminal(TermAssign)
		if err2 != nil {
			return RenderParameter{}, cc, err2
		}
		value, cc3, err3 := parseExpression(cc2, PrecComma+1)
		if err3 != nil {
			return RenderParameter{}, cc, err3
		}
		return RenderParameter{Name: name, Initializer: VarInitializer{Assign: assignIdx, Value: value}}, cc3, nil
	})
}
