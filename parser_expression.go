package sqgs

// Precedence orders every binary/postfix position the Pratt climber can
// be asked to stop at. The ladder follows spec.md §4.4 exactly; Shift
// has no operators in this dialect's symbol table (there is no `<<`/`>>`)
// but the level is kept so the ladder reads the same as the spec that
// defines it.
type Precedence int

const (
	PrecNone Precedence = iota
	PrecComma
	PrecAssign
	PrecTernary
	PrecLogicalOr
	PrecLogicalAnd
	PrecBitwiseOr
	PrecBitwiseXor
	PrecBitwiseAnd
	PrecEquality
	PrecRelational
	PrecShift
	PrecAdditive
	PrecMultiplicative
	PrecPrefix
	PrecPostfix
)

// binaryOp describes one infix operator's terminal, AST kind, precedence,
// and right-associativity.
type binaryOp struct {
	kind  BinaryOperatorKind
	prec  Precedence
	right bool
}

// binaryOps maps every infix-operator terminal (including assignment, but
// excluding ternary and comma which have dedicated grammar) to its
// operator description. All entries are left-associative except
// assignment, handled via the `right` flag.
var binaryOps = map[Terminal]binaryOp{
	TermAssign:         {OpAssign, PrecAssign, true},
	TermAddEqual:       {OpAddAssign, PrecAssign, true},
	TermSubtractEqual:  {OpSubtractAssign, PrecAssign, true},
	TermMultiplyEqual:  {OpMultiplyAssign, PrecAssign, true},
	TermDivideEqual:    {OpDivideAssign, PrecAssign, true},
	TermModuloEqual:    {OpModuloAssign, PrecAssign, true},
	TermLogicalOr:      {OpLogicalOr, PrecLogicalOr, false},
	TermLogicalAnd:     {OpLogicalAnd, PrecLogicalAnd, false},
	TermBitwiseOr:      {OpBitwiseOr, PrecBitwiseOr, false},
	TermBitwiseXor:     {OpBitwiseXor, PrecBitwiseXor, false},
	TermBitwiseAnd:     {OpBitwiseAnd, PrecBitwiseAnd, false},
	TermEqual:          {OpEqual, PrecEquality, false},
	TermNotEqual:       {OpNotEqual, PrecEquality, false},
	TermLess:           {OpLess, PrecRelational, false},
	TermLessEqual:      {OpLessEqual, PrecRelational, false},
	TermGreater:        {OpGreater, PrecRelational, false},
	TermGreaterEqual:   {OpGreaterEqual, PrecRelational, false},
	TermThreeWay:       {OpThreeWay, PrecRelational, false},
	TermIn:             {OpIn, PrecRelational, false},
	TermAdd:            {OpAdd, PrecAdditive, false},
	TermSubtract:       {OpSubtract, PrecAdditive, false},
	TermMultiply:       {OpMultiply, PrecMultiplicative, false},
	TermDivide:         {OpDivide, PrecMultiplicative, false},
	TermModulo:         {OpModulo, PrecMultiplicative, false},
}

// prefixOps maps a leading-position terminal to the prefix operator it
// introduces.
var prefixOps = map[Terminal]PrefixOperatorKind{
	TermNot:        PrefixNot,
	TermBitwiseNot: PrefixBitwiseNot,
	TermSubtract:   PrefixNegate,
	TermAdd:        PrefixPlus,
	TermIncrement:  PrefixIncrement,
	TermDecrement:  PrefixDecrement,
	TermTypeof:     PrefixTypeof,
	TermClone:      PrefixClone,
	TermDelete:     PrefixDelete,
}

var postfixOps = map[Terminal]PostfixOperatorKind{
	TermIncrement: PostfixIncrement,
	TermDecrement: PostfixDecrement,
}

// lvalueCategory reports whether e is a legal assignment target: Var,
// RootVar, Index, or Property (spec.md §4.4, "Assignment").
func lvalueCategory(e Expression) bool {
	switch e.(type) {
	case *VarExpression, *RootVarExpression, *IndexExpression, *PropertyExpression:
		return true
	default:
		return false
	}
}

// parseExpression is the Pratt climber's entry point: it parses an atom,
// then repeatedly folds in suffixes (call/index/property/postfix) and
// binary/ternary/comma operators whose precedence is >= minPrec.
func parseExpression(c tokenCursor, minPrec Precedence) (Expression, tokenCursor, *ParseError) {
	left, c, err := parseUnary(c)
	if err != nil {
		return nil, c, err
	}
	return parseExpressionSuffixes(c, left, minPrec)
}

// parseUnary parses a prefix operator (if present) followed by a unary
// expression, else falls through to an atom with its own postfix suffix
// loop (so `a.b++` parses the property first, then the postfix).
func parseUnary(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	tok, ok := c.current()
	if ok && tok.Type == TokenTerminal {
		if kind, isPrefix := prefixOps[tok.Terminal]; isPrefix {
			opIdx := TokenIndex(c.idx)
			nc := c.advance()
			value, nc2, err := parseUnary(nc)
			if err != nil {
				return nil, c, err.asFatal()
			}
			return &PrefixExpression{
				exprBase: exprBase{rng: Range{tok.Range.Start, value.Range().End}},
				Operator: PrefixOperator{Token: opIdx, Kind: kind},
				Value:    value,
			}, nc2, nil
		}
	}
	atom, nc, err := parseAtom(c)
	if err != nil {
		return nil, c, err
	}
	return parsePostfixSuffixes(nc, atom)
}

// parsePostfixSuffixes applies `.`, `[...]`, `(...)`, `++`/`--` in a loop
// immediately after an atom, before any binary operator is considered —
// these bind tighter than anything else in the grammar.
func parsePostfixSuffixes(c tokenCursor, left Expression) (Expression, tokenCursor, *ParseError) {
	for {
		tok, ok := c.current()
		if !ok || tok.Type != TokenTerminal {
			return left, c, nil
		}
		switch tok.Terminal {
		case TermDot:
			dotIdx := TokenIndex(c.idx)
			nc := c.advance()
			name, nc2, perr := nc.expectMethodIdentifier()
			if perr != nil {
				return nil, c, perr.asFatal()
			}
			left = &PropertyExpression{
				exprBase: exprBase{rng: Range{left.Range().Start, c.tokens[name.Token].Range.End}},
				Base:     left,
				Dot:      dotIdx,
				Property: name,
			}
			c = nc2
		case TermOpenSquare:
			openIdx, body, closeIdx, nc, perr := opens(c, TermOpenSquare, CtxExpression, TermCloseSquare,
				func(cc tokenCursor) (Expression, tokenCursor, *ParseError) {
					return parseExpression(cc, PrecNone)
				})
			if perr != nil {
				return nil, c, perr
			}
			left = &IndexExpression{
				exprBase: exprBase{rng: Range{left.Range().Start, c.tokens[closeIdx].Range.End}},
				Base:     left,
				Open:     openIdx,
				Index:    body,
				Close:    closeIdx,
			}
			c = nc
		case TermOpenBracket:
			call, nc, perr := parseCallSuffix(c, left)
			if perr != nil {
				return nil, c, perr
			}
			left, c = call, nc
		case TermIncrement, TermDecrement:
			kind := postfixOps[tok.Terminal]
			opIdx := TokenIndex(c.idx)
			nc := c.advance()
			left = &PostfixExpression{
				exprBase: exprBase{rng: Range{left.Range().Start, tok.Range.End}},
				Value:    left,
				Operator: PostfixOperator{Token: opIdx, Kind: kind},
			}
			c = nc
		default:
			return left, c, nil
		}
	}
}

// parseCallSuffix parses `(` args `)`, followed by an optional trailing
// table post-initializer with no intervening operator (spec.md §9,
// "Trailing-table call argument").
func parseCallSuffix(c tokenCursor, fn Expression) (Expression, tokenCursor, *ParseError) {
	openIdx, args, closeIdx, nc, err := opens(c, TermOpenBracket, CtxArguments, TermCloseBracket,
		func(cc tokenCursor) (SeparatedListTrailing0[Expression], tokenCursor, *ParseError) {
			return separatedListTrailing0(cc, TermComma, func(ccc tokenCursor) (Expression, tokenCursor, *ParseError) {
				return parseExpression(ccc, PrecComma+1)
			})
		})
	if err != nil {
		return nil, c, err
	}
	call := &CallExpression{
		Function:  fn,
		Open:      openIdx,
		Arguments: args,
		Close:     closeIdx,
	}
	end := c.tokens[closeIdx].Range.End
	if nc.peekTerminal(TermOpenBrace) {
		table, nc2, terr := parseTableExpression(nc)
		if terr != nil {
			return nil, c, terr
		}
		call.PostInitializer = table
		end = table.Range().End
		nc = nc2
	}
	call.exprBase = exprBase{rng: Range{fn.Range().Start, end}}
	return call, nc, nil
}

// parseExpressionSuffixes folds binary operators, ternary, and comma into
// left via standard precedence climbing, stopping once the next
// operator's precedence is below minPrec.
func parseExpressionSuffixes(c tokenCursor, left Expression, minPrec Precedence) (Expression, tokenCursor, *ParseError) {
	for {
		tok, ok := c.current()
		if !ok || tok.Type != TokenTerminal {
			return left, c, nil
		}

		if tok.Terminal == TermQuestion && PrecTernary >= minPrec {
			qIdx := TokenIndex(c.idx)
			nc := c.advance()
			trueVal, nc2, err := parseExpression(nc, PrecTernary)
			if err != nil {
				return nil, c, err.asFatal()
			}
			colonIdx, nc3, err := nc2.expectTerminal(TermColon)
			if err != nil {
				return nil, c, err.asFatal()
			}
			falseVal, nc4, err := parseExpression(nc3, PrecTernary)
			if err != nil {
				return nil, c, err.asFatal()
			}
			left = &TernaryExpression{
				exprBase:  exprBase{rng: Range{left.Range().Start, falseVal.Range().End}},
				Condition: left,
				Question:  qIdx,
				True:      trueVal,
				Colon:     colonIdx,
				False:     falseVal,
			}
			c = nc4
			continue
		}

		if tok.Terminal == TermComma && PrecComma >= minPrec {
			list := SeparatedList1[Expression]{Items: []Expression{left}}
			for {
				sepIdx, nc, ok := c.matchTerminal(TermComma)
				if !ok {
					break
				}
				next, nc2, err := parseExpression(nc, PrecComma+1)
				if err != nil {
					return nil, c, err.asFatal()
				}
				list.Separators = append(list.Separators, sepIdx)
				list.Items = append(list.Items, next)
				c = nc2
			}
			last := list.Items[len(list.Items)-1]
			return &CommaExpression{
				exprBase: exprBase{rng: Range{left.Range().Start, last.Range().End}},
				Values:   list,
			}, c, nil
		}

		op, isBinary := binaryOps[tok.Terminal]
		if !isBinary || op.prec < minPrec {
			return left, c, nil
		}
		if op.kind.IsAssignment() && !lvalueCategory(left) {
			return nil, c, c.errorAt(ErrInvalidAssignmentTarget)
		}
		opIdx := TokenIndex(c.idx)
		nc := c.advance()
		nextMin := op.prec + 1
		if op.right {
			nextMin = op.prec
		}
		right, nc2, err := parseExpression(nc, nextMin)
		if err != nil {
			return nil, c, err.asFatal()
		}
		left = &BinaryExpression{
			exprBase: exprBase{rng: Range{left.Range().Start, right.Range().End}},
			Left:     left,
			Operator: BinaryOperator{Token: opIdx, Kind: op.kind},
			Right:    right,
		}
		c = nc
	}
}

// parseAtom parses everything with no operator at its own top level:
// literals, identifiers, parens, table/array/class/function literals,
// delegate, vector, expect.
func parseAtom(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	tok, ok := c.current()
	if !ok {
		return nil, c, c.errorAt(ErrExpectedExpression)
	}

	switch tok.Type {
	case TokenLiteralTok:
		idx := TokenIndex(c.idx)
		return &LiteralExpression{
			exprBase: exprBase{rng: tok.Range},
			Literal:  tok.Literal,
			Token:    idx,
		}, c.advance(), nil
	case TokenIdentifier:
		name, nc, _ := c.matchIdentifier()
		return &VarExpression{exprBase: exprBase{rng: tok.Range}, Name: name}, nc, nil
	}

	if tok.Type != TokenTerminal {
		return nil, c, c.errorAt(ErrExpectedExpression)
	}

	switch tok.Terminal {
	case TermOpenBracket:
		openIdx, value, closeIdx, nc, err := opens(c, TermOpenBracket, CtxExpression, TermCloseBracket,
			func(cc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(cc, PrecNone) })
		if err != nil {
			return nil, c, err
		}
		return &ParensExpression{
			exprBase: exprBase{rng: Range{tok.Range.Start, c.tokens[closeIdx].Range.End}},
			Open:     openIdx,
			Value:    value,
			Close:    closeIdx,
		}, nc, nil
	case TermNamespace:
		rootIdx := TokenIndex(c.idx)
		nc := c.advance()
		name, nc2, err := nc.expectIdentifier()
		if err != nil {
			return nil, c, err.asFatal()
		}
		return &RootVarExpression{
			exprBase: exprBase{rng: Range{tok.Range.Start, nc.tokens[name.Token].Range.End}},
			Root:     rootIdx,
			Name:     name,
		}, nc2, nil
	case TermOpenBrace:
		return parseTableExpressionAsExpr(c)
	case TermOpenSquare:
		return parseArrayExpression(c)
	case TermClass:
		return parseClassExpr(c)
	case TermFunction:
		return parseFunctionExpr(c, nil)
	case TermDelegate:
		return parseDelegateExpression(c)
	case TermExpect:
		return parseExpectExpression(c)
	case TermLess:
		if v, nc, verr, ok := tryParseVectorExpression(c); verr != nil {
			return nil, c, verr
		} else if ok {
			return v, nc, nil
		}
	case TermTypeof, TermClone, TermDelete, TermNot, TermBitwiseNot, TermSubtract, TermAdd, TermIncrement, TermDecrement:
		// handled in parseUnary; reaching here means parseAtom was called
		// directly (e.g. from vector lookahead) on a prefix position.
		return parseUnary(c)
	}

	// A leading type name immediately followed by `function` is a typed
	// function expression (`int function(...)  {...}`).
	if typ, nc, ok := maybeParseTypedFunctionLead(c); ok {
		return parseFunctionExpr(nc, typ)
	}

	return nil, c, c.errorAt(ErrExpectedExpression)
}

// maybeParseTypedFunctionLead recognizes `Type function` at atom position
// without committing: it backtracks entirely if `function` does not
// follow a parsed type.
func maybeParseTypedFunctionLead(c tokenCursor) (Type, tokenCursor, bool) {
	typ, nc, err := parseType(c)
	if err != nil {
		return nil, c, false
	}
	if !nc.peekTerminal(TermFunction) {
		return nil, c, false
	}
	return typ, nc, true
}

// tryParseVectorExpression implements the bounded-lookahead disambiguation
// from spec.md §9: `<` at atom position starts a VectorExpression only if,
// after committing past the first `,`, the parse completes as three
// comma-separated expressions followed by `>`. Failure before that commit
// point backtracks cleanly (returns ok == false, err == nil) and lets the
// caller treat `<` as something else. Once the first `,` has matched,
// any further failure is returned as a fatal *ParseError carrying the
// deepest index actually reached — the caller must propagate it rather
// than discard it and fall back to a generic "expected an expression"
// pointing at the opening `<`.
func tryParseVectorExpression(c tokenCursor) (Expression, tokenCursor, *ParseError, bool) {
	openTok, _ := c.current()
	openIdx, nc, ok := c.matchTerminal(TermLess)
	if !ok {
		return nil, c, nil, false
	}
	x, nc2, err := parseExpression(nc, PrecComma+1)
	if err != nil {
		return nil, c, nil, false
	}
	comma1, nc3, ok := nc2.matchTerminal(TermComma)
	if !ok {
		return nil, c, nil, false
	}
	// Commit point: a `<` followed by an expression and a `,` is
	// overwhelmingly a vector literal in this grammar (comparisons are
	// never chained through a bare comma at this position), so failures
	// from here on are fatal rather than a silent fallback to `<`.
	y, nc4, err := parseExpression(nc3, PrecComma+1)
	if err != nil {
		return nil, c, err.asFatal(), false
	}
	comma2, nc5, ok := nc4.matchTerminal(TermComma)
	if !ok {
		return nil, c, nc4.errorExpectedTerminal(TermComma).asFatal(), false
	}
	z, nc6, err := parseExpression(nc5, PrecComma+1)
	if err != nil {
		return nil, c, err.asFatal(), false
	}
	closeIdx, nc7, ok := nc6.matchTerminal(TermGreater)
	if !ok {
		return nil, c, nc6.errorExpectedTerminal(TermGreater).asFatal(), false
	}
	return &VectorExpression{
		exprBase: exprBase{rng: Range{openTok.Range.Start, nc7.tokens[closeIdx].Range.End}},
		Open:     openIdx,
		X:        x,
		Comma1:   comma1,
		Y:        y,
		Comma2:   comma2,
		Z:        z,
		Close:    closeIdx,
	}, nc7, nil, true
}

func parseDelegateExpression(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	delegateIdx, nc, _ := c.matchTerminal(TermDelegate)
	parent, nc2, err := parseExpression(nc, PrecTernary+1)
	if err != nil {
		return nil, c, err.asFatal()
	}
	colonIdx, nc3, err := nc2.expectTerminal(TermColon)
	if err != nil {
		return nil, c, err.asFatal()
	}
	value, nc4, err := parseExpression(nc3, PrecComma+1)
	if err != nil {
		return nil, c, err.asFatal()
	}
	return &DelegateExpression{
		exprBase: exprBase{rng: Range{c.tokens[delegateIdx].Range.Start, value.Range().End}},
		Delegate: delegateIdx,
		Parent:   parent,
		Colon:    colonIdx,
		Value:    value,
	}, nc4, nil
}

func parseExpectExpression(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	expectIdx, nc, _ := c.matchTerminal(TermExpect)
	typ, nc2, err := parseType(nc)
	if err != nil {
		return nil, c, err.asFatal()
	}
	openIdx, value, closeIdx, nc3, perr := opens(nc2, TermOpenBracket, CtxExpression, TermCloseBracket,
		func(cc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(cc, PrecNone) })
	if perr != nil {
		return nil, c, perr.asFatal()
	}
	return &ExpectExpression{
		exprBase: exprBase{rng: Range{c.tokens[expectIdx].Range.Start, c.tokens[closeIdx].Range.End}},
		Expect:   expectIdx,
		Type:     typ,
		Open:     openIdx,
		Value:    value,
		Close:    closeIdx,
	}, nc3, nil
}

func parseClassExpr(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	classIdx, nc, _ := c.matchTerminal(TermClass)
	decl, nc2, err := parseClassDeclaration(nc)
	if err != nil {
		return nil, c, err
	}
	return &ClassExpression{
		exprBase:    exprBase{rng: Range{c.tokens[classIdx].Range.Start, decl.Close.toEnd(nc2)}},
		Class:       classIdx,
		Declaration: decl,
	}, nc2, nil
}

// toEnd resolves a TokenIndex to the end offset of its token's range,
// given the cursor (any cursor sharing the same tokens slice works).
func (ti TokenIndex) toEnd(c tokenCursor) int { return c.tokens[ti].Range.End }
func (ti TokenIndex) toStart(c tokenCursor) int { return c.tokens[ti].Range.Start }

func parseFunctionExpr(c tokenCursor, returnType Type) (Expression, tokenCursor, *ParseError) {
	funcIdx, nc, ok := c.matchTerminal(TermFunction)
	if !ok {
		return nil, c, c.errorExpectedTerminal(TermFunction)
	}
	decl, nc2, err := parseFunctionDeclaration(nc, false)
	if err != nil {
		return nil, c, err.asFatal()
	}
	start := c.tokens[funcIdx].Range.Start
	if returnType != nil {
		start = returnType.Range().Start
	}
	return &FunctionExpression{
		exprBase:   exprBase{rng: Range{start, decl.Body.Range().End}},
		ReturnType: returnType,
		Function:   funcIdx,
		Declaration: decl,
	}, nc2, nil
}

// ---- Types ----

func parseType(c tokenCursor) (Type, tokenCursor, *ParseError) {
	base, nc, err := parseBaseType(c)
	if err != nil {
		return nil, c, err
	}
	return parseTypeSuffixes(nc, base)
}

func parseBaseType(c tokenCursor) (Type, tokenCursor, *ParseError) {
	tok, ok := c.current()
	if ok && tok.Type == TokenTerminal && tok.Terminal == TermFunctionRef {
		refIdx := TokenIndex(c.idx)
		nc := c.advance()
		openIdx, params, closeIdx, nc2, err := opens(nc, TermOpenBracket, CtxParameters, TermCloseBracket,
			func(cc tokenCursor) (SeparatedListTrailing0[Type], tokenCursor, *ParseError) {
				return separatedListTrailing0(cc, TermComma, parseType)
			})
		if err != nil {
			return nil, c, err.asFatal()
		}
		return &FunctionRefType{
			typeBase:    typeBase{rng: Range{tok.Range.Start, nc2.tokens[closeIdx].Range.End}},
			FunctionRef: refIdx,
			Open:        openIdx,
			ParamTypes:  params,
			Close:       closeIdx,
		}, nc2, nil
	}

	name, nc, ok := c.matchIdentifier()
	if !ok {
		return nil, c, c.errorAt(ErrExpectedType)
	}
	if openIdx, nc2, ok := nc.matchTerminal(TermLess); ok {
		args, nc3, err := separatedList1(nc2, TermComma, parseType)
		if err != nil {
			return nil, c, err.asFatal()
		}
		closeIdx, nc4, cerr := nc3.expectTerminal(TermGreater)
		if cerr != nil {
			return nil, c, cerr.asFatal()
		}
		return &GenericType{
			typeBase: typeBase{rng: Range{tok.Range.Start, nc4.tokens[closeIdx].Range.End}},
			Name:     name,
			Open:     openIdx,
			Args:     args,
			Close:    closeIdx,
		}, nc4, nil
	}
	return &NamedType{typeBase: typeBase{rng: tok.Range}, Name: name}, nc, nil
}

// parseTypeSuffixes applies `[]` (array) and `ornull` (nullable) suffixes,
// left-to-right, any number of times.
func parseTypeSuffixes(c tokenCursor, t Type) (Type, tokenCursor, *ParseError) {
	for {
		if openIdx, nc, ok := c.matchTerminal(TermOpenSquare); ok {
			closeIdx, nc2, err := nc.expectTerminal(TermCloseSquare)
			if err != nil {
				return nil, c, err.asFatal()
			}
			t = &ArrayType{
				typeBase: typeBase{rng: Range{t.Range().Start, nc2.tokens[closeIdx].Range.End}},
				Element:  t,
				Open:     openIdx,
				Close:    closeIdx,
			}
			c = nc2
			continue
		}
		if orNullIdx, nc, ok := c.matchTerminal(TermOrNull); ok {
			t = &NullableType{
				typeBase: typeBase{rng: Range{t.Range().Start, c.tokens[orNullIdx].Range.End}},
				Inner:    t,
				OrNull:   orNullIdx,
			}
			c = nc
			continue
		}
		return t, c, nil
	}
}

// ---- Table / Array literals ----

func parseTableExpressionAsExpr(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	t, nc, err := parseTableExpression(c)
	if err != nil {
		return nil, c, err
	}
	return t, nc, nil
}

func parseTableExpression(c tokenCursor) (*TableExpression, tokenCursor, *ParseError) {
	type tableBody struct {
		slots  []TableSlot
		spread *TokenIndex
	}
	openIdx, body, closeIdx, nc, err := opens(c, TermOpenBrace, CtxTableLiteral, TermCloseBrace,
		func(cc tokenCursor) (tableBody, tokenCursor, *ParseError) {
			slots, cc2, serr := parsePreprocessableList(cc, TermCloseBrace, parseTableSlotEntry)
			if serr != nil {
				return tableBody{}, cc, serr
			}
			spread, cc3 := optionalSpread(cc2)
			return tableBody{slots: slots, spread: spread}, cc3, nil
		})
	if err != nil {
		return nil, c, err
	}
	return &TableExpression{
		exprBase: exprBase{rng: Range{c.tokens[openIdx].Range.Start, nc.tokens[closeIdx].Range.End}},
		Open:     openIdx,
		Slots:    body.slots,
		Spread:   body.spread,
		Close:    closeIdx,
	}, nc, nil
}

// optionalSpread matches a trailing `...` marker (spec.md §9's "spread"
// slot/value), letting a table or array literal declare itself open to
// additional dynamically-supplied entries at runtime.
func optionalSpread(c tokenCursor) (*TokenIndex, tokenCursor) {
	if idx, nc, ok := c.matchTerminal(TermEllipsis); ok {
		return &idx, nc
	}
	return nil, c
}

func parseTableSlotEntry(c tokenCursor) (TableSlotEntry, tokenCursor, *ParseError) {
	return orTry(c,
		parseJSONPropertySlot,
		parseComputedSlot,
		parseFunctionSlot,
		parseNamedSlot,
	)
}

func parseJSONPropertySlot(c tokenCursor) (TableSlotEntry, tokenCursor, *ParseError) {
	tok, ok := c.current()
	if !ok || tok.Type != TokenLiteralTok || tok.Literal.Kind != LiteralString {
		return TableSlotEntry{}, c, c.errorAt(ErrExpectedTableSlot)
	}
	lit := tok.Literal
	nc := c.advance()
	colonIdx, nc2, err := nc.expectTerminal(TermColon)
	if err != nil {
		return TableSlotEntry{}, c, err
	}
	value, nc3, err := parseExpression(nc2, PrecComma+1)
	if err != nil {
		return TableSlotEntry{}, c, err.asFatal()
	}
	sep, nc4, _ := nc3.matchTerminal(TermComma)
	_ = sep
	return TableSlotEntry{
		Kind:       SlotNamed,
		NameString: &lit,
		Assign:     colonIdx,
		Value:      value,
	}, nc4, nil
}

func parseComputedSlot(c tokenCursor) (TableSlotEntry, tokenCursor, *ParseError) {
	openIdx, index, closeIdx, nc, err := opens(c, TermOpenSquare, CtxExpression, TermCloseSquare,
		func(cc tokenCursor) (Expression, tokenCursor, *ParseError) { return parseExpression(cc, PrecNone) })
	if err != nil {
		return TableSlotEntry{}, c, err
	}
	assignIdx, nc2, aerr := nc.expectTerminal(TermAssign)
	if aerr != nil {
		return TableSlotEntry{}, c, aerr.asFatal()
	}
	value, nc3, verr := parseExpression(nc2, PrecComma+1)
	if verr != nil {
		return TableSlotEntry{}, c, verr.asFatal()
	}
	nc4, _, _ := matchOptional(nc3, TermComma)
	return TableSlotEntry{
		Kind:          SlotComputed,
		ComputedOpen:  openIdx,
		Computed:      index,
		ComputedClose: closeIdx,
		Assign:        assignIdx,
		Value:         value,
	}, nc4, nil
}

func parseFunctionSlot(c tokenCursor) (TableSlotEntry, tokenCursor, *ParseError) {
	funcIdx, nc, ok := c.matchTerminal(TermFunction)
	if !ok {
		return TableSlotEntry{}, c, c.errorExpectedTerminal(TermFunction)
	}
	decl, nc2, err := parseFunctionDeclaration(nc, true)
	if err != nil {
		return TableSlotEntry{}, c, err.asFatal()
	}
	nc3, _, _ := matchOptional(nc2, TermComma)
	return TableSlotEntry{Kind: SlotFunction, Function: funcIdx, FunctionDecl: decl}, nc3, nil
}

func parseNamedSlot(c tokenCursor) (TableSlotEntry, tokenCursor, *ParseError) {
	name, nc, err := c.expectMethodIdentifier()
	if err != nil {
		return TableSlotEntry{}, c, err
	}
	assignIdx, nc2, aerr := nc.expectTerminal(TermAssign)
	if aerr != nil {
		return TableSlotEntry{}, c, aerr.asFatal()
	}
	value, nc3, verr := parseExpression(nc2, PrecComma+1)
	if verr != nil {
		return TableSlotEntry{}, c, verr.asFatal()
	}
	nc4, _, _ := matchOptional(nc3, TermComma)
	return TableSlotEntry{Kind: SlotNamed, Name: name, Assign: assignIdx, Value: value}, nc4, nil
}

// expectMethodIdentifier accepts a plain identifier or one of the small
// set of reserved words the grammar allows as a member/slot name
// (`constructor`, `static`, etc.), matching the original's
// `method_identifier` which is a superset of `identifier`.
func (c tokenCursor) expectMethodIdentifier() (MethodIdentifier, tokenCursor, *ParseError) {
	tok, ok := c.current()
	if !ok {
		return MethodIdentifier{}, c, c.errorAt(ErrExpectedIdentifier)
	}
	if tok.Type == TokenIdentifier {
		return MethodIdentifier{Token: TokenIndex(c.idx), Name: tok.Identifier}, c.advance(), nil
	}
	if tok.Type == TokenTerminal {
		switch tok.Terminal {
		case TermConstructor, TermStatic, TermInstanceof:
			return MethodIdentifier{Token: TokenIndex(c.idx), Name: tok.Terminal.String()}, c.advance(), nil
		}
	}
	return MethodIdentifier{}, c, c.errorAt(ErrExpectedIdentifier)
}

func matchOptional(c tokenCursor, t Terminal) (tokenCursor, TokenIndex, bool) {
	idx, nc, ok := c.matchTerminal(t)
	if !ok {
		return c, 0, false
	}
	return nc, idx, true
}

func parseArrayExpression(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	type arrayBody struct {
		values []ArrayValue
		spread *TokenIndex
	}
	openIdx, body, closeIdx, nc, err := opens(c, TermOpenSquare, CtxArrayLiteral, TermCloseSquare,
		func(cc tokenCursor) (arrayBody, tokenCursor, *ParseError) {
			values, cc2, verr := parsePreprocessableList(cc, TermCloseSquare, parseArrayValueEntry)
			if verr != nil {
				return arrayBody{}, cc, verr
			}
			spread, cc3 := optionalSpread(cc2)
			return arrayBody{values: values, spread: spread}, cc3, nil
		})
	if err != nil {
		return nil, c, err
	}
	return &ArrayExpression{
		exprBase: exprBase{rng: Range{c.tokens[openIdx].Range.Start, nc.tokens[closeIdx].Range.End}},
		Open:     openIdx,
		Values:   body.values,
		Spread:   body.spread,
		Close:    closeIdx,
	}, nc, nil
}

func parseArrayValueEntry(c tokenCursor) (Expression, tokenCursor, *ParseError) {
	value, nc, err := parseExpression(c, PrecComma+1)
	if err != nil {
		return nil, c, err
	}
	nc2, _, _ := matchOptional(nc, TermComma)
	return value, nc2, nil
}
