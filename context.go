package sqgs

// ContextType names a syntactic region the parser is currently inside,
// used only to annotate diagnostics ("inside Block opened at 12:4").
type ContextType int

const (
	CtxExpression ContextType = iota
	CtxBlock
	CtxParameters
	CtxArguments
	CtxTableLiteral
	CtxArrayLiteral
	CtxClass
	CtxStruct
	CtxEnum
	CtxTypedef
	CtxFunction
	CtxPreProcessorIf
	CtxRuiRenderDefinitionList
	CtxRuiRenderParameterList
	CtxProperty
	CtxSpan
)

func (c ContextType) String() string {
	switch c {
	case CtxExpression:
		return "expression"
	case CtxBlock:
		return "block"
	case CtxParameters:
		return "parameter list"
	case CtxArguments:
		return "argument list"
	case CtxTableLiteral:
		return "table literal"
	case CtxArrayLiteral:
		return "array literal"
	case CtxClass:
		return "class body"
	case CtxStruct:
		return "struct body"
	case CtxEnum:
		return "enum body"
	case CtxTypedef:
		return "typedef"
	case CtxFunction:
		return "function declaration"
	case CtxPreProcessorIf:
		return "preprocessor conditional"
	case CtxRuiRenderDefinitionList:
		return "rui render definition list"
	case CtxRuiRenderParameterList:
		return "rui render parameter list"
	case CtxProperty:
		return "property"
	case CtxSpan:
		return "span"
	default:
		return "context"
	}
}

// ContextFrame pairs a context kind with the source range that opened it.
type ContextFrame struct {
	Type  ContextType
	Range Range
}

// contextStack is a value-passed stack of ContextFrames. It is passed
// explicitly (never held in thread-local or package-level state) so that
// an alternative branch tried via or_try never leaks frames pushed by a
// failed branch: every push happens on a copy, and the caller simply
// discards the copy on failure.
type contextStack []ContextFrame

// push returns a new stack with frame appended; it never mutates the
// stack it was called on, so callers can freely retry after a failure
// with the original stack still intact.
func (s contextStack) push(frame ContextFrame) contextStack {
	next := make(contextStack, len(s)+1)
	copy(next, s)
	next[len(s)] = frame
	return next
}

// snapshot returns an independent copy, suitable for embedding in an
// error value that must outlive further mutation of the live stack.
func (s contextStack) snapshot() []ContextFrame {
	if len(s) == 0 {
		return nil
	}
	out := make([]ContextFrame, len(s))
	copy(out, s)
	return out
}
