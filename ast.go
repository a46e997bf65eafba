package sqgs

// TokenIndex refers to a position in the token slice returned by
// Tokenize. The AST borrows tokens by index rather than by pointer so
// that a Program can be copied or compared without pinning a particular
// token slice's address, while still letting any consumer recover the
// exact source text and trivia for a node by indexing back into the
// slice it was parsed from.
type TokenIndex int

// Identifier is a plain name token: `[A-Za-z_][A-Za-z0-9_]*` that did not
// match a reserved word.
type Identifier struct {
	Token TokenIndex
	Name  string
}

// MethodIdentifier is a name appearing immediately after `.`, where a
// handful of reserved words (constructor, static, ...) are permitted as
// member names in addition to plain identifiers.
type MethodIdentifier struct {
	Token TokenIndex
	Name  string
}

// SeparatedList1 is a nonempty list of items with the separator token
// between each adjacent pair retained, so the AST can tell `a,b` from
// `a ,  b` if a caller cares.
type SeparatedList1[T any] struct {
	Items      []T
	Separators []TokenIndex // len(Separators) == len(Items)-1
}

// SeparatedListTrailing0 is a possibly-empty list of items with an
// optional trailing separator retained.
type SeparatedListTrailing0[T any] struct {
	Items      []T
	Separators []TokenIndex // one per item that was followed by a separator
	Trailing   bool         // true if the list ends in a dangling separator
}

// Range is implemented by every AST node so that callers can locate a
// node in the source without re-deriving its span from child nodes.
type hasRange interface {
	Range() Range
}

// ---- Expressions ----

// Expression is the common interface satisfied by every expression node.
// It mirrors the original grammar's Expression enum as a Go interface
// with one implementing struct per variant, the same shape the teacher
// uses for INode/IEvaluator (parser.go).
type Expression interface {
	hasRange
	expressionNode()
}

type exprBase struct{ rng Range }

func (e exprBase) Range() Range    { return e.rng }
func (exprBase) expressionNode()   {}

// ParensExpression is `(` Expression `)`.
type ParensExpression struct {
	exprBase
	Open  TokenIndex
	Value Expression
	Close TokenIndex
}

// LiteralExpression is an Int | Char | Float | string literal token.
type LiteralExpression struct {
	exprBase
	Literal Literal
	Token   TokenIndex
}

// VarExpression is a bare identifier reference.
type VarExpression struct {
	exprBase
	Name Identifier
}

// RootVarExpression is `::` Identifier, a namespace-rooted reference.
type RootVarExpression struct {
	exprBase
	Root TokenIndex
	Name Identifier
}

// IndexExpression is Expression `[` Expression `]`.
type IndexExpression struct {
	exprBase
	Base  Expression
	Open  TokenIndex
	Index Expression
	Close TokenIndex
}

// PropertyExpression is Expression `.` MethodIdentifier.
type PropertyExpression struct {
	exprBase
	Base     Expression
	Dot      TokenIndex
	Property MethodIdentifier
}

// TernaryExpression is Expression `?` Expression `:` Expression.
type TernaryExpression struct {
	exprBase
	Condition Expression
	Question  TokenIndex
	True      Expression
	Colon     TokenIndex
	False     Expression
}

// BinaryOperatorKind enumerates every infix operator, including
// assignment: assignment is parsed at the Assign precedence level like
// any other binary operator, and validated for a legal l-value target
// after the fact (see parser_expression.go).
type BinaryOperatorKind int

const (
	OpAdd BinaryOperatorKind = iota
	OpSubtract
	OpMultiply
	OpDivide
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpLessEqual
	OpGreater
	OpGreaterEqual
	OpThreeWay
	OpLogicalAnd
	OpLogicalOr
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpIn
	OpAssign
	OpAddAssign
	OpSubtractAssign
	OpMultiplyAssign
	OpDivideAssign
	OpModuloAssign
)

// IsAssignment reports whether this operator requires its left operand
// to be an l-value.
func (k BinaryOperatorKind) IsAssignment() bool {
	switch k {
	case OpAssign, OpAddAssign, OpSubtractAssign, OpMultiplyAssign, OpDivideAssign, OpModuloAssign:
		return true
	default:
		return false
	}
}

type BinaryOperator struct {
	Token TokenIndex
	Kind  BinaryOperatorKind
}

// BinaryExpression is Expression BinaryOperator Expression.
type BinaryExpression struct {
	exprBase
	Left     Expression
	Operator BinaryOperator
	Right    Expression
}

type PrefixOperatorKind int

const (
	PrefixNot PrefixOperatorKind = iota
	PrefixBitwiseNot
	PrefixNegate
	PrefixPlus
	PrefixIncrement
	PrefixDecrement
	PrefixTypeof
	PrefixClone
	PrefixDelete
)

type PrefixOperator struct {
	Token TokenIndex
	Kind  PrefixOperatorKind
}

// PrefixExpression is PrefixOperator Expression.
type PrefixExpression struct {
	exprBase
	Operator PrefixOperator
	Value    Expression
}

type PostfixOperatorKind int

const (
	PostfixIncrement PostfixOperatorKind = iota
	PostfixDecrement
)

type PostfixOperator struct {
	Token TokenIndex
	Kind  PostfixOperatorKind
}

// PostfixExpression is Expression PostfixOperator.
type PostfixExpression struct {
	exprBase
	Value    Expression
	Operator PostfixOperator
}

// CommaExpression is SeparatedList1<Expression, `,`>, produced only at
// the Comma precedence's own entry point so a nested call argument list
// (which also uses commas but at a tighter precedence) is never folded
// into one.
type CommaExpression struct {
	exprBase
	Values SeparatedList1[Expression]
}

// TableSlotKind discriminates the forms a `{ ... }` table literal slot
// can take.
type TableSlotKind int

const (
	// SlotNamed is `name = value` or `"string" = value`.
	SlotNamed TableSlotKind = iota
	// SlotComputed is `[expr] = value`.
	SlotComputed
	// SlotFunction is `function name(...) { ... }` (method shorthand).
	SlotFunction
)

// TableSlotEntry is one slot inside a table literal.
type TableSlotEntry struct {
	Kind TableSlotKind

	Name       MethodIdentifier // SlotNamed, when keyed by identifier
	NameString *Literal         // SlotNamed, when keyed by a string literal

	ComputedOpen  TokenIndex // SlotComputed
	Computed      Expression
	ComputedClose TokenIndex

	Assign TokenIndex // SlotNamed / SlotComputed
	Value  Expression // SlotNamed / SlotComputed

	Function     TokenIndex // SlotFunction
	FunctionDecl FunctionDeclaration
}

// TableSlot is a table slot, possibly wrapped in a preprocessor
// conditional.
type TableSlot = Preprocessable[TableSlotEntry]

// TableExpression is `{` TableSlot+ `...`? `}`.
type TableExpression struct {
	exprBase
	Open   TokenIndex
	Slots  []TableSlot
	Spread *TokenIndex
	Close  TokenIndex
}

// ClassExpression is `class` ClassDeclaration used as an expression
// (e.g. `local c = class { ... }`).
type ClassExpression struct {
	exprBase
	Class       TokenIndex
	Declaration ClassDeclaration
}

// ArrayValue is an array literal element, possibly wrapped in a
// preprocessor conditional.
type ArrayValue = Preprocessable[Expression]

// ArrayExpression is `[` ArrayValue+ `...`? `]`.
type ArrayExpression struct {
	exprBase
	Open   TokenIndex
	Values []ArrayValue
	Spread *TokenIndex
	Close  TokenIndex
}

// FunctionExpression is Type? `function` FunctionDeclaration used as an
// expression.
type FunctionExpression struct {
	exprBase
	ReturnType  Type
	Function    TokenIndex
	Declaration FunctionDeclaration
}

// CallExpression is Expression `(` SeparatedListTrailing0<Expression,`,`> `)` TableExpression?.
// The trailing TableExpression, if present, is a post-initializer — see
// the "Trailing-table call argument" design note.
type CallExpression struct {
	exprBase
	Function        Expression
	Open            TokenIndex
	Arguments       SeparatedListTrailing0[Expression]
	Close           TokenIndex
	PostInitializer *TableExpression
}

// DelegateExpression is `delegate` Expression `:` Expression.
type DelegateExpression struct {
	exprBase
	Delegate TokenIndex
	Parent   Expression
	Colon    TokenIndex
	Value    Expression
}

// VectorExpression is `<` Expression `,` Expression `,` Expression `>`.
// See the vector-vs-comparison disambiguation in parser_expression.go.
type VectorExpression struct {
	exprBase
	Open   TokenIndex
	X      Expression
	Comma1 TokenIndex
	Y      Expression
	Comma2 TokenIndex
	Z      Expression
	Close  TokenIndex
}

// ExpectExpression is `expect` Type `(` Expression `)`.
type ExpectExpression struct {
	exprBase
	Expect TokenIndex
	Type   Type
	Open   TokenIndex
	Value  Expression
	Close  TokenIndex
}

// ---- Types ----

// Type is the common interface satisfied by every type node.
type Type interface {
	hasRange
	typeNode()
}

type typeBase struct{ rng Range }

func (t typeBase) Range() Range { return t.rng }
func (typeBase) typeNode()      {}

// NamedType is a bare type name (`int`, `MyClass`, ...).
type NamedType struct {
	typeBase
	Name Identifier
}

// GenericType is `name` `<` SeparatedList1<Type,`,`> `>` (e.g. `array<int>`).
type GenericType struct {
	typeBase
	Name  Identifier
	Open  TokenIndex
	Args  SeparatedList1[Type]
	Close TokenIndex
}

// ArrayType is `Type` `[` `]`.
type ArrayType struct {
	typeBase
	Element Type
	Open    TokenIndex
	Close   TokenIndex
}

// FunctionRefType is `functionref` `(` SeparatedListTrailing0<Type,`,`> `)`.
type FunctionRefType struct {
	typeBase
	FunctionRef TokenIndex
	Open        TokenIndex
	ParamTypes  SeparatedListTrailing0[Type]
	Close       TokenIndex
}

// NullableType is `Type` `ornull`.
type NullableType struct {
	typeBase
	Inner  Type
	OrNull TokenIndex
}
