package sqgs

// RenderParentKind discriminates the three forms a render definition's
// parent clause can take.
type RenderParentKind int

const (
	RenderParentSelf RenderParentKind = iota
	RenderParentTopology
	RenderParentIdentifier
)

// RenderParent is `self` | `topology` | Identifier, the content of a
// render definition's `<...>` parent clause.
type RenderParent struct {
	Kind       RenderParentKind
	Token      TokenIndex // the `self`/`topology` token, when applicable
	Identifier Identifier // when Kind == RenderParentIdentifier
}

// RenderParentClause is `<` RenderParent `>`. Inside the angle brackets,
// `<`/`>` are brackets, not comparison operators.
type RenderParentClause struct {
	Open   TokenIndex
	Parent RenderParent
	Close  TokenIndex
}

// RenderParameter is `Identifier` `=` `Expression` inside a render
// definition's parameter list.
type RenderParameter struct {
	Name        Identifier
	Initializer VarInitializer
}

// RenderParameters is `{` SeparatedListTrailing0<RenderParameter,`,`> `}`.
type RenderParameters struct {
	Open   TokenIndex
	Params SeparatedListTrailing0[RenderParameter]
	Close  TokenIndex
}

// RenderDefinition is `Type` `Identifier` RenderParentClause RenderParameters.
type RenderDefinition struct {
	Type   Type
	Name   Identifier
	Parent RenderParentClause
	Params RenderParameters
}

// RenderDefinitionList is `[` RenderDefinition* `]`.
type RenderDefinitionList struct {
	Open        TokenIndex
	Definitions []RenderDefinition
	Close       TokenIndex
}
