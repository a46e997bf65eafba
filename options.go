package sqgs

// tokenizeConfig holds the resolved settings for a single Tokenize call.
type tokenizeConfig struct {
	filename string
	// ifdefAsDirective selects how #ifdef/#ifndef are lexed, resolving
	// the open question in spec.md §9: when false (the default), they
	// are treated as ScriptStyle comments uniformly at every grammar
	// site; when true, peekPreprocessorTerminal also recognizes them as
	// aliases of #if. See DESIGN.md.
	ifdefAsDirective bool
}

// TokenizeOption configures a Tokenize call, following the teacher's
// functional-options style (see pongo2_options.go's TemplateSet options
// in the ancestor template engine this front end replaces).
type TokenizeOption func(*tokenizeConfig)

// WithFilename threads a display filename through to diagnostics
// produced by this Tokenize call. Parse has its own separate
// WithParseFilename; a LexError's Filename has no bearing on a later
// Parse call over the same tokens.
func WithFilename(name string) TokenizeOption {
	return func(c *tokenizeConfig) { c.filename = name }
}

// WithIfdefAsDirective selects the #ifdef/#ifndef interpretation: when
// v is true, peekPreprocessorTerminal treats #ifdef/#ifndef as aliases
// of #if, a lexer-time decision made before Parse ever sees the
// tokens. See DESIGN.md for the rationale behind the default (false).
func WithIfdefAsDirective(v bool) TokenizeOption {
	return func(c *tokenizeConfig) { c.ifdefAsDirective = v }
}

func newTokenizeConfig(opts []TokenizeOption) *tokenizeConfig {
	c := &tokenizeConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// parseConfig holds the resolved settings for a single Parse call.
type parseConfig struct {
	filename string
}

// ParseOption configures a Parse call.
type ParseOption func(*parseConfig)

// WithParseFilename threads a display filename through to diagnostics
// produced by this Parse call.
func WithParseFilename(name string) ParseOption {
	return func(c *parseConfig) { c.filename = name }
}

func newParseConfig(opts []ParseOption) *parseConfig {
	c := &parseConfig{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
