package module

import "github.com/pulsar-lang/pulsar/lang/token"

// SourceDebugSymbol names a source file that contributed code to the module,
// keeping its full text around for excerpt rendering.
type SourceDebugSymbol struct {
	Path       string
	SourceText string
}

// FunctionDebugSymbol associates a function with the token of its name and
// the source file it came from.
type FunctionDebugSymbol struct {
	NameToken token.Token
	SourceIdx int
}

// CodeDebugSymbol associates a span of a function's code, starting at
// CodeStartIndex, with the token that produced it. The parser appends these
// in increasing CodeStartIndex order.
type CodeDebugSymbol struct {
	Tok            token.Token
	CodeStartIndex int
}

// GlobalDebugSymbol associates a global with the token of its name.
type GlobalDebugSymbol struct {
	NameToken token.Token
	SourceIdx int
}
