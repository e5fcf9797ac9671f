package token

import "fmt"

// SourcePosition locates a token within a source file. Char counts Unicode
// codepoints (not bytes) from the start of the line; ByteIndex is the UTF-8
// byte offset from the start of the source; CharSpan is the number of
// codepoints covered by the token (used to underline multi-codepoint tokens,
// and to span multi-part string literals).
type SourcePosition struct {
	Line      int
	Char      int
	ByteIndex int
	CharSpan  int
}

// Unknown reports whether the position carries no usable location info.
func (p SourcePosition) Unknown() bool {
	return p.Line == 0 && p.Char == 0
}

// Extend returns a position spanning from p to the end of other, used when a
// multi-line string literal token is built out of several physical literals.
// CharSpan is approximated from the byte distance between the two positions;
// exact codepoint counting across intervening lines is not worth tracking
// for a value only used to underline diagnostics.
func (p SourcePosition) Extend(other SourcePosition) SourcePosition {
	span := (other.ByteIndex - p.ByteIndex) + other.CharSpan
	return SourcePosition{
		Line:      p.Line,
		Char:      p.Char,
		ByteIndex: p.ByteIndex,
		CharSpan:  span,
	}
}

func (p SourcePosition) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Char)
}
