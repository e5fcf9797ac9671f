// Package sourceview renders excerpts of Pulsar source text for diagnostics:
// the line a token came from, a trimmed window of codepoints around it, and
// a caret/underline pointing at its exact span. It is grounded on the
// reference implementation's SourceViewer (ComputeLineView/ComputeRangeView),
// adapted to operate on ByteIndex directly (lang/token.SourcePosition already
// carries the token's absolute byte offset, so there is no need to re-derive
// it by scanning line-by-line from the start of the file as the original
// does for its Line-based path).
package sourceview

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/pulsar-lang/pulsar/lang/token"
)

// Range bounds how many codepoints of context to keep before and after a
// token when computing a RangeView. RangeInfinite keeps the whole line.
type Range struct {
	Before int
	After  int
}

// RangeInfinite requests no trimming in either direction.
var RangeInfinite = Range{Before: math.MaxInt, After: math.MaxInt}

// RangeView is a window of a source line around a token.
type RangeView struct {
	// View is the (possibly trimmed) line text.
	View string
	// BytesToTokenStart is the byte offset from the start of View to the
	// token's start.
	BytesToTokenStart int
	// RunesToTokenStart is the codepoint offset from the start of View to
	// the token's start.
	RunesToTokenStart int
	// TokenRunes is the number of codepoints the token spans.
	TokenRunes int
	// HasTrimmedBefore/HasTrimmedAfter report whether the view's start/end
	// were cut short of the line's actual start/end.
	HasTrimmedBefore bool
	HasTrimmedAfter  bool
}

// Viewer shows excerpts of a single source file. The source must outlive any
// RangeView it produces, mirroring the reference implementation's contract
// that the StringView it holds not outlive its backing buffer — in Go this
// is naturally upheld since strings are immutable copies-by-reference.
type Viewer struct {
	source string
}

// New returns a Viewer over source.
func New(source string) Viewer {
	return Viewer{source: source}
}

func isCROrLF(b byte) bool {
	return b == '\r' || b == '\n'
}

// lineBounds returns the byte range [start, end) of the line containing
// pos.ByteIndex, matching ComputeLineView's usePositionIndex=true path.
func (v Viewer) lineBounds(pos token.SourcePosition) (start, end int) {
	idx := pos.ByteIndex
	if idx > len(v.source) {
		idx = len(v.source)
	}
	start = idx
	for start > 0 && !isCROrLF(v.source[start-1]) {
		start--
	}
	end = idx
	for end < len(v.source) && !isCROrLF(v.source[end]) {
		end++
	}
	return start, end
}

// LineView returns the full text of the line containing pos, without the
// trailing line terminator.
func (v Viewer) LineView(pos token.SourcePosition) string {
	start, end := v.lineBounds(pos)
	return v.source[start:end]
}

// RangeView computes a window around the token at pos, keeping at most
// r.Before codepoints before it and r.After codepoints after its end.
func (v Viewer) RangeView(pos token.SourcePosition, r Range) RangeView {
	lineStart, lineEnd := v.lineBounds(pos)
	line := v.source[lineStart:lineEnd]

	tokStart := pos.ByteIndex - lineStart
	if tokStart < 0 {
		tokStart = 0
	}
	if tokStart > len(line) {
		tokStart = len(line)
	}

	tokEnd := tokStart
	tokenRunes := 0
	for tokenRunes < pos.CharSpan && tokEnd < len(line) {
		_, w := utf8.DecodeRuneInString(line[tokEnd:])
		tokEnd += w
		tokenRunes++
	}

	viewStart := tokStart
	runesBefore := 0
	for runesBefore < r.Before && viewStart > 0 {
		_, w := utf8.DecodeLastRuneInString(line[:viewStart])
		viewStart -= w
		runesBefore++
	}

	viewEnd := tokEnd
	for runesAfter := 0; runesAfter < r.After && viewEnd < len(line); runesAfter++ {
		_, w := utf8.DecodeRuneInString(line[viewEnd:])
		viewEnd += w
	}

	return RangeView{
		View:              line[viewStart:viewEnd],
		BytesToTokenStart: tokStart - viewStart,
		RunesToTokenStart: runesBefore,
		TokenRunes:        tokenRunes,
		HasTrimmedBefore:  viewStart > 0,
		HasTrimmedAfter:   viewEnd < len(line),
	}
}

// RenderCaret formats a one-diagnostic excerpt: a "path:line:char: message"
// header in the teacher's go/scanner.PrintError style, followed by the
// source line and a caret/underline spanning the token. Context is
// truncated to contextRunes codepoints on either side of the token.
func RenderCaret(v Viewer, path string, pos token.SourcePosition, message string, contextRunes int) string {
	rv := v.RangeView(pos, Range{Before: contextRunes, After: contextRunes})

	var b strings.Builder
	fmt.Fprintf(&b, "%s:%s: %s\n", path, pos, message)

	prefix := 0
	if rv.HasTrimmedBefore {
		b.WriteString("... ")
		prefix = 4
	}
	b.WriteString(rv.View)
	if rv.HasTrimmedAfter {
		b.WriteString(" ...")
	}
	b.WriteByte('\n')

	b.WriteString(strings.Repeat(" ", prefix+rv.RunesToTokenStart))
	width := rv.TokenRunes
	if width < 1 {
		width = 1
	}
	b.WriteByte('^')
	if width > 1 {
		b.WriteString(strings.Repeat("~", width-1))
	}
	b.WriteByte('\n')
	return b.String()
}
