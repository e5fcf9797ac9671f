package sourceview_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsar-lang/pulsar/lang/sourceview"
	"github.com/pulsar-lang/pulsar/lang/token"
)

const source = "let x = 1\nlet yy = x + nope\nreturn yy\n"

// posOf locates the byte offset of needle within source and builds a
// SourcePosition for it, computing Line/Char by hand for test fixtures.
func posOf(t *testing.T, needle string) token.SourcePosition {
	t.Helper()
	idx := strings.Index(source, needle)
	require.GreaterOrEqual(t, idx, 0, "needle %q not found", needle)

	line := strings.Count(source[:idx], "\n")
	lineStart := strings.LastIndexByte(source[:idx], '\n') + 1
	return token.SourcePosition{
		Line:      line,
		Char:      idx - lineStart,
		ByteIndex: idx,
		CharSpan:  len([]rune(needle)),
	}
}

func TestLineView(t *testing.T) {
	v := sourceview.New(source)

	pos := posOf(t, "nope")
	assert.Equal(t, "let yy = x + nope", v.LineView(pos))
}

func TestLineViewAtLastLine(t *testing.T) {
	v := sourceview.New(source)

	pos := posOf(t, "return yy")
	assert.Equal(t, "return yy", v.LineView(pos))
}

func TestRangeViewInfiniteKeepsWholeLine(t *testing.T) {
	v := sourceview.New(source)
	pos := posOf(t, "nope")

	rv := v.RangeView(pos, sourceview.RangeInfinite)
	assert.Equal(t, "let yy = x + nope", rv.View)
	assert.False(t, rv.HasTrimmedBefore)
	assert.False(t, rv.HasTrimmedAfter)
	assert.Equal(t, 4, rv.TokenRunes)
	assert.Equal(t, len("let yy = x + "), rv.RunesToTokenStart)
}

func TestRangeViewTrimsContext(t *testing.T) {
	v := sourceview.New(source)
	pos := posOf(t, "nope")

	rv := v.RangeView(pos, sourceview.Range{Before: 2, After: 0})
	assert.Equal(t, "+ nope", rv.View)
	assert.True(t, rv.HasTrimmedBefore)
	assert.False(t, rv.HasTrimmedAfter)
	assert.Equal(t, 2, rv.RunesToTokenStart)
}

func TestRangeViewTrimsAfter(t *testing.T) {
	v := sourceview.New(source)
	pos := posOf(t, "yy")

	rv := v.RangeView(pos, sourceview.Range{Before: 0, After: 1})
	assert.Equal(t, "yy ", rv.View)
	assert.True(t, rv.HasTrimmedAfter)
}

func TestRenderCaretProducesThreeLines(t *testing.T) {
	v := sourceview.New(source)
	pos := posOf(t, "nope")

	out := sourceview.RenderCaret(v, "test.pr", pos, "unknown identifier", 100)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)

	assert.Equal(t, "test.pr:1:13: unknown identifier", lines[0])
	assert.Equal(t, "let yy = x + nope", lines[1])
	assert.Equal(t, strings.Repeat(" ", len("let yy = x + "))+"^~~~", lines[2])
}

func TestRenderCaretMarksTrimmedContext(t *testing.T) {
	v := sourceview.New(source)
	pos := posOf(t, "nope")

	out := sourceview.RenderCaret(v, "test.pr", pos, "unknown identifier", 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "... + nope", lines[1])
}
