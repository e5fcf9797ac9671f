package lexer

import (
	"testing"

	"github.com/pulsar-lang/pulsar/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()
	var errs []string
	l := New("test.pul", []byte(src), false, func(pos token.SourcePosition, msg string) {
		errs = append(errs, msg)
	})
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			break
		}
	}
	if len(errs) > 0 {
		t.Fatalf("unexpected lexer errors: %v", errs)
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, tok := range toks {
		ks[i] = tok.Kind
	}
	return ks
}

func TestLexerArithmeticExpression(t *testing.T) {
	toks := scanAll(t, "1 2 + .")
	want := []token.Kind{token.INT, token.INT, token.PLUS, token.DOT, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
	if toks[0].IntVal != 1 || toks[1].IntVal != 2 {
		t.Errorf("int values: got %d, %d", toks[0].IntVal, toks[1].IntVal)
	}
}

func TestLexerKeywordsAndIdentifiers(t *testing.T) {
	toks := scanAll(t, "if else fact x?")
	want := []token.Kind{token.IF, token.ELSE, token.IDENT, token.IDENT, token.EOF}
	got := kinds(toks)
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (%+v)", i, got[i], want[i], toks)
		}
	}
	if toks[3].StringVal != "x?" {
		t.Errorf("identifier with continuation char: got %q, want %q", toks[3].StringVal, "x?")
	}
}

func TestLexerIntegerBases(t *testing.T) {
	toks := scanAll(t, "0x1F 0o17 0b101 -7")
	wantVals := []int64{31, 15, 5, -7}
	if len(toks) != len(wantVals)+1 {
		t.Fatalf("got %d tokens, want %d", len(toks), len(wantVals)+1)
	}
	for i, want := range wantVals {
		if toks[i].Kind != token.INT {
			t.Fatalf("token %d: got kind %v, want INT", i, toks[i].Kind)
		}
		if toks[i].IntVal != want {
			t.Errorf("token %d: got %d, want %d", i, toks[i].IntVal, want)
		}
	}
}

func TestLexerFloatRequiresFractionalPart(t *testing.T) {
	toks := scanAll(t, "3.14 2")
	if toks[0].Kind != token.FLOAT || toks[0].DoubleVal != 3.14 {
		t.Fatalf("got %+v, want FLOAT 3.14", toks[0])
	}
	if toks[1].Kind != token.INT {
		t.Fatalf("got %+v, want INT", toks[1])
	}
}

func TestLexerStringEscapes(t *testing.T) {
	l := New("test.pul", []byte(`"a\tb\x{41};\u{1F600}"`), false, func(pos token.SourcePosition, msg string) {
		t.Fatalf("unexpected lexer error: %s", msg)
	})
	tok := l.Next()
	if tok.Kind != token.STRING {
		t.Fatalf("got kind %v, want STRING", tok.Kind)
	}
}

func TestLexerDirectiveAndLabel(t *testing.T) {
	toks := scanAll(t, "#include @loop")
	if toks[0].Kind != token.DIRECTIVE || toks[0].StringVal != "include" {
		t.Fatalf("got %+v, want DIRECTIVE(include)", toks[0])
	}
	if toks[1].Kind != token.LABEL || toks[1].StringVal != "loop" {
		t.Fatalf("got %+v, want LABEL(loop)", toks[1])
	}
}

func TestLexerComments(t *testing.T) {
	toks := scanAll(t, "1 ; a line comment\n2 // another\n3 /* block */ 4")
	want := []int64{1, 2, 3, 4}
	for i, w := range want {
		if toks[i].Kind != token.INT || toks[i].IntVal != w {
			t.Fatalf("token %d: got %+v, want INT(%d)", i, toks[i], w)
		}
	}
}

func TestLexerLocalBindingArrows(t *testing.T) {
	toks := scanAll(t, "-> name <- name <-> name <& (f)")
	want := []token.Kind{
		token.ARROW, token.IDENT,
		token.LARROW, token.IDENT,
		token.LRARROW, token.IDENT,
		token.FNREF, token.LPAREN, token.IDENT, token.RPAREN,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestLexerCharacterLiteral(t *testing.T) {
	toks := scanAll(t, `'a' '\n'`)
	if toks[0].Kind != token.INT || toks[0].IntVal != 'a' {
		t.Fatalf("got %+v, want INT('a')", toks[0])
	}
	if toks[1].Kind != token.INT || toks[1].IntVal != '\n' {
		t.Fatalf("got %+v, want INT('\\n')", toks[1])
	}
}

func TestLexerInvalidUTF8Halts(t *testing.T) {
	var msgs []string
	l := New("test.pul", []byte{'1', ' ', 0xff, ' ', '2'}, false, func(pos token.SourcePosition, msg string) {
		msgs = append(msgs, msg)
	})
	l.Next() // "1"
	l.Next() // the invalid byte
	if len(msgs) == 0 {
		t.Fatalf("expected an invalid UTF-8 error to be reported")
	}
	if tok := l.Next(); tok.Kind != token.EOF {
		t.Fatalf("got %+v after the invalid byte, want EOF", tok)
	}
}
