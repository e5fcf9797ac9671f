package lexer

import (
	"strconv"

	"github.com/pulsar-lang/pulsar/lang/token"
)

// number scans an integer or double literal starting at the lexer's current
// position (which may be a leading sign). Rejected if immediately followed
// by an identifier-start character.
func (l *Lexer) number(startPos token.SourcePosition, start int) token.Token {
	if l.cur == '+' || l.cur == '-' {
		l.advance()
	}

	base := 10
	isFloat := false

	if l.cur == '0' {
		switch l.peekByte() {
		case 'x', 'X':
			l.advance()
			l.advance()
			base = 16
		case 'o', 'O':
			l.advance()
			l.advance()
			base = 8
		case 'b', 'B':
			l.advance()
			l.advance()
			base = 2
		}
	}

	digitOK := digitPredicate(base)
	sawDigit := false
	for digitOK(l.cur) {
		sawDigit = true
		l.advance()
	}

	if base == 10 && l.cur == '.' && isDecimal(rune(l.peekByte())) {
		isFloat = true
		l.advance()
		for isDecimal(l.cur) {
			sawDigit = true
			l.advance()
		}
	}

	if !sawDigit {
		l.error(startPos, "numeric literal has no digits")
	}
	if isIdentStart(l.cur) {
		l.error(l.pos(), "numeric literal followed by an identifier character")
		for isIdentCont(l.cur) {
			l.advance()
		}
	}

	lit := string(l.src[start:l.off])
	pos := l.spanFrom(startPos)

	if isFloat {
		v, err := strconv.ParseFloat(lit, 64)
		if err != nil {
			l.error(startPos, "float literal value out of range")
		}
		return token.Token{Kind: token.FLOAT, StringVal: lit, DoubleVal: v, Pos: pos}
	}

	digits := lit
	neg := false
	if len(digits) > 0 && (digits[0] == '+' || digits[0] == '-') {
		neg = digits[0] == '-'
		digits = digits[1:]
	}
	if base != 10 {
		digits = digits[2:] // strip 0x/0o/0b
	}
	v, err := strconv.ParseInt(digits, base, 64)
	if err != nil {
		l.error(startPos, "integer literal value out of range")
	}
	if neg {
		v = -v
	}
	return token.Token{Kind: token.INT, StringVal: lit, IntVal: v, Pos: pos}
}

func digitPredicate(base int) func(rune) bool {
	switch base {
	case 16:
		return isHexadecimal
	case 8:
		return isOctal
	case 2:
		return isBinary
	default:
		return isDecimal
	}
}
