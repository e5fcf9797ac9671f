package parser

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// isListLValueStart reports whether k starts a non-constant list item: an
// identifier, string, function reference or nested list literal.
func isListLValueStart(k token.Kind) bool {
	switch k {
	case token.FNREF, token.STRING, token.IDENT, token.LBRACK:
		return true
	}
	return false
}

// pushListLiteral lowers `[ a, b, c, ... ]`. Consecutive constant
// (integer/double) items are accumulated into a Value::List built at parse
// time and flushed (deduplicated into mod.Constants, then PushConst+Concat)
// only when a non-constant item or the closing bracket is reached and the
// accumulated run is non-empty; each non-constant item is pushed and
// appended individually. p.cur is LBRACK on entry.
func (p *Parser) pushListLiteral(mod *module.Module, def *module.FunctionDefinition, locals localScope) *ParseError {
	constList := value.NewValueList()
	p.advance()
	p.emit(def, module.PushEmptyList)

	for {
		atClose := p.cur.Kind == token.RBRACK
		if isListLValueStart(p.cur.Kind) || atClose {
			if !constList.Empty() {
				constVal := value.Lst(constList)
				constIdx := mod.FindConstant(constVal)
				if constIdx == module.InvalidIndex {
					constIdx = mod.AppendConstant(constVal)
				}
				constList = value.NewValueList()
				p.pushCodeSymbol(def, p.cur)
				p.emitArg(def, module.PushConst, int64(constIdx))
				p.emit(def, module.Concat)
			} else if atClose {
				return nil // empty list
			}
			if atClose {
				return nil
			}
		} else if p.cur.Kind == token.INT {
			constList.Append(value.Int(p.cur.IntVal))
		} else if p.cur.Kind == token.FLOAT {
			constList.Append(value.Dbl(p.cur.DoubleVal))
		}

		switch {
		case isListLValueStart(p.cur.Kind):
			if err := p.pushLValue(mod, def, locals, p.cur); err != nil {
				return err
			}
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.Append)
		case p.cur.Kind == token.INT || p.cur.Kind == token.FLOAT:
			// already folded into the constant run above
		default:
			return p.fail(UnexpectedToken, "expected lvalue")
		}

		p.advance()
		if p.cur.Kind == token.COMMA {
			p.advance()
		} else if p.cur.Kind != token.RBRACK {
			return p.fail(UnexpectedToken, "expected ',' to continue List literal or ']' to close it")
		}
	}
}
