package parser

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
)

// parseFunctionDefinition parses `* ( [*] name args* ) [-> N] : body .` (a
// native declaration when a second '*' follows the opening paren, a regular
// function otherwise). p.cur is the leading '*' on entry.
func (p *Parser) parseFunctionDefinition(mod *module.Module) *ParseError {
	p.advance()
	if p.cur.Kind != token.LPAREN {
		return p.fail(UnexpectedToken, "expected '(' to open function name and args declaration")
	}
	p.advance()
	isNative := p.cur.Kind == token.STAR
	if isNative {
		p.advance()
	}
	if p.cur.Kind != token.IDENT {
		return p.fail(UnexpectedToken, "expected function identifier")
	}

	def := &module.FunctionDefinition{Name: p.cur.StringVal}
	if p.settings.DebugSymbols {
		def.DebugSymbol = &module.FunctionDebugSymbol{NameToken: p.cur, SourceIdx: p.sourceIdx(mod)}
	}

	p.advance()
	var args []string
	for p.cur.Kind == token.IDENT {
		args = append(args, p.cur.StringVal)
		p.advance()
	}
	def.Arity = len(args)
	def.LocalsCount = len(args)

	if p.cur.Kind != token.RPAREN {
		return p.fail(UnexpectedToken, "expected ')' to close function name and args declaration")
	}
	p.advance()
	if p.cur.Kind == token.ARROW {
		p.advance()
		if p.cur.Kind != token.INT {
			return p.fail(UnexpectedToken, "expected return count")
		}
		if p.cur.IntVal < 0 {
			return p.fail(NegativeResultCount, "illegal return count, must be >= 0")
		}
		def.Returns = int(p.cur.IntVal)
		p.advance()
	}

	if isNative {
		if p.cur.Kind != token.DOT {
			return p.fail(UnexpectedToken, "expected '.' to confirm native function declaration; native functions can't have a body")
		}
		mod.AppendNativeBinding(&module.NativeBinding{
			Name: def.Name, Arity: def.Arity, Returns: def.Returns, StackArity: def.StackArity,
		})
		return nil
	}

	if p.cur.Kind != token.COLON {
		return p.fail(UnexpectedToken, "expected '->' for return count declaration or ':' to begin function body")
	}
	if err := p.parseFunctionBody(mod, def, localScope(args)); err != nil {
		return err
	}
	mod.AppendFunction(def)
	return nil
}
