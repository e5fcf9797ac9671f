package parser

import (
	"math"

	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// pushLValue emits the code that pushes one value onto the operand stack
// for lvalue, which must be one of the token kinds the body/if-statement
// dispatchers already recognize as lvalue-starting (INT, FLOAT, IDENT,
// STRING, FNREF, LBRACK). p.cur is left unchanged by a simple literal/ident
// push; FNREF and LBRACK advance to their construct's closing ')' or ']'.
func (p *Parser) pushLValue(mod *module.Module, def *module.FunctionDefinition, locals localScope, lvalue token.Token) *ParseError {
	switch lvalue.Kind {
	case token.INT:
		p.emitArg(def, module.PushInt, lvalue.IntVal)
	case token.FLOAT:
		p.emitArg(def, module.PushDbl, int64(math.Float64bits(lvalue.DoubleVal)))
	case token.IDENT:
		p.pushCodeSymbol(def, lvalue)
		if idx := locals.find(lvalue.StringVal); idx >= 0 {
			p.emitArg(def, module.PushLocal, int64(idx))
			return nil
		}
		gIdx := mod.FindGlobalByName(lvalue.StringVal)
		if gIdx == module.InvalidIndex {
			return p.fail(UsageOfUndeclaredLocal, "local not declared")
		}
		p.emitArg(def, module.PushGlobal, int64(gIdx))
	case token.STRING:
		p.pushCodeSymbol(def, lvalue)
		constIdx := mod.FindConstant(value.Str(lvalue.StringVal))
		if constIdx == module.InvalidIndex {
			constIdx = mod.AppendConstant(value.Str(lvalue.StringVal))
		}
		p.emitArg(def, module.PushConst, int64(constIdx))
	case token.FNREF:
		return p.pushFunctionReference(mod, def)
	case token.LBRACK:
		return p.pushListLiteral(mod, def, locals)
	default:
		return p.fail(UnexpectedToken, "expected lvalue")
	}
	return nil
}

// pushFunctionReference parses `<& (name)` or `<& (*name)`. p.cur is FNREF
// on entry.
func (p *Parser) pushFunctionReference(mod *module.Module, def *module.FunctionDefinition) *ParseError {
	p.advance()
	if p.cur.Kind == token.IDENT {
		return p.fail(UnexpectedToken, "local reference is not supported, expected (function)")
	}
	if p.cur.Kind != token.LPAREN {
		return p.fail(UnexpectedToken, "expected (function) to reference")
	}
	p.advance()
	isNative := p.cur.Kind == token.STAR
	if isNative {
		p.advance()
	}
	if p.cur.Kind != token.IDENT {
		return p.fail(UnexpectedToken, "expected (function) name")
	}
	nameTok := p.cur
	p.advance()
	if p.cur.Kind != token.RPAREN {
		return p.fail(UnexpectedToken, "expected ')' to close function reference")
	}

	switch {
	case isNative:
		idx := mod.FindNativeByName(nameTok.StringVal)
		if idx == module.InvalidIndex {
			return p.fail(UsageOfUndeclaredNativeFunction, "native function %q not declared", nameTok.StringVal)
		}
		p.emitArg(def, module.PushNativeFunctionReference, int64(idx))
	case nameTok.StringVal == def.Name:
		p.emitArg(def, module.PushFunctionReference, int64(len(mod.Functions)))
	default:
		idx := mod.FindFunctionByName(nameTok.StringVal)
		if idx == module.InvalidIndex {
			return p.fail(UsageOfUndeclaredFunction, "function %q not declared", nameTok.StringVal)
		}
		p.emitArg(def, module.PushFunctionReference, int64(idx))
	}
	return nil
}
