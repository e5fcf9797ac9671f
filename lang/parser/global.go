package parser

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
)

// parseGlobalDefinition parses `global [const] <value-lvalue> -> name`. The
// value is lowered into a synthetic zero-arity, one-return function and
// evaluated immediately via the interpreter (spec §4.2's compile-time
// evaluator); only the resulting value, not the source expression, is kept
// in the Module. p.cur is GLOBAL on entry.
func (p *Parser) parseGlobalDefinition(mod *module.Module) *ParseError {
	p.advance()
	constTok := p.cur
	isConstant := constTok.Kind == token.CONST
	if isConstant {
		p.advance()
	}

	dummy := &module.FunctionDefinition{Returns: 1}
	if err := p.pushLValue(mod, dummy, nil, p.cur); err != nil {
		return err
	}
	p.emit(dummy, module.Return)

	p.advance()
	if p.cur.Kind != token.ARROW {
		return p.fail(UnexpectedToken, "expected '->' to assign global value")
	}
	p.advance()
	if p.cur.Kind != token.IDENT {
		return p.fail(UnexpectedToken, "expected name for global")
	}
	nameTok := p.cur
	name := nameTok.StringVal

	if existing := mod.FindGlobalByName(name); existing != module.InvalidIndex {
		if mod.Globals[existing].IsConstant {
			return p.fail(WritingToConstantGlobal, "trying to reassign constant global")
		}
		if isConstant {
			return newError(UnexpectedToken, constTok, p.top().path, "redeclaring global as const")
		}
	}

	v, ok := evalCompileTime(mod, dummy)
	if !ok {
		return p.fail(GlobalEvaluationError, "error while evaluating value of global")
	}

	g := &module.GlobalDefinition{Name: name, InitialValue: v, IsConstant: isConstant}
	if p.settings.DebugSymbols {
		g.DebugSymbol = &module.GlobalDebugSymbol{NameToken: nameTok, SourceIdx: p.sourceIdx(mod)}
	}
	mod.AppendGlobal(g)
	return nil
}
