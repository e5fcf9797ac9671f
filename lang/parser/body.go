package parser

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
)

// localScope is the function body's local environment: a stack of declared
// names, shadowing allowed. Resolution always scans from the end, so the
// most recently bound name with a given spelling wins.
type localScope []string

func (s localScope) find(name string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == name {
			return i
		}
	}
	return -1
}

// pushCodeSymbol records, when debug symbols are enabled, that the
// instruction about to be appended to def.Code was produced by tok.
func (p *Parser) pushCodeSymbol(def *module.FunctionDefinition, tok token.Token) {
	if !p.settings.DebugSymbols {
		return
	}
	def.CodeDebugSymbol = append(def.CodeDebugSymbol, module.CodeDebugSymbol{Tok: tok, CodeStartIndex: len(def.Code)})
}

func (p *Parser) emit(def *module.FunctionDefinition, op module.Opcode) {
	def.Code = append(def.Code, module.Instruction{Opcode: op})
}

func (p *Parser) emitArg(def *module.FunctionDefinition, op module.Opcode, arg int64) {
	def.Code = append(def.Code, module.Instruction{Opcode: op, Arg0: arg})
}

// parseFunctionBody parses a sequence of body expressions until it consumes
// the function-terminating '.'. locals seeds the scope with the function's
// declared arguments (already bound to slots 0..len(args)-1).
//
// This is also called recursively by parseIfStatement to parse an if/else
// branch's body: in that case the loop's "expression expected" default case
// firing on 'end' or 'else' is not a real error, it is how the caller
// recognizes the branch ended. parseIfStatement checks the returned
// ParseError's Result for UnexpectedToken and then inspects p.cur itself to
// tell a real syntax error apart from a branch terminator.
func (p *Parser) parseFunctionBody(mod *module.Module, def *module.FunctionDefinition, locals localScope) *ParseError {
	scoped := append(localScope(nil), locals...)
	for {
		p.advance()
		switch p.cur.Kind {
		case token.DOT:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.Return)
			return nil
		case token.PLUS:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.DynSum)
		case token.MINUS:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.DynSub)
		case token.STAR:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.DynMul)
		case token.SLASH:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.DynDiv)
		case token.PERCENT:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.Mod)
		case token.AMP:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.BitAnd)
		case token.PIPE:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.BitOr)
		case token.CARET:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.BitXor)
		case token.TILDE:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.BitNot)
		case token.SHL:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.BitShiftLeft)
		case token.SHR:
			p.pushCodeSymbol(def, p.cur)
			p.emit(def, module.BitShiftRight)

		case token.FNREF, token.LBRACK, token.STRING, token.INT, token.FLOAT, token.IDENT:
			if err := p.pushLValue(mod, def, scoped, p.cur); err != nil {
				return err
			}

		case token.ARROW, token.LRARROW:
			if err := p.parseLocalBind(mod, def, &scoped); err != nil {
				return err
			}

		case token.LARROW:
			if err := p.parseLocalMove(mod, def, scoped); err != nil {
				return err
			}

		case token.LPAREN:
			if err := p.parseCall(mod, def); err != nil {
				return err
			}

		case token.IF:
			p.pushCodeSymbol(def, p.cur)
			if err := p.parseIfStatement(mod, def, scoped); err != nil {
				return err
			}

		default:
			return p.fail(UnexpectedToken, "expression expected")
		}
	}
}

// parseLocalBind parses `-> [!] name` or `<-> [!] name`, where the leading
// token (ARROW or LRARROW) is p.cur on entry.
func (p *Parser) parseLocalBind(mod *module.Module, def *module.FunctionDefinition, scoped *localScope) *ParseError {
	copyIntoLocal := p.cur.Kind == token.LRARROW
	p.pushCodeSymbol(def, p.cur)
	p.advance()
	forceBinding := p.cur.Kind == token.BANG
	if forceBinding {
		p.advance()
	}
	if p.cur.Kind != token.IDENT {
		return p.fail(UnexpectedToken, "expected identifier to create local binding")
	}
	name := p.cur.StringVal

	var localIdx int
	if forceBinding {
		localIdx = len(*scoped)
		*scoped = append(*scoped, name)
	} else if idx := scoped.find(name); idx >= 0 {
		localIdx = idx
	} else if gIdx := mod.FindGlobalByName(name); gIdx != module.InvalidIndex {
		if mod.Globals[gIdx].IsConstant {
			return p.fail(WritingToConstantGlobal, "trying to assign to constant global")
		}
		op := module.PopIntoGlobal
		if copyIntoLocal {
			op = module.CopyIntoGlobal
		}
		p.emitArg(def, op, int64(gIdx))
		return nil
	} else {
		localIdx = len(*scoped)
		*scoped = append(*scoped, name)
	}

	if len(*scoped) > def.LocalsCount {
		def.LocalsCount = len(*scoped)
	}
	op := module.PopIntoLocal
	if copyIntoLocal {
		op = module.CopyIntoLocal
	}
	p.emitArg(def, op, int64(localIdx))
	return nil
}

// parseLocalMove parses `<- name`, p.cur is LARROW on entry.
func (p *Parser) parseLocalMove(mod *module.Module, def *module.FunctionDefinition, scoped localScope) *ParseError {
	p.pushCodeSymbol(def, p.cur)
	p.advance()
	if p.cur.Kind != token.IDENT {
		return p.fail(UnexpectedToken, "expected local name")
	}
	name := p.cur.StringVal
	if idx := scoped.find(name); idx >= 0 {
		p.emitArg(def, module.MoveLocal, int64(idx))
		return nil
	}
	if gIdx := mod.FindGlobalByName(name); gIdx != module.InvalidIndex {
		if mod.Globals[gIdx].IsConstant {
			return p.fail(WritingToConstantGlobal, "cannot move constant global")
		}
		p.emitArg(def, module.MoveGlobal, int64(gIdx))
		return nil
	}
	return p.fail(UsageOfUndeclaredLocal, "local not declared")
}

// parseCall parses `(name)`, `(*name)`, and the raw-instruction escape
// `(!opcode arg?)`. p.cur is LPAREN on entry.
func (p *Parser) parseCall(mod *module.Module, def *module.FunctionDefinition) *ParseError {
	p.advance()
	isNative := p.cur.Kind == token.STAR
	isInstruction := p.cur.Kind == token.BANG
	if isNative || isInstruction {
		p.advance()
	}
	p.pushCodeSymbol(def, p.cur)
	if p.cur.Kind != token.IDENT {
		return p.fail(UnexpectedToken, "expected function name for function call")
	}
	nameTok := p.cur
	p.advance()

	var arg0 int64
	if isInstruction && p.cur.Kind == token.INT {
		arg0 = p.cur.IntVal
		p.advance()
	}
	if p.cur.Kind != token.RPAREN {
		return p.fail(UnexpectedToken, "expected ')' to close function call")
	}

	switch {
	case isInstruction:
		op, ok := module.LookupOpcode(nameTok.StringVal)
		if !ok {
			return p.fail(UsageOfUnknownInstruction, "instruction %q does not exist", nameTok.StringVal)
		}
		p.emitArg(def, op, arg0)
	case isNative:
		idx := mod.FindNativeByName(nameTok.StringVal)
		if idx == module.InvalidIndex {
			return p.fail(UsageOfUndeclaredNativeFunction, "native function %q not declared", nameTok.StringVal)
		}
		p.emitArg(def, module.CallNative, int64(idx))
	case nameTok.StringVal == def.Name:
		// Self-recursion: the function hasn't been appended to mod.Functions
		// yet, so its eventual index is the slot it will occupy next.
		p.emitArg(def, module.Call, int64(len(mod.Functions)))
	default:
		idx := mod.FindFunctionByName(nameTok.StringVal)
		if idx == module.InvalidIndex {
			return p.fail(UsageOfUndeclaredFunction, "function %q not declared", nameTok.StringVal)
		}
		p.emitArg(def, module.Call, int64(idx))
	}
	return nil
}
