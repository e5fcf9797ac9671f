package parser

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
)

// comparatorJump maps an if-statement's comparison operator to the
// conditional jump that skips the body when the comparison is false. A jump
// always encodes the negation of what the source wrote.
var comparatorJump = map[token.Kind]module.Opcode{
	token.EQ:  module.JumpIfNotZero,
	token.NEQ: module.JumpIfZero,
	token.LT:  module.JumpIfGreaterThanOrEqualToZero,
	token.LE:  module.JumpIfGreaterThanZero,
	token.GT:  module.JumpIfLessThanOrEqualToZero,
	token.GE:  module.JumpIfLessThanZero,
}

// parseIfStatement parses `if [lvalue] [cmp lvalue] : body` followed by
// `end`, `else : body end`, or `else if ...` (the nested if's own `end`
// closes the whole chain). p.cur is the IF token on entry; the leading instruction's
// CodeDebugSymbol was already recorded by the caller.
//
// It re-parses each branch's body by calling parseFunctionBody recursively,
// the same grammar used for a whole function body: parseFunctionBody's
// "expression expected" UnexpectedToken error is how the recursive call
// signals "I hit a token I don't know how to start an expression with",
// which for a branch body means it hit 'end' or 'else'. Any other
// UnexpectedToken is a genuine error and is propagated unchanged once we
// observe the offending token isn't one of those two.
func (p *Parser) parseIfStatement(mod *module.Module, def *module.FunctionDefinition, locals localScope) *ParseError {
	ifTok := p.cur
	jmpOp := module.JumpIfZero
	hasComparison := false
	isSelfContained := false

	p.advance()
	if p.cur.Kind != token.COLON {
		hasComparison = true
		switch p.cur.Kind {
		case token.STRING, token.INT, token.FLOAT, token.IDENT:
			isSelfContained = true
			jmpOp = module.JumpIfNotZero
			if err := p.pushLValue(mod, def, locals, p.cur); err != nil {
				return err
			}
			p.advance()
		}

		if p.cur.Kind != token.COLON {
			op, ok := comparatorJump[p.cur.Kind]
			if !ok {
				return p.fail(UnexpectedToken, "expected if body start ':' or comparison operator")
			}
			jmpOp = op
			p.advance()
			switch p.cur.Kind {
			case token.INT, token.FLOAT, token.IDENT:
				if err := p.pushLValue(mod, def, locals, p.cur); err != nil {
					return err
				}
				p.advance()
			default:
				return p.fail(UnexpectedToken, "expected lvalue of type Integer, Double or Local after comparison operator")
			}
		} else {
			isSelfContained = false
		}
	}

	if p.cur.Kind != token.COLON {
		return p.fail(UnexpectedToken, "expected ':' to begin if statement body")
	}
	if hasComparison {
		p.pushCodeSymbol(def, ifTok)
		p.emit(def, module.Compare)
	}

	p.pushCodeSymbol(def, ifTok)
	ifIdx := len(def.Code)
	p.emitArg(def, jmpOp, 0)

	bodyErr := p.parseFunctionBody(mod, def, locals)
	if bodyErr == nil {
		def.Code[ifIdx].Arg0 = int64(len(def.Code) - ifIdx)
		return nil
	}
	if bodyErr.Result != UnexpectedToken {
		return bodyErr
	}
	switch p.cur.Kind {
	case token.END:
		def.Code[ifIdx].Arg0 = int64(len(def.Code) - ifIdx)
		return nil
	case token.ELSE:
		// fall through to else-handling below
	default:
		return p.fail(UnexpectedToken, "'else' or 'end' expected")
	}

	elseIdx := len(def.Code)
	p.pushCodeSymbol(def, p.cur)
	p.emitArg(def, module.Jump, 0)
	def.Code[ifIdx].Arg0 = int64(len(def.Code) - ifIdx)
	p.advance() // consume 'else'

	switch p.cur.Kind {
	case token.COLON:
		bodyErr = p.parseFunctionBody(mod, def, locals)
		if bodyErr != nil {
			if bodyErr.Result != UnexpectedToken {
				return bodyErr
			}
			if p.cur.Kind != token.END {
				return p.fail(UnexpectedToken, "expected 'end'")
			}
		}
		def.Code[elseIdx].Arg0 = int64(len(def.Code) - elseIdx)
		return nil
	case token.IF:
		if !isSelfContained {
			return p.fail(UnexpectedToken, "illegal 'else if' statement: previous condition is not self-contained")
		}
		err := p.parseIfStatement(mod, def, locals)
		def.Code[elseIdx].Arg0 = int64(len(def.Code) - elseIdx)
		return err
	default:
		return p.fail(UnexpectedToken, "expected 'else' block start or 'else if' compound statement")
	}
}
