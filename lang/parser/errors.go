package parser

import (
	"fmt"

	"github.com/pulsar-lang/pulsar/lang/token"
)

// ParseResult is the closed error taxonomy produced by the parser (spec §7).
type ParseResult uint8

//nolint:revive
const (
	OK ParseResult = iota
	Error
	UnexpectedToken
	UsageOfUndeclaredLocal
	UsageOfUndeclaredFunction
	UsageOfUndeclaredNativeFunction
	UsageOfUndeclaredGlobal
	UsageOfUnknownInstruction
	NegativeResultCount
	FileNotRead
	IllegalDirective
	WritingToConstantGlobal
	GlobalEvaluationError
	IncludePathOutsideWorkingDirectory
)

var parseResultNames = [...]string{
	OK:                                 "OK",
	Error:                              "Error",
	UnexpectedToken:                    "UnexpectedToken",
	UsageOfUndeclaredLocal:             "UsageOfUndeclaredLocal",
	UsageOfUndeclaredFunction:          "UsageOfUndeclaredFunction",
	UsageOfUndeclaredNativeFunction:    "UsageOfUndeclaredNativeFunction",
	UsageOfUndeclaredGlobal:            "UsageOfUndeclaredGlobal",
	UsageOfUnknownInstruction:          "UsageOfUnknownInstruction",
	NegativeResultCount:                "NegativeResultCount",
	FileNotRead:                        "FileNotRead",
	IllegalDirective:                   "IllegalDirective",
	WritingToConstantGlobal:            "WritingToConstantGlobal",
	GlobalEvaluationError:              "GlobalEvaluationError",
	IncludePathOutsideWorkingDirectory: "IncludePathOutsideWorkingDirectory",
}

func (r ParseResult) String() string {
	if int(r) < len(parseResultNames) {
		return parseResultNames[r]
	}
	return "unknown ParseResult"
}

// ParseError is a single parse failure: the result code, the offending
// token, a human-readable message, and the file it occurred in. The parser
// stops at the first error (spec §7: "a single error code unwinds the
// current phase").
type ParseError struct {
	Result  ParseResult
	Tok     token.Token
	Message string
	File    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%s: %s: %s", e.File, e.Tok.Pos, e.Result, e.Message)
}

func newError(result ParseResult, tok token.Token, file, format string, args ...any) *ParseError {
	return &ParseError{Result: result, Tok: tok, File: file, Message: fmt.Sprintf(format, args...)}
}
