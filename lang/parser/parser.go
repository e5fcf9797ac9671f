// Package parser lowers Pulsar source text into a compiled Module: a
// single-pass recursive-descent parser with an include mechanism and a
// compile-time evaluator for global initializers.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulsar-lang/pulsar/lang/lexer"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/token"
)

// IncludeResolver resolves a #include directive's requested path relative to
// the file that contains it, and reads the resolved file's contents. The
// default (NewFSIncludeResolver) resolves against the filesystem, rejecting
// paths that escape the process's working directory.
type IncludeResolver interface {
	Resolve(currentFile, requestedPath string) (string, error)
	ReadFile(path string) ([]byte, error)
}

type fsResolver struct{ cwd string }

// NewFSIncludeResolver returns the default IncludeResolver: paths are
// resolved relative to the including file's directory.
func NewFSIncludeResolver() IncludeResolver {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return &fsResolver{cwd: cwd}
}

func (r *fsResolver) Resolve(currentFile, requestedPath string) (string, error) {
	base := filepath.Dir(currentFile)
	joined := filepath.Join(base, requestedPath)
	rel, err := filepath.Rel(r.cwd, joined)
	if err != nil {
		return "", err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("include path %q escapes the working directory", requestedPath)
	}
	return filepath.ToSlash(rel), nil
}

func (r *fsResolver) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(filepath.Join(r.cwd, path))
}

// Settings configures a ParseIntoModule call.
type Settings struct {
	// DebugSymbols, when true, records function/global/instruction debug
	// symbols and keeps the full source text of every parsed file around in
	// the resulting Module's SourceDebugSymbols.
	DebugSymbols bool
	// Include resolves #include directives; NewFSIncludeResolver is used
	// when nil.
	Include IncludeResolver
}

type lexerEntry struct {
	path   string
	source string
	lex    *lexer.Lexer
}

// Parser lowers Pulsar source into a Module via recursive descent, tracking
// a stack of active lexers (one per nested #include) and the set of source
// paths already parsed, so a file is never included twice.
type Parser struct {
	stack         []*lexerEntry
	parsedSources map[string]bool
	cur           token.Token
	settings      Settings
}

// New returns a Parser with no source loaded yet; call AddSource or
// AddSourceFile before ParseIntoModule.
func New() *Parser {
	return &Parser{parsedSources: make(map[string]bool)}
}

func (p *Parser) top() *lexerEntry { return p.stack[len(p.stack)-1] }

// AddSource pushes a new lexer over src under path, returning false without
// pushing anything if path has already been parsed. An empty path is never
// tracked in the parsed-sources set, so anonymous in-memory sources (as used
// by tests) may be added more than once.
func (p *Parser) AddSource(path string, src []byte) bool {
	if path != "" {
		if p.parsedSources[path] {
			return false
		}
		p.parsedSources[path] = true
	}
	p.stack = append(p.stack, &lexerEntry{
		path:   path,
		source: string(src),
		lex:    lexer.New(path, src, true, func(token.SourcePosition, string) {}),
	})
	return true
}

// AddSourceFile reads path directly off disk (bypassing Settings.Include)
// and pushes it as a new source; mainly useful for a CLI entry point that
// wants to seed the parser with its initial file before #include resolution
// kicks in for anything nested under it.
func (p *Parser) AddSourceFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	p.AddSource(path, data)
	return nil
}

func (p *Parser) resolver() IncludeResolver {
	if p.settings.Include != nil {
		return p.settings.Include
	}
	return NewFSIncludeResolver()
}

// ParseIntoModule parses every source currently on the lexer stack (and any
// #include it reaches transitively) into mod, appending functions, native
// declarations and globals. It stops at the first ParseError.
func (p *Parser) ParseIntoModule(mod *module.Module, settings Settings) *ParseError {
	p.settings = settings
	if settings.DebugSymbols {
		for _, e := range p.stack {
			mod.SourceDebugSymbols = append(mod.SourceDebugSymbols, module.SourceDebugSymbol{Path: e.path, SourceText: e.source})
		}
	}
	for len(p.stack) > 0 {
		if err := p.parseModuleStatement(mod); err != nil {
			return err
		}
	}
	return nil
}

// parseModuleStatement parses exactly one module-level statement: a
// function/native declaration, a global definition, or a #include
// directive. Hitting end-of-file pops the exhausted lexer and, if another
// one remains on the stack, continues parsing it; otherwise parsing is
// complete.
func (p *Parser) parseModuleStatement(mod *module.Module) *ParseError {
	p.advance()
	switch p.cur.Kind {
	case token.STAR:
		return p.parseFunctionDefinition(mod)
	case token.DIRECTIVE:
		return p.parseIncludeDirective(mod)
	case token.GLOBAL:
		return p.parseGlobalDefinition(mod)
	case token.EOF:
		p.stack = p.stack[:len(p.stack)-1]
		if len(p.stack) > 0 {
			return p.parseModuleStatement(mod)
		}
		return nil
	default:
		return p.fail(UnexpectedToken, "expected function declaration or compiler directive")
	}
}

func (p *Parser) parseIncludeDirective(mod *module.Module) *ParseError {
	if p.cur.StringVal != "include" {
		return p.fail(UnexpectedToken, "unknown compiler directive %q", p.cur.StringVal)
	}
	p.advance()
	if p.cur.Kind != token.STRING {
		return p.fail(UnexpectedToken, "expected file path")
	}
	requested := p.cur.StringVal

	resolver := p.resolver()
	resolved, err := resolver.Resolve(p.top().path, requested)
	if err != nil {
		return p.fail(IncludePathOutsideWorkingDirectory, "%v", err)
	}
	data, err := resolver.ReadFile(resolved)
	if err != nil {
		return p.fail(FileNotRead, "could not read file %q: %v", resolved, err)
	}
	if p.AddSource(resolved, data) && p.settings.DebugSymbols {
		e := p.top()
		mod.SourceDebugSymbols = append(mod.SourceDebugSymbols, module.SourceDebugSymbol{Path: e.path, SourceText: e.source})
	}
	return nil
}

// advance fetches the next token from whichever lexer is currently on top
// of the stack.
func (p *Parser) advance() { p.cur = p.top().lex.Next() }

func (p *Parser) fail(code ParseResult, format string, args ...any) *ParseError {
	path := ""
	if len(p.stack) > 0 {
		path = p.top().path
	}
	return newError(code, p.cur, path, format, args...)
}

// sourceIdx returns the index into mod.SourceDebugSymbols for the currently
// active lexer's path, or 0 if not found (debug symbols are best-effort).
func (p *Parser) sourceIdx(mod *module.Module) int {
	path := p.top().path
	for i, s := range mod.SourceDebugSymbols {
		if s.Path == path {
			return i
		}
	}
	return 0
}
