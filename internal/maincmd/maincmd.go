// Package maincmd wires the pulsarc binary's commands (check/compile/run)
// onto github.com/mna/mainer's flag parser and exit-code convention,
// grounded on mna-nenuphar/internal/maincmd: a struct of flags plus one
// exported method per command, dispatched by name via reflection rather
// than a hand-written switch.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "pulsarc"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> <path> [<arg>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> <path> [<arg>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler and runtime driver for the Pulsar bytecode language.

The <command> can be one of:
       check                     Parse PATH and report syntax errors,
                                  without running or writing anything.
       compile                   Parse or read PATH, optimize it, and
                                  write out a Neutron (.ntx) file.
       run                       Parse or read PATH, optimize it, and
                                  run its "main" function.

A PATH whose first bytes match the Neutron signature is read as a
compiled module; otherwise it is parsed as Pulsar source.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --no-debug                Omit debug symbols (default: keep them).
       --optimize-unused         Remove unreachable functions, natives
                                  and globals before writing or running.
       --export NAMES            Comma-separated list of extra exported
                                  function names, kept alive by
                                  --optimize-unused alongside the entry
                                  point.
       -E, --entry-point NAME    Entry point function name. (default: main)
       -o, --out PATH            Output file for 'compile'. (default:
                                  PATH with its extension replaced by .ntx)
`, binName)
)

// Cmd holds the flags and dispatch state for one invocation of pulsarc.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	NoDebug        bool   `flag:"no-debug"`
	OptimizeUnused bool   `flag:"optimize-unused"`
	Export         string `flag:"export"`
	EntryPoint     string `flag:"E,entry-point"`
	Out            string `flag:"o,out"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(flags map[string]bool) { c.flags = flags }

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) == 0 {
		return fmt.Errorf("%s: a file path must be provided", cmdName)
	}
	if c.Out != "" && cmdName != "compile" {
		return fmt.Errorf("%s: invalid flag 'out'", cmdName)
	}
	if c.EntryPoint == "" {
		c.EntryPoint = "main"
	}
	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{EnvVars: false, EnvPrefix: binName + "_"}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// exportedNames splits the --export flag into a name list, empty if unset.
func (c *Cmd) exportedNames() []string {
	if c.Export == "" {
		return nil
	}
	return strings.Split(c.Export, ",")
}

// valid commands take a mainer.Stdio and a slice of strings as input and
// return an error.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type
		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}
