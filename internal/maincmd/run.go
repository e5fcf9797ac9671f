package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/pulsar-lang/pulsar/internal/hostnative"
	"github.com/pulsar-lang/pulsar/lang/interp"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/value"
)

// stackTraceDepth bounds the stack trace printed on a runtime fault; the
// reference CLI derives this from RuntimeOptions.StackTraceDepth, which this
// driver has no flag for, so a fixed depth is used instead.
const stackTraceDepth = 16

// Run parses or reads args[0], optimizes it, and calls its entry-point
// function, grounded on the reference CLI's Action::Run: it pushes a single
// list holding the program path followed by any extra arguments, calls the
// entry point by name (so a missing entry point reports FunctionNotFound
// distinctly from any other fault) and then drives the context to
// completion with Run, printing a stack trace on failure.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]

	mod, err := loadModule(path, !c.NoDebug)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	if err := optimize(mod, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	hostnative.Bind(mod, stdio.Stdout)

	runCtx := interp.New(mod)

	argv := value.NewValueList()
	argv.Append(value.Str(path))
	for _, a := range args[1:] {
		argv.Append(value.Str(a))
	}
	runCtx.Push(value.Lst(argv))

	callState := runCtx.CallFunctionByName(c.EntryPoint)
	if callState == module.FunctionNotFound {
		err := fmt.Errorf("entry point function (%s) not found", c.EntryPoint)
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	runState := callState
	if callState.IsOK() {
		runState = runCtx.Run()
	}
	if !runState.IsOK() {
		fmt.Fprintf(stdio.Stderr, "runtime error: %s\n%s\n", runState, runCtx.GetStackTrace(stackTraceDepth))
		return runState
	}

	stack := runCtx.RootStack()
	if len(stack) == 0 {
		fmt.Fprintf(stdio.Stdout, "stack after (%s) call: []\n", c.EntryPoint)
		return nil
	}
	fmt.Fprintf(stdio.Stdout, "stack after (%s) call:\n", c.EntryPoint)
	for i, v := range stack {
		fmt.Fprintf(stdio.Stdout, "%d. %s\n", i+1, v)
	}
	return nil
}
