package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
)

// Check parses or reads args[0] and reports whether it is well-formed,
// without optimizing, writing or running anything, grounded on the
// reference CLI's Action::Check.
func (c *Cmd) Check(ctx context.Context, stdio mainer.Stdio, args []string) error {
	path := args[0]

	mod, err := loadModule(path, !c.NoDebug)
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}
	if err := mod.Validate(); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", path, err)
		return err
	}

	fmt.Fprintf(stdio.Stdout, "%s: OK\n", path)
	return nil
}
