package maincmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mna/mainer"

	"github.com/pulsar-lang/pulsar/lang/binary"
)

// Compile parses or reads args[0], optimizes it, and writes it out as a
// Neutron file, grounded on the reference CLI's CompileCommand (Read/Parse,
// then Optimize, then Write). The default output path is args[0] with its
// extension replaced by .ntx, matching Action::Write.
func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
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

	out := c.Out
	if out == "" {
		out = strings.TrimSuffix(path, filepath.Ext(path)) + ".ntx"
	}

	data := binary.Write(mod, binary.WriteSettings{StoreDebugSymbols: !c.NoDebug})
	if err := os.WriteFile(out, data, 0o644); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return err
	}

	fmt.Fprintf(stdio.Stdout, "%s: wrote %s\n", path, out)
	return nil
}
