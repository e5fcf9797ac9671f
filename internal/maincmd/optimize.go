package maincmd

import (
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/optimizer"
)

// optimize runs the Unused pass over mod when --optimize-unused was given,
// exporting the entry point plus any --export names so both stay reachable
// (mirroring the reference CLI's OptimizerOptions::HasOptimizationsActive
// guard around Action::Optimize). It is a no-op otherwise.
func optimize(mod *module.Module, c *Cmd) error {
	if !c.OptimizeUnused {
		return nil
	}
	names := append([]string{c.EntryPoint}, c.exportedNames()...)
	settings := optimizer.Settings{
		IsExportedFunction: optimizer.ExportedFunctionNames(mod, names),
	}
	return optimizer.Optimize(mod, settings)
}
