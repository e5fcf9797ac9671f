package maincmd

import (
	"fmt"
	"os"

	"github.com/pulsar-lang/pulsar/lang/binary"
	"github.com/pulsar-lang/pulsar/lang/module"
	"github.com/pulsar-lang/pulsar/lang/parser"
)

// isNeutronFile reports whether path's first bytes match the Neutron
// signature, grounded on the reference implementation's
// PulsarTools::IsNeutronFile: a content sniff, not an extension check, so a
// renamed .ntx file is still recognized.
func isNeutronFile(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var sig [len(binary.Signature)]byte
	n, _ := f.Read(sig[:])
	return n == len(sig) && sig == binary.Signature
}

// loadModule reads path as a Neutron file or parses it as Pulsar source,
// whichever its signature indicates (mirroring RunCommand/CompileCommand's
// shared IsNeutronFile branch in the reference CLI).
func loadModule(path string, debugSymbols bool) (*module.Module, error) {
	if isNeutronFile(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		mod, rr := binary.Read(data, binary.ReadSettings{LoadDebugSymbols: debugSymbols})
		if !rr.IsOK() {
			return nil, fmt.Errorf("%s: %s", path, rr)
		}
		return mod, nil
	}

	p := parser.New()
	if err := p.AddSourceFile(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	mod := module.New()
	if perr := p.ParseIntoModule(mod, parser.Settings{DebugSymbols: debugSymbols}); perr != nil {
		return nil, perr
	}
	return mod, nil
}
