// Package optimizer implements spec §4.3's Unused pass: given a set of
// exported-symbol predicates, it marks every function/native/global
// transitively reachable from the exports, discards everything else, and
// remaps the surviving cross-references so the module stays internally
// consistent.
package optimizer

import (
	"golang.org/x/exp/slices"

	"github.com/pulsar-lang/pulsar/lang/module"
)

// Settings selects what counts as an export: anything IsExportedFunction
// accepts is a root of the reachability walk, and anything reachable from
// it (by Call/PushFunctionReference, CallNative/PushNativeFunctionReference,
// or any of the Push/Move/PopInto/CopyInto-Global opcodes) is kept too.
// IsExportedNative and IsExportedGlobal additionally mark natives/globals
// that should survive even if nothing reachable from an exported function
// touches them (e.g. a native a host plans to call directly by index).
//
// A nil predicate exports nothing via that axis — leaving IsExportedFunction
// nil keeps no function at all, since nothing is reachable from the
// outside. Constants are never pruned: nothing in the reference
// implementation's Unused pass tracks constant reachability either, and an
// unreferenced constant costs nothing but a few bytes in the binary.
type Settings struct {
	IsExportedFunction func(index int, def *module.FunctionDefinition) bool
	IsExportedNative   func(index int, def *module.NativeBinding) bool
	IsExportedGlobal   func(index int, def *module.GlobalDefinition) bool
}

// ExportedFunctionNames returns a Settings.IsExportedFunction predicate
// that accepts the functions named in names. Name resolution mirrors
// Module.FindFunctionByName: if a name was declared more than once, the
// most recently declared definition is the one considered exported.
func ExportedFunctionNames(mod *module.Module, names []string) func(int, *module.FunctionDefinition) bool {
	exported := indexSet(names, mod.FindFunctionByName)
	return func(idx int, _ *module.FunctionDefinition) bool { return exported[idx] }
}

// ExportedNativeNames is ExportedFunctionNames for native declarations.
func ExportedNativeNames(mod *module.Module, names []string) func(int, *module.NativeBinding) bool {
	exported := indexSet(names, mod.FindNativeByName)
	return func(idx int, _ *module.NativeBinding) bool { return exported[idx] }
}

// ExportedGlobalNames is ExportedFunctionNames for globals.
func ExportedGlobalNames(mod *module.Module, names []string) func(int, *module.GlobalDefinition) bool {
	exported := indexSet(names, mod.FindGlobalByName)
	return func(idx int, _ *module.GlobalDefinition) bool { return exported[idx] }
}

func indexSet(names []string, lookup func(string) int) map[int]bool {
	set := make(map[int]bool, len(names))
	for _, name := range names {
		if idx := lookup(name); idx != module.InvalidIndex {
			set[idx] = true
		}
	}
	return set
}

// Optimize runs the Unused pass over mod in place. mod is left unmodified
// if it fails module.Validate's cross-reference check first — an
// out-of-bounds Arg0 would otherwise make the reachability walk itself
// index out of bounds.
func Optimize(mod *module.Module, settings Settings) error {
	if err := mod.Validate(); err != nil {
		return err
	}

	reachableFns, reachableNatives, reachableGlobals := markReachable(mod, settings)

	fnRemap := buildRemap(reachableFns)
	nativeRemap := buildRemap(reachableNatives)
	globalRemap := buildRemap(reachableGlobals)

	mod.Functions = deleteUnreachable(mod.Functions, reachableFns)
	mod.NativeBindings = deleteUnreachable(mod.NativeBindings, reachableNatives)
	mod.NativeFunctions = deleteUnreachable(mod.NativeFunctions, reachableNatives)
	mod.Globals = deleteUnreachable(mod.Globals, reachableGlobals)

	remapIndices(mod, fnRemap, nativeRemap, globalRemap)
	mod.RebuildNameIndex()
	return nil
}

// markReachable walks every exported function's code transitively, marking
// every function/native/global it (directly or indirectly) touches, then
// folds in whatever IsExportedNative/IsExportedGlobal additionally claim.
func markReachable(mod *module.Module, settings Settings) (fns, natives, globals []bool) {
	fns = make([]bool, len(mod.Functions))
	natives = make([]bool, len(mod.NativeBindings))
	globals = make([]bool, len(mod.Globals))

	if settings.IsExportedFunction != nil {
		var worklist []int
		for i, fn := range mod.Functions {
			if settings.IsExportedFunction(i, fn) {
				fns[i] = true
				worklist = append(worklist, i)
			}
		}

		for len(worklist) > 0 {
			idx := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]

			for _, insn := range mod.Functions[idx].Code {
				switch {
				case insn.Opcode.ReferencesFunction():
					target := int(insn.Arg0)
					if !fns[target] {
						worklist = append(worklist, target)
					}
					fns[target] = true
				case insn.Opcode.ReferencesNative():
					natives[int(insn.Arg0)] = true
				case insn.Opcode.ReferencesGlobal():
					globals[int(insn.Arg0)] = true
				}
			}
		}
	}

	if settings.IsExportedNative != nil {
		for i, nb := range mod.NativeBindings {
			if natives[i] {
				continue // already reachable from an exported function
			}
			if settings.IsExportedNative(i, nb) {
				natives[i] = true
			}
		}
	}

	if settings.IsExportedGlobal != nil {
		for i, g := range mod.Globals {
			if globals[i] {
				continue
			}
			if settings.IsExportedGlobal(i, g) {
				globals[i] = true
			}
		}
	}

	return fns, natives, globals
}

// buildRemap returns, for each original index, the index that item will
// occupy after deleteUnreachable compacts it away, or module.InvalidIndex
// if it doesn't survive.
func buildRemap(reachable []bool) []int {
	remap := make([]int, len(reachable))
	next := 0
	for i, keep := range reachable {
		if keep {
			remap[i] = next
			next++
		} else {
			remap[i] = module.InvalidIndex
		}
	}
	return remap
}

// deleteUnreachable removes the elements of items whose matching entry in
// reachable is false, preserving the relative order of survivors.
// NativeBindings and NativeFunctions are always compacted against the same
// reachable slice, so the two stay aligned exactly as Module requires.
func deleteUnreachable[T any](items []T, reachable []bool) []T {
	i := 0
	return slices.DeleteFunc(items, func(T) bool {
		keep := reachable[i]
		i++
		return !keep
	})
}

// remapIndices rewrites every surviving instruction's Arg0 to account for
// the compaction buildRemap/deleteUnreachable just performed.
func remapIndices(mod *module.Module, fnRemap, nativeRemap, globalRemap []int) {
	for _, fn := range mod.Functions {
		for i := range fn.Code {
			insn := &fn.Code[i]
			switch {
			case insn.Opcode.ReferencesFunction():
				insn.Arg0 = int64(fnRemap[insn.Arg0])
			case insn.Opcode.ReferencesNative():
				insn.Arg0 = int64(nativeRemap[insn.Arg0])
			case insn.Opcode.ReferencesGlobal():
				insn.Arg0 = int64(globalRemap[insn.Arg0])
			}
		}
	}
}
