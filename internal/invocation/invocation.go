// Package invocation defines the value type describing a single tool
// invocation: the unit of work the driver schedules and executes.
package invocation

import "sort"

// AuxiliaryFile describes a file an invocation consumes that the driver
// itself must materialize on disk before the invocation runs.
type AuxiliaryFile struct {
	Path       string
	Contents   []byte
	Executable bool
}

// Invocation is an immutable description of one tool invocation.
//
// Executable may be empty (a phony invocation that exists purely to
// establish ordering edges and is never executed), may begin with
// "builtin-" (resolved through the built-in registry), may be an
// absolute path, or may be a bare name resolved by searching the target
// environment's SDK executable search path.
//
// Paths in Inputs/Outputs/PhonyInputs/PhonyOutputs/InputDependencies/
// OutputDependencies are never normalized; equality between paths is
// byte-equality.
type Invocation struct {
	Executable       string
	Arguments        []string
	Environment      map[string]string
	WorkingDirectory string

	Inputs  []string
	Outputs []string

	PhonyInputs  []string
	PhonyOutputs []string

	InputDependencies  []string
	OutputDependencies []string

	AuxiliaryFiles []AuxiliaryFile
}

// IsPhony reports whether this invocation establishes ordering only and
// is never executed.
func (i Invocation) IsPhony() bool {
	return i.Executable == ""
}

// SortedEnvironmentKeys returns the invocation's environment variable
// names in sorted order, for presentation to the user. This says nothing
// about the order in which a spawned child process observes them.
func (i Invocation) SortedEnvironmentKeys() []string {
	keys := make([]string, 0, len(i.Environment))
	for k := range i.Environment {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
