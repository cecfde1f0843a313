// Package scenario loads a build's target graph and invocations from HCL
// fixture files, the way a real driver would receive them from its
// project-parsing layer. It exists to give the driver package and the
// demo command something concrete to run against.
package scenario

import (
	"github.com/hashicorp/hcl/v2"
)

// auxiliaryFileBlock mirrors invocation.AuxiliaryFile.
type auxiliaryFileBlock struct {
	Path       string `hcl:"path,label"`
	Contents   string `hcl:"contents,optional"`
	Executable bool   `hcl:"executable,optional"`
}

// invocationBlock mirrors invocation.Invocation.
type invocationBlock struct {
	Executable         string              `hcl:"executable,optional"`
	Arguments          []string            `hcl:"arguments,optional"`
	Environment        map[string]string   `hcl:"environment,optional"`
	WorkingDirectory   string              `hcl:"working_directory,optional"`
	Inputs             []string            `hcl:"inputs,optional"`
	Outputs            []string            `hcl:"outputs,optional"`
	PhonyInputs        []string            `hcl:"phony_inputs,optional"`
	PhonyOutputs       []string            `hcl:"phony_outputs,optional"`
	InputDependencies  []string             `hcl:"input_dependencies,optional"`
	OutputDependencies []string             `hcl:"output_dependencies,optional"`
	AuxiliaryFiles     []auxiliaryFileBlock `hcl:"auxiliary_file,block"`
}

// targetBlock is a `target "name" { depends_on = [...] ... }` block.
type targetBlock struct {
	Name        string            `hcl:"name,label"`
	DependsOn   []string          `hcl:"depends_on,optional"`
	SDKPaths    []string          `hcl:"sdk_paths,optional"`
	Invocations []invocationBlock `hcl:"invocation,block"`
	Remain      hcl.Body          `hcl:",remain"`
}

// fileRoot is decoded from every scenario file; a scenario may be spread
// across several files, the way a real project's targets usually are.
type fileRoot struct {
	Targets []targetBlock `hcl:"target,block"`
	Remain  hcl.Body      `hcl:",remain"`
}
