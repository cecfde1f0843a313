package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"

	"xbdriver/internal/ctxlog"
	"xbdriver/internal/invocation"
	"xbdriver/internal/target"
)

// Scenario is a loaded, ready-to-build fixture: a target graph plus the
// build context needed to resolve each target's environment and
// invocations. It satisfies target.Graph, target.BuildContext and carries
// its own target.BuildEnvironment (itself, by convention).
type Scenario struct {
	order       []string
	byName      map[string]targetBlock
	environment map[string]string
}

// Load parses every .hcl file found under paths (files with a .hcl
// extension are used directly; directories are walked) and assembles a
// Scenario. Target order follows each target's depends_on list, via a
// depth-first topological sort that visits target names in sorted order.
func Load(ctx context.Context, paths ...string) (*Scenario, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("scenario: discovered HCL files", "count", len(files))

	parser := hclparse.NewParser()
	byName := make(map[string]targetBlock)
	flatEnv := make(map[string]string)

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("parsing %s: %w", file, diags)
		}

		var root fileRoot
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &root); diags.HasErrors() {
			return nil, fmt.Errorf("decoding %s: %w", file, diags)
		}

		for _, t := range root.Targets {
			byName[t.Name] = t
		}

		env, ok, envErr := decodeEnvironmentAttribute(hclFile.Body)
		if envErr != nil {
			return nil, fmt.Errorf("decoding environment defaults in %s: %w", file, envErr)
		}
		if ok {
			for k, v := range env {
				flatEnv[k] = v
			}
		}
	}
	if len(flatEnv) == 0 {
		flatEnv = nil
	}

	order, err := orderTargets(byName)
	if err != nil {
		return nil, err
	}

	logger.Debug("scenario: loaded", "targets", len(order))
	return &Scenario{order: order, byName: byName, environment: flatEnv}, nil
}

// Ordered implements target.Graph.
func (s *Scenario) Ordered() ([]target.Target, error) {
	result := make([]target.Target, len(s.order))
	for i, name := range s.order {
		result[i] = Target{name: name}
	}
	return result, nil
}

// EnvironmentFor implements target.BuildContext.
func (s *Scenario) EnvironmentFor(_ target.BuildEnvironment, t target.Target) (target.Environment, error) {
	block, ok := s.byName[t.Name()]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", t.Name())
	}
	return Environment{paths: block.SDKPaths}, nil
}

// InvocationsFor implements target.BuildContext.
func (s *Scenario) InvocationsFor(_ target.BuildEnvironment, t target.Target, _ target.Environment) ([]invocation.Invocation, error) {
	block, ok := s.byName[t.Name()]
	if !ok {
		return nil, fmt.Errorf("unknown target %q", t.Name())
	}

	invocations := make([]invocation.Invocation, 0, len(block.Invocations))
	for _, ib := range block.Invocations {
		invocations = append(invocations, toInvocation(ib, s.environment))
	}
	return invocations, nil
}

func toInvocation(ib invocationBlock, defaults map[string]string) invocation.Invocation {
	env := make(map[string]string, len(defaults)+len(ib.Environment))
	for k, v := range defaults {
		env[k] = v
	}
	for k, v := range ib.Environment {
		env[k] = v
	}
	if len(env) == 0 {
		env = nil
	}

	aux := make([]invocation.AuxiliaryFile, 0, len(ib.AuxiliaryFiles))
	for _, a := range ib.AuxiliaryFiles {
		aux = append(aux, invocation.AuxiliaryFile{
			Path:       a.Path,
			Contents:   []byte(a.Contents),
			Executable: a.Executable,
		})
	}

	return invocation.Invocation{
		Executable:         ib.Executable,
		Arguments:          ib.Arguments,
		Environment:        env,
		WorkingDirectory:   ib.WorkingDirectory,
		Inputs:             ib.Inputs,
		Outputs:            ib.Outputs,
		PhonyInputs:        ib.PhonyInputs,
		PhonyOutputs:       ib.PhonyOutputs,
		InputDependencies:  ib.InputDependencies,
		OutputDependencies: ib.OutputDependencies,
		AuxiliaryFiles:     aux,
	}
}

// Target is the scenario package's concrete target.Target.
type Target struct {
	name string
}

func (t Target) Name() string { return t.name }

// Environment is the scenario package's concrete target.Environment.
type Environment struct {
	paths []string
}

func (e Environment) ExecutablePaths() []string { return e.paths }

func orderTargets(byName map[string]targetBlock) ([]string, error) {
	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	visited := make(map[string]int) // 0=unvisited 1=visiting 2=done
	var order []string
	var visit func(name string, path []string) error
	visit = func(name string, path []string) error {
		switch visited[name] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("cycle in target dependencies: %v", append(path, name))
		}
		visited[name] = 1
		block, ok := byName[name]
		if !ok {
			return fmt.Errorf("target %q depends on unknown target %q", path[len(path)-1], name)
		}
		for _, dep := range block.DependsOn {
			if err := visit(dep, append(path, name)); err != nil {
				return err
			}
		}
		visited[name] = 2
		order = append(order, name)
		return nil
	}

	for _, name := range names {
		if err := visit(name, nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func findHCLFiles(paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})

	add := func(p string) {
		if _, ok := seen[p]; !ok {
			files = append(files, p)
			seen[p] = struct{}{}
		}
	}

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			if filepath.Ext(path) == ".hcl" {
				add(path)
			}
			continue
		}
		walkErr := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() && filepath.Ext(p) == ".hcl" {
				add(p)
			}
			return nil
		})
		if walkErr != nil {
			return nil, walkErr
		}
	}
	sort.Strings(files)
	return files, nil
}

// decodeEnvironmentAttribute looks for a top-level `environment = {...}`
// attribute and decodes it through cty/gocty rather than gohcl's own map
// decoding: the HCL object value is converted to a map of strings and
// then decoded, so a malformed value (wrong element type, non-string
// keys) surfaces as a conversion error with the attribute's own range.
func decodeEnvironmentAttribute(body hcl.Body) (map[string]string, bool, error) {
	content, _, _ := body.PartialContent(&hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "environment", Required: false}},
	})
	attr, ok := content.Attributes["environment"]
	if !ok {
		return nil, false, nil
	}
	val, diags := attr.Expr.Value(nil)
	if diags.HasErrors() {
		return nil, false, diags
	}
	if val.IsNull() {
		return nil, false, nil
	}

	mapVal, err := convert.Convert(val, cty.Map(cty.String))
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", attr.Range, err)
	}
	var out map[string]string
	if err := gocty.FromCtyValue(mapVal, &out); err != nil {
		return nil, false, fmt.Errorf("%s: %w", attr.Range, err)
	}
	return out, true, nil
}
