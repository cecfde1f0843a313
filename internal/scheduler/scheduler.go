// Package scheduler orders a target's invocations into a schedule that
// respects the data dependencies inferred from matching each
// invocation's inputs against every other invocation's outputs.
package scheduler

import (
	"xbdriver/internal/graph"
	"xbdriver/internal/invocation"
)

// Schedule builds a DAG over invocations (keyed by their index into the
// supplied slice — the "arena+index" realization the spec's design notes
// call for, avoiding pointer aliasing in the graph) and returns them in
// an order where every producer of a string appearing in another
// invocation's inputs, phony-inputs, or input-dependencies precedes that
// invocation.
//
// Self-references are elided: an invocation that lists its own output
// among its inputs gets no edge from itself. Inputs that no invocation
// in this target produces are ignored — they refer to source files or
// externally provided artifacts.
//
// When two invocations declare the same output string, the later one in
// invocations wins as that string's producer (last-writer-wins); this
// mirrors the acknowledged laxness of the source system's output index.
func Schedule(invocations []invocation.Invocation) ([]invocation.Invocation, error) {
	outputIndex := buildOutputIndex(invocations)

	g := graph.New[int]()
	for i, inv := range invocations {
		var preds []int
		for _, s := range allInputs(inv) {
			producer, ok := outputIndex[s]
			if !ok || producer == i {
				continue
			}
			preds = append(preds, producer)
		}
		g.Insert(i, preds)
	}

	order, err := g.Ordered()
	if err != nil {
		cycleErr := err.(*graph.CycleError[int])
		return nil, &CycleDetected{Invocations: indicesToInvocations(cycleErr.Nodes, invocations)}
	}

	result := make([]invocation.Invocation, len(order))
	for i, idx := range order {
		result[i] = invocations[idx]
	}
	return result, nil
}

// buildOutputIndex maps every string appearing in any invocation's
// Outputs, PhonyOutputs, or OutputDependencies to the index of the
// invocation that produced it, scanning in order so later invocations
// overwrite earlier claims on the same string.
func buildOutputIndex(invocations []invocation.Invocation) map[string]int {
	index := make(map[string]int)
	for i, inv := range invocations {
		for _, s := range inv.Outputs {
			index[s] = i
		}
		for _, s := range inv.PhonyOutputs {
			index[s] = i
		}
		for _, s := range inv.OutputDependencies {
			index[s] = i
		}
	}
	return index
}

func allInputs(inv invocation.Invocation) []string {
	all := make([]string, 0, len(inv.Inputs)+len(inv.PhonyInputs)+len(inv.InputDependencies))
	all = append(all, inv.Inputs...)
	all = append(all, inv.PhonyInputs...)
	all = append(all, inv.InputDependencies...)
	return all
}

func indicesToInvocations(indices []int, invocations []invocation.Invocation) []invocation.Invocation {
	result := make([]invocation.Invocation, 0, len(indices))
	for _, idx := range indices {
		result = append(result, invocations[idx])
	}
	return result
}

// CycleDetected is returned by Schedule when the invocations within a
// target form a cycle through their input/output dependencies.
type CycleDetected struct {
	Invocations []invocation.Invocation
}

func (e *CycleDetected) Error() string {
	return "cycle detected among target invocations"
}
