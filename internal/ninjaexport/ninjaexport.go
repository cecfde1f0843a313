// Package ninjaexport renders a target's scheduled invocations as a
// .ninja file, for inspecting the driver's resolved build graph with an
// external tool instead of running it.
package ninjaexport

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"xbdriver/internal/invocation"
)

// Write renders invocations (already in dependency order, as returned by
// scheduler.Schedule) as a ninja file to out. Each non-phony invocation
// becomes its own uniquely named rule, since invocations carry arbitrary
// argument lists rather than a reusable command template; phony
// invocations become build statements using ninja's phony rule.
func Write(out io.Writer, targetName string, invocations []invocation.Invocation) error {
	w := bufio.NewWriter(out)

	if _, err := fmt.Fprintf(w, "# target: %s\n\n", targetName); err != nil {
		return err
	}

	for i, inv := range invocations {
		ruleName := fmt.Sprintf("r%d", i)

		if inv.IsPhony() {
			if err := writeBuild(w, phonyOutputs(inv), "phony", phonyInputs(inv)); err != nil {
				return err
			}
			continue
		}

		command := commandLine(inv)
		if _, err := fmt.Fprintf(w, "rule %s\n  command = %s\n", ruleName, command); err != nil {
			return err
		}
		if err := writeBuild(w, inv.Outputs, ruleName, inv.Inputs); err != nil {
			return err
		}
	}

	return w.Flush()
}

func writeBuild(w *bufio.Writer, outputs []string, rule string, inputs []string) error {
	if len(outputs) == 0 {
		outputs = []string{"phony-" + rule}
	}
	line := fmt.Sprintf("build %s: %s %s\n", strings.Join(outputs, " "), rule, strings.Join(inputs, " "))
	_, err := w.WriteString(line)
	return err
}

func commandLine(inv invocation.Invocation) string {
	parts := make([]string, 0, len(inv.Arguments)+1)
	parts = append(parts, escape(inv.Executable))
	for _, arg := range inv.Arguments {
		parts = append(parts, escape(arg))
	}
	return strings.Join(parts, " ")
}

// escape quotes an argument if it contains whitespace, the way a shell
// command line embedded in a ninja rule needs to.
func escape(s string) string {
	if strings.ContainsAny(s, " \t\"") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

func phonyOutputs(inv invocation.Invocation) []string {
	if len(inv.PhonyOutputs) > 0 {
		return inv.PhonyOutputs
	}
	return inv.Outputs
}

func phonyInputs(inv invocation.Invocation) []string {
	if len(inv.PhonyInputs) > 0 {
		return inv.PhonyInputs
	}
	return inv.Inputs
}
