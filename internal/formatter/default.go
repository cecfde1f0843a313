package formatter

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"

	"xbdriver/internal/invocation"
)

// DefaultFormatter renders Xcode-style human-readable progress text,
// colorized when writing to a color-capable terminal. All state
// (indentation depth, per-target timers) is private to this type; the
// Formatter interface itself carries no state.
type DefaultFormatter struct {
	color bool

	mu      sync.Mutex
	depth   int
	started map[string]time.Time
}

// NewDefaultFormatter returns a DefaultFormatter. If out is a
// color-capable terminal, output is colorized; otherwise it degrades to
// plain text.
func NewDefaultFormatter(out *os.File) *DefaultFormatter {
	return &DefaultFormatter{
		color:   supportsColor(out),
		started: make(map[string]time.Time),
	}
}

// NewDefaultFormatterWithColor returns a DefaultFormatter with color
// forced on or off, bypassing terminal detection — used when the CLI's
// -color flag overrides auto-detection.
func NewDefaultFormatterWithColor(enabled bool) *DefaultFormatter {
	return &DefaultFormatter{color: enabled, started: make(map[string]time.Time)}
}

func (f *DefaultFormatter) indent() string {
	return strings.Repeat("    ", f.depth)
}

func (f *DefaultFormatter) paint(c color.Color, s string) string {
	if !f.color {
		return s
	}
	return c.Render(s)
}

func (f *DefaultFormatter) Begin(ctx context.Context, build Build) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started["__build__"] = time.Now()
	return f.paint(color.FgCyan, fmt.Sprintf("=== BUILD %s ===", build.Name)) + "\n"
}

func (f *DefaultFormatter) Success(ctx context.Context, build Build) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	elapsed := time.Since(f.started["__build__"])
	return f.paint(color.FgGreen, fmt.Sprintf("** BUILD SUCCEEDED ** (%.2fs)", elapsed.Seconds())) + "\n"
}

func (f *DefaultFormatter) Failure(ctx context.Context, build Build, failing []invocation.Invocation) string {
	var b strings.Builder
	b.WriteString(f.paint(color.FgRed, "** BUILD FAILED **"))
	b.WriteString("\n")
	for _, inv := range failing {
		b.WriteString(f.paint(color.FgRed, fmt.Sprintf("    failing invocation: %s", describeInvocation(inv))))
		b.WriteString("\n")
	}
	return b.String()
}

func (f *DefaultFormatter) BeginTarget(ctx context.Context, build Build, target Target) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.started[target.Name] = time.Now()
	f.depth++
	return f.paint(color.FgYellow, fmt.Sprintf("=== TARGET %s ===", target.Name)) + "\n"
}

func (f *DefaultFormatter) FinishTarget(ctx context.Context, build Build, target Target) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	elapsed := time.Since(f.started[target.Name])
	if f.depth > 0 {
		f.depth--
	}
	return fmt.Sprintf("%s(target %s finished, %.2fs)\n", f.indent(), target.Name, elapsed.Seconds())
}

func (f *DefaultFormatter) BeginCheckDependencies(ctx context.Context, target Target) string {
	return fmt.Sprintf("%sCheck dependencies\n", f.indent())
}

func (f *DefaultFormatter) FinishCheckDependencies(ctx context.Context, target Target) string {
	return ""
}

func (f *DefaultFormatter) BeginWriteAuxiliaryFiles(ctx context.Context, target Target) string {
	return fmt.Sprintf("%sWrite auxiliary files\n", f.indent())
}

func (f *DefaultFormatter) FinishWriteAuxiliaryFiles(ctx context.Context, target Target) string {
	return ""
}

func (f *DefaultFormatter) CreateAuxiliaryDirectory(ctx context.Context, path string) string {
	return fmt.Sprintf("%s    /bin/mkdir -p %s\n", f.indent(), path)
}

func (f *DefaultFormatter) WriteAuxiliaryFile(ctx context.Context, path string) string {
	return fmt.Sprintf("%s    write %s\n", f.indent(), path)
}

func (f *DefaultFormatter) SetAuxiliaryExecutable(ctx context.Context, path string) string {
	return fmt.Sprintf("%s    chmod 0755 %s\n", f.indent(), path)
}

func (f *DefaultFormatter) BeginCreateProductStructure(ctx context.Context, target Target) string {
	return fmt.Sprintf("%sCreate product structure\n", f.indent())
}

func (f *DefaultFormatter) FinishCreateProductStructure(ctx context.Context, target Target) string {
	return ""
}

func (f *DefaultFormatter) BeginInvocation(ctx context.Context, inv invocation.Invocation, resolvedExecutable string) string {
	if inv.IsPhony() {
		return ""
	}
	return fmt.Sprintf("%s%s\n", f.indent(), f.paint(color.FgBlue, describeInvocation(inv)))
}

func (f *DefaultFormatter) FinishInvocation(ctx context.Context, inv invocation.Invocation, resolvedExecutable string) string {
	return ""
}

func describeInvocation(inv invocation.Invocation) string {
	if len(inv.Outputs) > 0 {
		return fmt.Sprintf("%s %s", inv.Executable, strings.Join(inv.Outputs, " "))
	}
	return inv.Executable
}
