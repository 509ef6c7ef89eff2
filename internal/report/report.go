// Package report renders a completed scan for humans and machines. It only
// reads the final scan result; it never touches live scan state.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/termul/termul/pkg/types"
)

var riskColors = map[types.Risk]*color.Color{
	types.RiskCritical: color.New(color.FgRed, color.Bold),
	types.RiskHigh:     color.New(color.FgYellow, color.Bold),
}

// Render writes the finding list, the per-risk summary, and the correlation
// graph to w.
func Render(w io.Writer, result *types.ScanResult) {
	header := color.New(color.FgCyan, color.Bold)

	header.Fprintf(w, "\n========== FINDINGS ==========\n")
	if len(result.Findings) == 0 {
		fmt.Fprintln(w, "No findings.")
	}
	for _, f := range result.Findings {
		riskColor(f.Risk).Fprintf(w, "[%s]", f.Risk)
		fmt.Fprintf(w, " %s -> %s\n", f.Type, f.Endpoint)
	}

	header.Fprintf(w, "\n========== RISK SUMMARY ==========\n")
	for _, risk := range []types.Risk{types.RiskCritical, types.RiskHigh} {
		if n := result.Summary.ByRisk[risk]; n > 0 {
			fmt.Fprintf(w, "%s: %d\n", risk, n)
		}
	}
	fmt.Fprintf(w, "TOTAL: %d\n", result.Summary.Total)

	header.Fprintf(w, "\n========== LOGIC CORRELATION ==========\n")
	sources := make([]string, 0, len(result.Correlations))
	for source := range result.Correlations {
		sources = append(sources, source)
	}
	sort.Strings(sources)
	for _, source := range sources {
		fmt.Fprintf(w, "%s => %s\n", source, strings.Join(result.Correlations[source], ", "))
	}

	if result.Stopped {
		riskColors[types.RiskCritical].Fprintf(w, "\nScan halted early: critical finding threshold reached\n")
	}
}

// WriteJSON emits the scan result envelope as indented JSON.
func WriteJSON(w io.Writer, result *types.ScanResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func riskColor(risk types.Risk) *color.Color {
	if c, ok := riskColors[risk]; ok {
		return c
	}
	return color.New(color.FgWhite)
}
