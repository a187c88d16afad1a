package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"cofoundr/state"
	"cofoundr/types"

	"github.com/spf13/cobra"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printStep writes the result of step in human-readable form
func printStep(w io.Writer, snap state.Snapshot, step types.Step) error {
	switch step {
	case types.StepAnalyze:
		if snap.AnalyzeResult == nil {
			return nil
		}
		for _, s := range snap.AnalyzeResult.Sections() {
			body := strings.TrimSpace(s.Body)
			if body == "" {
				body = "—"
			}
			fmt.Fprintf(w, "%s\n%s\n\n%s\n\n", s.Label, strings.Repeat("-", len(s.Label)), body)
		}

	case types.StepSimulate:
		sim := snap.SimulateResult
		rows := make([][]string, 0, 5)
		for _, f := range sim.Headlines() {
			rows = append(rows, []string{f.Label, f.Value})
		}
		rows = append(rows, []string{"Success Probability", fmt.Sprintf("%.0f%%", sim.Probability())})
		fmt.Fprintln(w, renderTable([]string{"Figure", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

		series := sim.GrowthSeries()
		growth := make([][]string, 0, len(series))
		for _, p := range series {
			growth = append(growth, []string{p.Name, types.FormatValue(p.Value)})
		}
		fmt.Fprintln(w, renderTable([]string{"Year", "Market Growth"}, growth, []columnAlignment{alignLeft, alignRight}))
		if sim != nil && sim.Summary != "" {
			fmt.Fprintf(w, "\n%s\n", sim.Summary)
		}

	case types.StepBrochure:
		if img := snap.BrochureImage; img != nil {
			fmt.Fprintln(w, img.Ref())
		}

	case types.StepReport:
		if doc := snap.Report; doc != nil {
			fmt.Fprintln(w, doc.Handle)
		}

	case types.StepLinkedIn:
		fmt.Fprintln(w, snap.LinkedInPost)

	case types.StepAutoPost:
		res := snap.AutopostResult
		msg := "Successfully posted to LinkedIn!"
		if res != nil && res.Message != "" {
			msg = res.Message
		}
		fmt.Fprintln(w, msg)

	case types.StepMetrics:
		m := snap.Metrics
		if m == nil {
			return nil
		}
		cards := m.Cards()
		extra := m.ExtraKeys()
		rows := make([][]string, 0, len(cards)+len(extra))
		for _, f := range cards {
			rows = append(rows, []string{f.Label, f.Value})
		}
		for _, key := range extra {
			rows = append(rows, []string{types.HumanizeKey(key), types.FormatValue(m.Extra[key])})
		}
		fmt.Fprintln(w, renderTable([]string{"Metric", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))
	}
	return nil
}

// printSummary writes one row per step with its status and any error
func printSummary(w io.Writer, snap state.Snapshot) {
	rows := make([][]string, 0, len(snap.Steps))
	for _, st := range snap.Steps {
		result := ""
		switch st.Step {
		case types.StepBrochure:
			if snap.BrochureImage != nil {
				result = snap.BrochureImage.Ref()
			}
		case types.StepReport:
			if snap.Report != nil {
				result = snap.Report.Handle
			}
		}
		if st.Error != "" {
			result = st.Error
		}
		rows = append(rows, []string{st.Label, string(st.Status), result})
	}
	fmt.Fprintln(w, renderTable([]string{"Step", "Status", "Result"}, rows, nil))
}
