package tui

import (
	"fmt"
	"math"
	"strings"

	"cofoundr/types"
)

const barWidth = 40

// View implements tea.Model interface
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(TextTitle))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n\n")

	step := m.Page()
	st := m.snapshot.Step(step)
	switch st.Status {
	case types.StatusLoading:
		b.WriteString(m.spinner.View() + LoadingStyle.Render(" Working on "+step.Label()+"..."))
		b.WriteString("\n\n")
	case types.StatusError:
		b.WriteString(ErrorStyle.Render("❌ " + st.Error))
		b.WriteString("\n\n")
	}

	switch step {
	case types.StepAnalyze:
		b.WriteString(m.viewAnalyze())
	case types.StepSimulate:
		b.WriteString(m.viewSimulate())
	case types.StepBrochure:
		b.WriteString(m.viewBrochure())
	case types.StepReport:
		b.WriteString(m.viewReport())
	case types.StepLinkedIn:
		b.WriteString(m.viewLinkedIn())
	case types.StepAutoPost:
		b.WriteString(m.viewAutoPost())
	case types.StepMetrics:
		b.WriteString(m.viewMetrics())
	}
	b.WriteString("\n")

	for _, t := range m.toasts {
		style := ToastSuccessStyle
		if t.kind == ToastError {
			style = ToastErrorStyle
		}
		b.WriteString(style.Render(t.text))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(InfoStyle.Render(m.footer()))
	return b.String()
}

// renderTabs draws the workflow tracker: one tab per step, coloured by status
func (m Model) renderTabs() string {
	tabs := make([]string, 0, len(pages))
	for i, step := range pages {
		st := m.snapshot.Step(step)
		label := statusIcon(st.Status) + " " + step.Label()
		style := TabStyle
		if i == m.page {
			style = ActiveTabStyle
		}
		tabs = append(tabs, style.Inherit(statusStyle(st.Status)).Render(label))
	}
	return strings.Join(tabs, InfoStyle.Render("│"))
}

func (m Model) footer() string {
	switch {
	case m.editing:
		return TextFooterEditing
	case m.Page() == types.StepAnalyze:
		return TextFooter
	case m.Page() == types.StepLinkedIn:
		return TextFooterPost
	default:
		return TextFooterIdle
	}
}

func (m Model) viewAnalyze() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(TextAnalyzeIntro))
	b.WriteString("\n\n")
	b.WriteString(m.idea.View())
	b.WriteString("\n\n")

	analysis := m.snapshot.AnalyzeResult
	if analysis == nil {
		b.WriteString(InfoStyle.Render(TextNoAnalysis))
		return b.String()
	}

	var md strings.Builder
	for _, s := range analysis.Sections() {
		body := s.Body
		if strings.TrimSpace(body) == "" {
			body = "—"
		}
		fmt.Fprintf(&md, "## %s\n\n%s\n\n", s.Label, body)
	}
	b.WriteString(m.renderMarkdown(md.String()))
	return b.String()
}

func (m Model) viewSimulate() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(TextSimulateIntro))
	b.WriteString("\n\n")

	sim := m.snapshot.SimulateResult
	if sim == nil {
		if m.snapshot.AnalyzeResult == nil {
			b.WriteString(InfoStyle.Render(TextNoAnalysis))
		} else {
			b.WriteString(InfoStyle.Render(TextNoResult))
		}
		return b.String()
	}

	var figures strings.Builder
	for _, f := range sim.Headlines() {
		fmt.Fprintf(&figures, "%-12s %s\n", f.Label, HighlightStyle.Render(f.Value))
	}
	fmt.Fprintf(&figures, "%-12s %s", "Success", StatusStyle.Render(fmt.Sprintf("%.0f%%", sim.Probability())))
	b.WriteString(BoxStyle.Render(figures.String()))
	b.WriteString("\n\n")

	b.WriteString(renderBars(sim.GrowthSeries()))

	if sim.Summary != "" {
		b.WriteString("\n")
		b.WriteString(m.renderMarkdown(sim.Summary))
	}
	return b.String()
}

// renderBars draws a horizontal bar chart scaled to the largest value
func renderBars(points []types.SeriesPoint) string {
	maxVal := 0.0
	for _, p := range points {
		maxVal = math.Max(maxVal, p.Value)
	}

	var b strings.Builder
	for _, p := range points {
		n := 0
		if maxVal > 0 && p.Value > 0 {
			n = int(math.Round(p.Value / maxVal * barWidth))
		}
		fmt.Fprintf(&b, "%-6s %s %s\n", p.Name, BarStyle.Render(strings.Repeat("█", n)), InfoStyle.Render(types.FormatValue(p.Value)))
	}
	return b.String()
}

func (m Model) viewBrochure() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(TextBrochureIntro))
	b.WriteString("\n\n")

	img := m.snapshot.BrochureImage
	if img == nil {
		b.WriteString(InfoStyle.Render(TextNoResult))
		return b.String()
	}

	var box strings.Builder
	switch img.Kind {
	case types.ImageURL:
		fmt.Fprintf(&box, "Image URL: %s", img.URL)
	default:
		fmt.Fprintf(&box, "Saved image: %s\nType: %s\nSize: %s", img.Handle, img.ContentType, humanBytes(img.Size))
	}
	b.WriteString(BoxStyle.Render(box.String()))
	return b.String()
}

func (m Model) viewReport() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(TextReportIntro))
	b.WriteString("\n\n")

	doc := m.snapshot.Report
	if doc == nil {
		b.WriteString(InfoStyle.Render(TextNoResult))
		return b.String()
	}
	b.WriteString(BoxStyle.Render(fmt.Sprintf("Report: %s\nSaved at: %s\nSize: %s", doc.Name, doc.Handle, humanBytes(doc.Size))))
	return b.String()
}

func (m Model) viewLinkedIn() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(TextLinkedInIntro))
	b.WriteString("\n\n")

	if m.editing {
		b.WriteString(m.post.View())
		return b.String()
	}
	if m.snapshot.LinkedInPost == "" {
		b.WriteString(InfoStyle.Render(TextNoPost))
		return b.String()
	}
	b.WriteString(BoxStyle.Width(wordWrap).Render(m.snapshot.LinkedInPost))
	return b.String()
}

func (m Model) viewAutoPost() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(TextAutoPostIntro))
	b.WriteString("\n\n")

	if m.snapshot.LinkedInPost == "" {
		b.WriteString(InfoStyle.Render(TextNoPost))
	} else {
		b.WriteString(BoxStyle.Width(wordWrap).Render(m.snapshot.LinkedInPost))
	}

	if res := m.snapshot.AutopostResult; res != nil {
		b.WriteString("\n\n")
		msg := res.Message
		if msg == "" {
			msg = "Posted."
		}
		if res.Success != nil && !*res.Success {
			b.WriteString(ErrorStyle.Render(msg))
		} else {
			b.WriteString(StatusStyle.Render("✅ " + msg))
		}
	}
	return b.String()
}

func (m Model) viewMetrics() string {
	var b strings.Builder
	b.WriteString(InfoStyle.Render(fmt.Sprintf(TextMetricsIntro, m.poller.Interval())))
	b.WriteString("\n\n")

	metrics := m.snapshot.Metrics
	if metrics == nil {
		b.WriteString(InfoStyle.Render(TextNoMetrics))
		return b.String()
	}

	var cards strings.Builder
	for i, f := range metrics.Cards() {
		if i > 0 {
			cards.WriteString("\n")
		}
		fmt.Fprintf(&cards, "%-24s %s", f.Label, HighlightStyle.Render(f.Value))
	}
	b.WriteString(BoxStyle.Render(cards.String()))

	extra := metrics.ExtraKeys()
	if len(extra) == 0 {
		return b.String()
	}
	var box strings.Builder
	for i, key := range extra {
		if i > 0 {
			box.WriteString("\n")
		}
		fmt.Fprintf(&box, "%-24s %s", types.HumanizeKey(key), types.FormatValue(metrics.Extra[key]))
	}
	b.WriteString("\n")
	b.WriteString(BoxStyle.Render(box.String()))
	return b.String()
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
