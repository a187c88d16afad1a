package tui

// UI Text Constants
const (
	TextTitle = "🚀 CoFoundr AI"

	// Page intros
	TextAnalyzeIntro  = "Describe your startup idea, then press ctrl+r to analyze it."
	TextSimulateIntro = "Market simulation for the analyzed idea."
	TextBrochureIntro = "Generate a brochure image for your idea."
	TextReportIntro   = "Generate a PDF report from the analysis."
	TextLinkedInIntro = "Draft a LinkedIn post from the analysis."
	TextAutoPostIntro = "Publish the drafted post to LinkedIn."
	TextMetricsIntro  = "Service metrics, refreshed every %s."

	// Empty states
	TextNoAnalysis = "No analysis yet."
	TextNoResult   = "Nothing generated yet."
	TextNoPost     = "No post drafted yet."
	TextNoMetrics  = "No metrics loaded yet."

	// Footer
	TextFooter        = "tab/shift+tab: switch page | ctrl+r: run | ctrl+c: quit"
	TextFooterPost    = "tab/shift+tab: switch page | ctrl+r: generate | e: edit post | q: quit"
	TextFooterEditing = "esc: save edit | ctrl+c: quit"
	TextFooterIdle    = "tab/shift+tab: switch page | ctrl+r: run | q: quit"
)
