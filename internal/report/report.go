// Package report renders an explorer view as a Markdown summary, optionally
// converted to a standalone HTML page.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gradscope/app"
	"gradscope/internal/aggregate"
	"gradscope/internal/salary"
)

// Markdown renders the view. Charts come out as tables of label, count and
// percent; no-data charts print their message instead.
func Markdown(view *app.ExplorerView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", view.Variant.Title)
	fmt.Fprintf(&b, "**Majors:** %s  \n", view.MajorsLabel)
	fmt.Fprintf(&b, "**Years:** %s  \n", yearsLabel(view.Criteria.StartYear, view.Criteria.EndYear))
	fmt.Fprintf(&b, "**Matching strata:** %d of %d\n\n", view.RowCount, view.BaseRowCount)

	if len(view.Warnings) > 0 {
		b.WriteString("> **Warnings**\n")
		for _, w := range view.Warnings {
			fmt.Fprintf(&b, "> - %s\n", w.Message)
		}
		b.WriteString("\n")
	}

	if view.Salary != nil {
		b.WriteString("## Salary\n\n")
		fmt.Fprintf(&b, "Median salary: **%s**\n\n", view.Salary.Display)
		if len(view.Salary.Percentiles) > 0 {
			b.WriteString("| Estimate | Median across strata |\n|---|---:|\n")
			for _, p := range salary.Percentiles {
				if v, ok := view.Salary.Percentiles[p.Column]; ok {
					fmt.Fprintf(&b, "| %s | %s |\n", p.Label, salary.FormatCurrency(v))
				}
			}
			b.WriteString("\n_Percentiles are estimated from each stratum's mean and standard deviation assuming a normal distribution._\n\n")
		}
	}

	for _, c := range []*aggregate.Breakdown{
		view.Charts.Employment, view.Charts.Reasons, view.Charts.Ethnicity, view.Charts.Gender, view.Charts.Degree,
	} {
		if c != nil {
			writeBreakdown(&b, *c)
		}
	}

	if len(view.Charts.DrillDown) > 0 {
		fmt.Fprintf(&b, "## Drill-down: %s\n\n", view.Selection.Status)
		for _, c := range view.Charts.DrillDown {
			writeBreakdown(&b, c)
		}
	}
	return b.String()
}

func writeBreakdown(b *strings.Builder, c aggregate.Breakdown) {
	fmt.Fprintf(b, "### %s\n\n", c.Title)
	if !c.OK() {
		fmt.Fprintf(b, "_%s_\n\n", c.Message)
		return
	}
	b.WriteString("| Category | Count | Percent |\n|---|---:|---:|\n")
	for _, s := range c.Slices {
		fmt.Fprintf(b, "| %s | %s | %.1f%% |\n", escape(s.Label), formatCount(s.Value), s.Percent)
	}
	b.WriteString("\n")
}

func yearsLabel(start, end string) string {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	switch {
	case start == "":
		return "All"
	case end == "" || end == start:
		return start
	}
	return start + " to " + end
}

func formatCount(v float64) string {
	return strings.TrimPrefix(salary.FormatCurrency(v), "$")
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// HTML converts Markdown into a complete HTML document.
func HTML(title, md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: title,
	})
	return markdown.ToHTML([]byte(md), p, r)
}
