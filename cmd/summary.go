package cmd

import (
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JakeFAU/zoocards/internal/scraper"
)

// renderSummary prints the outcome of a scrape run as a table.
func renderSummary(w io.Writer, runID string, s scraper.Summary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("run " + runID)
	t.AppendHeader(table.Row{"Metric", "Count"})
	t.AppendRow(table.Row{"Listing pages", s.Pages})
	t.AppendRow(table.Row{"Links", s.Links})
	t.AppendRow(table.Row{"Records", s.Records})

	reasons := make([]string, 0, len(s.Failures))
	for reason := range s.Failures {
		reasons = append(reasons, string(reason))
	}
	sort.Strings(reasons)
	if len(reasons) > 0 {
		t.AppendSeparator()
	}
	for _, reason := range reasons {
		t.AppendRow(table.Row{"Failed: " + reason, s.Failures[scraper.Reason(reason)]})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
