/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package report

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"chainguard.dev/evaltrace/agents/evals"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"
)

// Run renders a summary table of a RunResult with one row per score name,
// followed by the run's errors. It reports whether any mean score fell below
// threshold or any case failed.
func Run(res *evals.RunResult, threshold float64) (string, bool) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "## %s\n\n", res.ExperimentName)
	fmt.Fprintf(&buf, "%d cases, %d errors, %s\n\n", res.Cases, len(res.Errors), res.Duration.Round(1e6))

	hasFailure := res.Failed()
	names := res.ScoreNames()
	if len(names) > 0 {
		table := scoreTable([]string{"Score", "Scored", "Mean", "Min", "Max"}, &buf)
		for _, name := range names {
			vs := res.Values(name)
			mean, ok := res.Mean(name)
			if !ok {
				continue
			}
			below := mean < threshold
			if below {
				hasFailure = true
			}
			_ = table.Append([]string{
				name,
				fmt.Sprintf("%d/%d", len(vs), res.Cases),
				mark(below, fmt.Sprintf("%.2f", mean)),
				fmt.Sprintf("%.2f", slices.Min(vs)),
				fmt.Sprintf("%.2f", slices.Max(vs)),
			})
		}
		_ = table.Render()
	}

	if len(res.Errors) > 0 {
		buf.WriteString("\n### Errors\n\n")
		for _, e := range res.Errors {
			fmt.Fprintf(&buf, "- %s\n", e)
		}
	}
	return buf.String(), hasFailure
}

// scoreTable returns a markdown table with left-aligned cells, headers kept
// as written and no wrapping.
func scoreTable(headers []string, w io.Writer) *tablewriter.Table {
	left := tw.CellAlignment{Global: tw.AlignLeft}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  left,
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
			},
			Row:      tw.CellConfig{Alignment: left},
			Behavior: tw.Behavior{TrimSpace: tw.Off},
		}),
		tablewriter.WithHeader(headers),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{Left: tw.On, Right: tw.On, Top: tw.Off, Bottom: tw.Off},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}
