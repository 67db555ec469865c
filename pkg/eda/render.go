package eda

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/marcello10/DecisionTree-Adult-Income/pkg/dataprep"
	"github.com/marcello10/DecisionTree-Adult-Income/pkg/model"
)

func newTable(title string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(model.TableStyle())
	tw.SetTitle(title)
	return tw
}

// RenderCounts formats value counts under title.
func RenderCounts(title string, counts []ValueCount) string {
	tw := newTable(title)
	tw.AppendHeader(table.Row{"value", "count", "%"})
	for _, c := range counts {
		tw.AppendRow(table.Row{c.Value, c.Count, fmt.Sprintf("%.2f", c.Percent)})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return tw.Render() + "\n"
}

// RenderSummaries formats Describe output with one row per column.
func RenderSummaries(title string, summaries []Summary) string {
	tw := newTable(title)
	tw.AppendHeader(table.Row{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max", "outliers"})
	for _, s := range summaries {
		tw.AppendRow(table.Row{
			s.Column, s.Count,
			num(s.Mean), num(s.Std), num(s.Min), num(s.Q25), num(s.Q50), num(s.Q75), num(s.Max),
			s.Outliers,
		})
	}
	return tw.Render() + "\n"
}

// RenderUniques lists the distinct values of each categorical column.
func RenderUniques(title string, uniques []ColumnValues) string {
	tw := newTable(title)
	tw.AppendHeader(table.Row{"column", "n", "values"})
	for _, u := range uniques {
		tw.AppendRow(table.Row{u.Column, len(u.Values), strings.Join(u.Values, ", ")})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 3, WidthMax: 80, WidthMaxEnforcer: text.WrapSoft}})
	return tw.Render() + "\n"
}

// RenderCorrelation prints the correlation matrix.
func RenderCorrelation(title string, c *CorrMatrix) string {
	tw := newTable(title)
	header := table.Row{""}
	for _, name := range c.Columns {
		header = append(header, name)
	}
	tw.AppendHeader(header)
	for i, name := range c.Columns {
		row := table.Row{name}
		for j := range c.Columns {
			row = append(row, fmt.Sprintf("%.2f", c.Values.At(i, j)))
		}
		tw.AppendRow(row)
	}
	return tw.Render() + "\n"
}

// RenderPivot prints group means, one row per group.
func RenderPivot(p *Pivot) string {
	tw := newTable("mean by " + p.By)
	header := table.Row{p.By}
	for _, c := range p.Columns {
		header = append(header, c)
	}
	tw.AppendHeader(header)
	for g, name := range p.Groups {
		row := table.Row{name}
		for _, v := range p.Means[g] {
			row = append(row, num(v))
		}
		tw.AppendRow(row)
	}
	return tw.Render() + "\n"
}

// RenderContingency prints counts with a total column.
func RenderContingency(c *Contingency) string {
	tw := newTable(c.Row + " by " + c.Col)
	header := table.Row{c.Row}
	for _, name := range c.Cols {
		header = append(header, name)
	}
	tw.AppendHeader(append(header, "total"))
	for r, name := range c.Rows {
		row := table.Row{name}
		total := 0
		for _, n := range c.Counts[r] {
			row = append(row, n)
			total += n
		}
		tw.AppendRow(append(row, total))
	}
	return tw.Render() + "\n"
}

func num(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// RenderMissing lists missing-value counts per column, skipping complete
// columns.
func RenderMissing(missing []dataprep.MissingColumn) string {
	tw := newTable("missing values")
	tw.AppendHeader(table.Row{"column", "missing", "%"})
	for _, m := range missing {
		if m.Count == 0 {
			continue
		}
		tw.AppendRow(table.Row{m.Column, m.Count, fmt.Sprintf("%.2f", m.Percent)})
	}
	return tw.Render() + "\n"
}
