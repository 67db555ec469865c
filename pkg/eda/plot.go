package eda

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var palette = []color.Color{
	color.RGBA{R: 50, G: 50, B: 255, A: 255},
	color.RGBA{R: 255, G: 120, B: 30, A: 255},
	color.RGBA{R: 40, G: 160, B: 60, A: 255},
}

// SaveHistogram writes a histogram of the numeric column col to file.
func SaveHistogram(df dataframe.DataFrame, col string, bins int, file string) error {
	s, err := numericColumn(df, col)
	if err != nil {
		return err
	}
	x := present(s.Float())
	if len(x) == 0 {
		return fmt.Errorf("%w: %q has no values", ErrEmpty, col)
	}
	p := plot.New()
	p.Title.Text = col
	p.X.Label.Text = col
	p.Y.Label.Text = "count"

	h, err := plotter.NewHist(plotter.Values(x), bins)
	if err != nil {
		return fmt.Errorf("eda: histogram %s: %w", col, err)
	}
	h.FillColor = palette[0]
	p.Add(h)
	return p.Save(6*vg.Inch, 4*vg.Inch, file)
}

// SaveCountChart writes a grouped bar chart of c to file: one group per row
// value, one bar per column value.
func SaveCountChart(c *Contingency, file string) error {
	if len(c.Rows) == 0 || len(c.Cols) == 0 {
		return fmt.Errorf("%w: nothing to plot for %s", ErrEmpty, c.Row)
	}
	p := plot.New()
	p.Title.Text = c.Row + " by " + c.Col
	p.Y.Label.Text = "count"

	w := vg.Points(40 / float64(len(c.Cols)))
	for j, name := range c.Cols {
		vs := make(plotter.Values, len(c.Rows))
		for r := range c.Rows {
			vs[r] = float64(c.Counts[r][j])
		}
		bars, err := plotter.NewBarChart(vs, w)
		if err != nil {
			return fmt.Errorf("eda: bar chart %s: %w", c.Row, err)
		}
		bars.Color = palette[j%len(palette)]
		bars.LineStyle.Width = vg.Length(0)
		bars.Offset = w * vg.Length(float64(j)-float64(len(c.Cols)-1)/2)
		p.Add(bars)
		p.Legend.Add(name, bars)
	}
	p.Legend.Top = true
	p.NominalX(c.Rows...)
	return p.Save(vg.Length(len(c.Rows))*vg.Inch+2*vg.Inch, 4*vg.Inch, file)
}

// SavePlots writes a histogram for each numeric column and a count chart
// against by for each categorical column into dir. It returns the files
// written.
func SavePlots(df dataframe.DataFrame, by, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	var files []string
	for _, col := range NumericColumns(df) {
		file := filepath.Join(dir, "hist_"+fileName(col)+".png")
		if err := SaveHistogram(df, col, 20, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	for _, u := range Uniques(df) {
		if u.Column == by {
			continue
		}
		c, err := Crosstab(df, u.Column, by)
		if err != nil {
			return files, err
		}
		file := filepath.Join(dir, "count_"+fileName(u.Column)+".png")
		if err := SaveCountChart(c, file); err != nil {
			return files, err
		}
		files = append(files, file)
	}
	return files, nil
}

func fileName(col string) string {
	return strings.ReplaceAll(col, "-", "_")
}
