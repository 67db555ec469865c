package model

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	c := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			c++
		}
	}
	return float64(c) / float64(len(yTrue))
}

// PrecisionRecallF1 scores one class against the rest. Undefined ratios are 0.
func PrecisionRecallF1(yTrue []int, yPred []int, positive int) (prec, rec, f1 float64) {
	tp, fp, fn := 0, 0, 0
	for i := range yTrue {
		if yPred[i] == positive && yTrue[i] == positive {
			tp++
		}
		if yPred[i] == positive && yTrue[i] != positive {
			fp++
		}
		if yPred[i] != positive && yTrue[i] == positive {
			fn++
		}
	}
	if tp+fp > 0 {
		prec = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		rec = float64(tp) / float64(tp+fn)
	}
	if prec+rec > 0 {
		f1 = 2 * prec * rec / (prec + rec)
	}
	return
}

// ConfusionMatrix counts predictions per (true, predicted) class pair, rows
// and columns ordered as classes.
func ConfusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	pos := make(map[int]int, len(classes))
	for i, c := range classes {
		pos[c] = i
	}
	m := make([][]int, len(classes))
	for i := range m {
		m[i] = make([]int, len(classes))
	}
	for i := range yTrue {
		t, okT := pos[yTrue[i]]
		p, okP := pos[yPred[i]]
		if okT && okP {
			m[t][p]++
		}
	}
	return m
}

// ClassMetrics is one row of a classification report.
type ClassMetrics struct {
	Label     string
	Precision float64
	Recall    float64
	F1        float64
	Support   int
}

// ClassificationReport summarises predictions per class.
type ClassificationReport struct {
	Title       string
	Classes     []ClassMetrics
	Accuracy    float64
	MacroAvg    ClassMetrics
	WeightedAvg ClassMetrics
	Labels      []int
	Confusion   [][]int
}

// NewClassificationReport scores yPred against yTrue for every label in
// labels. names, when given, label the rows.
func NewClassificationReport(yTrue, yPred []int, labels []int, names []string) (*ClassificationReport, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("metrics: %d labels, %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("metrics: no samples")
	}
	if len(labels) == 0 {
		labels = uniqueSorted(append(append([]int(nil), yTrue...), yPred...))
	}

	r := &ClassificationReport{
		Accuracy:    Accuracy(yTrue, yPred),
		Labels:      append([]int(nil), labels...),
		Confusion:   ConfusionMatrix(yTrue, yPred, labels),
		MacroAvg:    ClassMetrics{Label: "macro avg"},
		WeightedAvg: ClassMetrics{Label: "weighted avg"},
	}
	total := 0
	for i, lab := range labels {
		prec, rec, f1 := PrecisionRecallF1(yTrue, yPred, lab)
		support := 0
		for _, v := range yTrue {
			if v == lab {
				support++
			}
		}
		name := fmt.Sprint(lab)
		if i < len(names) {
			name = names[i]
		}
		r.Classes = append(r.Classes, ClassMetrics{Label: name, Precision: prec, Recall: rec, F1: f1, Support: support})
		total += support
	}

	k := float64(len(r.Classes))
	for _, c := range r.Classes {
		r.MacroAvg.Precision += c.Precision / k
		r.MacroAvg.Recall += c.Recall / k
		r.MacroAvg.F1 += c.F1 / k
		if total > 0 {
			w := float64(c.Support) / float64(total)
			r.WeightedAvg.Precision += c.Precision * w
			r.WeightedAvg.Recall += c.Recall * w
			r.WeightedAvg.F1 += c.F1 * w
		}
	}
	r.MacroAvg.Support = total
	r.WeightedAvg.Support = total
	return r, nil
}

// TableStyle is table.StyleLight with headers printed as given.
func TableStyle() table.Style {
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	return style
}

// Render formats the report as a text table followed by the confusion matrix.
func (r *ClassificationReport) Render() string {
	tw := table.NewWriter()
	tw.SetStyle(TableStyle())
	if r.Title != "" {
		tw.SetTitle(r.Title)
	}
	tw.AppendHeader(table.Row{"", "precision", "recall", "f1-score", "support"})
	for _, c := range r.Classes {
		tw.AppendRow(metricsRow(c))
	}
	tw.AppendSeparator()
	support := r.MacroAvg.Support
	tw.AppendRow(table.Row{"accuracy", "", "", fmt.Sprintf("%.2f", r.Accuracy), support})
	tw.AppendRow(metricsRow(r.MacroAvg))
	tw.AppendRow(metricsRow(r.WeightedAvg))
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	cm := table.NewWriter()
	cm.SetStyle(TableStyle())
	cm.SetTitle("confusion matrix")
	header := table.Row{"true \\ predicted"}
	for _, c := range r.Classes {
		header = append(header, c.Label)
	}
	cm.AppendHeader(header)
	for i, row := range r.Confusion {
		out := table.Row{r.Classes[i].Label}
		for _, v := range row {
			out = append(out, v)
		}
		cm.AppendRow(out)
	}

	var sb strings.Builder
	sb.WriteString(tw.Render())
	sb.WriteString("\n")
	sb.WriteString(cm.Render())
	sb.WriteString("\n")
	return sb.String()
}

func metricsRow(c ClassMetrics) table.Row {
	return table.Row{
		c.Label,
		fmt.Sprintf("%.2f", c.Precision),
		fmt.Sprintf("%.2f", c.Recall),
		fmt.Sprintf("%.2f", c.F1),
		c.Support,
	}
}
