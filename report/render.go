package report

import "fmt"
import "math"
import "sort"
import "strings"

import "github.com/charmbracelet/lipgloss"
import "github.com/charmbracelet/lipgloss/table"

import "github.com/neurlang/crystal/trainer"

const barWidth = 40

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).MarginTop(1)
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func num(v float64) string {
	return fmt.Sprintf("%.4f", v)
}

// Render prints the statistics as tables: summary metrics, absolute error
// percentiles and a histogram of signed errors.
func Render(title string, s Stats) string {
	summary := newTable("metric", "value").Rows(
		[]string{"samples", fmt.Sprint(s.N)},
		[]string{"MAE", num(s.MAE)},
		[]string{"RMSE", num(s.RMSE)},
		[]string{"bias", num(s.Bias)},
		[]string{"error std", num(s.StdErr)},
		[]string{"max |error|", num(s.MaxAbs)},
		[]string{"R²", num(s.R2)},
		[]string{"pearson r", num(s.Pearson)},
	)

	percentiles := newTable("percentile", "|error|")
	for _, p := range s.Percentiles {
		percentiles.Row(fmt.Sprintf("%.0f%%", 100*p.P), num(p.AbsErr))
	}

	var most int
	for _, b := range s.Histogram {
		most = max(most, b.Count)
	}
	hist := newTable("error range", "count", "")
	for _, b := range s.Histogram {
		var bar string
		if most > 0 {
			bar = strings.Repeat("█", b.Count*barWidth/most)
		}
		hist.Row(fmt.Sprintf("[%+.3f, %+.3f)", b.Lo, b.Hi), fmt.Sprint(b.Count), barStyle.Render(bar))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		lipgloss.JoinHorizontal(lipgloss.Top, summary.Render(), " ", percentiles.Render()),
		hist.Render(),
	)
}

// RenderHistory prints the loss curve of a run, at most rows lines.
func RenderHistory(epochs []trainer.Epoch, rows int) string {
	t := newTable("epoch", "lr", "train loss", "test MSE", "test MAE")
	if rows <= 0 {
		rows = 20
	}
	var stride = 1
	if len(epochs) > rows {
		stride = (len(epochs) + rows - 1) / rows
	}
	for i := 0; i < len(epochs); i += stride {
		if i+stride >= len(epochs) {
			i = len(epochs) - 1
		}
		e := epochs[i]
		t.Row(fmt.Sprint(e.Epoch+1), fmt.Sprintf("%.2e", e.LR), num(e.TrainLoss), num(e.TestMSE), num(e.TestMAE))
	}
	return t.Render()
}

// RenderWorst lists the n rows with the largest absolute error.
func RenderWorst(ids []string, pred, target []float64, n int) string {
	var order = make([]int, len(pred))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return math.Abs(pred[order[a]]-target[order[a]]) > math.Abs(pred[order[b]]-target[order[b]])
	})
	if n < len(order) {
		order = order[:max(n, 0)]
	}
	t := newTable("entry", "target", "predicted", "error")
	for _, i := range order {
		var id string
		if i < len(ids) {
			id = ids[i]
		}
		t.Row(id, num(target[i]), num(pred[i]), fmt.Sprintf("%+.4f", pred[i]-target[i]))
	}
	return t.Render()
}
