package dashboard

import (
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/redelete/internal/domain"
)

// Render writes an HTML report of one run: why items were kept, and what
// happened to the rest.
func Render(w io.Writer, account string, res domain.RunResult) error {
	// 1. Retention reasons
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Retained Items", Subtitle: "u/" + account}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	pie.AddSeries("Retained", []opts.PieData{
		{Name: "excluded subreddit", Value: res.Retained.Subreddit},
		{Name: "too new", Value: res.Retained.TooNew},
		{Name: "score too high", Value: res.Retained.ScoreTooHigh},
	})

	// 2. Outcomes
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Run Outcome", Subtitle: fmt.Sprintf("%d items seen over %d pages", res.Seen, res.Pages)}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)
	bar.SetXAxis([]string{"retained", "deleted", "dry-run", "failed"}).
		AddSeries("Items", []opts.BarData{
			{Value: res.Retained.Total()},
			{Value: res.Deleted},
			{Value: res.Skipped},
			{Value: res.Failed},
		})

	if err := pie.Render(w); err != nil {
		return fmt.Errorf("render retention chart: %w", err)
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render outcome chart: %w", err)
	}
	return nil
}

// WriteFile renders the report to path.
func WriteFile(path, account string, res domain.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Render(f, account, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
