package costcast

import (
	"io"
	"os"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// LineForecast generates an echart line chart overlaying the history with
// the forecast and its interval band. History and forecast occupy disjoint
// date ranges, so each series is padded with nils over the other range.
func LineForecast(res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Forecast",
			},
		),
	)

	nHist := len(res.HistoryDates)
	nFc := len(res.ForecastDates)
	x := make([]string, 0, nHist+nFc)
	x = append(x, res.HistoryDates...)
	x = append(x, res.ForecastDates...)

	actual := make([]opts.LineData, 0, nHist+nFc)
	forecast := make([]opts.LineData, 0, nHist+nFc)
	upper := make([]opts.LineData, 0, nHist+nFc)
	lower := make([]opts.LineData, 0, nHist+nFc)
	for i := 0; i < nHist; i++ {
		actual = append(actual, opts.LineData{Value: res.HistoryValues[i]})
		forecast = append(forecast, opts.LineData{Value: nil})
		upper = append(upper, opts.LineData{Value: nil})
		lower = append(lower, opts.LineData{Value: nil})
	}
	for i := 0; i < nFc; i++ {
		actual = append(actual, opts.LineData{Value: nil})
		forecast = append(forecast, opts.LineData{Value: res.Forecast[i]})
		upper = append(upper, opts.LineData{Value: res.CIUpper[i]})
		lower = append(lower, opts.LineData{Value: res.CILower[i]})
	}

	line.SetXAxis(x).
		AddSeries("Actual", actual).
		AddSeries("Forecast", forecast).
		AddSeries("Upper", upper).
		AddSeries("Lower", lower)
	return line
}

// LineBacktest generates an echart line chart of the holdout window with
// the winning candidate's predictions against the actuals.
func LineBacktest(res *Results) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Backtest",
			},
		),
	)

	actual := make([]opts.LineData, 0, len(res.Backtest.Dates))
	predicted := make([]opts.LineData, 0, len(res.Backtest.Dates))
	for i := range res.Backtest.Dates {
		actual = append(actual, opts.LineData{Value: res.Backtest.Actual[i]})
		predicted = append(predicted, opts.LineData{Value: res.Backtest.Predicted[i]})
	}

	line.SetXAxis(res.Backtest.Dates).
		AddSeries("Actual", actual).
		AddSeries("Predicted", predicted)
	return line
}

// ScatterAnomalies generates an echart scatter chart of the flagged days
// over the history date axis.
func ScatterAnomalies(res *Results) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: "Anomalies",
			},
		),
	)

	data := make([]opts.ScatterData, 0, len(res.HistoryDates))
	byDate := make(map[string]float64, len(res.Anomalies))
	for _, a := range res.Anomalies {
		byDate[a.Date.Format(time.DateOnly)] = a.Actual
	}
	for _, d := range res.HistoryDates {
		if v, ok := byDate[d]; ok {
			data = append(data, opts.ScatterData{Value: v})
		} else {
			data = append(data, opts.ScatterData{Value: nil})
		}
	}

	scatter.SetXAxis(res.HistoryDates).AddSeries("Anomaly", data)
	return scatter
}

// PlotResults renders an HTML report of the forecast, the backtest window,
// and the flagged anomalies.
func PlotResults(res *Results, path string) error {
	page := components.NewPage()
	page.AddCharts(
		LineForecast(res),
		LineBacktest(res),
		ScatterAnomalies(res),
	)
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return page.Render(io.MultiWriter(file))
}
