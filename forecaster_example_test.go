package costcast

import (
	"fmt"
	"time"

	"github.com/cloudspend/costcast/timeseries"
)

func generateExampleSeries(days int) ([]string, []float64) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := timeseries.GenerateDates(start, days)
	values := timeseries.GenerateWeekly(days, 850, 2.5, 120)
	values = timeseries.WithRipple(values, 20, 30)
	values = timeseries.WithSpike(values, days/2, 6*values[days/2])
	return dates, values
}

func Example_forecastDailySpend() {
	dates, values := generateExampleSeries(120)

	opt := NewDefaultOptions()
	opt.Horizon = 14

	res, err := Forecast(dates, values, opt)
	if err != nil {
		panic(err)
	}

	fmt.Println(len(res.Forecast), len(res.CILower), len(res.CIUpper))
	fmt.Println(res.Backtest.Window, res.MissingDays)
	// Output:
	// 14 14 14
	// 24 0
}
