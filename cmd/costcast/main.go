// Command costcast runs a demonstration forecast over a synthetic daily
// cost series and renders an HTML report. Useful for eyeballing pipeline
// changes and for profiling the model grid search.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cloudspend/costcast"
	"github.com/cloudspend/costcast/timeseries"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

func main() {
	var (
		days       = flag.Int("days", 120, "length of the synthetic history in days")
		horizon    = flag.Int("horizon", 14, "days to forecast")
		out        = flag.String("out", "forecast.html", "path of the HTML report")
		printJSON  = flag.Bool("json", false, "print the full result record as JSON")
		profileCPU = flag.Bool("profile", false, "write a CPU profile of the run")
	)
	flag.Parse()

	if *profileCPU {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	start := time.Now().UTC().AddDate(0, 0, -*days)
	dates := timeseries.GenerateDates(start, *days)
	values := timeseries.GenerateWeekly(*days, 850, 2.5, 120)
	values = timeseries.WithRipple(values, 20, 30)
	// drop a handful of spikes in so the anomaly section has content
	values = timeseries.WithSpike(values, *days/2, 6*values[*days/2])
	values = timeseries.WithSpike(values, *days-10, 4*values[*days-10])

	opt := costcast.NewDefaultOptions()
	opt.Horizon = *horizon

	res, err := costcast.Forecast(dates, values, opt)
	if err != nil {
		fmt.Fprintf(os.Stderr, "forecast failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("selected model: %s %v\n", res.SelectedModel.ID, res.SelectedModel.Params)
	fmt.Printf("backtest window: %d days, rmse=%.2f mae=%.2f smape=%.2f%% coverage=%.0f%%\n",
		res.Backtest.Window,
		res.Backtest.Metrics.RMSE,
		res.Backtest.Metrics.MAE,
		res.Backtest.Metrics.SMAPE,
		100*res.Backtest.Coverage,
	)
	fmt.Printf("interval: %s sigma=%.2f z=%.2f\n", res.Interval.Method, res.Sigma, res.Interval.Z)
	fmt.Printf("anomalies: %d, change points: %d\n", len(res.Anomalies), len(res.Analysis.ChangePoints))
	for _, note := range res.Notes {
		fmt.Printf("note: %s\n", note)
	}

	if *printJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
			os.Exit(1)
		}
	}

	if err := costcast.PlotResults(res, *out); err != nil {
		fmt.Fprintf(os.Stderr, "render failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("report written to %s\n", *out)
}
