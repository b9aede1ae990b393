package costcast

import (
	"testing"
)

var benchRes *Results

func BenchmarkForecast(b *testing.B) {
	dates, values := generateExampleSeries(120)
	opt := NewDefaultOptions()

	var res *Results
	var err error

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err = Forecast(dates, values, opt)
		if err != nil {
			b.Fatal(err)
		}
	}
	benchRes = res
}

func BenchmarkForecastLongHistory(b *testing.B) {
	dates, values := generateExampleSeries(365)
	opt := NewDefaultOptions()
	opt.Horizon = 28

	var res *Results
	var err error

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		res, err = Forecast(dates, values, opt)
		if err != nil {
			b.Fatal(err)
		}
	}
	benchRes = res
}
