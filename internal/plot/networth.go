// Package plot renders net-worth series to PNG images.
package plot

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"trading-watchlist-backend/internal/models"
)

// ErrEmptySeries means there is nothing to plot for the requested range.
var ErrEmptySeries = errors.New("plot: empty series")

// RenderNetworth draws the samples as a time series and returns the PNG
// bytes. Samples must already be in ascending timestamp order, which is
// how the store returns them.
func RenderNetworth(accountID string, samples []models.NetworthSample) ([]byte, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySeries
	}

	xs := make([]time.Time, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Timestamp
		ys[i] = float64(s.NetWorthCents) / 100
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("Net worth: %s", accountID),
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02 15:04"),
		},
		YAxis: chart.YAxis{
			Name: "net worth",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    accountID,
				XValues: xs,
				YValues: ys,
			},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render networth chart: %w", err)
	}
	return buf.Bytes(), nil
}
