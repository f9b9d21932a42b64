package leaderboardservice

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"time"

	scoredb "github.com/Gr33nOps/VTcade/app/modules/score/infrastructure/repositories"
	"github.com/Gr33nOps/VTcade/pkg/results"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors of rendered charts.
type ChartPalette struct {
	Background string
	Text       string
	Submitted  string
	Best       string
}

// DefaultChartPalette is used when the service is built without one.
var DefaultChartPalette = ChartPalette{
	Background: "101418",
	Text:       "e6e6e6",
	Submitted:  "5b8def",
	Best:       "f2c94c",
}

// ProgressChart renders a PNG line chart of a player's logged submissions in
// a game next to the best score held after each of them.
func (s *LeaderboardService) ProgressChart(ctx context.Context, gameID, playerID string) ([]byte, error) {
	return unwrap(withTelemetry(s, ctx, "ProgressChart", gameID, func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		gameID, playerID, err := normalizeKey(gameID, playerID)
		if err != nil {
			return results.FailureResult[[]byte, error](err), nil
		}

		events, err := s.reader.ListRecentSubmissions(ctx, nil, scoredb.SubmissionFilter{
			PlayerID: playerID,
			GameID:   gameID,
			Limit:    s.recentLimit,
		})
		if err != nil {
			return results.OperationResult[[]byte, error]{}, storageErr(err)
		}
		// Oldest first for plotting.
		slices.Reverse(events)

		data, err := renderProgressChart(events, s.palette)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](data), nil
	}))
}

func renderProgressChart(events []scoredb.SubmissionEvent, palette ChartPalette) ([]byte, error) {
	if len(events) < 2 {
		return renderNoDataPlaceholder(palette, "Not enough submissions to chart")
	}

	xValues := make([]time.Time, len(events))
	submitted := make([]float64, len(events))
	best := make([]float64, len(events))
	minY, maxY := float64(events[0].SubmittedScore), float64(events[0].SubmittedScore)
	for i, e := range events {
		xValues[i] = e.CreatedAt
		submitted[i] = float64(e.SubmittedScore)
		best[i] = float64(e.StoredScore)
		minY = min(minY, submitted[i], best[i])
		maxY = max(maxY, submitted[i], best[i])
	}

	xRange := &chart.ContinuousRange{
		Min: chart.TimeToFloat64(xValues[0]),
		Max: chart.TimeToFloat64(xValues[len(xValues)-1]),
	}
	if xRange.Max <= xRange.Min {
		xRange.Min -= float64(time.Minute)
		xRange.Max = xRange.Min + 2*float64(time.Minute)
	}
	if maxY == minY {
		maxY++
	}
	yRange := &chart.ContinuousRange{Min: minY, Max: maxY}

	graph := chart.Chart{
		Width:      800,
		Height:     400,
		Background: chart.Style{FillColor: drawing.ColorFromHex(palette.Background)},
		Canvas:     chart.Style{FillColor: drawing.ColorFromHex(palette.Background)},
		XAxis: chart.XAxis{
			Name:           "Submitted",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02 15:04"),
			Range:          xRange,
			Style:          chart.Style{FontColor: drawing.ColorFromHex(palette.Text)},
		},
		YAxis: chart.YAxis{
			Name:  "Score",
			Range: yRange,
			Style: chart.Style{FontColor: drawing.ColorFromHex(palette.Text)},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Submitted",
				XValues: xValues,
				YValues: submitted,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex(palette.Submitted),
					StrokeWidth: 1,
					DotWidth:    3,
					DotColor:    drawing.ColorFromHex(palette.Submitted),
				},
			},
			chart.TimeSeries{
				Name:    "Best",
				XValues: xValues,
				YValues: best,
				Style: chart.Style{
					StrokeColor: drawing.ColorFromHex(palette.Best),
					StrokeWidth: 2,
				},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// renderNoDataPlaceholder draws msg straight onto a raster; Chart.Render
// refuses to draw without a series.
func renderNoDataPlaceholder(palette ChartPalette, msg string) ([]byte, error) {
	const width, height = 400, 200

	r, err := chart.PNG(width, height)
	if err != nil {
		return nil, err
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return nil, err
	}

	bg := drawing.ColorFromHex(palette.Background)
	chart.Draw.Box(r, chart.Box{Top: 0, Left: 0, Right: width, Bottom: height}, chart.Style{
		FillColor:   bg,
		StrokeColor: bg,
		StrokeWidth: 1,
	})

	r.SetFont(font)
	r.SetFontColor(drawing.ColorFromHex(palette.Text))
	r.SetFontSize(12.0)
	tb := r.MeasureText(msg)
	r.Text(msg, (width-tb.Width())/2, (height+tb.Height())/2)

	var buf bytes.Buffer
	if err := r.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
