/* chart.go
 * Contains the PNG trend chart of a team's points per match
 */

package export

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"cyber-scout/api/logic"
)

// Palette is the set of colours a chart is drawn with
type Palette struct {
	Background drawing.Color
	Text       drawing.Color
	Auto       drawing.Color
	Teleop     drawing.Color
	Endgame    drawing.Color
	Total      drawing.Color
}

// DefaultPalette is a dark theme that reads well in Discord
var DefaultPalette = Palette{
	Background: drawing.ColorFromHex("2b2d31"),
	Text:       drawing.ColorFromHex("dbdee1"),
	Auto:       drawing.ColorFromHex("0074d9"),
	Teleop:     drawing.ColorFromHex("2ecc40"),
	Endgame:    drawing.ColorFromHex("ff851b"),
	Total:      drawing.ColorFromHex("ffdc00"),
}

func lineStyle(c drawing.Color, width float64) chart.Style {
	return chart.Style{
		StrokeColor: c,
		StrokeWidth: width,
		DotColor:    c,
		DotWidth:    3,
	}
}

// TrendChart draws auto, teleop, endgame and total points against match number.
// Preconditions: Receives the team number, its per match points in the order to plot them, and the palette
// Postconditions: Returns PNG bytes, a placeholder image when there are no matches, or an error if rendering fails
func TrendChart(team int, summary []logic.MatchPoints, palette Palette) ([]byte, error) {
	if len(summary) == 0 {
		return renderNoDataPlaceholder(fmt.Sprintf("No matches recorded for team %d", team), palette)
	}

	xValues := make([]float64, len(summary))
	series := map[string][]float64{"Auto": {}, "Teleop": {}, "Endgame": {}, "Total": {}}
	minX, maxX, maxY := float64(summary[0].MatchNumber), float64(summary[0].MatchNumber), 0.0
	for i, entry := range summary {
		x := float64(entry.MatchNumber)
		xValues[i] = x
		minX, maxX = min(minX, x), max(maxX, x)
		maxY = max(maxY, entry.Auto, entry.Teleop, entry.Endgame, entry.Total)
		series["Auto"] = append(series["Auto"], entry.Auto)
		series["Teleop"] = append(series["Teleop"], entry.Teleop)
		series["Endgame"] = append(series["Endgame"], entry.Endgame)
		series["Total"] = append(series["Total"], entry.Total)
	}

	newSeries := func(name string, c drawing.Color, width float64) chart.ContinuousSeries {
		return chart.ContinuousSeries{Name: name, XValues: xValues, YValues: series[name], Style: lineStyle(c, width)}
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("Team %d", team),
		Width:  800,
		Height: 400,
		TitleStyle: chart.Style{
			FontColor: palette.Text,
		},
		Background: chart.Style{
			FillColor: palette.Background,
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Match",
			ValueFormatter: func(v any) string { return fmt.Sprintf("%.0f", v) },
			Style:          chart.Style{FontColor: palette.Text},
			// Padded so a single match still has a non zero range
			Range: &chart.ContinuousRange{Min: minX - 1, Max: maxX + 1},
		},
		YAxis: chart.YAxis{
			Name:  "Points",
			Style: chart.Style{FontColor: palette.Text},
			Range: &chart.ContinuousRange{Min: 0, Max: max(maxY, 1) * 1.1},
		},
		Series: []chart.Series{
			newSeries("Auto", palette.Auto, 2),
			newSeries("Teleop", palette.Teleop, 2),
			newSeries("Endgame", palette.Endgame, 2),
			newSeries("Total", palette.Total, 3),
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(msg string, palette Palette) ([]byte, error) {
	const (
		width  = 400
		height = 200
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{Style: chart.Style{Hidden: true}},
		YAxis: chart.YAxis{Style: chart.Style{Hidden: true}},
		// Render needs a visible series, this one is drawn in the background colour
		Series: []chart.Series{
			chart.ContinuousSeries{
				XValues: []float64{0, 1},
				YValues: []float64{0, 1},
				Style:   chart.Style{StrokeColor: palette.Background, StrokeWidth: 1},
			},
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(palette.Text)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
