// snapshot.go
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"SurvivalDashboard/src/processor"
)

// ErrNoData 图表中没有任何可绘制的数据
var ErrNoData = errors.New("chart has no data")

func hexToColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// pointStyle 只画点不画线
func pointStyle(col drawing.Color) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

func barStyle(col drawing.Color) chart.Style {
	return chart.Style{
		FillColor:   col,
		StrokeColor: drawing.ColorWhite,
		StrokeWidth: 1,
	}
}

func rateAxis() chart.YAxis {
	return chart.YAxis{
		Name:  "Survival Rate (%)",
		Range: &chart.ContinuousRange{Min: 0, Max: 100},
		Ticks: []chart.Tick{
			{Value: 0, Label: "0"}, {Value: 25, Label: "25"}, {Value: 50, Label: "50"},
			{Value: 75, Label: "75"}, {Value: 100, Label: "100"},
		},
	}
}

// renderBars 空组不画柱子
func renderBars(title string, values []chart.Value) ([]byte, error) {
	if len(values) == 0 {
		return nil, ErrNoData
	}
	bc := chart.BarChart{
		Title:      title,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		BarWidth:   Width / (2*len(values) + 2),
		YAxis:      rateAxis(),
		Bars:       values,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", title, err)
	}
	return buf.Bytes(), nil
}

// AgeGroupSnapshot 年龄段柱状图 PNG
func (b *Builder) AgeGroupSnapshot(v processor.ViewResults) ([]byte, error) {
	col := hexToColor(ageGroupColor)
	var values []chart.Value
	for _, g := range processor.AgeGroups {
		rate := v.AgeGroups[g]
		if processor.NoData(rate) {
			continue
		}
		values = append(values, chart.Value{Label: g.String(), Value: rate, Style: barStyle(col)})
	}
	return renderBars(AgeGroupTitle, values)
}

// ClassGenderSnapshot 舱位x性别柱状图 PNG
func (b *Builder) ClassGenderSnapshot(v processor.ViewResults) ([]byte, error) {
	col := hexToColor(classGenderColor)
	var values []chart.Value
	for _, cls := range processor.Classes {
		for _, g := range processor.Genders {
			k := processor.ClassGender{Class: cls, Gender: g}
			rate := v.ClassGender[k]
			if processor.NoData(rate) {
				continue
			}
			values = append(values, chart.Value{Label: classGenderLabel(k), Value: rate, Style: barStyle(col)})
		}
	}
	return renderBars(ClassGenderTitle, values)
}

// FareSnapshot 票价散点图 PNG
func (b *Builder) FareSnapshot(v processor.ViewResults) ([]byte, error) {
	if len(v.Fares) == 0 {
		return nil, ErrNoData
	}

	xs := make(map[processor.Class][]float64, len(processor.Classes))
	ys := make(map[processor.Class][]float64, len(processor.Classes))
	maxFare := 0.0
	for _, p := range v.Fares {
		y := 0.0
		if p.Survived {
			y = 1
		}
		xs[p.Class] = append(xs[p.Class], p.Fare)
		ys[p.Class] = append(ys[p.Class], y)
		maxFare = math.Max(maxFare, p.Fare)
	}

	var series []chart.Series
	for _, cls := range processor.Classes {
		if len(xs[cls]) == 0 {
			continue
		}
		color, err := b.ClassColor(cls)
		if err != nil {
			return nil, err
		}
		series = append(series, chart.ContinuousSeries{
			Name:    cls.Label(),
			XValues: xs[cls],
			YValues: ys[cls],
			Style:   pointStyle(hexToColor(color).WithAlpha(uint8(pointAlpha * 255))),
		})
	}

	if maxFare == 0 {
		maxFare = 1
	}
	ch := chart.Chart{
		Title:      FareTitle,
		Width:      Width,
		Height:     Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Fare", Range: &chart.ContinuousRange{Min: 0, Max: maxFare * 1.05}},
		YAxis: chart.YAxis{
			Name:  "Survived",
			Range: &chart.ContinuousRange{Min: -0.1, Max: 1.1},
			Ticks: []chart.Tick{{Value: 0, Label: "0"}, {Value: 1, Label: "1"}},
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	var buf bytes.Buffer
	if err := ch.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", FareTitle, err)
	}
	return buf.Bytes(), nil
}

// Snapshot 返回指定图表的 PNG
func (b *Builder) Snapshot(view View, v processor.ViewResults) ([]byte, error) {
	switch view {
	case AgeGroupView:
		return b.AgeGroupSnapshot(v)
	case ClassGenderView:
		return b.ClassGenderSnapshot(v)
	case FareView:
		return b.FareSnapshot(v)
	default:
		return nil, fmt.Errorf("unknown chart %q", view)
	}
}
