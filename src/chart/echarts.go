// echarts.go
package chart

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"SurvivalDashboard/src/processor"
)

// echarts 用 "-" 表示空数据
const gap = "-"

// Renderer go-echarts 图表的公共接口
type Renderer interface {
	Render(w io.Writer) error
}

func initOpts(title string) charts.GlobalOpts {
	return charts.WithInitializationOpts(opts.Initialization{
		PageTitle: title,
		Width:     fmt.Sprintf("%dpx", Width),
		Height:    fmt.Sprintf("%dpx", Height),
	})
}

func barValue(rate float64) interface{} {
	if processor.NoData(rate) {
		return gap
	}
	return math.Round(rate*100) / 100
}

// AgeGroupChart 各年龄段生还率柱状图, 五个年龄段固定顺序, 空组留空
func (b *Builder) AgeGroupChart(v processor.ViewResults) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(AgeGroupTitle),
		charts.WithTitleOpts(opts.Title{Title: AgeGroupTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "Age Group: {b}<br/>Survival Rate: {c}%"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Top: "bottom"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Age Group"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Survival Rate (%)", Min: 0}),
	)

	labels := make([]string, len(processor.AgeGroups))
	data := make([]opts.BarData, len(processor.AgeGroups))
	for i, g := range processor.AgeGroups {
		labels[i] = g.String()
		data[i] = opts.BarData{Name: g.String(), Value: barValue(v.AgeGroups[g])}
	}

	bar.SetXAxis(labels).
		AddSeries("Survival Rate", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: ageGroupColor}))
	return bar
}

// ClassGenderChart 舱位x性别生还率柱状图, 先按舱位再按 female/male 排列
func (b *Builder) ClassGenderChart(v processor.ViewResults) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		initOpts(ClassGenderTitle),
		charts.WithTitleOpts(opts.Title{Title: ClassGenderTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "Class, Gender: {b}<br/>Survival Rate: {c}%"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Class, Gender", AxisLabel: &opts.AxisLabel{Rotate: 45}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Survival Rate (%)", Min: 0}),
	)

	var labels []string
	var data []opts.BarData
	for _, cls := range processor.Classes {
		for _, g := range processor.Genders {
			k := processor.ClassGender{Class: cls, Gender: g}
			labels = append(labels, classGenderLabel(k))
			data = append(data, opts.BarData{Name: classGenderLabel(k), Value: barValue(v.ClassGender[k])})
		}
	}

	bar.SetXAxis(labels).
		AddSeries("Survival Rate", data, charts.WithItemStyleOpts(opts.ItemStyle{Color: classGenderColor}))
	return bar
}

// FareChart 票价与生还散点图, 每个舱位一个系列
func (b *Builder) FareChart(v processor.ViewResults) (*charts.Scatter, error) {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		initOpts(FareTitle),
		charts.WithTitleOpts(opts.Title{Title: FareTitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Formatter: "Class: {a}<br/>Fare, Survived: {c}"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10", Top: "30"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Fare", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Survived", Type: "value", Min: -0.1, Max: 1.1}),
	)

	byClass := make(map[processor.Class][]opts.ScatterData, len(processor.Classes))
	for _, p := range v.Fares {
		survived := 0
		if p.Survived {
			survived = 1
		}
		byClass[p.Class] = append(byClass[p.Class], opts.ScatterData{
			Name:       fmt.Sprintf("Passenger %d", p.PassengerID),
			Value:      []interface{}{p.Fare, survived},
			SymbolSize: 8,
		})
	}

	for cls := range byClass {
		if _, err := b.ClassColor(cls); err != nil {
			return nil, err
		}
	}

	for _, cls := range processor.Classes {
		color, _ := b.ClassColor(cls)
		scatter.AddSeries(cls.Label(), byClass[cls],
			charts.WithItemStyleOpts(opts.ItemStyle{Color: rgba(color, pointAlpha)}))
	}
	return scatter, nil
}

// Chart 返回指定图表
func (b *Builder) Chart(view View, v processor.ViewResults) (Renderer, error) {
	switch view {
	case AgeGroupView:
		return b.AgeGroupChart(v), nil
	case ClassGenderView:
		return b.ClassGenderChart(v), nil
	case FareView:
		return b.FareChart(v)
	default:
		return nil, fmt.Errorf("unknown chart %q", view)
	}
}

// RenderHTML 生成可独立打开的 HTML 文档
func (b *Builder) RenderHTML(view View, v processor.ViewResults) ([]byte, error) {
	c, err := b.Chart(view, v)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", view, err)
	}
	return buf.Bytes(), nil
}
