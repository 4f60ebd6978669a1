package chart

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SurvivalDashboard/src/processor"
)

var pngMagic = []byte("\x89PNG")

func defaultColors() map[string]string {
	return map[string]string{"1": "#FF0000", "2": "008000", "3": "#0000ff"}
}

func newBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(defaultColors())
	require.NoError(t, err)
	return b
}

func passenger(id int, cls processor.Class, sex processor.Gender, age, fare float64, survived bool) processor.PassengerRecord {
	return processor.PassengerRecord{
		PassengerID: id,
		Survived:    survived,
		Class:       cls,
		Sex:         sex,
		Age:         age,
		Fare:        fare,
		Cabin:       processor.UnknownCabin,
		Embarked:    "S",
		AgeGroup:    processor.AgeGroupOf(age),
	}
}

// 没有 Senior, 也没有二等舱
func sampleViews() processor.ViewResults {
	t := processor.NewEnrichedTable([]processor.PassengerRecord{
		passenger(1, processor.FirstClass, processor.Female, 30, 100, true),
		passenger(2, processor.FirstClass, processor.Male, 40, 80, false),
		passenger(3, processor.ThirdClass, processor.Female, 8, 10, true),
		passenger(4, processor.ThirdClass, processor.Male, 16, 9, false),
	})
	return processor.ComputeViews(t)
}

func emptyViews() processor.ViewResults {
	return processor.ComputeViews(processor.NewEnrichedTable(nil))
}

func TestNewBuilder(t *testing.T) {
	b := newBuilder(t)
	c, err := b.ClassColor(processor.FirstClass)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", c)
	c, err = b.ClassColor(processor.SecondClass)
	require.NoError(t, err)
	assert.Equal(t, "#008000", c)

	missing := defaultColors()
	delete(missing, "2")
	_, err = NewBuilder(missing)
	assert.ErrorContains(t, err, "class 2")

	bad := defaultColors()
	bad["3"] = "blue"
	_, err = NewBuilder(bad)
	assert.ErrorContains(t, err, "invalid colour")

	_, err = NewBuilder(nil)
	assert.Error(t, err)
}

func TestParseView(t *testing.T) {
	for _, v := range Views {
		got, err := ParseView(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseView("pie")
	assert.Error(t, err)

	assert.Equal(t, "age_group_survival", AgeGroupView.FileBase())
	assert.Equal(t, "class_gender_survival", ClassGenderView.FileBase())
	assert.Equal(t, "fare_survival", FareView.FileBase())
}

func TestAgeGroupChartMarksGaps(t *testing.T) {
	bar := newBuilder(t).AgeGroupChart(sampleViews())

	require.Len(t, bar.MultiSeries, 1)
	data, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, data, 5)

	names := make([]string, len(data))
	for i, d := range data {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Child", "Teen", "Young Adult", "Adult", "Senior"}, names)
	assert.Equal(t, 100.0, data[0].Value)
	assert.Equal(t, 0.0, data[1].Value)
	assert.Equal(t, gap, data[4].Value)
}

func TestClassGenderChartOrder(t *testing.T) {
	bar := newBuilder(t).ClassGenderChart(sampleViews())

	data, ok := bar.MultiSeries[0].Data.([]opts.BarData)
	require.True(t, ok)
	require.Len(t, data, 6)
	assert.Equal(t, "1st, female", data[0].Name)
	assert.Equal(t, "1st, male", data[1].Name)
	assert.Equal(t, "3rd, male", data[5].Name)
	assert.Equal(t, 100.0, data[0].Value)
	assert.Equal(t, 0.0, data[1].Value)
	assert.Equal(t, gap, data[2].Value)
	assert.Equal(t, gap, data[3].Value)
}

func TestFareChartSeriesPerClass(t *testing.T) {
	scatter, err := newBuilder(t).FareChart(sampleViews())
	require.NoError(t, err)

	require.Len(t, scatter.MultiSeries, 3)
	assert.Equal(t, "1st", scatter.MultiSeries[0].Name)
	assert.Equal(t, "2nd", scatter.MultiSeries[1].Name)
	assert.Equal(t, "3rd", scatter.MultiSeries[2].Name)

	first, ok := scatter.MultiSeries[0].Data.([]opts.ScatterData)
	require.True(t, ok)
	require.Len(t, first, 2)
	assert.Equal(t, []interface{}{100.0, 1}, first[0].Value)
	assert.Equal(t, []interface{}{80.0, 0}, first[1].Value)
}

func TestRenderHTML(t *testing.T) {
	b := newBuilder(t)
	for _, view := range Views {
		data, err := b.RenderHTML(view, sampleViews())
		require.NoError(t, err)
		assert.True(t, strings.Contains(string(data), "<html"), view)
	}

	html, err := b.RenderHTML(AgeGroupView, sampleViews())
	require.NoError(t, err)
	assert.Contains(t, string(html), AgeGroupTitle)

	_, err = b.RenderHTML(View("pie"), sampleViews())
	assert.Error(t, err)
}

func TestSnapshots(t *testing.T) {
	b := newBuilder(t)
	for _, view := range Views {
		data, err := b.Snapshot(view, sampleViews())
		require.NoError(t, err, view)
		assert.True(t, len(data) > len(pngMagic))
		assert.Equal(t, pngMagic, data[:len(pngMagic)])
	}
}

func TestSnapshotsWithoutData(t *testing.T) {
	b := newBuilder(t)
	for _, view := range Views {
		_, err := b.Snapshot(view, emptyViews())
		assert.ErrorIs(t, err, ErrNoData, view)
	}
}

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	res, err := newBuilder(t).Export(dir, sampleViews())
	require.NoError(t, err)
	assert.Empty(t, res.Skipped)

	for _, name := range []string{
		"age_group_survival.html", "class_gender_survival.html", "fare_survival.html",
		"age_group_survival.png", "class_gender_survival.png", "fare_survival.png",
	} {
		path := filepath.Join(dir, name)
		assert.Contains(t, res.Files, path)
		_, err := os.Stat(path)
		assert.NoError(t, err, name)
	}
}

func TestExportEmptySelection(t *testing.T) {
	dir := t.TempDir()
	res, err := newBuilder(t).Export(dir, emptyViews())
	require.NoError(t, err)
	assert.Len(t, res.Files, 3)
	assert.Equal(t, Views, res.Skipped)
}

func TestPanelsReplace(t *testing.T) {
	p := NewPanels(newBuilder(t))

	_, _, ok := p.Get(AgeGroupView)
	assert.False(t, ok)

	require.NoError(t, p.Replace(processor.RenderState{Views: sampleViews(), Version: 1}))
	first, version, ok := p.Get(FareView)
	require.True(t, ok)
	assert.Equal(t, 1, version)
	assert.Contains(t, string(first), FareTitle)

	require.NoError(t, p.Replace(processor.RenderState{Views: emptyViews(), Version: 2}))
	second, version, ok := p.Get(FareView)
	require.True(t, ok)
	assert.Equal(t, 2, version)
	assert.NotEqual(t, first, second)
}
