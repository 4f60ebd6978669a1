package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurvivalByClassAndGenderFourPassengers(t *testing.T) {
	rates := SurvivalByClassAndGender(fourPassengerTable())

	require.Len(t, rates, 6)
	assert.Equal(t, 100.0, rates[ClassGender{FirstClass, Female}])
	assert.Equal(t, 0.0, rates[ClassGender{FirstClass, Male}])
	assert.Equal(t, 100.0, rates[ClassGender{ThirdClass, Female}])
	assert.Equal(t, 0.0, rates[ClassGender{ThirdClass, Male}])

	// 没有二等舱乘客
	assert.True(t, NoData(rates[ClassGender{SecondClass, Female}]))
	assert.True(t, NoData(rates[ClassGender{SecondClass, Male}]))
}

func TestSurvivalByAgeGroup(t *testing.T) {
	rates := SurvivalByAgeGroup(mixedTable())

	require.Len(t, rates, len(AgeGroups))
	assert.Equal(t, 0.0, rates[Child])
	assert.Equal(t, 100.0, rates[Teen])
	assert.InDelta(t, 200.0/3, rates[YoungAdult], 1e-9)
	assert.InDelta(t, 50.0, rates[Adult], 1e-9)
	assert.Equal(t, 0.0, rates[Senior])

	for g, r := range rates {
		if NoData(r) {
			continue
		}
		assert.GreaterOrEqual(t, r, 0.0, g.String())
		assert.LessOrEqual(t, r, 100.0, g.String())
	}
}

func TestSurvivalByAgeGroupEmptyGroups(t *testing.T) {
	table := NewEnrichedTable([]PassengerRecord{
		rec(1, FirstClass, Female, true, 50, 30),
		rec(2, FirstClass, Female, true, 50, 95),
	})

	rates := SurvivalByAgeGroup(table)
	assert.Equal(t, 100.0, rates[YoungAdult])
	for _, g := range []AgeGroup{Child, Teen, Adult, Senior} {
		assert.True(t, math.IsNaN(rates[g]), g.String())
	}
}

func TestAggregationsOnEmptyTable(t *testing.T) {
	views := ComputeViews(NewEnrichedTable(nil))

	assert.Equal(t, 0, views.Rows)
	assert.Empty(t, views.Fares)
	for _, r := range views.AgeGroups {
		assert.True(t, NoData(r))
	}
	for _, r := range views.ClassGender {
		assert.True(t, NoData(r))
	}
}

func TestFareSurvivalPointsKeepOrder(t *testing.T) {
	points := FareSurvivalPoints(fourPassengerTable())

	require.Len(t, points, 4)
	assert.Equal(t, FarePoint{PassengerID: 1, Fare: 100, Survived: true, Class: FirstClass}, points[0])
	assert.Equal(t, FarePoint{PassengerID: 4, Fare: 9, Survived: false, Class: ThirdClass}, points[3])
	assert.Equal(t, points, FareSurvivalPoints(fourPassengerTable()))
}

func TestAggregationsDoNotMutateTable(t *testing.T) {
	table := mixedTable()
	before := table.Records()

	ComputeViews(table)
	ComputeViews(table)

	assert.Equal(t, len(before), table.Len())
	for i, r := range table.Records() {
		assert.Equal(t, before[i].PassengerID, r.PassengerID)
		assert.Equal(t, before[i].Fare, r.Fare)
	}
}
