package processor

import "math"

// 生还率均为百分比, NaN 表示该组没有数据

// AgeGroupRates 五个年龄段的生还率, 键总是齐全
type AgeGroupRates map[AgeGroup]float64

// ClassGender 舱位与性别的组合键
type ClassGender struct {
	Class  Class
	Gender Gender
}

// ClassGenderRates 3x2 组合的生还率, 键总是齐全
type ClassGenderRates map[ClassGender]float64

// FarePoint 散点图中的一个点
type FarePoint struct {
	PassengerID int
	Fare        float64
	Survived    bool
	Class       Class
}

// ViewResults 三个图表所需的全部数据
type ViewResults struct {
	Rows        int
	AgeGroups   AgeGroupRates
	ClassGender ClassGenderRates
	Fares       []FarePoint
}

// NoData 判断某个生还率是否为空组
func NoData(rate float64) bool { return math.IsNaN(rate) }

type tally struct {
	total    int
	survived int
}

func (t tally) percent() float64 {
	if t.total == 0 {
		return math.NaN()
	}
	return float64(t.survived) / float64(t.total) * 100
}

func survivalByAgeGroup(records []PassengerRecord) AgeGroupRates {
	counts := make(map[AgeGroup]tally, len(AgeGroups))
	for _, r := range records {
		if r.AgeGroup == AgeGroupNone {
			continue
		}
		c := counts[r.AgeGroup]
		c.total++
		if r.Survived {
			c.survived++
		}
		counts[r.AgeGroup] = c
	}

	out := make(AgeGroupRates, len(AgeGroups))
	for _, g := range AgeGroups {
		out[g] = counts[g].percent()
	}
	return out
}

// SurvivalByAgeGroup 各年龄段生还率
func SurvivalByAgeGroup(t *EnrichedTable) AgeGroupRates {
	return survivalByAgeGroup(t.rows)
}

// SurvivalByClassAndGender 各舱位与性别组合的生还率
func SurvivalByClassAndGender(t *EnrichedTable) ClassGenderRates {
	counts := make(map[ClassGender]tally, len(Classes)*len(Genders))
	for _, r := range t.rows {
		k := ClassGender{Class: r.Class, Gender: r.Sex}
		c := counts[k]
		c.total++
		if r.Survived {
			c.survived++
		}
		counts[k] = c
	}

	out := make(ClassGenderRates, len(Classes)*len(Genders))
	for _, cls := range Classes {
		for _, g := range Genders {
			k := ClassGender{Class: cls, Gender: g}
			out[k] = counts[k].percent()
		}
	}
	return out
}

// FareSurvivalPoints 每条记录一个点, 保持表内顺序
func FareSurvivalPoints(t *EnrichedTable) []FarePoint {
	points := make([]FarePoint, len(t.rows))
	for i, r := range t.rows {
		points[i] = FarePoint{
			PassengerID: r.PassengerID,
			Fare:        r.Fare,
			Survived:    r.Survived,
			Class:       r.Class,
		}
	}
	return points
}

// ComputeViews 计算三个图表的数据
func ComputeViews(t *EnrichedTable) ViewResults {
	return ViewResults{
		Rows:        t.Len(),
		AgeGroups:   SurvivalByAgeGroup(t),
		ClassGender: SurvivalByClassAndGender(t),
		Fares:       FareSurvivalPoints(t),
	}
}
