// data.go
package processor

import (
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// EnrichedTable 富化后的乘客表, 创建后只读
type EnrichedTable struct {
	df   dataframe.DataFrame
	rows []PassengerRecord
}

// NewEnrichedTable 由已富化的记录构建表
func NewEnrichedTable(records []PassengerRecord) *EnrichedTable {
	n := len(records)
	ids := make([]int, n)
	survived := make([]int, n)
	classes := make([]int, n)
	sexes := make([]string, n)
	ages := make([]float64, n)
	fares := make([]float64, n)
	cabins := make([]string, n)
	embarked := make([]string, n)
	groups := make([]string, n)
	rates := make([]float64, n)

	for i, r := range records {
		ids[i] = r.PassengerID
		if r.Survived {
			survived[i] = 1
		}
		classes[i] = int(r.Class)
		sexes[i] = r.Sex.String()
		ages[i] = r.Age
		fares[i] = r.Fare
		cabins[i] = r.Cabin
		embarked[i] = r.Embarked
		groups[i] = r.AgeGroup.String()
		rates[i] = r.SurvivalRate
	}

	df := dataframe.New(
		series.New(ids, series.Int, ColPassengerID),
		series.New(survived, series.Int, ColSurvived),
		series.New(classes, series.Int, ColClass),
		series.New(sexes, series.String, ColSex),
		series.New(ages, series.Float, ColAge),
		series.New(fares, series.Float, ColFare),
		series.New(cabins, series.String, ColCabin),
		series.New(embarked, series.String, ColEmbarked),
		series.New(groups, series.String, ColAgeGroup),
		series.New(rates, series.Float, ColSurvivalRate),
	)

	rows := make([]PassengerRecord, n)
	copy(rows, records)
	return &EnrichedTable{df: df, rows: rows}
}

// newTableFromFrame 从富化表的子集还原记录
func newTableFromFrame(df dataframe.DataFrame) (*EnrichedTable, error) {
	if df.Err != nil {
		return nil, df.Err
	}

	ids, err := df.Col(ColPassengerID).Int()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ColPassengerID, err)
	}
	survived, err := df.Col(ColSurvived).Int()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ColSurvived, err)
	}
	classes, err := df.Col(ColClass).Int()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ColClass, err)
	}
	sexes := df.Col(ColSex).Records()
	ages := df.Col(ColAge).Float()
	fares := df.Col(ColFare).Float()
	cabins := df.Col(ColCabin).Records()
	embarked := df.Col(ColEmbarked).Records()
	groups := df.Col(ColAgeGroup).Records()
	rates := df.Col(ColSurvivalRate).Float()

	rows := make([]PassengerRecord, df.Nrow())
	for i := range rows {
		sex, err := ParseGender(sexes[i])
		if err != nil {
			return nil, err
		}
		rows[i] = PassengerRecord{
			PassengerID:  ids[i],
			Survived:     survived[i] == 1,
			Class:        Class(classes[i]),
			Sex:          sex,
			Age:          ages[i],
			Fare:         fares[i],
			Cabin:        cabins[i],
			Embarked:     embarked[i],
			AgeGroup:     parseAgeGroup(groups[i]),
			SurvivalRate: rates[i],
		}
	}

	return &EnrichedTable{df: df, rows: rows}, nil
}

// Len 行数
func (t *EnrichedTable) Len() int { return len(t.rows) }

// DataFrame 返回底层 DataFrame, 用于导出
func (t *EnrichedTable) DataFrame() dataframe.DataFrame { return t.df }

// Records 返回记录副本
func (t *EnrichedTable) Records() []PassengerRecord {
	out := make([]PassengerRecord, len(t.rows))
	copy(out, t.rows)
	return out
}

// RecomputeAggregates 按本表自身的分组重新广播 SurvivalRate
func (t *EnrichedTable) RecomputeAggregates() *EnrichedTable {
	records := t.Records()
	broadcastSurvivalRate(records)
	return NewEnrichedTable(records)
}

// broadcastSurvivalRate 把年龄段均值写回每一行
func broadcastSurvivalRate(records []PassengerRecord) {
	rates := survivalByAgeGroup(records)
	for i := range records {
		rate, ok := rates[records[i].AgeGroup]
		if !ok {
			rate = math.NaN()
		}
		records[i].SurvivalRate = rate
	}
}
