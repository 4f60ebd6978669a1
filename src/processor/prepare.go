package processor

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/montanaflynn/stats"

	"SurvivalDashboard/src/utils"
)

// ColumnMap 逻辑列名 -> 原始表头
type ColumnMap map[string]string

// 逻辑列名
const (
	FieldPassengerID = "passenger_id"
	FieldSurvived    = "survived"
	FieldClass       = "class"
	FieldSex         = "sex"
	FieldAge         = "age"
	FieldFare        = "fare"
	FieldCabin       = "cabin"
	FieldEmbarked    = "embarked"
)

var defaultHeaders = ColumnMap{
	FieldPassengerID: ColPassengerID,
	FieldSurvived:    ColSurvived,
	FieldClass:       ColClass,
	FieldSex:         ColSex,
	FieldAge:         ColAge,
	FieldFare:        ColFare,
	FieldCabin:       ColCabin,
	FieldEmbarked:    ColEmbarked,
}

var requiredFields = []string{FieldAge, FieldSex, FieldClass, FieldFare, FieldSurvived, FieldEmbarked}

func (m ColumnMap) header(field string) string {
	if h, ok := m[field]; ok && h != "" {
		return h
	}
	return defaultHeaders[field]
}

// 原始数据中视为缺失的取值
var naValues = []string{"", "NaN", "nan", "NA", "N/A", "<nil>"}

func isMissing(s string) bool {
	return utils.Contains(naValues, strings.TrimSpace(s))
}

// Prepare 清洗原始数据并计算派生列
// 步骤:
// 1. 校验必需列
// 2. 逐行解析
// 3. 全表插补(年龄中位数、登船港口众数、舱房占位)
// 4. 年龄分箱并广播各年龄段生还率
func Prepare(raw dataframe.DataFrame, cols ColumnMap) (*EnrichedTable, error) {
	if raw.Err != nil {
		return nil, raw.Err
	}

	// 1. 必需列
	for _, f := range requiredFields {
		if !utils.HasColumn(raw, cols.header(f)) {
			return nil, columnError(cols.header(f), "required column missing")
		}
	}

	n := raw.Nrow()
	column := func(field string) []string {
		h := cols.header(field)
		if !utils.HasColumn(raw, h) {
			return nil
		}
		return raw.Col(h).Records()
	}

	ids := column(FieldPassengerID)
	survived := column(FieldSurvived)
	classes := column(FieldClass)
	sexes := column(FieldSex)
	ages := column(FieldAge)
	fares := column(FieldFare)
	cabins := column(FieldCabin)
	embarked := column(FieldEmbarked)

	// 2. 逐行解析
	records := make([]PassengerRecord, n)
	for i := 0; i < n; i++ {
		r := &records[i]

		r.PassengerID = i + 1
		if ids != nil && !isMissing(ids[i]) {
			id, err := strconv.Atoi(strings.TrimSpace(ids[i]))
			if err != nil {
				return nil, &DataError{Column: cols.header(FieldPassengerID), Row: i, Value: ids[i], Reason: "not an integer"}
			}
			r.PassengerID = id
		}

		s, err := parseSurvived(survived[i])
		if err != nil {
			return nil, &DataError{Column: cols.header(FieldSurvived), Row: i, Value: survived[i], Reason: err.Error()}
		}
		r.Survived = s

		if r.Class, err = ParseClass(classes[i]); err != nil {
			return nil, &DataError{Column: cols.header(FieldClass), Row: i, Value: classes[i], Reason: err.Error()}
		}
		if r.Sex, err = ParseGender(sexes[i]); err != nil {
			return nil, &DataError{Column: cols.header(FieldSex), Row: i, Value: sexes[i], Reason: err.Error()}
		}

		r.Age = math.NaN()
		if !isMissing(ages[i]) {
			age, err := strconv.ParseFloat(strings.TrimSpace(ages[i]), 64)
			if err != nil {
				return nil, &DataError{Column: cols.header(FieldAge), Row: i, Value: ages[i], Reason: "not a number"}
			}
			r.Age = age
		}

		fare, err := strconv.ParseFloat(strings.TrimSpace(fares[i]), 64)
		if err != nil || math.IsNaN(fare) || fare < 0 {
			return nil, &DataError{Column: cols.header(FieldFare), Row: i, Value: fares[i], Reason: "fare must be a non-negative number"}
		}
		r.Fare = fare

		r.Cabin = UnknownCabin
		if cabins != nil && !isMissing(cabins[i]) {
			r.Cabin = strings.TrimSpace(cabins[i])
		}

		if !isMissing(embarked[i]) {
			r.Embarked = strings.TrimSpace(embarked[i])
		}
	}

	// 3. 插补
	imputeAge(records)
	imputeEmbarked(records)

	// 4. 分箱与广播
	for i := range records {
		records[i].AgeGroup = AgeGroupOf(records[i].Age)
	}
	broadcastSurvivalRate(records)

	return NewEnrichedTable(records), nil
}

func parseSurvived(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true":
		return true, nil
	case "0", "0.0", "false":
		return false, nil
	default:
		return false, errInvalidSurvived
	}
}

var errInvalidSurvived = errors.New("survived must be 0 or 1")

// imputeAge 缺失年龄填充为全表非缺失年龄的中位数
// 全部缺失时保持 NaN, 对应记录无年龄段
func imputeAge(records []PassengerRecord) {
	known := make(stats.Float64Data, 0, len(records))
	missing := false
	for _, r := range records {
		if math.IsNaN(r.Age) {
			missing = true
			continue
		}
		known = append(known, r.Age)
	}
	if !missing || len(known) == 0 {
		return
	}

	median, err := stats.Median(known)
	if err != nil {
		return
	}
	for i := range records {
		if math.IsNaN(records[i].Age) {
			records[i].Age = median
		}
	}
}

// imputeEmbarked 缺失登船港口填充为众数, 并列时取最先出现的值
func imputeEmbarked(records []PassengerRecord) {
	counts := make(map[string]int)
	var order []string
	missing := false
	for _, r := range records {
		if r.Embarked == "" {
			missing = true
			continue
		}
		if counts[r.Embarked] == 0 {
			order = append(order, r.Embarked)
		}
		counts[r.Embarked]++
	}
	if !missing || len(order) == 0 {
		return
	}

	mode := order[0]
	for _, v := range order[1:] {
		if counts[v] > counts[mode] {
			mode = v
		}
	}
	for i := range records {
		if records[i].Embarked == "" {
			records[i].Embarked = mode
		}
	}
}
