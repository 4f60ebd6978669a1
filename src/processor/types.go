package processor

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// 富化表中的列名
const (
	ColPassengerID  = "PassengerId"
	ColSurvived     = "Survived"
	ColClass        = "Pclass"
	ColSex          = "Sex"
	ColAge          = "Age"
	ColFare         = "Fare"
	ColCabin        = "Cabin"
	ColEmbarked     = "Embarked"
	ColAgeGroup     = "AgeGroup"
	ColSurvivalRate = "SurvivalRate"
)

// 筛选器中表示不过滤的取值
const All = "All"

// UnknownCabin 缺失舱房号时的占位值
const UnknownCabin = "Unknown"

// DataError 数据缺列或无法解析
type DataError struct {
	Column string
	Row    int // 从0开始的行号, -1 表示整列问题
	Value  string
	Reason string
}

func (e *DataError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("data error: column %q: %s", e.Column, e.Reason)
	}
	return fmt.Sprintf("data error: column %q row %d value %q: %s", e.Column, e.Row, e.Value, e.Reason)
}

func columnError(col, reason string) *DataError {
	return &DataError{Column: col, Row: -1, Reason: reason}
}

// AgeGroup 年龄段, 零值表示无分组
type AgeGroup int

const (
	AgeGroupNone AgeGroup = iota
	Child
	Teen
	YoungAdult
	Adult
	Senior
)

// AgeGroups 按分箱顺序排列的全部年龄段
var AgeGroups = []AgeGroup{Child, Teen, YoungAdult, Adult, Senior}

// 左开右闭, 0 归入 Child
var ageBinEdges = []float64{0, 12, 18, 35, 60, 80}

func (g AgeGroup) String() string {
	switch g {
	case Child:
		return "Child"
	case Teen:
		return "Teen"
	case YoungAdult:
		return "Young Adult"
	case Adult:
		return "Adult"
	case Senior:
		return "Senior"
	default:
		return ""
	}
}

// AgeGroupOf 根据年龄分箱, 超出 [0,80] 或缺失时返回 AgeGroupNone
func AgeGroupOf(age float64) AgeGroup {
	last := ageBinEdges[len(ageBinEdges)-1]
	if math.IsNaN(age) || age < ageBinEdges[0] || age > last {
		return AgeGroupNone
	}
	for i := 1; i < len(ageBinEdges); i++ {
		if age <= ageBinEdges[i] {
			return AgeGroups[i-1]
		}
	}
	return AgeGroupNone
}

func parseAgeGroup(s string) AgeGroup {
	for _, g := range AgeGroups {
		if g.String() == s {
			return g
		}
	}
	return AgeGroupNone
}

// Class 舱位等级
type Class int

const (
	FirstClass  Class = 1
	SecondClass Class = 2
	ThirdClass  Class = 3
)

var Classes = []Class{FirstClass, SecondClass, ThirdClass}

func (c Class) String() string { return strconv.Itoa(int(c)) }

// Label 图表上显示的舱位名称
func (c Class) Label() string {
	switch c {
	case FirstClass:
		return "1st"
	case SecondClass:
		return "2nd"
	case ThirdClass:
		return "3rd"
	default:
		return c.String()
	}
}

// ParseClass 解析舱位, 只接受 1/2/3
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if err != nil {
		// 兼容 "1.0" 这类浮点写法
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("invalid class %q", s)
		}
		n = int(f)
	}
	c := Class(n)
	if c < FirstClass || c > ThirdClass {
		return 0, fmt.Errorf("class %d out of range", n)
	}
	return c, nil
}

// Gender 性别
type Gender int

const (
	Female Gender = iota + 1
	Male
)

// Genders 与原图表一致, female 在前
var Genders = []Gender{Female, Male}

func (g Gender) String() string {
	switch g {
	case Female:
		return "female"
	case Male:
		return "male"
	default:
		return ""
	}
}

// ParseGender 解析性别, 大小写不敏感
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "female":
		return Female, nil
	case "male":
		return Male, nil
	default:
		return 0, fmt.Errorf("invalid gender %q", s)
	}
}

// PassengerRecord 富化表中的一行
type PassengerRecord struct {
	PassengerID  int
	Survived     bool
	Class        Class
	Sex          Gender
	Age          float64
	Fare         float64
	Cabin        string
	Embarked     string
	AgeGroup     AgeGroup
	SurvivalRate float64 // 所在年龄段的生还率, 无分组时为 NaN
}

// FilterSelection 当前下拉框选择
type FilterSelection struct {
	Class  string
	Gender string
}

// DefaultSelection 两个下拉框均为 All
func DefaultSelection() FilterSelection {
	return FilterSelection{Class: All, Gender: All}
}
