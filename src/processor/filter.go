package processor

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// FilterChanged 下拉框变化事件, 携带两个下拉框的最新取值
type FilterChanged struct {
	Class  string
	Gender string
}

// RenderState 一次渲染所需的全部状态
type RenderState struct {
	Selection FilterSelection
	Views     ViewResults
	Version   int
}

// 下拉框的全部选项, 取值必须与之完全一致
var (
	ClassOptions  = []string{All, "1", "2", "3"}
	GenderOptions = []string{All, "male", "female"}
)

var (
	classByOption  = map[string]Class{"1": FirstClass, "2": SecondClass, "3": ThirdClass}
	genderByOption = map[string]Gender{"male": Male, "female": Female}
)

// validate 按选项精确匹配, 非 All 且不是已知选项时返回 DataError
func (s FilterSelection) validate() (cls Class, byClass bool, g Gender, byGender bool, err error) {
	if s.Class != All {
		if cls, byClass = classByOption[s.Class]; !byClass {
			return 0, false, 0, false, &DataError{Column: "class filter", Row: -1, Value: s.Class, Reason: "not one of All, 1, 2, 3"}
		}
	}
	if s.Gender != All {
		if g, byGender = genderByOption[s.Gender]; !byGender {
			return 0, false, 0, false, &DataError{Column: "gender filter", Row: -1, Value: s.Gender, Reason: "not one of All, male, female"}
		}
	}
	return cls, byClass, g, byGender, nil
}

// ApplyFilter 按舱位与性别筛选, 两个条件为 AND 关系
// 空结果是合法输出
func ApplyFilter(t *EnrichedTable, sel FilterSelection) (*EnrichedTable, error) {
	cls, byClass, g, byGender, err := sel.validate()
	if err != nil {
		return nil, err
	}
	if (!byClass && !byGender) || t.Len() == 0 {
		return t, nil
	}

	df := t.df
	if byClass {
		df = df.Filter(
			dataframe.F{Colname: ColClass, Comparator: series.Eq, Comparando: int(cls)},
		)
	}
	if byGender && df.Nrow() > 0 {
		df = df.Filter(
			dataframe.F{Colname: ColSex, Comparator: series.Eq, Comparando: g.String()},
		)
	}

	return newTableFromFrame(df)
}

// NewRenderState 默认筛选下的初始状态
func NewRenderState(t *EnrichedTable) RenderState {
	return RenderState{
		Selection: DefaultSelection(),
		Views:     ComputeViews(t),
		Version:   1,
	}
}

// Update 处理一次筛选事件, 返回替换用的新状态
// 出错时原状态保持不变
func Update(t *EnrichedTable, prev RenderState, ev FilterChanged) (RenderState, error) {
	sel := FilterSelection{Class: ev.Class, Gender: ev.Gender}
	if sel.Class == "" {
		sel.Class = All
	}
	if sel.Gender == "" {
		sel.Gender = All
	}

	filtered, err := ApplyFilter(t, sel)
	if err != nil {
		return prev, err
	}

	return RenderState{
		Selection: sel,
		Views:     ComputeViews(filtered),
		Version:   prev.Version + 1,
	}, nil
}
