// builder.go
package chart

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"SurvivalDashboard/src/processor"
)

// View 仪表盘中的一个图表
type View string

const (
	AgeGroupView    View = "age-group"
	ClassGenderView View = "class-gender"
	FareView        View = "fare"
)

// Views 仪表盘中的图表顺序
var Views = []View{AgeGroupView, ClassGenderView, FareView}

// ParseView 解析路由中的图表名
func ParseView(s string) (View, error) {
	for _, v := range Views {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown chart %q", s)
}

// FileBase 导出文件名(不含扩展名)
func (v View) FileBase() string {
	switch v {
	case AgeGroupView:
		return "age_group_survival"
	case ClassGenderView:
		return "class_gender_survival"
	case FareView:
		return "fare_survival"
	default:
		return string(v)
	}
}

// 图表标题与尺寸
const (
	AgeGroupTitle    = "Survival Rates by Age Group"
	ClassGenderTitle = "Survival Rates by Class and Gender"
	FareTitle        = "Fare vs. Survival Status"

	Width  = 600
	Height = 400
)

const (
	ageGroupColor    = "#0000ff"
	classGenderColor = "#000080"
	pointAlpha       = 0.6
)

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Builder 根据富化数据生成图表
type Builder struct {
	classColors map[processor.Class]string // 规范化为 #rrggbb
}

// NewBuilder 创建图表构建器
// classColors 的键为舱位 "1"/"2"/"3", 任何一个舱位缺少颜色或颜色非法都会报错
func NewBuilder(classColors map[string]string) (*Builder, error) {
	b := &Builder{classColors: make(map[processor.Class]string, len(processor.Classes))}
	for _, cls := range processor.Classes {
		c, ok := classColors[cls.String()]
		if !ok || strings.TrimSpace(c) == "" {
			return nil, fmt.Errorf("no colour configured for class %s", cls)
		}
		c = strings.TrimSpace(c)
		if !hexColor.MatchString(c) {
			return nil, fmt.Errorf("invalid colour %q for class %s", c, cls)
		}
		b.classColors[cls] = "#" + strings.ToLower(strings.TrimPrefix(c, "#"))
	}
	return b, nil
}

// ClassColor 返回舱位颜色
func (b *Builder) ClassColor(cls processor.Class) (string, error) {
	c, ok := b.classColors[cls]
	if !ok {
		return "", fmt.Errorf("no colour for class %s", cls)
	}
	return c, nil
}

// rgb 把 #rrggbb 拆成三个分量
func rgb(hex string) (r, g, b uint8) {
	v, _ := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func rgba(hex string, alpha float64) string {
	r, g, b := rgb(hex)
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", r, g, b, alpha)
}

// classGenderLabel 形如 "1st, female"
func classGenderLabel(k processor.ClassGender) string {
	return k.Class.Label() + ", " + k.Gender.String()
}
