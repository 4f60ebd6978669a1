// panels.go
package chart

import (
	"sync"

	"SurvivalDashboard/src/processor"
)

// Panels 仪表盘上的三个图表面板
// 每次筛选变化后整体替换为新生成的图表
type Panels struct {
	builder *Builder

	mu      sync.RWMutex
	version int
	html    map[View][]byte
}

func NewPanels(b *Builder) *Panels {
	return &Panels{builder: b}
}

// Replace 实现 processor.RenderSink
func (p *Panels) Replace(state processor.RenderState) error {
	html := make(map[View][]byte, len(Views))
	for _, view := range Views {
		data, err := p.builder.RenderHTML(view, state.Views)
		if err != nil {
			return err
		}
		html[view] = data
	}

	p.mu.Lock()
	p.html = html
	p.version = state.Version
	p.mu.Unlock()
	return nil
}

// Get 返回当前面板内容及其所属的状态版本
func (p *Panels) Get(view View) ([]byte, int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.html[view]
	return data, p.version, ok
}
