package processor

import "sync"

// RenderSink 接收新的图表数据, 每次调用整体替换上一次的结果
type RenderSink interface {
	Replace(state RenderState) error
}

// Controller 持有富化表与当前渲染状态
// 事件在锁内串行处理, 不会出现重叠的筛选
type Controller struct {
	mu    sync.RWMutex
	table *EnrichedTable
	state RenderState
	sinks []RenderSink
}

// NewController 计算默认筛选下的初始状态并推送给所有接收者
func NewController(t *EnrichedTable, sinks ...RenderSink) (*Controller, error) {
	c := &Controller{
		table: t,
		state: NewRenderState(t),
		sinks: sinks,
	}
	if err := c.publish(c.state); err != nil {
		return nil, err
	}
	return c, nil
}

// Dispatch 处理一次筛选变化
func (c *Controller) Dispatch(ev FilterChanged) (RenderState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := Update(c.table, c.state, ev)
	if err != nil {
		return c.state, err
	}
	return c.commit(c.table, next)
}

// ReplaceTable 换入重新加载的数据, 保持当前筛选
func (c *Controller) ReplaceTable(t *EnrichedTable) (RenderState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sel := c.state.Selection
	next, err := Update(t, c.state, FilterChanged{Class: sel.Class, Gender: sel.Gender})
	if err != nil {
		return c.state, err
	}
	return c.commit(t, next)
}

// commit 所有接收者都替换成功后才更新表和状态
// 任一接收者失败时, 把已替换的接收者恢复到原状态
func (c *Controller) commit(t *EnrichedTable, next RenderState) (RenderState, error) {
	if err := c.publish(next); err != nil {
		_ = c.publish(c.state)
		return c.state, err
	}
	c.table = t
	c.state = next
	return next, nil
}

// State 当前渲染状态
func (c *Controller) State() RenderState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Table 当前富化表
func (c *Controller) Table() *EnrichedTable {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}

func (c *Controller) publish(state RenderState) error {
	for _, s := range c.sinks {
		if err := s.Replace(state); err != nil {
			return err
		}
	}
	return nil
}
