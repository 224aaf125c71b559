package event

// Handler 事件回调
type Handler func(Event)

// Bus 同步事件总线
//
// 与模拟循环在同一 goroutine 上使用，Publish 期间按订阅顺序依次回调。
// 回调中可以安全地订阅或取消订阅，变更从下一次 Publish 起生效。
type Bus struct {
	nextID    uint64
	listeners map[Type][]*Subscription
}

// Subscription 作用域订阅，Close 后回调不再触发
type Subscription struct {
	bus       *Bus
	id        uint64
	eventType Type
	handler   Handler
	closed    bool
}

// NewBus 创建事件总线
func NewBus() *Bus {
	return &Bus{
		listeners: make(map[Type][]*Subscription),
	}
}

// Subscribe 订阅指定类型的事件
func (b *Bus) Subscribe(eventType Type, handler Handler) *Subscription {
	b.nextID++
	sub := &Subscription{
		bus:       b,
		id:        b.nextID,
		eventType: eventType,
		handler:   handler,
	}
	b.listeners[eventType] = append(b.listeners[eventType], sub)
	return sub
}

// Publish 向所有订阅者分发事件
func (b *Bus) Publish(e Event) {
	subs := b.listeners[e.Type]
	if len(subs) == 0 {
		return
	}
	snapshot := make([]*Subscription, len(subs))
	copy(snapshot, subs)
	for _, sub := range snapshot {
		if sub.closed {
			continue
		}
		sub.handler(e)
	}
}

// Close 取消订阅，可重复调用
func (s *Subscription) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	subs := s.bus.listeners[s.eventType]
	for i, other := range subs {
		if other.id == s.id {
			remaining := make([]*Subscription, 0, len(subs)-1)
			remaining = append(remaining, subs[:i]...)
			remaining = append(remaining, subs[i+1:]...)
			if len(remaining) == 0 {
				delete(s.bus.listeners, s.eventType)
			} else {
				s.bus.listeners[s.eventType] = remaining
			}
			return
		}
	}
}

// Group 一组订阅，用于场景卸载时统一释放
type Group struct {
	subs []*Subscription
}

// Add 记录订阅
func (g *Group) Add(sub *Subscription) {
	g.subs = append(g.subs, sub)
}

// Close 释放组内全部订阅
func (g *Group) Close() {
	for _, sub := range g.subs {
		sub.Close()
	}
	g.subs = nil
}
