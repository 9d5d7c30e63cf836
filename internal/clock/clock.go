package clock

import (
	"sync"
	"time"
)

// Clock 提供毫秒時間戳，呼叫間不可倒退
type Clock interface {
	NowMs() int64
}

type System struct{}

func NewSystem() System {
	return System{}
}

func (System) NowMs() int64 {
	return time.Now().UnixMilli()
}

// Manual 手動控制的時鐘，測試用
type Manual struct {
	mu  sync.Mutex
	now int64
}

func NewManual(startMs int64) *Manual {
	return &Manual{now: startMs}
}

func (m *Manual) NowMs() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d.Milliseconds()
}

// Set 只允許往前調
func (m *Manual) Set(ms int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ms > m.now {
		m.now = ms
	}
}
