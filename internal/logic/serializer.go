package logic

import "sync"

// Serializer 宿主运行时的全局锁，所有对账本和账户的调用逐个执行
type Serializer struct {
	mu sync.Mutex
}

// NewSerializer 创建全局锁
func NewSerializer() *Serializer {
	return &Serializer{}
}

// Do 在锁内执行 fn
func (s *Serializer) Do(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn()
}
