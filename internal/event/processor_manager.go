package event

import (
	"sync"

	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
)

// EventProcessor 事件处理器接口
type EventProcessor interface {
	Process(e ledger.Event) (StatsDelta, error)
	GetEventType() ledger.EventType
}

// ProcessorManager 事件处理器管理器
type ProcessorManager struct {
	mu         sync.RWMutex
	processors map[ledger.EventType]EventProcessor
}

// NewProcessorManager 创建处理器管理器并注册所有内置处理器
func NewProcessorManager() *ProcessorManager {
	manager := &ProcessorManager{
		processors: make(map[ledger.EventType]EventProcessor),
	}

	manager.RegisterProcessor(NewCreatedProcessor())
	manager.RegisterProcessor(NewContributeProcessor())
	manager.RegisterProcessor(NewWithdrawProcessor())
	manager.RegisterProcessor(NewRefundProcessor())

	logger.Info("ProcessorManager initialized with %d processors", len(manager.processors))
	return manager
}

// RegisterProcessor 注册事件处理器，同类型后注册的覆盖先注册的
func (pm *ProcessorManager) RegisterProcessor(processor EventProcessor) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	eventType := processor.GetEventType()
	pm.processors[eventType] = processor
	logger.Debug("Registered processor for event type: %s", eventType)
}

// GetProcessor 获取指定事件类型的处理器
func (pm *ProcessorManager) GetProcessor(eventType ledger.EventType) (EventProcessor, bool) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	processor, exists := pm.processors[eventType]
	return processor, exists
}

// ProcessEvent 处理事件，未知类型返回空增量
func (pm *ProcessorManager) ProcessEvent(e ledger.Event) (StatsDelta, error) {
	processor, exists := pm.GetProcessor(e.Type)
	if !exists {
		logger.Warn("No processor found for event type: %s", e.Type)
		return StatsDelta{}, nil
	}
	return processor.Process(e)
}

// GetSupportedEventTypes 获取支持的事件类型列表
func (pm *ProcessorManager) GetSupportedEventTypes() []ledger.EventType {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	eventTypes := make([]ledger.EventType, 0, len(pm.processors))
	for eventType := range pm.processors {
		eventTypes = append(eventTypes, eventType)
	}
	return eventTypes
}
