/*
 * @Description: 一个带固定Worker池的异步事件总线
 * @Author: yzcheng90
 * @Date: 2025-11-17 20:06:12
 * @LastEditTime: 2025-11-22 11:20:05
 * @LastEditors: yzcheng90
 */
package event

import (
	"log"
	"sync"
)

// Topic 事件主题
type Topic string

const (
	// PhotoListed 照片列表刷新完成，负载为 PhotoListedPayload
	PhotoListed Topic = "photo:listed"
)

// PhotoListedPayload 一次新鲜列表中的全部照片地址
type PhotoListedPayload struct {
	Locators []string
}

// Handler 事件处理器函数类型
type Handler func(payload interface{})

// Event 是在通道中传递的事件结构
type Event struct {
	Topic   Topic
	Payload interface{}
}

// EventBus 实现了基于Worker池的异步事件总线
type EventBus struct {
	mu        sync.RWMutex
	handlers  map[Topic][]Handler
	eventChan chan Event
	wg        sync.WaitGroup
	closeOnce sync.Once
	closed    chan struct{}
}

const (
	DefaultWorkerCount = 4
	DefaultChannelSize = 1024
)

// NewEventBus 创建并启动一个新的事件总线
func NewEventBus() *EventBus {
	return NewEventBusWithSize(DefaultWorkerCount, DefaultChannelSize)
}

// NewEventBusWithSize 指定 worker 数量和通道缓冲区大小
func NewEventBusWithSize(workers, size int) *EventBus {
	if workers <= 0 {
		workers = 1
	}
	bus := &EventBus{
		handlers:  make(map[Topic][]Handler),
		eventChan: make(chan Event, size),
		closed:    make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		bus.wg.Add(1)
		go bus.worker(i + 1)
	}
	return bus
}

func (b *EventBus) worker(workerID int) {
	defer b.wg.Done()
	log.Printf("[EventBus] Worker %d started", workerID)

	for event := range b.eventChan {
		b.mu.RLock()
		handlers := b.handlers[event.Topic]
		b.mu.RUnlock()
		for _, handler := range handlers {
			b.dispatch(event, handler)
		}
	}
	log.Printf("[EventBus] Worker %d stopped", workerID)
}

// dispatch 单个处理器 panic 不影响 worker
func (b *EventBus) dispatch(event Event, handler Handler) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[EventBus] 处理事件 '%s' 时发生 panic: %v", event.Topic, r)
		}
	}()
	handler(event.Payload)
}

// Subscribe 订阅一个事件
func (b *EventBus) Subscribe(topic Topic, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], handler)
}

// Publish 非阻塞地发布一个事件，通道已满或总线已关闭时丢弃并返回 false
func (b *EventBus) Publish(topic Topic, payload interface{}) (sent bool) {
	defer func() {
		// 与 Shutdown 竞争时向已关闭通道发送会 panic
		if recover() != nil {
			sent = false
		}
	}()
	select {
	case <-b.closed:
		return false
	default:
	}

	select {
	case b.eventChan <- Event{Topic: topic, Payload: payload}:
		return true
	default:
		log.Printf("[EventBus] WARN: Event channel is full. Dropping event for topic '%s'.", topic)
		return false
	}
}

// Shutdown 关闭通道并等待所有 worker 处理完剩余事件
func (b *EventBus) Shutdown() {
	b.closeOnce.Do(func() {
		log.Println("[EventBus] Shutting down...")
		close(b.closed)
		close(b.eventChan)
		b.wg.Wait()
		log.Println("[EventBus] All workers have stopped.")
	})
}
