package event

import (
	"sync"
	"testing"
	"time"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := NewEventBusWithSize(2, 8)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{}, 2)
	bus.Subscribe(PhotoListed, func(payload interface{}) {
		p, ok := payload.(PhotoListedPayload)
		if !ok {
			t.Errorf("负载类型错误: %T", payload)
		}
		mu.Lock()
		got = append(got, p.Locators...)
		mu.Unlock()
		done <- struct{}{}
	})

	if !bus.Publish(PhotoListed, PhotoListedPayload{Locators: []string{"a"}}) {
		t.Fatal("Publish() = false")
	}
	if !bus.Publish(PhotoListed, PhotoListedPayload{Locators: []string{"b"}}) {
		t.Fatal("Publish() = false")
	}
	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("等待事件处理超时")
		}
	}
	bus.Shutdown()

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 2 {
		t.Errorf("处理的地址数量 = %d, 期望 2", len(got))
	}
}

func TestEventBus_PanicHandlerKeepsWorker(t *testing.T) {
	bus := NewEventBusWithSize(1, 4)
	defer bus.Shutdown()

	done := make(chan struct{})
	calls := 0
	bus.Subscribe(PhotoListed, func(payload interface{}) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		close(done)
	})
	bus.Publish(PhotoListed, nil)
	bus.Publish(PhotoListed, nil)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("panic 之后 worker 没有继续处理事件")
	}
}

func TestEventBus_PublishAfterShutdown(t *testing.T) {
	bus := NewEventBusWithSize(1, 1)
	bus.Shutdown()
	bus.Shutdown()
	if bus.Publish(PhotoListed, nil) {
		t.Error("关闭后 Publish() 应返回 false")
	}
}
