// Package shell holds state shared across console screens.
package shell

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/asaskevich/EventBus"
)

const topicUnread = "notifications.unread"

// UnreadReader is the read side of the unread counter handed to screens
// other than Notifications.
type UnreadReader interface {
	Get() int64
	Subscribe(fn func(int64)) (unsubscribe func())
}

// UnreadCounter is a single-writer, multi-reader unread notification count.
// Subscribers run synchronously on the writer's goroutine and must not block.
type UnreadCounter struct {
	value atomic.Int64
	bus   EventBus.Bus

	mu     sync.Mutex
	nextID int
	topics map[int]string
}

func NewUnreadCounter() *UnreadCounter {
	return &UnreadCounter{
		bus:    EventBus.New(),
		topics: map[int]string{},
	}
}

func (c *UnreadCounter) Get() int64 {
	return c.value.Load()
}

// Set stores n (clamped at zero) and notifies subscribers when it changes.
func (c *UnreadCounter) Set(n int64) {
	if n < 0 {
		n = 0
	}
	if c.value.Swap(n) == n {
		return
	}
	c.mu.Lock()
	topics := make([]string, 0, len(c.topics))
	for _, t := range c.topics {
		topics = append(topics, t)
	}
	c.mu.Unlock()
	for _, t := range topics {
		c.bus.Publish(t, n)
	}
}

// Subscribe registers fn for changes. Each subscriber gets its own topic so
// unsubscribing one closure never detaches another built from the same
// function literal.
func (c *UnreadCounter) Subscribe(fn func(int64)) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	topic := fmt.Sprintf("%s#%d", topicUnread, id)
	c.topics[id] = topic
	c.mu.Unlock()

	if err := c.bus.Subscribe(topic, fn); err != nil {
		c.mu.Lock()
		delete(c.topics, id)
		c.mu.Unlock()
		return func() {}
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.topics, id)
			c.mu.Unlock()
			_ = c.bus.Unsubscribe(topic, fn)
		})
	}
}
