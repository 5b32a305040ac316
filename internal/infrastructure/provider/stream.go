package provider

import (
	"sync"

	"foundr-auth/internal/domain"
)

// subscription is the handle returned by OnAuthStateChange.
type subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe releases the handler. Only the first call has an effect.
func (s *subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

// OnAuthStateChange registers a handler on the change-notification stream.
// Events are delivered serially in the order the client observed them.
func (c *Client) OnAuthStateChange(handler domain.AuthChangeHandler) domain.Subscription {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.handlers[id] = handler
	c.mu.Unlock()

	return &subscription{cancel: func() {
		c.mu.Lock()
		delete(c.handlers, id)
		c.mu.Unlock()
	}}
}

// emit delivers an event to every registered handler. Handlers run on the
// calling goroutine so delivery order matches event order.
func (c *Client) emit(event domain.AuthEvent, session *domain.Session) {
	c.mu.RLock()
	handlers := make([]domain.AuthChangeHandler, 0, len(c.handlers))
	for _, h := range c.handlers {
		handlers = append(handlers, h)
	}
	c.mu.RUnlock()

	for _, h := range handlers {
		h(event, session)
	}
}
