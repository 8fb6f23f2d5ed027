package zcl

import "sync"

// Handler processes an inbound frame that was not a reply to a pending
// request: an unsolicited command (attribute report, cluster command, or
// a default response nobody is waiting for).
type Handler func(h Header, payload []byte)

// CommandRegistry routes inbound general-command frames to registered
// handlers, one-method-per-id, the same shape a notification router
// uses to dispatch unsolicited messages by method name.
type CommandRegistry struct {
	handlers map[byte][]Handler
	mu       sync.RWMutex
}

// NewCommandRegistry returns an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{handlers: make(map[byte][]Handler)}
}

// OnCommand registers handler for commandID. Multiple handlers for the
// same id are all invoked, in registration order.
func (r *CommandRegistry) OnCommand(commandID byte, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[commandID] = append(r.handlers[commandID], handler)
}

// Dispatch invokes every handler registered for h.CommandID. It reports
// whether at least one handler ran.
func (r *CommandRegistry) Dispatch(h Header, payload []byte) bool {
	r.mu.RLock()
	handlers := append([]Handler(nil), r.handlers[h.CommandID]...)
	r.mu.RUnlock()

	for _, handler := range handlers {
		handler(h, payload)
	}
	return len(handlers) > 0
}

// RemoveHandlers clears every handler registered for commandID.
func (r *CommandRegistry) RemoveHandlers(commandID byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, commandID)
}
