package registry

import (
	"sync"

	"go.uber.org/zap"

	"duel/internal/models"
)

type entry struct {
	client   *Client
	identity models.Identity
	known    bool
}

// Registry maps live connection handles to their client and claimed identity.
// Nothing here outlives the connection.
type Registry struct {
	mu      sync.RWMutex
	entries map[models.ConnectionHandle]*entry
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		entries: make(map[models.ConnectionHandle]*entry),
		logger:  logger,
	}
}

func (r *Registry) Register(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[c.Handle] = &entry{client: c}
}

// Identify records the identity claimed by a connection. Claims are not verified.
func (r *Registry) Identify(id models.Identity) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id.ConnectionID]
	if !ok {
		return false
	}
	e.identity = id
	e.known = true
	r.logger.Info("User identified",
		zap.String("user", id.DisplayName),
		zap.String("userId", id.UserID),
		zap.String("connection", string(id.ConnectionID)))
	return true
}

func (r *Registry) Lookup(handle models.ConnectionHandle) (models.Identity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[handle]
	if !ok || !e.known {
		return models.Identity{}, false
	}
	return e.identity, true
}

// Remove forgets the connection and closes its outbound queue.
func (r *Registry) Remove(handle models.ConnectionHandle) {
	r.mu.Lock()
	e, ok := r.entries[handle]
	delete(r.entries, handle)
	r.mu.Unlock()

	if ok {
		e.client.Close()
	}
}

// Send queues a frame for one connection. Unknown handles are ignored.
func (r *Registry) Send(handle models.ConnectionHandle, frame models.Frame) bool {
	r.mu.RLock()
	e, ok := r.entries[handle]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if !e.client.Send(frame) {
		r.logger.Warn("Dropped frame for connection",
			zap.String("connection", string(handle)), zap.String("type", frame.Type))
		return false
	}
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
