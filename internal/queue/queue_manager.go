package queue

import (
	"sync"

	"go.uber.org/zap"

	"duel/internal/models"
)

// QueueManager keeps one FIFO queue per exercise category.
type QueueManager struct {
	mu     sync.Mutex
	queues map[models.Category][]models.QueueEntry
	logger *zap.Logger
}

func NewQueueManager(logger *zap.Logger) *QueueManager {
	qm := &QueueManager{
		queues: make(map[models.Category][]models.QueueEntry),
		logger: logger,
	}
	for _, c := range models.Categories() {
		qm.queues[c] = nil
	}
	return qm
}

// Join drops any entry already held by the connection, in any queue, and
// appends entry to the tail of its category.
func (qm *QueueManager) Join(entry models.QueueEntry) error {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	if _, ok := qm.queues[entry.Category]; !ok {
		return models.ErrInvalidCategory
	}

	qm.removeLocked(entry.ConnectionID)
	qm.queues[entry.Category] = append(qm.queues[entry.Category], entry)

	qm.logger.Info("Added to queue",
		zap.String("user", entry.DisplayName),
		zap.String("category", string(entry.Category)),
		zap.Int("size", len(qm.queues[entry.Category])))
	return nil
}

// Leave removes the connection's entry. It reports whether one was present.
func (qm *QueueManager) Leave(conn models.ConnectionHandle) bool {
	qm.mu.Lock()
	defer qm.mu.Unlock()
	return qm.removeLocked(conn)
}

func (qm *QueueManager) removeLocked(conn models.ConnectionHandle) bool {
	removed := false
	for category, q := range qm.queues {
		for i, e := range q {
			if e.ConnectionID != conn {
				continue
			}
			qm.queues[category] = append(q[:i:i], q[i+1:]...)
			removed = true
			qm.logger.Info("Removed from queue",
				zap.String("user", e.DisplayName),
				zap.String("category", string(category)))
			break
		}
	}
	return removed
}

// TryPair pops the two oldest entries of the category if it holds at least two.
func (qm *QueueManager) TryPair(category models.Category) (models.QueueEntry, models.QueueEntry, bool) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	q := qm.queues[category]
	if len(q) < 2 {
		return models.QueueEntry{}, models.QueueEntry{}, false
	}

	first, second := q[0], q[1]
	qm.queues[category] = append([]models.QueueEntry(nil), q[2:]...)
	return first, second, true
}

// PositionOf returns the 1-indexed position of the connection, 0 if absent.
func (qm *QueueManager) PositionOf(conn models.ConnectionHandle, category models.Category) int {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	for i, e := range qm.queues[category] {
		if e.ConnectionID == conn {
			return i + 1
		}
	}
	return 0
}

// Stats returns the current length of every category queue.
func (qm *QueueManager) Stats() map[models.Category]int {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	stats := make(map[models.Category]int, len(qm.queues))
	for category, q := range qm.queues {
		stats[category] = len(q)
	}
	return stats
}

// Requeue puts an entry back at the head of its queue, keeping its original
// arrival position ahead of later joiners.
func (qm *QueueManager) Requeue(entry models.QueueEntry) {
	qm.mu.Lock()
	defer qm.mu.Unlock()

	if _, ok := qm.queues[entry.Category]; !ok {
		return
	}
	qm.removeLocked(entry.ConnectionID)
	qm.queues[entry.Category] = append([]models.QueueEntry{entry}, qm.queues[entry.Category]...)
}
