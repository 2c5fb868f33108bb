package timeline

import (
	"context"
	"fmt"
	"time"
)

// saveTimeout bounds a single auto-save write.
const saveTimeout = 10 * time.Second

// Sink receives serialized timeline exports from the auto-save timer.
// Implementations live in the persist package; anything that can store a
// byte blob qualifies.
type Sink interface {
	// Save persists one export document.
	Save(ctx context.Context, data []byte) error
}

// autoSaveLoop periodically exports the timeline to the configured sink
// until Close. The export document is assembled under the manager lock;
// the sink write happens outside it.
func (m *Manager[T]) autoSaveLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.autoSaveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			// Auto-save is best effort; a failed write must not
			// disturb editing. The next tick retries.
			_ = m.saveOnce()
		case <-m.done:
			return
		}
	}
}

// saveOnce exports the timeline and hands it to the sink.
func (m *Manager[T]) saveOnce() error {
	data, err := m.Export()
	if err != nil {
		return fmt.Errorf("auto-save export: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()

	if err := m.cfg.sink.Save(ctx, data); err != nil {
		return fmt.Errorf("auto-save write: %w", err)
	}
	return nil
}
