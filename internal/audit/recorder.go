// Package audit persists the append-only trail of security-relevant events.
// Recording is fire-and-forget from the caller's perspective but durable:
// entries are buffered and written by a single background writer, and Close
// drains the buffer so nothing recorded before shutdown is lost.
package audit

import (
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/GoIdentity-Admin/GoIdentity-Admin/internal/db/models"
)

// DefaultBuffer is the channel capacity used by NewRecorder when the caller
// passes zero.
const DefaultBuffer = 256

// Entry is one security-relevant event to record.
type Entry struct {
	Action     models.AuditAction
	UserID     *uint64
	EntityID   *uint64
	EntityType string
	Details    string
	IPAddress  string
	UserAgent  string
	ProjectID  string
}

// Recorder writes audit entries to the database without blocking or failing
// the primary operation that produced them.
type Recorder struct {
	db      *gorm.DB
	entries chan Entry

	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
	done      chan struct{}
}

// NewRecorder creates a recorder and starts its writer goroutine.
func NewRecorder(db *gorm.DB, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}

	r := &Recorder{
		db:      db,
		entries: make(chan Entry, buffer),
		done:    make(chan struct{}),
	}

	go r.run()

	return r
}

// Record queues an entry for persistence. It never blocks the caller
// indefinitely: when the buffer is full the entry is written synchronously
// instead of being dropped. Recording after Close degrades to a synchronous
// write, so a late caller loses nothing.
func (r *Recorder) Record(entry Entry) {
	r.mu.RLock()

	if !r.closed {
		select {
		case r.entries <- entry:
			r.mu.RUnlock()
			return
		default:
		}
	}

	r.mu.RUnlock()
	r.write(entry)
}

// Close stops the writer after draining all queued entries.
func (r *Recorder) Close() {
	r.closeOnce.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.entries)
		r.mu.Unlock()

		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)

	for entry := range r.entries {
		r.write(entry)
	}
}

func (r *Recorder) write(entry Entry) {
	row := models.AuditLog{
		Action:     entry.Action,
		UserID:     entry.UserID,
		EntityID:   entry.EntityID,
		EntityType: entry.EntityType,
		Details:    entry.Details,
		IPAddress:  entry.IPAddress,
		UserAgent:  entry.UserAgent,
		ProjectID:  entry.ProjectID,
	}

	if err := r.db.Create(&row).Error; err != nil {
		// The primary operation already succeeded; all we can do is shout.
		log.Error().Err(err).Str("action", string(entry.Action)).Msg("failed to write audit entry")
	}
}
