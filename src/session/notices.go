package session

import (
	"sync"
	"time"

	"trade-dashboard/src/models"
)

// NoticeBoard holds the transient notices of one workspace. A notice is
// visible until it expires or is dismissed.
type NoticeBoard struct {
	mu      sync.Mutex
	ttl     time.Duration
	seq     uint64
	notices []models.MNotice
	now     func() time.Time
}

func NewNoticeBoard(ttl time.Duration) *NoticeBoard {
	if ttl <= 0 {
		ttl = 6 * time.Second
	}
	return &NoticeBoard{ttl: ttl, now: time.Now}
}

// -----------------------------------------------------------------------------

func (b *NoticeBoard) Push(severity models.NoticeSeverity, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	b.notices = append(b.notices, models.MNotice{
		ID:        b.seq,
		Severity:  severity,
		Message:   message,
		ExpiresAt: b.now().Add(b.ttl),
	})
}

// -----------------------------------------------------------------------------

// Active returns the unexpired notices, oldest first, and drops the rest.
func (b *NoticeBoard) Active() []models.MNotice {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	kept := b.notices[:0]
	for _, n := range b.notices {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	b.notices = kept
	return append([]models.MNotice(nil), kept...)
}

// -----------------------------------------------------------------------------

func (b *NoticeBoard) Dismiss(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, n := range b.notices {
		if n.ID == id {
			b.notices = append(b.notices[:i], b.notices[i+1:]...)
			return
		}
	}
}
