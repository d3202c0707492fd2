package call

import (
	"context"
	"log"
	"time"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

// RecordStore is the durable call record collaborator. Updates are
// keyed by session id so the live call path never waits on the
// insert's generated id.
type RecordStore interface {
	CreateCallRecord(ctx context.Context, rec *models.CallRecord) (*models.CallRecord, error)
	MarkCallAnswered(ctx context.Context, sessionID, calleeUserID string, answerTime time.Time) error
	FinishCallRecord(ctx context.Context, sessionID string, status models.CallStatus, endTime time.Time, durationSeconds int) error
}

// ActiveCallCache mirrors live sessions into the shared cache so other
// CRM services can observe call activity
type ActiveCallCache interface {
	SetActiveCall(ctx context.Context, sessionID string, data map[string]string) error
	RemoveActiveCall(ctx context.Context, sessionID string) error
}

const (
	bridgeQueueSize = 256
	bridgeOpTimeout = 5 * time.Second
)

// Bridge implements Recorder with fire-and-forget persistence. All
// writes for all sessions are funneled through one worker goroutine, so
// a session's initiated record always lands before its updates. Write
// failures are logged and never surface to the live call path.
type Bridge struct {
	store RecordStore
	cache ActiveCallCache

	queue chan func(ctx context.Context)
	done  chan struct{}
}

// NewBridge creates the bridge and starts its worker. cache may be nil;
// call tracking then stays purely in Postgres.
func NewBridge(store RecordStore, cache ActiveCallCache) *Bridge {
	b := &Bridge{
		store: store,
		cache: cache,
		queue: make(chan func(ctx context.Context), bridgeQueueSize),
		done:  make(chan struct{}),
	}
	go b.run()
	return b
}

func (b *Bridge) run() {
	defer close(b.done)

	for op := range b.queue {
		ctx, cancel := context.WithTimeout(context.Background(), bridgeOpTimeout)
		op(ctx)
		cancel()
	}
}

// enqueue dispatches an op to the worker without blocking. A full queue
// drops the write; persistence is best-effort.
func (b *Bridge) enqueue(what string, op func(ctx context.Context)) {
	select {
	case b.queue <- op:
	default:
		log.Printf("[Record] Queue full, dropping %s write", what)
	}
}

// OnInitiated persists the initiated record for a new session
func (b *Bridge) OnInitiated(s Session) {
	rec := &models.CallRecord{
		TenantID:     s.TenantID,
		SessionID:    s.ID,
		CallerUserID: s.CallerUserID,
		CallType:     s.Type,
		Status:       models.CallStatusInitiated,
		StartTime:    s.CreatedAt,
	}

	b.enqueue("initiated", func(ctx context.Context) {
		if _, err := b.store.CreateCallRecord(ctx, rec); err != nil {
			log.Printf("[Record] Failed to create call record for %s: %v", s.ID, err)
		}
		if b.cache != nil {
			err := b.cache.SetActiveCall(ctx, s.ID, map[string]string{
				"tenant_id": s.TenantID,
				"caller":    s.CallerUserID,
				"call_type": string(s.Type),
				"status":    string(models.CallStatusInitiated),
			})
			if err != nil {
				log.Printf("[Record] Failed to cache active call %s: %v", s.ID, err)
			}
		}
	})
}

// OnConnected marks the record answered by the accept-race winner
func (b *Bridge) OnConnected(s Session) {
	b.enqueue("answered", func(ctx context.Context) {
		if err := b.store.MarkCallAnswered(ctx, s.ID, s.ReceiverUserID, s.ConnectedAt); err != nil {
			log.Printf("[Record] Failed to mark call %s answered: %v", s.ID, err)
		}
	})
}

// OnEnded writes the terminal status and duration, and drops the
// active-call cache entry
func (b *Bridge) OnEnded(s Session, status models.CallStatus, durationSeconds int) {
	b.enqueue("ended", func(ctx context.Context) {
		if err := b.store.FinishCallRecord(ctx, s.ID, status, s.EndedAt, durationSeconds); err != nil {
			log.Printf("[Record] Failed to finish call record for %s: %v", s.ID, err)
		}
		if b.cache != nil {
			if err := b.cache.RemoveActiveCall(ctx, s.ID); err != nil {
				log.Printf("[Record] Failed to remove active call %s from cache: %v", s.ID, err)
			}
		}
	})
}

// Close stops accepting writes and waits for the worker to drain
func (b *Bridge) Close() {
	close(b.queue)
	<-b.done
}
