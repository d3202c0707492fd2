package call

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RRM006/NexusCRM-sub000/internal/models"
)

type fakeRecordStore struct {
	mu       sync.Mutex
	ops      []string
	created  []*models.CallRecord
	failNext bool
}

func (f *fakeRecordStore) CreateCallRecord(ctx context.Context, rec *models.CallRecord) (*models.CallRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext {
		f.failNext = false
		return nil, errors.New("db down")
	}
	f.ops = append(f.ops, "create:"+rec.SessionID)
	f.created = append(f.created, rec)
	return rec, nil
}

func (f *fakeRecordStore) MarkCallAnswered(ctx context.Context, sessionID, calleeUserID string, answerTime time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "answer:"+sessionID)
	return nil
}

func (f *fakeRecordStore) FinishCallRecord(ctx context.Context, sessionID string, status models.CallStatus, endTime time.Time, durationSeconds int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "finish:"+sessionID+":"+string(status))
	return nil
}

func (f *fakeRecordStore) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}

type fakeActiveCache struct {
	mu      sync.Mutex
	set     []string
	removed []string
}

func (f *fakeActiveCache) SetActiveCall(ctx context.Context, sessionID string, data map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = append(f.set, sessionID)
	return nil
}

func (f *fakeActiveCache) RemoveActiveCall(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, sessionID)
	return nil
}

func TestBridgeWritesInLifecycleOrder(t *testing.T) {
	store := &fakeRecordStore{}
	cache := &fakeActiveCache{}
	b := NewBridge(store, cache)

	s := Session{ID: "s1", TenantID: "tnt", CallerUserID: "caller", Type: models.CallTypeBroadcast, CreatedAt: time.Now()}
	b.OnInitiated(s)
	s.ReceiverUserID = "r1"
	s.ConnectedAt = time.Now()
	b.OnConnected(s)
	s.EndedAt = time.Now()
	b.OnEnded(s, models.CallStatusCompleted, 12)

	b.Close()

	want := []string{"create:s1", "answer:s1", "finish:s1:completed"}
	got := store.snapshot()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("op %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	if len(cache.set) != 1 || cache.set[0] != "s1" {
		t.Fatalf("active cache set: %v", cache.set)
	}
	if len(cache.removed) != 1 || cache.removed[0] != "s1" {
		t.Fatalf("active cache removed: %v", cache.removed)
	}
}

func TestBridgeStoreFailureDoesNotStopLaterWrites(t *testing.T) {
	store := &fakeRecordStore{failNext: true}
	b := NewBridge(store, nil)

	s := Session{ID: "s1", CreatedAt: time.Now()}
	b.OnInitiated(s)
	s.EndedAt = time.Now()
	b.OnEnded(s, models.CallStatusMissed, 0)

	b.Close()

	got := store.snapshot()
	if len(got) != 1 || got[0] != "finish:s1:missed" {
		t.Fatalf("expected only the finish write to land, got %v", got)
	}
}

func TestBridgeNilCache(t *testing.T) {
	store := &fakeRecordStore{}
	b := NewBridge(store, nil)

	s := Session{ID: "s1", CreatedAt: time.Now()}
	b.OnInitiated(s)
	s.EndedAt = time.Now()
	b.OnEnded(s, models.CallStatusCancelled, 0)

	b.Close()

	if got := store.snapshot(); len(got) != 2 {
		t.Fatalf("expected 2 writes, got %v", got)
	}
}

func TestBridgeInitiatedRecordFields(t *testing.T) {
	store := &fakeRecordStore{}
	b := NewBridge(store, nil)

	start := time.Now()
	b.OnInitiated(Session{
		ID:           "s1",
		TenantID:     "tnt",
		CallerUserID: "caller",
		Type:         models.CallTypeDirect,
		CreatedAt:    start,
	})
	b.Close()

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.created) != 1 {
		t.Fatalf("expected 1 created record")
	}
	rec := store.created[0]
	if rec.SessionID != "s1" || rec.TenantID != "tnt" || rec.CallerUserID != "caller" {
		t.Fatalf("record identity fields wrong: %+v", rec)
	}
	if rec.CallType != models.CallTypeDirect || rec.Status != models.CallStatusInitiated {
		t.Fatalf("record type/status wrong: %+v", rec)
	}
	if !rec.StartTime.Equal(start) {
		t.Fatalf("start time wrong: %v", rec.StartTime)
	}
}
