package game

import (
	"sync"
	"testing"
	"time"

	"github.com/gelaws-hub/board-game/internal/shared"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

// expiryRecorder collects expired game ids with their arrival times.
type expiryRecorder struct {
	mu      sync.Mutex
	expired []string
}

func (e *expiryRecorder) record(gameID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expired = append(e.expired, gameID)
}

func (e *expiryRecorder) snapshot() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.expired...)
}

func TestReaperExpiresIdleGame(t *testing.T) {
	assert := assert.New(t)

	rec := &expiryRecorder{}
	reaper := NewReaper(50*time.Millisecond, 25*time.Millisecond, rec.record, zap.NewNop().Sugar())
	go reaper.Run()
	defer reaper.Stop()

	reaper.Touch("g1", false)

	time.Sleep(200 * time.Millisecond)
	assert.Equal([]string{"g1"}, rec.snapshot())
}

func TestReaperTouchResetsDeadline(t *testing.T) {
	assert := assert.New(t)

	rec := &expiryRecorder{}
	reaper := NewReaper(150*time.Millisecond, 50*time.Millisecond, rec.record, zap.NewNop().Sugar())
	go reaper.Run()
	defer reaper.Stop()

	reaper.Touch("g1", false)
	time.Sleep(100 * time.Millisecond)
	reaper.Touch("g1", false) // activity: deadline starts over

	time.Sleep(100 * time.Millisecond)
	assert.Empty(rec.snapshot(), "touched game expired too early")

	time.Sleep(150 * time.Millisecond)
	assert.Equal([]string{"g1"}, rec.snapshot())
}

func TestReaperFinishedWindowIsShorter(t *testing.T) {
	assert := assert.New(t)

	rec := &expiryRecorder{}
	reaper := NewReaper(10*time.Second, 50*time.Millisecond, rec.record, zap.NewNop().Sugar())
	go reaper.Run()
	defer reaper.Stop()

	reaper.Touch("g1", true)

	time.Sleep(200 * time.Millisecond)
	assert.Equal([]string{"g1"}, rec.snapshot())
}

func TestReaperCancel(t *testing.T) {
	assert := assert.New(t)

	rec := &expiryRecorder{}
	reaper := NewReaper(50*time.Millisecond, 25*time.Millisecond, rec.record, zap.NewNop().Sugar())
	go reaper.Run()
	defer reaper.Stop()

	reaper.Touch("g1", false)
	reaper.Cancel("g1")

	time.Sleep(200 * time.Millisecond)
	assert.Empty(rec.snapshot())
}

func TestReaperExpiresEachGameOnce(t *testing.T) {
	assert := assert.New(t)

	rec := &expiryRecorder{}
	reaper := NewReaper(40*time.Millisecond, 20*time.Millisecond, rec.record, zap.NewNop().Sugar())
	go reaper.Run()
	defer reaper.Stop()

	reaper.Touch("g1", false)
	reaper.Touch("g2", false)
	reaper.Touch("g1", false) // supersedes the first g1 deadline

	time.Sleep(250 * time.Millisecond)
	expired := rec.snapshot()
	assert.Len(expired, 2)
	assert.Contains(expired, "g1")
	assert.Contains(expired, "g2")
}

func TestReaperIntegratesWithRegistry(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()

	deleted := make(chan string, 1)
	reaper := NewReaper(60*time.Millisecond, 30*time.Millisecond, func(gameID string) {
		r.DeleteGame(gameID)
		deleted <- gameID
	}, zap.NewNop().Sugar())
	r.AttachReaper(reaper)
	go reaper.Run()
	defer reaper.Stop()

	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	select {
	case gameID := <-deleted:
		assert.Equal(g.ID, gameID)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("idle game was never reaped")
	}

	_, ok := r.getGame(g.ID)
	assert.False(ok)
}
