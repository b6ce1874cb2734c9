package game

import (
	"container/heap"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Default expiry windows. A finished game gets a shorter window: long enough
// for players to see the result, short enough not to hold the table.
const (
	DefaultIdleTTL     = 10 * time.Minute
	DefaultFinishedTTL = 5 * time.Minute
)

// expiryItem is one scheduled deletion. Stale items are left in the heap and
// skipped on pop by comparing seq against the live entry for that game.
type expiryItem struct {
	gameID   string
	deadline time.Time
	seq      uint64
}

type expiryHeap []expiryItem

func (h expiryHeap) Len() int            { return len(h) }
func (h expiryHeap) Less(i, j int) bool  { return h[i].deadline.Before(h[j].deadline) }
func (h expiryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *expiryHeap) Push(x interface{}) { *h = append(*h, x.(expiryItem)) }
func (h *expiryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Reaper is the single scheduler that ages out idle games. One goroutine
// owns a priority queue of (gameID, deadline); every state-changing registry
// operation resets a game's deadline through Touch, and expiry fires the
// onExpire callback exactly once per deleted game.
type Reaper struct {
	idleTTL     time.Duration
	finishedTTL time.Duration
	onExpire    func(gameID string)
	log         *zap.SugaredLogger

	mu      sync.Mutex
	queue   expiryHeap
	live    map[string]uint64 // latest seq per game; older heap items are stale
	nextSeq uint64
	wake    chan struct{}
	done    chan struct{}
}

// NewReaper creates a reaper. onExpire runs on the reaper goroutine and is
// expected to delete the game from the registry.
func NewReaper(idleTTL, finishedTTL time.Duration, onExpire func(gameID string), log *zap.SugaredLogger) *Reaper {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	if finishedTTL <= 0 {
		finishedTTL = DefaultFinishedTTL
	}
	return &Reaper{
		idleTTL:     idleTTL,
		finishedTTL: finishedTTL,
		onExpire:    onExpire,
		log:         log,
		live:        make(map[string]uint64),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
}

// Touch resets the game's deadline to a full window from now. The previous
// deadline is discarded, not accumulated.
func (r *Reaper) Touch(gameID string, finished bool) {
	ttl := r.idleTTL
	if finished {
		ttl = r.finishedTTL
	}

	r.mu.Lock()
	r.nextSeq++
	seq := r.nextSeq
	r.live[gameID] = seq
	heap.Push(&r.queue, expiryItem{gameID: gameID, deadline: time.Now().Add(ttl), seq: seq})
	r.mu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// Cancel drops the game's pending expiry, used when a game is deleted
// explicitly.
func (r *Reaper) Cancel(gameID string) {
	r.mu.Lock()
	delete(r.live, gameID)
	r.mu.Unlock()
}

// Run processes the queue until Stop. Meant to be run as a goroutine.
func (r *Reaper) Run() {
	timer := time.NewTimer(r.idleTTL)
	defer timer.Stop()

	for {
		var expired []string

		r.mu.Lock()
		now := time.Now()
		wait := r.idleTTL
		for r.queue.Len() > 0 {
			next := r.queue[0]
			if seq, ok := r.live[next.gameID]; !ok || seq != next.seq {
				heap.Pop(&r.queue) // stale entry, superseded by a later Touch
				continue
			}
			if d := next.deadline.Sub(now); d > 0 {
				wait = d
				break
			}
			heap.Pop(&r.queue)
			delete(r.live, next.gameID)
			expired = append(expired, next.gameID)
		}
		r.mu.Unlock()

		for _, gameID := range expired {
			r.log.Infow("game expired", "game_id", gameID)
			r.onExpire(gameID)
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(wait)

		select {
		case <-r.done:
			return
		case <-r.wake:
		case <-timer.C:
		}
	}
}

// Stop terminates the Run loop. Pending deadlines are abandoned.
func (r *Reaper) Stop() {
	close(r.done)
}
