package game

import (
	"errors"
	"sort"
	"sync"

	"github.com/gelaws-hub/board-game/internal/protocol"
	"github.com/gelaws-hub/board-game/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultHandSize is dealt when a start request does not name a hand size.
const DefaultHandSize = 5

// Session-level errors. The transport layer forwards these messages verbatim
// to the acting client; other players never hear about a failed attempt.
var (
	ErrGameNotFound     = errors.New("game not found")
	ErrPlayerNotFound   = errors.New("player not found in game")
	ErrGameNotJoinable  = errors.New("game is not accepting players")
	ErrDuplicatePlayer  = errors.New("username already taken in this game")
	ErrAlreadyStarted   = errors.New("game has already started")
	ErrNotLeader        = errors.New("only the game leader may start the game")
	ErrNotEnoughPlayers = errors.New("at least 2 players are required to start")
	ErrPlayersNotReady  = errors.New("not all players are ready")
	ErrNotEnoughCards   = errors.New("not enough cards in the deck for that hand size")
	ErrNotInProgress    = errors.New("game is not in progress")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrInvalidPlay      = errors.New("invalid card play")
	ErrNoCardsLeft      = errors.New("no cards left to draw")
)

// entry pairs a game with its own mutex. All mutations of one game are
// serialized on that mutex; games never block each other.
type entry struct {
	mu   sync.Mutex
	game *Game
}

// Registry owns every active game and enforces the session-level
// preconditions the rule engine does not know about: whose turn it is,
// whether the session accepts players, username uniqueness.
type Registry struct {
	rules  Rules
	log    *zap.SugaredLogger
	reaper *Reaper

	mu    sync.RWMutex
	games map[string]*entry
}

// NewRegistry creates an empty registry driving the given ruleset.
func NewRegistry(rules Rules, log *zap.SugaredLogger) *Registry {
	return &Registry{
		rules: rules,
		log:   log,
		games: make(map[string]*entry),
	}
}

// AttachReaper wires the idle reaper. Every state-changing operation resets
// the game's expiry through it.
func (r *Registry) AttachReaper(reaper *Reaper) {
	r.reaper = reaper
}

func (r *Registry) touch(g *Game) {
	if r.reaper != nil {
		r.reaper.Touch(g.ID, g.State == Finished)
	}
}

// lookup fetches the entry for a game id.
func (r *Registry) lookup(gameID string) (*entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.games[gameID]
	return e, ok
}

// withGame runs fn with the game's mutex held. Everything fn observes and
// mutates is a consistent snapshot; no other request sees the game
// mid-transition.
func (r *Registry) withGame(gameID string, fn func(g *Game) error) error {
	e, ok := r.lookup(gameID)
	if !ok {
		return ErrGameNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.game)
}

// CreateGame creates a new game with the creator seated as leader.
func (r *Registry) CreateGame(user shared.User, name string) *Game {
	g := NewGame(name, user)

	r.mu.Lock()
	r.games[g.ID] = &entry{game: g}
	r.mu.Unlock()

	r.touch(g)
	r.log.Infow("game created", "game_id", g.ID, "name", name, "leader", user.Username)
	return g
}

// AddPlayerToGame seats a new player. Fails on unknown game, a game past the
// lobby state, or a duplicate user id/username.
func (r *Registry) AddPlayerToGame(gameID string, user shared.User) (*shared.Player, error) {
	var player *shared.Player
	err := r.withGame(gameID, func(g *Game) error {
		if g.State != WaitingForPlayers {
			return ErrGameNotJoinable
		}
		for _, p := range g.Players {
			if p.User.ID == user.ID || p.User.Username == user.Username {
				return ErrDuplicatePlayer
			}
		}

		player = shared.NewPlayer(uuid.NewString(), user)
		g.Players = append(g.Players, player)
		r.touch(g)
		r.log.Infow("player joined", "game_id", gameID, "username", user.Username)
		return nil
	})
	return player, err
}

// SetPlayerReady marks a player ready. Idempotent. Reports whether the whole
// table (two or more seats) is now ready.
func (r *Registry) SetPlayerReady(gameID, username string) (bool, error) {
	allReady := false
	err := r.withGame(gameID, func(g *Game) error {
		player := g.FindPlayerByUsername(username)
		if player == nil {
			return ErrPlayerNotFound
		}
		player.IsReady = true

		allReady = len(g.Players) >= 2
		for _, p := range g.Players {
			if !p.IsReady {
				allReady = false
			}
		}
		r.touch(g)
		return nil
	})
	return allReady, err
}

// StartGame deals the opening hands and flips the opening lead. Only the
// leader may start, the table needs at least two ready seats, and the deck
// must cover every hand plus the lead.
func (r *Registry) StartGame(gameID, username string, initialHandSize int) error {
	return r.withGame(gameID, func(g *Game) error {
		if g.State != WaitingForPlayers {
			return ErrAlreadyStarted
		}
		caller := g.FindPlayerByUsername(username)
		if caller == nil {
			return ErrPlayerNotFound
		}
		if caller != g.Leader {
			return ErrNotLeader
		}
		if len(g.Players) < 2 {
			return ErrNotEnoughPlayers
		}
		for _, p := range g.Players {
			if !p.IsReady {
				return ErrPlayersNotReady
			}
		}

		if initialHandSize <= 0 {
			initialHandSize = DefaultHandSize
		}
		if initialHandSize*len(g.Players)+1 > g.DrawPile.Count() {
			return ErrNotEnoughCards
		}

		for _, p := range g.Players {
			for i := 0; i < initialHandSize; i++ {
				p.AddCard(*g.DrawPile.Draw())
			}
		}

		// Opening lead, owned by no seat
		g.CurrentTrick.AddCard(*g.DrawPile.Draw(), nil)

		g.State = InProgress
		g.CurrentPlayerIndex = 0
		r.touch(g)
		r.log.Infow("game started", "game_id", gameID,
			"players", len(g.Players), "hand_size", initialHandSize)
		return nil
	})
}

// PlayCard plays one card for the current player, advances the turn and
// evaluates the end condition. Reports whether the game just finished.
func (r *Registry) PlayCard(gameID, username string, card shared.Card) (bool, error) {
	finished := false
	err := r.withGame(gameID, func(g *Game) error {
		if g.State != InProgress {
			return ErrNotInProgress
		}
		player := g.FindPlayerByUsername(username)
		if player == nil {
			return ErrPlayerNotFound
		}
		if g.CurrentPlayer() != player {
			return ErrNotYourTurn
		}

		if !r.rules.TryPlayCard(g, player, card) {
			return ErrInvalidPlay
		}
		r.rules.NextTurn(g)

		if over, winner := r.rules.CheckGameEnd(g); over {
			g.Winner = winner
			g.State = Finished
			finished = true
			r.log.Infow("game finished", "game_id", gameID, "winner", winner.User.Username)
		}
		r.touch(g)
		return nil
	})
	return finished, err
}

// DrawCard draws one card for the current player, refilling the pile from
// the board history when needed.
func (r *Registry) DrawCard(gameID, username string) (*shared.Card, error) {
	var card *shared.Card
	err := r.withGame(gameID, func(g *Game) error {
		if g.State != InProgress {
			return ErrNotInProgress
		}
		player := g.FindPlayerByUsername(username)
		if player == nil {
			return ErrPlayerNotFound
		}
		if g.CurrentPlayer() != player {
			return ErrNotYourTurn
		}

		card = r.rules.DrawCard(g, player)
		if card == nil {
			return ErrNoCardsLeft
		}
		r.touch(g)
		return nil
	})
	return card, err
}

// EndTurn passes the turn. A request from anyone but the current player is a
// silent no-op, matching the tolerant behavior of the realtime clients.
func (r *Registry) EndTurn(gameID, username string) error {
	return r.withGame(gameID, func(g *Game) error {
		if g.State != InProgress {
			return ErrNotInProgress
		}
		player := g.FindPlayerByUsername(username)
		if player == nil {
			return ErrPlayerNotFound
		}
		if g.CurrentPlayer() != player {
			return nil
		}
		r.rules.NextTurn(g)
		r.touch(g)
		return nil
	})
}

// SetPlayerConnected flips the reachability flag of a seat. The seat itself
// is untouched, so a reconnecting player finds their hand as they left it.
func (r *Registry) SetPlayerConnected(gameID, username string, connected bool) (*shared.Player, error) {
	var player *shared.Player
	err := r.withGame(gameID, func(g *Game) error {
		player = g.FindPlayerByUsername(username)
		if player == nil {
			return ErrPlayerNotFound
		}
		player.IsConnected = connected
		if connected {
			r.touch(g)
		}
		return nil
	})
	return player, err
}

// SetPlayerConnectedByID is SetPlayerConnected keyed by player ID, used on
// transport disconnect where only the connection binding is known.
func (r *Registry) SetPlayerConnectedByID(gameID, playerID string, connected bool) error {
	return r.withGame(gameID, func(g *Game) error {
		player := g.FindPlayer(playerID)
		if player == nil {
			return ErrPlayerNotFound
		}
		player.IsConnected = connected
		if connected {
			r.touch(g)
		}
		return nil
	})
}

// getGame returns the live game aggregate. Unexported on purpose: outside
// this package the game is only ever observed through projections
// (BuildViews, PublicStatus, GameSummaries) and mutated through the registry
// methods, all under the per-game lock.
func (r *Registry) getGame(gameID string) (*Game, bool) {
	e, ok := r.lookup(gameID)
	if !ok {
		return nil, false
	}
	return e.game, true
}

// DeleteGame removes a game permanently. The id is invalid afterwards.
func (r *Registry) DeleteGame(gameID string) bool {
	r.mu.Lock()
	_, ok := r.games[gameID]
	delete(r.games, gameID)
	r.mu.Unlock()

	if ok {
		if r.reaper != nil {
			r.reaper.Cancel(gameID)
		}
		r.log.Infow("game deleted", "game_id", gameID)
	}
	return ok
}

// GameCount returns the number of active games.
func (r *Registry) GameCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// GameSummaries builds the lobby listing: public facts only, sorted by name
// for a stable list.
func (r *Registry) GameSummaries() []protocol.GameSummary {
	r.mu.RLock()
	entries := make([]*entry, 0, len(r.games))
	for _, e := range r.games {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	summaries := make([]protocol.GameSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		g := e.game
		summaries = append(summaries, protocol.GameSummary{
			GameID:         g.ID,
			GameName:       g.Name,
			PlayerCount:    len(g.Players),
			GameState:      string(g.State),
			LeaderUsername: g.Leader.User.Username,
		})
		e.mu.Unlock()
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].GameName != summaries[j].GameName {
			return summaries[i].GameName < summaries[j].GameName
		}
		return summaries[i].GameID < summaries[j].GameID
	})
	return summaries
}

// Result is the record of a finished game, handed to the results store.
type Result struct {
	GameID   string
	GameName string
	Winner   string
	Players  []string
}

// FinishedResult reports the outcome of a finished game.
func (r *Registry) FinishedResult(gameID string) (Result, bool) {
	var result Result
	ok := false
	_ = r.withGame(gameID, func(g *Game) error {
		if g.State != Finished || g.Winner == nil {
			return nil
		}
		result.GameID = g.ID
		result.GameName = g.Name
		result.Winner = g.Winner.User.Username
		for _, p := range g.Players {
			result.Players = append(result.Players, p.User.Username)
		}
		ok = true
		return nil
	})
	return result, ok
}

// PlayerIDs returns the player IDs seated at a game, in turn order.
func (r *Registry) PlayerIDs(gameID string) ([]string, error) {
	var ids []string
	err := r.withGame(gameID, func(g *Game) error {
		for _, p := range g.Players {
			ids = append(ids, p.ID)
		}
		return nil
	})
	return ids, err
}
