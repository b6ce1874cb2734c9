package game

import (
	"testing"

	"github.com/gelaws-hub/board-game/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRegistry() *Registry {
	return NewRegistry(NewMinumanRules(), zap.NewNop().Sugar())
}

// readyTwoPlayerGame creates a game with alice (leader) and bob, both ready.
func readyTwoPlayerGame(t *testing.T, r *Registry) *Game {
	t.Helper()
	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	_, err := r.AddPlayerToGame(g.ID, shared.User{ID: "ub", Username: "bob"})
	require.NoError(t, err)
	_, err = r.SetPlayerReady(g.ID, "alice")
	require.NoError(t, err)
	_, err = r.SetPlayerReady(g.ID, "bob")
	require.NoError(t, err)
	return g
}

func TestCreateGame(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()

	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	assert.Equal(WaitingForPlayers, g.State)
	assert.Equal("T1", g.Name)
	assert.Len(g.Players, 1)
	assert.Same(g.Players[0], g.Leader)
	assert.Equal("alice", g.Leader.User.Username)
	assert.Empty(g.Leader.Hand)
	assert.Equal(1, r.GameCount())
}

func TestAddPlayerToGame(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	player, err := r.AddPlayerToGame(g.ID, shared.User{ID: "ub", Username: "bob"})
	assert.NoError(err)
	assert.Equal("bob", player.User.Username)
	assert.Len(g.Players, 2)

	// Unknown game
	_, err = r.AddPlayerToGame("nope", shared.User{ID: "uc", Username: "carol"})
	assert.ErrorIs(err, ErrGameNotFound)

	// Duplicate username
	_, err = r.AddPlayerToGame(g.ID, shared.User{ID: "ux", Username: "bob"})
	assert.ErrorIs(err, ErrDuplicatePlayer)

	// Duplicate user id
	_, err = r.AddPlayerToGame(g.ID, shared.User{ID: "ub", Username: "bob2"})
	assert.ErrorIs(err, ErrDuplicatePlayer)
}

func TestAddPlayerAfterStart(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)
	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	_, err := r.AddPlayerToGame(g.ID, shared.User{ID: "uc", Username: "carol"})
	assert.ErrorIs(err, ErrGameNotJoinable)
}

func TestSetPlayerReady(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	// A lone ready player is not a ready table
	allReady, err := r.SetPlayerReady(g.ID, "alice")
	assert.NoError(err)
	assert.False(allReady)

	_, err = r.AddPlayerToGame(g.ID, shared.User{ID: "ub", Username: "bob"})
	require.NoError(t, err)

	allReady, err = r.SetPlayerReady(g.ID, "bob")
	assert.NoError(err)
	assert.True(allReady)

	// Idempotent
	allReady, err = r.SetPlayerReady(g.ID, "bob")
	assert.NoError(err)
	assert.True(allReady)

	_, err = r.SetPlayerReady(g.ID, "mallory")
	assert.ErrorIs(err, ErrPlayerNotFound)
}

func TestStartGamePreconditions(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	_, err := r.SetPlayerReady(g.ID, "alice")
	require.NoError(t, err)
	assert.ErrorIs(r.StartGame(g.ID, "alice", 5), ErrNotEnoughPlayers)

	_, err = r.AddPlayerToGame(g.ID, shared.User{ID: "ub", Username: "bob"})
	require.NoError(t, err)
	assert.ErrorIs(r.StartGame(g.ID, "alice", 5), ErrPlayersNotReady)

	_, err = r.SetPlayerReady(g.ID, "bob")
	require.NoError(t, err)

	// Only the leader may start
	assert.ErrorIs(r.StartGame(g.ID, "bob", 5), ErrNotLeader)
	assert.ErrorIs(r.StartGame(g.ID, "mallory", 5), ErrPlayerNotFound)

	// Hands must fit the deck: 2 players * 26 + lead > 52
	assert.ErrorIs(r.StartGame(g.ID, "alice", 26), ErrNotEnoughCards)

	assert.NoError(r.StartGame(g.ID, "alice", 5))
	assert.ErrorIs(r.StartGame(g.ID, "alice", 5), ErrAlreadyStarted)
}

func TestStartGameDeals(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)

	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	assert.Equal(InProgress, g.State)
	assert.Len(g.Players[0].Hand, 5)
	assert.Len(g.Players[1].Hand, 5)
	assert.Equal(1, g.CurrentTrick.Size())
	assert.Nil(g.CurrentTrick.Plays[0].Player)
	assert.Equal(41, g.DrawPile.Count()) // 52 - 10 dealt - 1 lead
	assert.Equal(0, g.CurrentPlayerIndex)
	assert.Equal(52, totalCards(g))
}

func TestStartGameDefaultHandSize(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)

	require.NoError(t, r.StartGame(g.ID, "alice", 0))
	assert.Len(g.Players[0].Hand, DefaultHandSize)
}

func TestPlayCardTurnOwnership(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)

	// Not started yet
	_, err := r.PlayCard(g.ID, "alice", shared.Card{Suit: shared.Hearts, Rank: "7"})
	assert.ErrorIs(err, ErrNotInProgress)

	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	_, err = r.PlayCard(g.ID, "bob", g.Players[1].Hand[0])
	assert.ErrorIs(err, ErrNotYourTurn)

	_, err = r.PlayCard(g.ID, "mallory", shared.Card{Suit: shared.Hearts, Rank: "7"})
	assert.ErrorIs(err, ErrPlayerNotFound)
}

func TestPlayCardCompletesTrick(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)
	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	// Pin the board to a known position: clubs led, alice to follow. The
	// dealt lead goes back to the pile so the card count stays intact.
	g.DrawPile.Refill(g.CurrentTrick.Cards())
	g.CurrentTrick.Clear()
	lead := takeFromPile(g, shared.Card{Suit: shared.Clubs, Rank: "9"})
	aliceCard := takeFromPile(g, shared.Card{Suit: shared.Clubs, Rank: "K"})
	g.CurrentTrick.AddCard(lead, nil)
	g.Players[0].AddCard(aliceCard)

	// Off-suit play is rejected
	var offSuit shared.Card
	for _, c := range g.Players[0].Hand {
		if c.Suit != shared.Clubs {
			offSuit = c
			break
		}
	}
	if offSuit.Rank != "" {
		_, err := r.PlayCard(g.ID, "alice", offSuit)
		assert.ErrorIs(err, ErrInvalidPlay)
	}

	handBefore := len(g.Players[0].Hand)
	finished, err := r.PlayCard(g.ID, "alice", aliceCard)
	assert.NoError(err)
	assert.False(finished)

	// Two cards at a two-seat table complete the trick: alice's king beats
	// the unowned nine, so she leads the next trick
	assert.Equal(0, g.CurrentTrick.Size())
	assert.Equal([]shared.Card{lead, aliceCard}, g.BoardHistory)
	assert.Equal(0, g.CurrentPlayerIndex)
	assert.Len(g.Players[0].Hand, handBefore-1)
	assert.Equal(52, totalCards(g))
}

func TestPlayCardFinishesGame(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)
	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	// Alice down to one card, free to lead it
	g.DrawPile.Refill(g.CurrentTrick.Cards())
	g.CurrentTrick.Clear()
	last := g.Players[0].Hand[0]
	g.BoardHistory = append(g.BoardHistory, g.Players[0].Hand[1:]...)
	g.Players[0].Hand = g.Players[0].Hand[:1]

	finished, err := r.PlayCard(g.ID, "alice", last)
	assert.NoError(err)
	assert.True(finished)
	assert.Equal(Finished, g.State)
	assert.Same(g.Players[0], g.Winner)

	result, ok := r.FinishedResult(g.ID)
	assert.True(ok)
	assert.Equal("alice", result.Winner)
	assert.Equal("T1", result.GameName)
	assert.Equal([]string{"alice", "bob"}, result.Players)

	// No more plays once finished
	_, err = r.PlayCard(g.ID, "bob", g.Players[1].Hand[0])
	assert.ErrorIs(err, ErrNotInProgress)
}

func TestDrawCardRegistry(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)
	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	_, err := r.DrawCard(g.ID, "bob")
	assert.ErrorIs(err, ErrNotYourTurn)

	card, err := r.DrawCard(g.ID, "alice")
	assert.NoError(err)
	assert.NotNil(card)
	assert.Len(g.Players[0].Hand, 6)

	// Exhaust everything: empty pile, empty history
	g.DrawPile.Cards = []shared.Card{}
	g.BoardHistory = []shared.Card{}
	_, err = r.DrawCard(g.ID, "alice")
	assert.ErrorIs(err, ErrNoCardsLeft)
	assert.Len(g.Players[0].Hand, 6)
}

func TestEndTurn(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)
	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	// Not the current player: silent no-op
	assert.NoError(r.EndTurn(g.ID, "bob"))
	assert.Equal(0, g.CurrentPlayerIndex)

	assert.NoError(r.EndTurn(g.ID, "alice"))
	assert.Equal(1, g.CurrentPlayerIndex)

	assert.ErrorIs(r.EndTurn(g.ID, "mallory"), ErrPlayerNotFound)
}

func TestReconnectionTransparency(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := readyTwoPlayerGame(t, r)
	require.NoError(t, r.StartGame(g.ID, "alice", 5))

	handBefore := append([]shared.Card(nil), g.Players[1].Hand...)
	turnBefore := g.CurrentPlayerIndex

	_, err := r.SetPlayerConnected(g.ID, "bob", false)
	assert.NoError(err)
	assert.False(g.Players[1].IsConnected)

	player, err := r.SetPlayerConnected(g.ID, "bob", true)
	assert.NoError(err)
	assert.True(player.IsConnected)

	// Dropping and rebinding a connection never touches game state
	assert.Equal(handBefore, g.Players[1].Hand)
	assert.Equal(turnBefore, g.CurrentPlayerIndex)
	assert.Equal(InProgress, g.State)
}

func TestDeleteGame(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g := r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "T1")

	assert.True(r.DeleteGame(g.ID))
	assert.False(r.DeleteGame(g.ID))

	_, ok := r.getGame(g.ID)
	assert.False(ok)
	_, err := r.AddPlayerToGame(g.ID, shared.User{ID: "ub", Username: "bob"})
	assert.ErrorIs(err, ErrGameNotFound)
}

func TestGameSummaries(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	r.CreateGame(shared.User{ID: "ua", Username: "alice"}, "Beta")
	r.CreateGame(shared.User{ID: "ub", Username: "bob"}, "Alpha")

	summaries := r.GameSummaries()
	assert.Len(summaries, 2)
	assert.Equal("Alpha", summaries[0].GameName)
	assert.Equal("Beta", summaries[1].GameName)
	assert.Equal("bob", summaries[0].LeaderUsername)
	assert.Equal(1, summaries[0].PlayerCount)
	assert.Equal(string(WaitingForPlayers), summaries[0].GameState)
}

func TestGamesAreIndependent(t *testing.T) {
	assert := assert.New(t)
	r := newTestRegistry()
	g1 := readyTwoPlayerGame(t, r)

	g2 := r.CreateGame(shared.User{ID: "uc", Username: "carol"}, "T2")

	require.NoError(t, r.StartGame(g1.ID, "alice", 5))
	assert.Equal(InProgress, g1.State)
	assert.Equal(WaitingForPlayers, g2.State)
	assert.Empty(g2.Players[0].Hand)
}
