package game

import (
	"github.com/gelaws-hub/board-game/internal/protocol"
	"github.com/gelaws-hub/board-game/internal/shared"
)

// PersonalView is one player's personalized payload, ready for dispatch to
// whatever connection is currently bound to that player.
type PersonalView struct {
	PlayerID string
	Payload  protocol.GameViewPayload
}

// buildTrick projects the trick in progress.
func buildTrick(g *Game) []protocol.TrickPlay {
	plays := make([]protocol.TrickPlay, 0, g.CurrentTrick.Size())
	for _, play := range g.CurrentTrick.Plays {
		tp := protocol.TrickPlay{Card: play.Card}
		if play.Player != nil {
			tp.PlayerID = play.Player.ID
			tp.Username = play.Player.User.Username
		}
		plays = append(plays, tp)
	}
	return plays
}

// buildView projects the game for one viewer: shared public state, a summary
// per opponent, and only the viewer's own hand in full.
func buildView(g *Game, viewerIndex int) protocol.GameViewPayload {
	viewer := g.Players[viewerIndex]

	view := protocol.GameViewPayload{
		GameID:         g.ID,
		GameName:       g.Name,
		GameState:      string(g.State),
		LeaderUsername: g.Leader.User.Username,
		BoardHistory:   append([]shared.Card(nil), g.BoardHistory...),
		CurrentTrick:   buildTrick(g),
		DrawPileCount:  g.DrawPile.Count(),
		TurnIndex:      g.CurrentPlayerIndex,
		YourID:         viewer.ID,
		YourUsername:   viewer.User.Username,
		YourHand:       append([]shared.Card(nil), viewer.Hand...),
	}

	if g.Winner != nil {
		view.WinnerUsername = g.Winner.User.Username
	}
	if current := g.CurrentPlayer(); current != nil {
		view.CurrentPlayerID = current.ID
		view.CurrentUsername = current.User.Username
		view.YourTurn = g.State == InProgress && current == viewer
	}

	for i, p := range g.Players {
		if i == viewerIndex {
			continue
		}
		view.Opponents = append(view.Opponents, protocol.OpponentInfo{
			PlayerID:    p.ID,
			Username:    p.User.Username,
			IsConnected: p.IsConnected,
			IsReady:     p.IsReady,
			CardCount:   len(p.Hand),
		})
	}
	return view
}

// BuildViews builds one personalized view per seated player, under the
// game's lock, so every payload reflects the same consistent snapshot.
func (r *Registry) BuildViews(gameID string) ([]PersonalView, error) {
	var views []PersonalView
	err := r.withGame(gameID, func(g *Game) error {
		views = make([]PersonalView, 0, len(g.Players))
		for i, p := range g.Players {
			views = append(views, PersonalView{
				PlayerID: p.ID,
				Payload:  buildView(g, i),
			})
		}
		return nil
	})
	return views, err
}

// BuildViewFor builds the personalized view of a single player, used when
// re-sending state after a reconnect.
func (r *Registry) BuildViewFor(gameID, username string) (PersonalView, error) {
	var view PersonalView
	err := r.withGame(gameID, func(g *Game) error {
		for i, p := range g.Players {
			if p.User.Username == username {
				view = PersonalView{PlayerID: p.ID, Payload: buildView(g, i)}
				return nil
			}
		}
		return ErrPlayerNotFound
	})
	return view, err
}

// PublicStatus is the hand-hiding projection served to polling REST clients.
func (r *Registry) PublicStatus(gameID string) (protocol.GameStatusPayload, error) {
	var status protocol.GameStatusPayload
	err := r.withGame(gameID, func(g *Game) error {
		status = protocol.GameStatusPayload{
			GameID:         g.ID,
			GameName:       g.Name,
			GameState:      string(g.State),
			LeaderUsername: g.Leader.User.Username,
			DrawPileCount:  g.DrawPile.Count(),
			BoardHistory:   len(g.BoardHistory),
			CurrentTrick:   buildTrick(g),
		}
		if g.Winner != nil {
			status.WinnerUsername = g.Winner.User.Username
		}
		if current := g.CurrentPlayer(); current != nil {
			status.CurrentUsername = current.User.Username
		}
		for _, p := range g.Players {
			status.Players = append(status.Players, protocol.OpponentInfo{
				PlayerID:    p.ID,
				Username:    p.User.Username,
				IsConnected: p.IsConnected,
				IsReady:     p.IsReady,
				CardCount:   len(p.Hand),
			})
		}
		return nil
	})
	return status, err
}
