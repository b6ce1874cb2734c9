package server

import "sync"

// PlayerConnections is the bidirectional association between a stable player
// identity and the volatile connection currently carrying it. A player has
// at most one live connection; a connection carries at most one player.
// Rebinding on reconnect replaces the mapping without touching player state.
type PlayerConnections struct {
	mu       sync.RWMutex
	byPlayer map[string]string // player ID -> connection ID
	byConn   map[string]string // connection ID -> player ID
}

// NewPlayerConnections creates an empty mapping.
func NewPlayerConnections() *PlayerConnections {
	return &PlayerConnections{
		byPlayer: make(map[string]string),
		byConn:   make(map[string]string),
	}
}

// Bind associates a player with a connection, displacing any previous
// binding on either side.
func (pc *PlayerConnections) Bind(playerID, connID string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if oldConn, ok := pc.byPlayer[playerID]; ok {
		delete(pc.byConn, oldConn)
	}
	if oldPlayer, ok := pc.byConn[connID]; ok {
		delete(pc.byPlayer, oldPlayer)
	}
	pc.byPlayer[playerID] = connID
	pc.byConn[connID] = playerID
}

// Lookup returns the connection currently bound to a player.
func (pc *PlayerConnections) Lookup(playerID string) (string, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	connID, ok := pc.byPlayer[playerID]
	return connID, ok
}

// LookupPlayer returns the player bound to a connection.
func (pc *PlayerConnections) LookupPlayer(connID string) (string, bool) {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	playerID, ok := pc.byConn[connID]
	return playerID, ok
}

// Unbind removes whichever player was bound to the connection and reports
// who it was. Player state itself is untouched.
func (pc *PlayerConnections) Unbind(connID string) (string, bool) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	playerID, ok := pc.byConn[connID]
	if !ok {
		return "", false
	}
	delete(pc.byConn, connID)
	delete(pc.byPlayer, playerID)
	return playerID, true
}

// Count returns the number of live bindings.
func (pc *PlayerConnections) Count() int {
	pc.mu.RLock()
	defer pc.mu.RUnlock()
	return len(pc.byPlayer)
}
