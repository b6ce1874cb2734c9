package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBindAndLookup(t *testing.T) {
	assert := assert.New(t)
	pc := NewPlayerConnections()

	pc.Bind("player1", "conn1")

	connID, ok := pc.Lookup("player1")
	assert.True(ok)
	assert.Equal("conn1", connID)

	playerID, ok := pc.LookupPlayer("conn1")
	assert.True(ok)
	assert.Equal("player1", playerID)

	assert.Equal(1, pc.Count())
}

func TestRebindReplacesOldConnection(t *testing.T) {
	assert := assert.New(t)
	pc := NewPlayerConnections()

	pc.Bind("player1", "conn1")
	pc.Bind("player1", "conn2") // reconnect on a fresh transport

	connID, ok := pc.Lookup("player1")
	assert.True(ok)
	assert.Equal("conn2", connID)

	// The stale connection no longer resolves to anyone
	_, ok = pc.LookupPlayer("conn1")
	assert.False(ok)
	assert.Equal(1, pc.Count())
}

func TestBindStealsConnectionFromOtherPlayer(t *testing.T) {
	assert := assert.New(t)
	pc := NewPlayerConnections()

	pc.Bind("player1", "conn1")
	pc.Bind("player2", "conn1")

	playerID, ok := pc.LookupPlayer("conn1")
	assert.True(ok)
	assert.Equal("player2", playerID)

	_, ok = pc.Lookup("player1")
	assert.False(ok)
	assert.Equal(1, pc.Count())
}

func TestUnbind(t *testing.T) {
	assert := assert.New(t)
	pc := NewPlayerConnections()

	pc.Bind("player1", "conn1")

	playerID, ok := pc.Unbind("conn1")
	assert.True(ok)
	assert.Equal("player1", playerID)
	assert.Equal(0, pc.Count())

	_, ok = pc.Lookup("player1")
	assert.False(ok)

	// Unknown connection
	_, ok = pc.Unbind("conn1")
	assert.False(ok)
}
