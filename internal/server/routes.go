package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gelaws-hub/board-game/internal/database"
	"github.com/gelaws-hub/board-game/internal/game"
	"github.com/gelaws-hub/board-game/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewRouter builds the HTTP surface: the WebSocket endpoint plus a thin REST
// duplicate of the registry operations for simple polling clients, and the
// results history. Every REST handler goes through the same registry the hub
// uses.
func NewRouter(hub *Hub, registry *game.Registry, results *database.Service, log *zap.SugaredLogger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/ws", func(c *gin.Context) {
		ServeWs(hub, c.Writer, c.Request)
	})

	g := router.Group("/game")
	{
		g.POST("/create", func(c *gin.Context) {
			username := c.Query("username")
			name := c.Query("name")
			if username == "" || name == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "username and name are required"})
				return
			}

			user := shared.User{ID: uuid.NewString(), Username: username}
			created := registry.CreateGame(user, name)
			hub.BroadcastGameList()

			c.JSON(http.StatusOK, gin.H{
				"game_id": created.ID,
				"message": "Game created successfully.",
				"state":   string(created.State),
			})
		})

		g.GET("/status/:id", func(c *gin.Context) {
			status, err := registry.PublicStatus(c.Param("id"))
			if err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
				return
			}
			c.JSON(http.StatusOK, status)
		})

		g.POST("/:id/join", func(c *gin.Context) {
			username := c.Query("username")
			if username == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
				return
			}

			user := shared.User{ID: uuid.NewString(), Username: username}
			player, err := registry.AddPlayerToGame(c.Param("id"), user)
			if err != nil {
				c.JSON(restStatus(err), gin.H{"error": err.Error()})
				return
			}
			hub.BroadcastGameList()

			c.JSON(http.StatusOK, gin.H{
				"message":   "Player joined",
				"player_id": player.ID,
				"user_id":   user.ID,
			})
		})

		g.POST("/:id/start", func(c *gin.Context) {
			username := c.Query("username")
			if username == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
				return
			}
			cards, _ := strconv.Atoi(c.DefaultQuery("cards", "0"))

			if err := registry.StartGame(c.Param("id"), username, cards); err != nil {
				c.JSON(restStatus(err), gin.H{"error": err.Error()})
				return
			}
			hub.BroadcastGameList()

			c.JSON(http.StatusOK, gin.H{"message": "Game started", "state": string(game.InProgress)})
		})
	}

	api := router.Group("/api")
	{
		api.GET("/results", func(c *gin.Context) {
			if results == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "results store disabled"})
				return
			}
			all, err := results.GetAll()
			if err != nil {
				log.Errorw("fetching results", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch results"})
				return
			}
			c.JSON(http.StatusOK, all)
		})

		api.GET("/results/player/:name", func(c *gin.Context) {
			if results == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "results store disabled"})
				return
			}
			found, err := results.GetByPlayer(c.Param("name"))
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					c.JSON(http.StatusNotFound, gin.H{"error": "no results found for player"})
					return
				}
				log.Errorw("fetching player results", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch results"})
				return
			}
			c.JSON(http.StatusOK, found)
		})
	}

	return router
}

// restStatus maps registry errors onto HTTP status codes.
func restStatus(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound), errors.Is(err, game.ErrPlayerNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadRequest
	}
}
