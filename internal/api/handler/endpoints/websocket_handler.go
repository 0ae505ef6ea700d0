package endpoints

import (
	"net/http"

	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"upkeep"
	"upkeep/internal/api/handler/response"
	"upkeep/internal/api/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser clients come from a different origin than the API
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WebSocketHandler attaches the in-app notification channel.
func WebSocketHandler(router *graceful.Graceful, hub *websocket.Hub) {
	router.GET("/ws/notifications", func(c *gin.Context) {
		userID := c.Query("userId")
		if userID == "" {
			userID = c.GetHeader("X-User-ID")
		}
		if userID == "" {
			c.JSON(http.StatusBadRequest, response.APIError{Message: "Missing user id"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			upkeep.Logger.Warn().Err(err).Msg("Websocket upgrade failed")
			return
		}

		client := websocket.NewClient(userID, hub, conn, upkeep.Logger)
		hub.Register <- client

		go client.WritePump()
		go client.ReadPump()
	})
}
