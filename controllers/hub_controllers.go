package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-floorplan/hub"
	"github.com/yeremiapane/restaurant-floorplan/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Sesuaikan dengan kebutuhan keamanan
	},
}

// HubHandler -> endpoint WebSocket untuk update denah secara real-time
func HubHandler(h *hub.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			utils.ErrorLogger.Warnf("WebSocket upgrade failed: %v", err)
			return
		}

		h.Register(ws)

		// client tidak mengirim apa pun; baca sampai koneksi putus
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}

		h.Unregister(ws)
	}
}
