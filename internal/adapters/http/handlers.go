package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/bukber/internal/app/orch"
	"github.com/dkeye/bukber/internal/domain"
	"github.com/gin-gonic/gin"
)

func healthHandler(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "rooms": o.Rooms.Count()})
	}
}

// GET /api/rooms
func listRoomsHandler(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, o.ListRooms())
	}
}

// GET /api/rooms/:id returns the same snapshot state_update carries.
func roomHandler(o *orch.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		snap, err := o.RoomSnapshot(domain.RoomID(c.Param("id")))
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, snap)
	}
}
