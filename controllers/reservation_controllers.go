package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floorplan/hub"
	"github.com/yeremiapane/restaurant-floorplan/models"
	"github.com/yeremiapane/restaurant-floorplan/services"
	"github.com/yeremiapane/restaurant-floorplan/utils"
)

type ReservationController struct {
	Store *services.FloorPlanStore
	Hub   *hub.Hub
}

func NewReservationController(store *services.FloorPlanStore, h *hub.Hub) *ReservationController {
	return &ReservationController{Store: store, Hub: h}
}

// GetReservations -> riwayat reservasi sesuai urutan dibuat
func (rc *ReservationController) GetReservations(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Reservation history", rc.Store.Reservations())
}

// CreateReservation accepts the form draft as-is; only malformed JSON is rejected.
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var draft models.Reservation
	if err := c.ShouldBindJSON(&draft); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	r, err := rc.Store.SubmitReservation(c.Request.Context(), draft)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	data := gin.H{"reservation": r, "stats": rc.Store.Stats()}
	if table, ok := rc.Store.Table(r.TableID); ok {
		data["table"] = table
	}
	rc.Hub.Broadcast(hub.Message{Event: hub.EventReservationCreate, Data: data})

	utils.InfoLogger.Printf("Reservation recorded for %s (%s %s-%s)", r.TableID, r.ReservationDate, r.StartTime, r.EndTime)
	utils.RespondJSON(c, http.StatusCreated, "Reservation recorded", r)
}

// CancelReservation -> menambahkan entri "cancelled" untuk reservasi ke-index
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, ErrInvalidIndex)
		return
	}

	r, ok, err := rc.Store.CancelReservation(c.Request.Context(), index)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		utils.RespondError(c, http.StatusNotFound, ErrReservationNotFound)
		return
	}

	data := gin.H{"reservation": r, "stats": rc.Store.Stats()}
	if table, ok := rc.Store.Table(r.TableID); ok {
		data["table"] = table
	}
	rc.Hub.Broadcast(hub.Message{Event: hub.EventReservationCancel, Data: data})

	utils.InfoLogger.Printf("Reservation %d for %s cancelled", index, r.TableID)
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", r)
}
