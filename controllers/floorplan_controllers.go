package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/restaurant-floorplan/hub"
	"github.com/yeremiapane/restaurant-floorplan/models"
	"github.com/yeremiapane/restaurant-floorplan/services"
	"github.com/yeremiapane/restaurant-floorplan/utils"
)

type FloorPlanController struct {
	Store      *services.FloorPlanStore
	Hub        *hub.Hub
	Areas      []models.Area
	Selections *RemovalSelections
}

func NewFloorPlanController(store *services.FloorPlanStore, h *hub.Hub, areas []models.Area) *FloorPlanController {
	return &FloorPlanController{
		Store:      store,
		Hub:        h,
		Areas:      areas,
		Selections: NewRemovalSelections(),
	}
}

type areaView struct {
	models.Area
	Tables         []models.Table `json:"tables"`
	PendingRemoval string         `json:"pendingRemoval,omitempty"`
}

type floorPlanView struct {
	Areas        []areaView              `json:"areas"`
	TablesLocked bool                    `json:"tablesLocked"`
	Stats        services.OccupancyStats `json:"stats"`
}

func (fc *FloorPlanController) area(id string) (models.Area, bool) {
	for _, a := range fc.Areas {
		if a.ID == id {
			return a, true
		}
	}
	return models.Area{}, false
}

func (fc *FloorPlanController) broadcastTable(event string, data gin.H) {
	data["stats"] = fc.Store.Stats()
	fc.Hub.Broadcast(hub.Message{Event: event, Data: data})
}

// GetFloorPlan -> semua area beserta mejanya
func (fc *FloorPlanController) GetFloorPlan(c *gin.Context) {
	view := floorPlanView{
		Areas:        make([]areaView, 0, len(fc.Areas)),
		TablesLocked: fc.Store.TablesLocked(),
		Stats:        fc.Store.Stats(),
	}
	for _, a := range fc.Areas {
		view.Areas = append(view.Areas, areaView{
			Area:           a,
			Tables:         fc.Store.TablesInArea(a.ID),
			PendingRemoval: fc.Selections.Pending(a.ID),
		})
	}
	utils.RespondJSON(c, http.StatusOK, "Floor plan", view)
}

// GetAllTables -> menampilkan seluruh meja
func (fc *FloorPlanController) GetAllTables(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "List of tables", fc.Store.Snapshot().Tables)
}

func (fc *FloorPlanController) GetTableByID(c *gin.Context) {
	table, ok := fc.Store.Table(c.Param("table_id"))
	if !ok {
		utils.RespondError(c, http.StatusNotFound, ErrTableNotFound)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// CreateTable -> menambahkan meja baru di area
func (fc *FloorPlanController) CreateTable(c *gin.Context) {
	areaID := c.Param("area_id")
	if _, ok := fc.area(areaID); !ok {
		utils.RespondError(c, http.StatusNotFound, ErrUnknownArea)
		return
	}

	table, err := fc.Store.AddTable(c.Request.Context(), areaID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	fc.broadcastTable(hub.EventTableCreate, gin.H{"table": table})
	utils.InfoLogger.Printf("New table created: %s in %s", table.ID, table.Area)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// ToggleTable -> klik pada kartu meja: terisi <-> kosong
func (fc *FloorPlanController) ToggleTable(c *gin.Context) {
	table, found, err := fc.Store.ToggleOccupancy(c.Request.Context(), c.Param("table_id"))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !found {
		utils.RespondError(c, http.StatusNotFound, ErrTableNotFound)
		return
	}

	fc.broadcastTable(hub.EventTableUpdate, gin.H{"table": table})
	utils.InfoLogger.Printf("Table %s in use: %t", table.ID, table.InUse)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// MoveTable handles a drag release. Moves are refused while the tables are locked and the
// position is clamped into the table's area.
func (fc *FloorPlanController) MoveTable(c *gin.Context) {
	var body struct {
		X *float64 `json:"x" binding:"required"`
		Y *float64 `json:"y" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if fc.Store.TablesLocked() {
		utils.RespondError(c, http.StatusLocked, ErrTablesLocked)
		return
	}

	tableID := c.Param("table_id")
	current, ok := fc.Store.Table(tableID)
	if !ok {
		utils.RespondError(c, http.StatusNotFound, ErrTableNotFound)
		return
	}

	x, y := *body.X, *body.Y
	if a, ok := fc.area(current.Area); ok {
		x, y = a.Clamp(x, y)
	}

	table, found, err := fc.Store.Reposition(c.Request.Context(), tableID, x, y)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	if !found {
		utils.RespondError(c, http.StatusNotFound, ErrTableNotFound)
		return
	}

	fc.broadcastTable(hub.EventTableUpdate, gin.H{"table": table})
	utils.RespondJSON(c, http.StatusOK, "Table moved", table)
}

// DeleteTable -> menghapus meja
func (fc *FloorPlanController) DeleteTable(c *gin.Context) {
	tableID := c.Param("table_id")
	if !fc.removeTable(c, tableID) {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}

func (fc *FloorPlanController) removeTable(c *gin.Context, tableID string) bool {
	removed, err := fc.Store.RemoveTable(c.Request.Context(), tableID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return false
	}
	if !removed {
		utils.RespondError(c, http.StatusNotFound, ErrTableNotFound)
		return false
	}

	fc.broadcastTable(hub.EventTableDelete, gin.H{"table_id": tableID})
	utils.InfoLogger.Printf("Table %s deleted", tableID)
	return true
}

// SelectForRemoval -> pilih meja yang akan dihapus di satu area (belum dihapus)
func (fc *FloorPlanController) SelectForRemoval(c *gin.Context) {
	areaID := c.Param("area_id")
	if _, ok := fc.area(areaID); !ok {
		utils.RespondError(c, http.StatusNotFound, ErrUnknownArea)
		return
	}

	var body struct {
		TableID string `json:"table_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.TableID != "" {
		table, ok := fc.Store.Table(body.TableID)
		if !ok {
			utils.RespondError(c, http.StatusNotFound, ErrTableNotFound)
			return
		}
		if table.Area != areaID {
			utils.RespondError(c, http.StatusBadRequest, ErrTableNotInArea)
			return
		}
	}

	fc.Selections.Select(areaID, body.TableID)
	utils.RespondJSON(c, http.StatusOK, "Selection updated", gin.H{
		"area":     areaID,
		"table_id": body.TableID,
	})
}

// ConfirmRemoval removes the table selected in the area. Nothing selected is not an error.
func (fc *FloorPlanController) ConfirmRemoval(c *gin.Context) {
	areaID := c.Param("area_id")
	if _, ok := fc.area(areaID); !ok {
		utils.RespondError(c, http.StatusNotFound, ErrUnknownArea)
		return
	}

	tableID, ok := fc.Selections.Take(areaID)
	if !ok {
		utils.RespondJSON(c, http.StatusOK, "No table selected", nil)
		return
	}
	if !fc.removeTable(c, tableID) {
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": tableID})
}

// ToggleLock -> kunci/buka kunci drag untuk semua meja
func (fc *FloorPlanController) ToggleLock(c *gin.Context) {
	locked := fc.Store.ToggleLock()
	fc.Hub.Broadcast(hub.Message{Event: hub.EventLockUpdate, Data: gin.H{"tablesLocked": locked}})
	utils.InfoLogger.Printf("Tables locked: %t", locked)
	utils.RespondJSON(c, http.StatusOK, "Lock updated", gin.H{"tablesLocked": locked})
}
