package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/yeremiapane/restaurant-floorplan/models"
	"github.com/yeremiapane/restaurant-floorplan/storage"
	"github.com/yeremiapane/restaurant-floorplan/utils"
)

// Storage keys. Only the key names match earlier browser builds; their saved table fields differ.
const (
	KeyTables       = "mesas"
	KeyReservations = "historicoReservas"
)

// Snapshot is a copy of the store state; callers may keep or modify it freely.
type Snapshot struct {
	Tables       []models.Table       `json:"tables"`
	Reservations []models.Reservation `json:"reservations"`
	TablesLocked bool                 `json:"tablesLocked"`
}

type OccupancyStats struct {
	Free     int `json:"free"`
	Occupied int `json:"occupied"`
	Total    int `json:"total"`
}

// FloorPlanStore owns the tables and the reservation history. Every mutation rewrites the
// whole affected collection to the KV store.
type FloorPlanStore struct {
	kv storage.KV
	mu sync.Mutex

	tables       []models.Table
	reservations []models.Reservation
	tablesLocked bool

	sequentialIDs   bool
	forceOccupancy  bool
	highestTableSeq int
	now             func() time.Time
}

type Option func(*FloorPlanStore)

// WithSequentialIDs numbers new tables one past the highest number seen in this session, the
// saved tables, or the reservation history, instead of len(tables)+1.
func WithSequentialIDs() Option {
	return func(s *FloorPlanStore) { s.sequentialIDs = true }
}

// WithForcedOccupancy makes SubmitReservation set the table occupied instead of toggling it.
func WithForcedOccupancy() Option {
	return func(s *FloorPlanStore) { s.forceOccupancy = true }
}

func WithClock(now func() time.Time) Option {
	return func(s *FloorPlanStore) { s.now = now }
}

// NewFloorPlanStore builds the store and loads the saved state. Missing or unreadable state
// falls back to the default tables and an empty history.
func NewFloorPlanStore(ctx context.Context, kv storage.KV, opts ...Option) *FloorPlanStore {
	s := &FloorPlanStore{
		kv:  kv,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.load(ctx)
	return s
}

func (s *FloorPlanStore) load(ctx context.Context) {
	tables, ok := loadCollection[models.Table](ctx, s.kv, KeyTables)
	if !ok || tables == nil {
		tables = models.DefaultTables()
	}
	reservations, ok := loadCollection[models.Reservation](ctx, s.kv, KeyReservations)
	if !ok || reservations == nil {
		reservations = []models.Reservation{}
	}

	s.tables = tables
	s.reservations = reservations
	for _, t := range tables {
		s.observeTableID(t.ID)
	}
	for _, r := range reservations {
		s.observeTableID(r.TableID)
	}

	utils.InfoLogger.Printf("Floor plan loaded: %d tables, %d reservations", len(s.tables), len(s.reservations))
}

func loadCollection[T any](ctx context.Context, kv storage.KV, key string) ([]T, bool) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			utils.ErrorLogger.Warnf("Reading %q failed, using defaults: %v", key, err)
		}
		return nil, false
	}

	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		utils.ErrorLogger.Warnf("Saved %q is not valid JSON, using defaults: %v", key, err)
		return nil, false
	}
	return out, true
}

func (s *FloorPlanStore) observeTableID(id string) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, models.TableIDPrefix))
	if err != nil || !strings.HasPrefix(id, models.TableIDPrefix) {
		return
	}
	if n > s.highestTableSeq {
		s.highestTableSeq = n
	}
}

func (s *FloorPlanStore) saveTables(ctx context.Context) error {
	return s.save(ctx, KeyTables, s.tables)
}

func (s *FloorPlanStore) saveReservations(ctx context.Context) error {
	return s.save(ctx, KeyReservations, s.reservations)
}

func (s *FloorPlanStore) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		utils.ErrorLogger.Errorf("Persisting %q failed: %v", key, err)
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

func (s *FloorPlanStore) indexOf(id string) int {
	for i := range s.tables {
		if s.tables[i].ID == id {
			return i
		}
	}
	return -1
}

// Snapshot returns a copy of the current state.
func (s *FloorPlanStore) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Tables:       append([]models.Table{}, s.tables...),
		Reservations: append([]models.Reservation{}, s.reservations...),
		TablesLocked: s.tablesLocked,
	}
}

// Table looks a table up by id. A miss is normal: reservations may name removed tables.
func (s *FloorPlanStore) Table(id string) (models.Table, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(id); i >= 0 {
		return s.tables[i], true
	}
	return models.Table{}, false
}

func (s *FloorPlanStore) TablesInArea(area string) []models.Table {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Table{}
	for _, t := range s.tables {
		if t.Area == area {
			out = append(out, t)
		}
	}
	return out
}

func (s *FloorPlanStore) Reservations() []models.Reservation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Reservation{}, s.reservations...)
}

func (s *FloorPlanStore) Stats() OccupancyStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var st OccupancyStats
	for _, t := range s.tables {
		if t.InUse {
			st.Occupied++
		} else {
			st.Free++
		}
	}
	st.Total = len(s.tables)
	return st
}

// ToggleOccupancy flips InUse on the table. Unknown ids are ignored (found == false).
func (s *FloorPlanStore) ToggleOccupancy(ctx context.Context, id string) (models.Table, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleOccupancy(ctx, id)
}

func (s *FloorPlanStore) toggleOccupancy(ctx context.Context, id string) (models.Table, bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Table{}, false, nil
	}
	s.tables[i].InUse = !s.tables[i].InUse
	return s.tables[i], true, s.saveTables(ctx)
}

func (s *FloorPlanStore) setOccupancy(ctx context.Context, id string, inUse bool) (models.Table, bool, error) {
	i := s.indexOf(id)
	if i < 0 {
		return models.Table{}, false, nil
	}
	s.tables[i].InUse = inUse
	return s.tables[i], true, s.saveTables(ctx)
}

// AddTable appends a free table at the default slot of area.
//
// By default the new table is number len(tables)+1, which repeats an existing id once a table
// other than the last one was removed. WithSequentialIDs avoids that.
func (s *FloorPlanStore) AddTable(ctx context.Context, area string) (models.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.tables) + 1
	if s.sequentialIDs {
		n = s.highestTableSeq + 1
	}
	table := models.NewTable(n, area)
	s.observeTableID(table.ID)
	s.tables = append(s.tables, table)

	return table, s.saveTables(ctx)
}

// RemoveTable deletes the table. Reservations naming it are kept.
func (s *FloorPlanStore) RemoveTable(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	s.tables = append(s.tables[:i], s.tables[i+1:]...)
	return true, s.saveTables(ctx)
}

// Reposition sets the table offset. It ignores the lock; callers that honour the lock must
// check TablesLocked themselves.
func (s *FloorPlanStore) Reposition(ctx context.Context, id string, x, y float64) (models.Table, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Table{}, false, nil
	}
	s.tables[i].X = x
	s.tables[i].Y = y
	return s.tables[i], true, s.saveTables(ctx)
}

func (s *FloorPlanStore) ToggleLock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tablesLocked = !s.tablesLocked
	return s.tablesLocked
}

func (s *FloorPlanStore) TablesLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tablesLocked
}

// SubmitReservation records the draft and marks its table. RecordedDate is always the current
// local date; an empty status becomes "reserved".
//
// Without WithForcedOccupancy the table is toggled, so reserving an occupied table frees it.
func (s *FloorPlanStore) SubmitReservation(ctx context.Context, draft models.Reservation) (models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := draft
	if r.Status == "" {
		r.Status = models.ReservationReserved
	}
	r.RecordedDate = s.now().Format(models.RecordedDateLayout)
	s.observeTableID(r.TableID)

	s.reservations = append(s.reservations, r)
	saveErr := s.saveReservations(ctx)

	var occErr error
	if s.forceOccupancy {
		_, _, occErr = s.setOccupancy(ctx, r.TableID, true)
	} else {
		_, _, occErr = s.toggleOccupancy(ctx, r.TableID)
	}
	return r, errors.Join(saveErr, occErr)
}

// CancelReservation appends a cancelled copy of history entry index and frees its table if
// the table still exists. Past entries are never edited. It is a no-op when index is out of
// range, the entry is not a reservation, or it was already cancelled.
func (s *FloorPlanStore) CancelReservation(ctx context.Context, index int) (models.Reservation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.reservations) {
		return models.Reservation{}, false, nil
	}
	orig := s.reservations[index]
	if orig.Status != models.ReservationReserved || s.isCancelled(index) {
		return models.Reservation{}, false, nil
	}

	c := orig
	c.Status = models.ReservationCancelled
	c.RecordedDate = s.now().Format(models.RecordedDateLayout)
	s.reservations = append(s.reservations, c)
	saveErr := s.saveReservations(ctx)

	_, _, occErr := s.setOccupancy(ctx, c.TableID, false)
	return c, true, errors.Join(saveErr, occErr)
}

// isCancelled reports whether the reservation at index has a matching cancellation. Each
// cancellation entry pairs with the earliest still open reservation for the same booking, so
// identical bookings are cancelled one at a time.
func (s *FloorPlanStore) isCancelled(index int) bool {
	r := s.reservations[index]
	var open []int
	for i, e := range s.reservations {
		if !sameBooking(r, e) {
			continue
		}
		switch e.Status {
		case models.ReservationReserved:
			open = append(open, i)
		case models.ReservationCancelled:
			if len(open) == 0 {
				continue
			}
			if open[0] == index {
				return true
			}
			open = open[1:]
		}
	}
	return false
}

func sameBooking(a, b models.Reservation) bool {
	return a.TableID == b.TableID &&
		a.CustomerName == b.CustomerName &&
		a.ReservationDate == b.ReservationDate &&
		a.StartTime == b.StartTime &&
		a.EndTime == b.EndTime
}
