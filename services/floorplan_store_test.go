package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/restaurant-floorplan/database"
	"github.com/yeremiapane/restaurant-floorplan/models"
	"github.com/yeremiapane/restaurant-floorplan/storage"
)

var fixedNow = time.Date(2026, 10, 19, 21, 30, 0, 0, time.Local)

func setupTestKV(t *testing.T) storage.KV {
	db, err := database.Open(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return storage.NewGormKV(db)
}

func setupTestStore(t *testing.T, opts ...Option) (*FloorPlanStore, storage.KV) {
	kv := setupTestKV(t)
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewFloorPlanStore(context.Background(), kv, opts...), kv
}

type failingKV struct {
	getErr error
	setErr error
}

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.getErr }
func (f failingKV) Set(context.Context, string, []byte) error  { return f.setErr }

func ids(tables []models.Table) []string {
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		out = append(out, t.ID)
	}
	return out
}

func TestNewFloorPlanStore_Defaults(t *testing.T) {
	store, _ := setupTestStore(t)
	snap := store.Snapshot()

	assert.Equal(t, models.DefaultTables(), snap.Tables)
	assert.Empty(t, snap.Reservations)
	assert.NotNil(t, snap.Reservations)
	assert.False(t, snap.TablesLocked)

	perArea := map[string]int{}
	for _, tb := range snap.Tables {
		perArea[tb.Area]++
		assert.False(t, tb.InUse)
		assert.Zero(t, tb.X)
		assert.Zero(t, tb.Y)
	}
	assert.Equal(t, map[string]int{"area-1": 2, "area-2": 2, "area-3": 2}, perArea)
}

func TestNewFloorPlanStore_CorruptStateFallsBack(t *testing.T) {
	kv := setupTestKV(t)
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeyTables, []byte("{not json")))
	require.NoError(t, kv.Set(ctx, KeyReservations, []byte("null")))

	store := NewFloorPlanStore(ctx, kv)
	snap := store.Snapshot()

	assert.Equal(t, models.DefaultTables(), snap.Tables)
	assert.Empty(t, snap.Reservations)
}

func TestNewFloorPlanStore_ReadErrorFallsBack(t *testing.T) {
	store := NewFloorPlanStore(context.Background(), failingKV{getErr: errors.New("disk gone")})
	assert.Len(t, store.Snapshot().Tables, 6)
}

func TestFloorPlanStore_RoundTrip(t *testing.T) {
	store, kv := setupTestStore(t)
	ctx := context.Background()

	_, err := store.AddTable(ctx, "area-1")
	require.NoError(t, err)
	_, _, err = store.Reposition(ctx, "mesa-2", 12.5, -8)
	require.NoError(t, err)
	_, err = store.SubmitReservation(ctx, models.Reservation{
		TableID:             "mesa-4",
		CustomerName:        "Ana",
		Phone:               "555-0101",
		Email:               "ana@example.com",
		StartTime:           "19:00",
		EndTime:             "21:00",
		TransferTargetTable: "mesa-5",
		ReservationDate:     "2026-10-24",
	})
	require.NoError(t, err)
	_, err = store.RemoveTable(ctx, "mesa-1")
	require.NoError(t, err)

	before := store.Snapshot()
	reloaded := NewFloorPlanStore(ctx, kv).Snapshot()

	assert.Equal(t, before.Tables, reloaded.Tables)
	assert.Equal(t, before.Reservations, reloaded.Reservations)
}

func TestFloorPlanStore_ToggleOccupancyTwiceRestores(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	tb, found, err := store.ToggleOccupancy(ctx, "mesa-5")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, tb.InUse)

	tb, _, err = store.ToggleOccupancy(ctx, "mesa-5")
	require.NoError(t, err)
	assert.False(t, tb.InUse)
	assert.Equal(t, models.DefaultTables(), store.Snapshot().Tables)
}

func TestFloorPlanStore_UnknownIDIsNoop(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_, found, err := store.ToggleOccupancy(ctx, "mesa-99")
	assert.NoError(t, err)
	assert.False(t, found)

	removed, err := store.RemoveTable(ctx, "mesa-99")
	assert.NoError(t, err)
	assert.False(t, removed)

	_, found, err = store.Reposition(ctx, "mesa-99", 1, 1)
	assert.NoError(t, err)
	assert.False(t, found)

	assert.Equal(t, models.DefaultTables(), store.Snapshot().Tables)
}

func TestFloorPlanStore_SeedAndReposition(t *testing.T) {
	store, _ := setupTestStore(t)

	_, found, err := store.Reposition(context.Background(), "mesa-3", 40, 15)
	require.NoError(t, err)
	require.True(t, found)

	for _, tb := range store.Snapshot().Tables {
		if tb.ID == "mesa-3" {
			assert.Equal(t, 40.0, tb.X)
			assert.Equal(t, 15.0, tb.Y)
			continue
		}
		assert.Zero(t, tb.X, tb.ID)
		assert.Zero(t, tb.Y, tb.ID)
	}
}

func TestFloorPlanStore_AddThenRemove(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	added, err := store.AddTable(ctx, "area-2")
	require.NoError(t, err)

	snap := store.Snapshot()
	require.Len(t, snap.Tables, 7)
	assert.Equal(t, models.Table{ID: "mesa-7", Label: "Mesa 7", Area: "area-2"}, added)
	assert.Equal(t, added, snap.Tables[6])

	removed, err := store.RemoveTable(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, models.DefaultTables(), store.Snapshot().Tables)
}

func TestFloorPlanStore_IDUniqueness(t *testing.T) {
	ctx := context.Background()
	sequence := func(store *FloorPlanStore) {
		_, _ = store.RemoveTable(ctx, "mesa-2")
		_, _ = store.AddTable(ctx, "area-1")
		_, _ = store.AddTable(ctx, "area-3")
		_, _ = store.RemoveTable(ctx, "mesa-4")
		_, _ = store.AddTable(ctx, "area-2")
	}

	t.Run("sequential ids stay unique", func(t *testing.T) {
		store, _ := setupTestStore(t, WithSequentialIDs())
		sequence(store)

		got := ids(store.Snapshot().Tables)
		assert.Equal(t, []string{"mesa-1", "mesa-3", "mesa-5", "mesa-6", "mesa-7", "mesa-8", "mesa-9"}, got)
	})

	t.Run("sequential ids survive reload", func(t *testing.T) {
		store, kv := setupTestStore(t, WithSequentialIDs())
		added, err := store.AddTable(ctx, "area-1")
		require.NoError(t, err)
		_, err = store.RemoveTable(ctx, added.ID)
		require.NoError(t, err)

		reloaded := NewFloorPlanStore(ctx, kv, WithSequentialIDs())
		next, err := reloaded.AddTable(ctx, "area-1")
		require.NoError(t, err)
		// the counter is rebuilt from saved tables and history; a removed, never-reserved id may return
		assert.Equal(t, "mesa-7", next.ID)
		assert.Len(t, reloaded.Snapshot().Tables, 7)
	})

	t.Run("length-based ids collide after removal", func(t *testing.T) {
		// Known defect kept for compatibility: the sixth table is re-issued as "mesa-6".
		store, _ := setupTestStore(t)
		_, _ = store.RemoveTable(ctx, "mesa-2")
		added, err := store.AddTable(ctx, "area-1")
		require.NoError(t, err)
		assert.Equal(t, "mesa-6", added.ID)

		seen := map[string]int{}
		for _, id := range ids(store.Snapshot().Tables) {
			seen[id]++
		}
		assert.Equal(t, 2, seen["mesa-6"])
	})
}

func TestFloorPlanStore_SubmitReservation(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	r, err := store.SubmitReservation(ctx, models.Reservation{
		TableID:         "mesa-1",
		CustomerName:    "Ana",
		Phone:           "555-0101",
		StartTime:       "19:00",
		EndTime:         "20:30",
		ReservationDate: "2026-10-20",
		RecordedDate:    "1999-01-01",
	})
	require.NoError(t, err)

	assert.Equal(t, models.ReservationReserved, r.Status)
	assert.Equal(t, "2026-10-19", r.RecordedDate)

	tb, found := store.Table("mesa-1")
	require.True(t, found)
	assert.True(t, tb.InUse)

	history := store.Reservations()
	require.Len(t, history, 1)
	assert.Equal(t, "mesa-1", history[0].TableID)
	assert.Equal(t, "2026-10-19", history[0].RecordedDate)
}

func TestFloorPlanStore_SubmitReservationIsAppendOnly(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Ana", "Bruno", "Carla"} {
		_, err := store.SubmitReservation(ctx, models.Reservation{TableID: "mesa-2", CustomerName: name})
		require.NoError(t, err)
	}
	before := store.Reservations()

	_, err := store.SubmitReservation(ctx, models.Reservation{TableID: "mesa-6", CustomerName: "Davi"})
	require.NoError(t, err)
	after := store.Reservations()

	require.Len(t, after, len(before)+1)
	assert.Equal(t, before, after[:len(before)])
	assert.Equal(t, "Davi", after[len(after)-1].CustomerName)
}

func TestFloorPlanStore_SubmitReservationOccupancyPolicy(t *testing.T) {
	ctx := context.Background()
	draft := models.Reservation{TableID: "mesa-3", CustomerName: "Ana"}

	t.Run("toggle frees an occupied table", func(t *testing.T) {
		store, _ := setupTestStore(t)
		_, _, err := store.ToggleOccupancy(ctx, "mesa-3")
		require.NoError(t, err)

		_, err = store.SubmitReservation(ctx, draft)
		require.NoError(t, err)

		tb, _ := store.Table("mesa-3")
		assert.False(t, tb.InUse)
	})

	t.Run("forced occupancy keeps it occupied", func(t *testing.T) {
		store, _ := setupTestStore(t, WithForcedOccupancy())
		_, _, err := store.ToggleOccupancy(ctx, "mesa-3")
		require.NoError(t, err)

		_, err = store.SubmitReservation(ctx, draft)
		require.NoError(t, err)

		tb, _ := store.Table("mesa-3")
		assert.True(t, tb.InUse)
	})

	t.Run("unknown table only records history", func(t *testing.T) {
		store, _ := setupTestStore(t)
		_, err := store.SubmitReservation(ctx, models.Reservation{TableID: "mesa-42"})
		require.NoError(t, err)

		assert.Len(t, store.Reservations(), 1)
		assert.Equal(t, models.DefaultTables(), store.Snapshot().Tables)
	})
}

func TestFloorPlanStore_CancelReservation(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := store.SubmitReservation(ctx, models.Reservation{
		TableID: "mesa-1", CustomerName: "Ana", StartTime: "19:00", EndTime: "20:00", ReservationDate: "2026-10-20",
	})
	require.NoError(t, err)
	original := store.Reservations()[0]

	c, ok, err := store.CancelReservation(ctx, 0)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.ReservationCancelled, c.Status)

	history := store.Reservations()
	require.Len(t, history, 2)
	assert.Equal(t, original, history[0])
	assert.Equal(t, c, history[1])

	tb, _ := store.Table("mesa-1")
	assert.False(t, tb.InUse)

	t.Run("twice is a noop", func(t *testing.T) {
		_, ok, err := store.CancelReservation(ctx, 0)
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("cancellation entry cannot be cancelled", func(t *testing.T) {
		_, ok, _ := store.CancelReservation(ctx, 1)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		_, ok, _ := store.CancelReservation(ctx, 7)
		assert.False(t, ok)
		_, ok, _ = store.CancelReservation(ctx, -1)
		assert.False(t, ok)
	})

	assert.Len(t, store.Reservations(), 2)
}

func TestFloorPlanStore_CancelIdenticalBookings(t *testing.T) {
	store, _ := setupTestStore(t, WithForcedOccupancy())
	ctx := context.Background()

	draft := models.Reservation{
		TableID: "mesa-2", CustomerName: "Bruno", StartTime: "20:00", EndTime: "22:00", ReservationDate: "2026-10-21",
	}
	for i := 0; i < 2; i++ {
		_, err := store.SubmitReservation(ctx, draft)
		require.NoError(t, err)
	}

	_, ok, err := store.CancelReservation(ctx, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = store.CancelReservation(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok, "second identical booking must still be cancellable")

	for _, i := range []int{0, 1} {
		_, ok, _ := store.CancelReservation(ctx, i)
		assert.False(t, ok)
	}
	assert.Len(t, store.Reservations(), 4)
}

func TestFloorPlanStore_CancelPairsWithEarliestOpenBooking(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	draft := models.Reservation{TableID: "mesa-3", CustomerName: "Carla", ReservationDate: "2026-10-22"}
	for i := 0; i < 2; i++ {
		_, err := store.SubmitReservation(ctx, draft)
		require.NoError(t, err)
	}

	// cancelling the later copy first closes one of the two bookings
	_, ok, _ := store.CancelReservation(ctx, 1)
	require.True(t, ok)

	_, ok, _ = store.CancelReservation(ctx, 0)
	assert.False(t, ok)
	_, ok, _ = store.CancelReservation(ctx, 1)
	assert.True(t, ok)
}

func TestFloorPlanStore_LockDoesNotMoveOrBlock(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	assert.True(t, store.ToggleLock())
	assert.True(t, store.TablesLocked())
	assert.Equal(t, models.DefaultTables(), store.Snapshot().Tables)

	tb, found, err := store.Reposition(ctx, "mesa-1", 5, 6)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5.0, tb.X)
	assert.Equal(t, 6.0, tb.Y)

	assert.False(t, store.ToggleLock())
}

func TestFloorPlanStore_PersistFailureIsReturned(t *testing.T) {
	store := NewFloorPlanStore(context.Background(), failingKV{
		getErr: storage.ErrNotFound,
		setErr: errors.New("read-only"),
	})

	_, _, err := store.ToggleOccupancy(context.Background(), "mesa-1")
	require.Error(t, err)

	// memory state still changed
	tb, _ := store.Table("mesa-1")
	assert.True(t, tb.InUse)

	t.Run("submit still marks the table", func(t *testing.T) {
		store := NewFloorPlanStore(context.Background(), failingKV{
			getErr: storage.ErrNotFound,
			setErr: errors.New("read-only"),
		})

		_, err := store.SubmitReservation(context.Background(), models.Reservation{TableID: "mesa-1"})
		require.Error(t, err)

		assert.Len(t, store.Reservations(), 1)
		tb, _ := store.Table("mesa-1")
		assert.True(t, tb.InUse)
	})

	t.Run("cancel still frees the table", func(t *testing.T) {
		store := NewFloorPlanStore(context.Background(), failingKV{
			getErr: storage.ErrNotFound,
			setErr: errors.New("read-only"),
		}, WithForcedOccupancy())

		_, _ = store.SubmitReservation(context.Background(), models.Reservation{TableID: "mesa-4"})
		_, ok, err := store.CancelReservation(context.Background(), 0)
		require.Error(t, err)
		assert.True(t, ok)

		assert.Len(t, store.Reservations(), 2)
		tb, _ := store.Table("mesa-4")
		assert.False(t, tb.InUse)
	})
}

func TestFloorPlanStore_StatsAndAreas(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()
	_, _, _ = store.ToggleOccupancy(ctx, "mesa-1")
	_, _, _ = store.ToggleOccupancy(ctx, "mesa-4")

	assert.Equal(t, OccupancyStats{Free: 4, Occupied: 2, Total: 6}, store.Stats())
	assert.Equal(t, []string{"mesa-3", "mesa-4"}, ids(store.TablesInArea("area-2")))
	assert.Empty(t, store.TablesInArea("terrace"))
}
