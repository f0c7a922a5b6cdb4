package repository

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hanriel/thermal-controller-iot/internal/db"
	"github.com/hanriel/thermal-controller-iot/internal/modules/climate/types"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func testReading(ts time.Time, temperature float64) types.Reading {
	return types.Reading{
		Time:        ts,
		Temperature: temperature,
		Humidity:    45.0,
		Pressure:    1013.25,
	}
}

func TestInsert_ThenRecentOne(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	m, err := repo.Insert(testReading(ts, 21.5))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("Insert: id not assigned")
	}

	got, err := repo.Recent(1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Recent(1): got %d rows, want 1", len(got))
	}
	if got[0].ID != m.ID {
		t.Errorf("Recent(1)[0].ID = %d, want %d", got[0].ID, m.ID)
	}
	if got[0].Temperature != 21.5 {
		t.Errorf("Temperature = %f, want 21.5", got[0].Temperature)
	}
	if !got[0].Time.Equal(ts) {
		t.Errorf("Time = %v, want %v", got[0].Time, ts)
	}
}

func TestInsert_AssignsTimestampWhenZero(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	before := time.Now().Add(-time.Second)
	m, err := repo.Insert(types.Reading{Temperature: 20, Humidity: 40, Pressure: 1000})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if m.Time.Before(before) {
		t.Errorf("Time = %v, want assigned at insert time", m.Time)
	}
}

func TestInsert_IdsAscend(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	var prev int64
	for i := 0; i < 5; i++ {
		m, err := repo.Insert(testReading(base.Add(time.Duration(i)*time.Minute), 20))
		if err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
		if m.ID <= prev {
			t.Fatalf("id %d not greater than previous %d", m.ID, prev)
		}
		prev = m.ID
	}
}

func TestRecent_NewestFirstAndBounded(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := repo.Insert(testReading(base.Add(time.Duration(i)*time.Minute), float64(10+i))); err != nil {
			t.Fatalf("Insert #%d: %v", i, err)
		}
	}

	got, err := repo.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Recent(3): got %d rows, want 3", len(got))
	}
	// Newest first: 14, 13, 12.
	for i, want := range []float64{14, 13, 12} {
		if got[i].Temperature != want {
			t.Errorf("Recent[%d].Temperature = %f, want %f", i, got[i].Temperature, want)
		}
	}
}

func TestWindow_FiltersAndOrdersEarliestFirst(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	now := time.Now().UTC()
	for _, age := range []time.Duration{90 * time.Minute, 30 * time.Minute, 5 * time.Minute} {
		if _, err := repo.Insert(testReading(now.Add(-age), float64(age/time.Minute))); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}

	got, err := repo.Window(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Window: got %d rows, want 2", len(got))
	}
	// Earliest first: the 30-minute-old row, then the 5-minute-old one.
	if got[0].Temperature != 30 || got[1].Temperature != 5 {
		t.Errorf("Window order: got [%f, %f], want [30, 5]", got[0].Temperature, got[1].Temperature)
	}
}

func TestWindow_IncludesBoundary(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	if _, err := repo.Insert(testReading(ts, 20)); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.Window(ts)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Window(since == ts): got %d rows, want 1 (ts >= since)", len(got))
	}
}

func TestOrdering_TiesBrokenByInsertionOrder(t *testing.T) {
	repo := NewRepository(setupTestDB(t))

	ts := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	first, err := repo.Insert(testReading(ts, 1))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	second, err := repo.Insert(testReading(ts, 2))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	recent, err := repo.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if recent[0].ID != second.ID || recent[1].ID != first.ID {
		t.Errorf("Recent tie-break: got ids [%d, %d], want [%d, %d]", recent[0].ID, recent[1].ID, second.ID, first.ID)
	}

	window, err := repo.Window(ts)
	if err != nil {
		t.Fatalf("Window: %v", err)
	}
	if window[0].ID != first.ID || window[1].ID != second.ID {
		t.Errorf("Window tie-break: got ids [%d, %d], want [%d, %d]", window[0].ID, window[1].ID, first.ID, second.ID)
	}
}

func TestInsert_ClosedDBSurfacesError(t *testing.T) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := NewRepository(conn)
	if err := conn.Close(); err != nil {
		t.Fatalf("close db: %v", err)
	}

	if _, err := repo.Insert(testReading(time.Now(), 20)); err == nil {
		t.Fatal("Insert on closed db: want error")
	}
}
