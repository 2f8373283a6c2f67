package booking

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"labreserve/internal/calendar"
	"labreserve/internal/database"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

func newTestDB(t *testing.T, opts database.Options) *database.DB {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "test.db"), opts, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testGrid() calendar.BSCGrid {
	return calendar.BSCGrid{Cabinets: 4, SlotsPerDay: 5}
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
