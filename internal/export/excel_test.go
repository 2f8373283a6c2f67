package export

import (
	"bytes"
	"testing"
	"time"

	"labreserve/internal/booking"
	"labreserve/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteFreezerReport(t *testing.T) {
	start := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
	list := &booking.FreezerList{
		InUse: []booking.BoxView{
			{
				FreezerBox: models.FreezerBox{BoxName: "C10", ActorName: "Alice", StartDate: start},
				Usage:      models.BoxUsage{DaysUsed: 10, OverdueDays: 3, Priority: -10},
			},
		},
		Available: []models.FreezerBox{
			{BoxName: "A01"},
			{BoxName: "B02"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteFreezerReport(&buf, list))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("In use")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Box", "Actor", "Start date", "Days used", "Overdue days", "Priority"}, rows[0])
	assert.Equal(t, []string{"C10", "Alice", "2025-04-10", "10", "3", "-10"}, rows[1])

	rows, err = f.GetRows("Available")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "A01", rows[1][0])
	assert.Equal(t, "B02", rows[2][0])
}

func TestWriteFreezerReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFreezerReport(&buf, &booking.FreezerList{}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("In use")
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
