package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"barberia/internal/availability"
	"barberia/internal/models"
)

func TestDayReport_Write(t *testing.T) {
	d := availability.Data{
		Services: []models.Service{
			{ID: 1, Name: "Corte clásico", Duration: "00:30:00"},
		},
		Weekdays: []models.Weekday{{ID: 3, Status: true}},
		WorkingHours: []models.WorkingHours{
			{Day: 3, StartTime: "09:00:00", EndTime: "11:00:00"},
		},
		Appointments: []models.Appointment{
			{ID: 1, Date: "2025-06-04", Time: "09:00:00", Service: 1, Name: "Ana", Phone: "555", Email: "a@b.c"},
		},
	}

	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC) // Wednesday
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	report := NewDayReport(availability.New(time.UTC))
	require.NoError(t, report.Write(&buf, d, date, now))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Citas", "Disponibilidad"}, f.GetSheetList())

	start, err := f.GetCellValue("Citas", "A2")
	require.NoError(t, err)
	assert.Equal(t, "09:00", start)

	end, err := f.GetCellValue("Citas", "B2")
	require.NoError(t, err)
	assert.Equal(t, "09:30", end)

	client, err := f.GetCellValue("Citas", "D2")
	require.NoError(t, err)
	assert.Equal(t, "Ana", client)

	slots, err := f.GetCellValue("Disponibilidad", "C2")
	require.NoError(t, err)
	// 09:00-09:30 is booked; 09:30 through 10:30 remain.
	assert.Equal(t, "09:30, 10:00, 10:30", slots)
}

func TestFilename(t *testing.T) {
	date := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "agenda_2025-06-04.xlsx", Filename(date))
}
