// Package export builds the shop owner's day-schedule report as an
// Excel workbook: booked appointments plus the remaining free slots.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"barberia/internal/availability"
	"barberia/internal/models"
)

// DayReport renders a single day's schedule.
type DayReport struct {
	engine *availability.Engine
}

// NewDayReport creates a report generator using the engine's reference
// timezone for same-day cutoffs.
func NewDayReport(engine *availability.Engine) *DayReport {
	return &DayReport{engine: engine}
}

// Write renders the report for date into w as an xlsx workbook with an
// appointments sheet and a free-slots sheet per service.
func (r *DayReport) Write(w io.Writer, d availability.Data, date, now time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := r.writeAppointments(f, d, date); err != nil {
		return err
	}
	if err := r.writeFreeSlots(f, d, date, now); err != nil {
		return err
	}

	return f.Write(w)
}

func (r *DayReport) writeAppointments(f *excelize.File, d availability.Data, date time.Time) error {
	sheet := "Citas"
	f.SetSheetName("Sheet1", sheet)

	if err := writeRow(f, sheet, 1, []any{"Inicio", "Fin", "Servicio", "Cliente", "Teléfono", "Email"}); err != nil {
		return err
	}
	if err := boldRow(f, sheet, 1, 6); err != nil {
		return err
	}

	row := 2
	key := availability.DateKey(date)
	for _, appt := range d.Appointments {
		if appt.Date != key {
			continue
		}
		start, err := availability.TimeToMinutes(appt.Time)
		if err != nil {
			continue
		}
		end := start + availability.ServiceDuration(d.Services, appt.Service)

		serviceName := "(desconocido)"
		if svc := models.ServiceByID(d.Services, appt.Service); svc != nil {
			serviceName = svc.Name
		}

		err = writeRow(f, sheet, row, []any{
			availability.MinutesToTime(start),
			availability.MinutesToTime(end),
			serviceName,
			appt.Name,
			appt.Phone,
			appt.Email,
		})
		if err != nil {
			return err
		}
		row++
	}
	return nil
}

func (r *DayReport) writeFreeSlots(f *excelize.File, d availability.Data, date, now time.Time) error {
	sheet := "Disponibilidad"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	if err := writeRow(f, sheet, 1, []any{"Servicio", "Duración", "Horas libres"}); err != nil {
		return err
	}
	if err := boldRow(f, sheet, 1, 3); err != nil {
		return err
	}

	row := 2
	for _, svc := range d.Services {
		starts := r.engine.Slots(d, date, svc.ID, now)
		free := make([]string, 0, len(starts))
		for _, start := range starts {
			if !availability.InBreak(d.Breaks, start) {
				free = append(free, start)
			}
		}

		err := writeRow(f, sheet, row, []any{
			svc.Name,
			availability.FormatDuration(svc.Duration),
			joinOrDash(free),
		})
		if err != nil {
			return err
		}
		row++
	}
	return nil
}

// Filename returns the report file name for a date, e.g.
// "agenda_2025-06-04.xlsx".
func Filename(date time.Time) string {
	return fmt.Sprintf("agenda_%s.xlsx", availability.DateKey(date))
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	for i, val := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func boldRow(f *excelize.File, sheet string, row, cols int) error {
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil
	}
	startCell, _ := excelize.CoordinatesToCellName(1, row)
	endCell, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, startCell, endCell, style)
}

func joinOrDash(values []string) string {
	if len(values) == 0 {
		return "—"
	}
	out := values[0]
	for _, v := range values[1:] {
		out += ", " + v
	}
	return out
}
