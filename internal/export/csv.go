// Package export renders completed analyses as downloadable CSV and
// JSON documents.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"sof-backend/internal/sof"
)

var csvHeader = []string{
	"file_name",
	"vessel_name",
	"port_name",
	"event_id",
	"event_type",
	"start_date",
	"start_time",
	"end_date",
	"end_time",
	"duration_hours",
	"weather_conditions",
	"remarks",
	"confidence",
}

// WriteCSV writes one row per event, preceded by a header row. Every
// event in the report appears exactly once.
func WriteCSV(w io.Writer, fileName string, report *sof.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	vessel := strValue(report.DocumentDetails.VesselName)
	port := strValue(report.DocumentDetails.PortName)

	for _, ev := range report.Events {
		row := []string{
			fileName,
			vessel,
			port,
			intValue(ev.EventID),
			strValue(ev.EventType),
			strValue(ev.StartDate),
			strValue(ev.StartTime),
			strValue(ev.EndDate),
			strValue(ev.EndTime),
			floatValue(ev.DurationHours),
			strValue(ev.WeatherConditions),
			strValue(ev.Remarks),
			floatValue(ev.Confidence),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func strValue(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func intValue(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func floatValue(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
