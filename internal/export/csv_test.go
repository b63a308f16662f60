package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/sof"
)

func sampleReport(t *testing.T, events int) *sof.Report {
	t.Helper()
	raw := map[string]any{
		"document_details": map[string]any{
			"vessel_name": "MV OCEAN STAR",
			"port_name":   "Rotterdam",
		},
		"laytime_notes": map[string]any{},
		"events":        []map[string]any{},
	}
	evs := make([]map[string]any, 0, events)
	for i := 0; i < events; i++ {
		evs = append(evs, map[string]any{
			"event_type": "Discharging, gang 1",
			"start_date": "2024-03-15",
			"start_time": "08:30",
			"end_date":   "2024-03-15",
			"end_time":   "17:00",
			"remarks":    "stopped for rain, resumed",
			"confidence": 0.9,
		})
	}
	raw["events"] = evs

	payload, err := json.Marshal(raw)
	require.NoError(t, err)
	report, err := sof.ParseReport(payload)
	require.NoError(t, err)
	return report
}

func TestWriteCSVHeaderPlusOneRowPerEvent(t *testing.T) {
	report := sampleReport(t, 3)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "sof.pdf", report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus one row per event")
	assert.Equal(t, csvHeader, records[0])

	for _, row := range records[1:] {
		assert.Equal(t, "sof.pdf", row[0])
		assert.Equal(t, "MV OCEAN STAR", row[1])
		assert.Equal(t, "Discharging, gang 1", row[4])
		assert.Equal(t, "0.9", row[12])
	}
}

func TestWriteCSVQuotesEmbeddedCommas(t *testing.T) {
	report := sampleReport(t, 1)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "sof.pdf", report))

	assert.True(t, strings.Contains(buf.String(), `"Discharging, gang 1"`))
}

func TestWriteCSVEmptyEvents(t *testing.T) {
	report := sampleReport(t, 0)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, "sof.pdf", report))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
