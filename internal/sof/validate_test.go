package sof

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportNormalizesNilSlices(t *testing.T) {
	report, err := ParseReport(json.RawMessage(`{"document_details":{},"events":null,"laytime_notes":{},"approvals":null}`))
	require.NoError(t, err)

	assert.NotNil(t, report.Events)
	assert.NotNil(t, report.Approvals)

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"events":[]`)
	assert.Contains(t, string(out), `"approvals":[]`)
}

func TestParseReportAssignsSequentialEventIDs(t *testing.T) {
	raw := `{"document_details":{},"laytime_notes":{},"events":[
		{"event_type":"Arrival"},
		{"event_type":"NOR Tendered"}
	]}`
	report, err := ParseReport(json.RawMessage(raw))
	require.NoError(t, err)

	require.NotNil(t, report.Events[0].EventID)
	require.NotNil(t, report.Events[1].EventID)
	assert.Equal(t, 1, *report.Events[0].EventID)
	assert.Equal(t, 2, *report.Events[1].EventID)
}

func TestParseReportRejectsBadDatesAndTimes(t *testing.T) {
	raw := `{"document_details":{},"laytime_notes":{},"events":[
		{"start_date":"15/03/2024","start_time":"6am"}
	]}`
	_, err := ParseReport(json.RawMessage(raw))

	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Problems, 2)
	assert.Contains(t, invalid.Problems[0], "YYYY-MM-DD")
	assert.Contains(t, invalid.Problems[1], "HH:MM")
}

func TestParseReportAcceptsSecondsInTimes(t *testing.T) {
	raw := `{"document_details":{},"laytime_notes":{},"events":[
		{"start_date":"2024-03-15","start_time":"06:00:00"}
	]}`
	_, err := ParseReport(json.RawMessage(raw))
	assert.NoError(t, err)
}

func TestParseReportRejectsNegativeDuration(t *testing.T) {
	raw := `{"document_details":{},"laytime_notes":{},"events":[{"duration_hours":-2}]}`
	_, err := ParseReport(json.RawMessage(raw))

	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Problems[0], "negative")
}

func TestParseReportRejectsOutOfRangeConfidenceEverywhere(t *testing.T) {
	raw := `{
		"document_details":{"parties":{"confidence":-0.1},"cargo":{"confidence":2}},
		"laytime_notes":{"confidence":1.5},
		"events":[],
		"approvals":[{"confidence":9}]
	}`
	_, err := ParseReport(json.RawMessage(raw))

	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Problems, 4)
}

func TestParseReportBackfillsPointInTimeEnd(t *testing.T) {
	raw := `{"document_details":{},"laytime_notes":{},"events":[
		{"event_type":"Arrival","start_date":"2024-01-01","start_time":"08:00"}
	]}`
	report, err := ParseReport(json.RawMessage(raw))
	require.NoError(t, err)

	ev := report.Events[0]
	require.NotNil(t, ev.EndDate)
	require.NotNil(t, ev.EndTime)
	assert.Equal(t, "2024-01-01", *ev.EndDate)
	assert.Equal(t, "08:00", *ev.EndTime)
}

func TestParseReportRejectsEndWithoutStart(t *testing.T) {
	raw := `{"document_details":{},"laytime_notes":{},"events":[
		{"event_type":"Departure","end_date":"2024-01-02","end_time":"17:30"}
	]}`
	_, err := ParseReport(json.RawMessage(raw))

	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
	assert.Len(t, invalid.Problems, 2)
	assert.Contains(t, invalid.Problems[0], "end_date without start_date")
	assert.Contains(t, invalid.Problems[1], "end_time without start_time")
}

func TestParseReportRejectsNonObject(t *testing.T) {
	_, err := ParseReport(json.RawMessage(`["not","a","report"]`))
	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
}
