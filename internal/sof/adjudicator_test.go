package sof

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sof-backend/internal/llm"
)

const validReportJSON = `{
	"document_details": {
		"document_source": "Port Agent",
		"date_of_document": "2024-03-15",
		"port_name": "Rotterdam",
		"vessel_name": "MV OCEAN STAR",
		"voyage_number": "V-042",
		"parties": {
			"shipowner_name": "Star Shipping Ltd",
			"charterer_name": "Global Grain BV",
			"port_agent_name": "Rotterdam Agencies",
			"confidence": 0.95
		},
		"cargo": {
			"operation_type": "Discharging",
			"cargo_type": "Wheat in bulk",
			"quantity": 25000,
			"unit": "MT",
			"confidence": 0.9
		},
		"confidence": 0.95
	},
	"events": [
		{
			"event_id": 1,
			"event_type": "NOR Tendered",
			"start_date": "2024-03-15",
			"start_time": "06:00",
			"end_date": "2024-03-15",
			"end_time": "06:00",
			"duration_hours": 0,
			"weather_conditions": null,
			"remarks": null,
			"confidence": 1.0
		},
		{
			"event_id": 2,
			"event_type": "Discharging",
			"start_date": "2024-03-15",
			"start_time": "08:30",
			"end_date": "2024-03-16",
			"end_time": "14:00",
			"duration_hours": 29.5,
			"weather_conditions": "Light rain",
			"remarks": "Two gangs working",
			"confidence": 0.9
		}
	],
	"laytime_notes": {
		"free_time_periods_identified": null,
		"suspension_periods_identified": "Rain stoppage 03:00-05:00",
		"remarks_on_interruptions_or_delays": "Crane breakdown 1h",
		"confidence": 0.85
	},
	"approvals": [
		{"role": "Master", "name": "J. Hansen", "date_signed": "2024-03-16", "confidence": 0.9}
	]
}`

// recordingClient captures call order and inputs.
type recordingClient struct {
	calls      []string
	extractIn  []llm.ExtractInput
	adjudIn    []llm.AdjudicateInput
	extractOut []json.RawMessage
	adjudOut   json.RawMessage
	extractErr []error
	adjudErr   error
}

func (c *recordingClient) Extract(_ context.Context, in llm.ExtractInput) (json.RawMessage, error) {
	c.calls = append(c.calls, "extract")
	c.extractIn = append(c.extractIn, in)
	idx := len(c.extractIn) - 1
	if idx < len(c.extractErr) && c.extractErr[idx] != nil {
		return nil, c.extractErr[idx]
	}
	if idx < len(c.extractOut) {
		return c.extractOut[idx], nil
	}
	return json.RawMessage(`{}`), nil
}

func (c *recordingClient) Adjudicate(_ context.Context, in llm.AdjudicateInput) (json.RawMessage, error) {
	c.calls = append(c.calls, "adjudicate")
	c.adjudIn = append(c.adjudIn, in)
	if c.adjudErr != nil {
		return nil, c.adjudErr
	}
	return c.adjudOut, nil
}

func TestStructureRunsDraftsThenAdjudication(t *testing.T) {
	draftA := json.RawMessage(`{"events":[{"event_type":"Loading"}]}`)
	draftB := json.RawMessage(`{"events":[]}`)
	client := &recordingClient{
		extractOut: []json.RawMessage{draftA, draftB},
		adjudOut:   json.RawMessage(validReportJSON),
	}

	adj := NewAdjudicator(client, "v1")
	report, canonical, err := adj.Structure(context.Background(), "SOF text")
	require.NoError(t, err)

	assert.Equal(t, []string{"extract", "extract", "adjudicate"}, client.calls)
	assert.InDelta(t, 0.0, float64(client.extractIn[0].Temperature), 1e-6)
	assert.InDelta(t, 0.3, float64(client.extractIn[1].Temperature), 1e-6)

	require.Len(t, client.adjudIn, 1)
	require.Len(t, client.adjudIn[0].Drafts, 2)
	assert.JSONEq(t, string(draftA), string(client.adjudIn[0].Drafts[0]))
	assert.JSONEq(t, string(draftB), string(client.adjudIn[0].Drafts[1]))

	require.NotNil(t, report.DocumentDetails.VesselName)
	assert.Equal(t, "MV OCEAN STAR", *report.DocumentDetails.VesselName)
	assert.Len(t, report.Events, 2)
	assert.True(t, json.Valid(canonical))
}

func TestStructureDraftFailureSkipsAdjudication(t *testing.T) {
	client := &recordingClient{
		extractErr: []error{nil, errors.New("model overloaded")},
	}

	adj := NewAdjudicator(client, "v1")
	_, _, err := adj.Structure(context.Background(), "SOF text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass 2")
	assert.Equal(t, []string{"extract", "extract"}, client.calls)
}

func TestStructureRejectsEmptyText(t *testing.T) {
	adj := NewAdjudicator(&recordingClient{}, "v1")
	_, _, err := adj.Structure(context.Background(), "   \n ")
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestStructureRejectsInvalidReport(t *testing.T) {
	client := &recordingClient{
		adjudOut: json.RawMessage(`{"document_details":{},"events":[{"confidence":1.7}],"laytime_notes":{}}`),
	}

	adj := NewAdjudicator(client, "v1")
	_, _, err := adj.Structure(context.Background(), "SOF text")

	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
	assert.Contains(t, invalid.Problems[0], "outside [0,1]")
}

func TestStructureRejectsUnknownFields(t *testing.T) {
	client := &recordingClient{
		adjudOut: json.RawMessage(`{"document_details":{},"events":[],"laytime_notes":{},"surprise":true}`),
	}

	adj := NewAdjudicator(client, "v1")
	_, _, err := adj.Structure(context.Background(), "SOF text")

	var invalid *ErrInvalidReport
	require.ErrorAs(t, err, &invalid)
}
