// Package sof defines the structured Statement of Facts schema and the
// dual-pass adjudication pipeline that produces it from raw document text.
package sof

// PartyDetails identifies the commercial parties named on the document.
type PartyDetails struct {
	ShipownerName *string  `json:"shipowner_name"`
	ChartererName *string  `json:"charterer_name"`
	PortAgentName *string  `json:"port_agent_name"`
	Confidence    *float64 `json:"confidence"`
}

// CargoDetails describes the cargo operation covered by the document.
type CargoDetails struct {
	OperationType *string  `json:"operation_type"`
	CargoType     *string  `json:"cargo_type"`
	Quantity      *float64 `json:"quantity"`
	Unit          *string  `json:"unit"`
	Confidence    *float64 `json:"confidence"`
}

// Signatory records one approval signature on the document.
type Signatory struct {
	Role       *string  `json:"role"`
	Name       *string  `json:"name"`
	DateSigned *string  `json:"date_signed"`
	Confidence *float64 `json:"confidence"`
}

// DocumentDetails captures the header-level facts of the voyage.
type DocumentDetails struct {
	DocumentSource *string       `json:"document_source"`
	DateOfDocument *string       `json:"date_of_document"`
	PortName       *string       `json:"port_name"`
	VesselName     *string       `json:"vessel_name"`
	VoyageNumber   *string       `json:"voyage_number"`
	Parties        *PartyDetails `json:"parties"`
	Cargo          *CargoDetails `json:"cargo"`
	Confidence     *float64      `json:"confidence"`
}

// Event is one timestamped port event from the chronological log.
type Event struct {
	EventID           *int     `json:"event_id"`
	EventType         *string  `json:"event_type"`
	StartDate         *string  `json:"start_date"`
	StartTime         *string  `json:"start_time"`
	EndDate           *string  `json:"end_date"`
	EndTime           *string  `json:"end_time"`
	DurationHours     *float64 `json:"duration_hours"`
	WeatherConditions *string  `json:"weather_conditions"`
	Remarks           *string  `json:"remarks"`
	Confidence        *float64 `json:"confidence"`
}

// LaytimeNotes aggregates laytime-relevant observations.
type LaytimeNotes struct {
	FreeTimePeriodsIdentified      *string  `json:"free_time_periods_identified"`
	SuspensionPeriodsIdentified    *string  `json:"suspension_periods_identified"`
	RemarksOnInterruptionsOrDelays *string  `json:"remarks_on_interruptions_or_delays"`
	Confidence                     *float64 `json:"confidence"`
}

// Report is the full structured Statement of Facts record.
type Report struct {
	DocumentDetails DocumentDetails `json:"document_details"`
	Events          []Event         `json:"events"`
	LaytimeNotes    LaytimeNotes    `json:"laytime_notes"`
	Approvals       []Signatory     `json:"approvals"`
}
