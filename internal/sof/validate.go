package sof

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidReport indicates the model output did not conform to the
// Statement of Facts schema and was rejected.
type ErrInvalidReport struct {
	Problems []string
}

func (e *ErrInvalidReport) Error() string {
	return fmt.Sprintf("report failed schema validation: %s", strings.Join(e.Problems, "; "))
}

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}(:\d{2})?$`)
)

// ParseReport decodes and validates adjudicated model output. Unknown
// fields are rejected so that schema drift surfaces as a hard failure
// instead of silently dropped data.
func ParseReport(raw json.RawMessage) (*Report, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var report Report
	if err := dec.Decode(&report); err != nil {
		return nil, &ErrInvalidReport{Problems: []string{fmt.Sprintf("decode: %v", err)}}
	}

	problems := validate(&report)
	if len(problems) > 0 {
		return nil, &ErrInvalidReport{Problems: problems}
	}
	normalize(&report)
	return &report, nil
}

func validate(r *Report) []string {
	var problems []string

	checkConfidence := func(field string, v *float64) {
		if v != nil && (*v < 0 || *v > 1) {
			problems = append(problems, fmt.Sprintf("%s confidence %v outside [0,1]", field, *v))
		}
	}

	checkConfidence("document_details", r.DocumentDetails.Confidence)
	if r.DocumentDetails.Parties != nil {
		checkConfidence("parties", r.DocumentDetails.Parties.Confidence)
	}
	if r.DocumentDetails.Cargo != nil {
		checkConfidence("cargo", r.DocumentDetails.Cargo.Confidence)
		if q := r.DocumentDetails.Cargo.Quantity; q != nil && *q < 0 {
			problems = append(problems, fmt.Sprintf("cargo quantity %v is negative", *q))
		}
	}
	checkConfidence("laytime_notes", r.LaytimeNotes.Confidence)

	for i := range r.Events {
		ev := &r.Events[i]
		label := fmt.Sprintf("events[%d]", i)
		checkConfidence(label, ev.Confidence)
		checkDate(&problems, label+".start_date", ev.StartDate)
		checkDate(&problems, label+".end_date", ev.EndDate)
		checkTime(&problems, label+".start_time", ev.StartTime)
		checkTime(&problems, label+".end_time", ev.EndTime)
		if ev.DurationHours != nil && *ev.DurationHours < 0 {
			problems = append(problems, fmt.Sprintf("%s duration_hours %v is negative", label, *ev.DurationHours))
		}
		if present(ev.EndDate) && !present(ev.StartDate) {
			problems = append(problems, fmt.Sprintf("%s has end_date without start_date", label))
		}
		if present(ev.EndTime) && !present(ev.StartTime) {
			problems = append(problems, fmt.Sprintf("%s has end_time without start_time", label))
		}
	}

	for i, sig := range r.Approvals {
		checkConfidence(fmt.Sprintf("approvals[%d]", i), sig.Confidence)
	}

	return problems
}

func present(v *string) bool {
	return v != nil && strings.TrimSpace(*v) != ""
}

func checkDate(problems *[]string, field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return
	}
	if !datePattern.MatchString(strings.TrimSpace(*v)) {
		*problems = append(*problems, fmt.Sprintf("%s %q is not YYYY-MM-DD", field, *v))
	}
}

func checkTime(problems *[]string, field string, v *string) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return
	}
	if !timePattern.MatchString(strings.TrimSpace(*v)) {
		*problems = append(*problems, fmt.Sprintf("%s %q is not HH:MM", field, *v))
	}
}

// normalize guarantees stable output: events and approvals are never
// null in serialized results, event IDs are sequential starting at 1
// when the model left them unset, and point-in-time events carry the
// start timestamp as their end.
func normalize(r *Report) {
	if r.Events == nil {
		r.Events = []Event{}
	}
	if r.Approvals == nil {
		r.Approvals = []Signatory{}
	}
	for i := range r.Events {
		ev := &r.Events[i]
		if ev.EventID == nil {
			id := i + 1
			ev.EventID = &id
		}
		if present(ev.StartDate) && !present(ev.EndDate) {
			end := *ev.StartDate
			ev.EndDate = &end
		}
		if present(ev.StartTime) && !present(ev.EndTime) {
			end := *ev.StartTime
			ev.EndTime = &end
		}
	}
}
