package reconcile

import (
	"time"

	json "github.com/goccy/go-json"
)

// Report summarises one Persist run.
type Report struct {
	RunID    string
	Events   []ChangeEvent
	Skipped  []string
	Errors   []ValidationError
	Duration time.Duration
}

type reportJSON struct {
	RunID    string            `json:"run_id"`
	Events   []exportedEvent   `json:"events"`
	Skipped  []string          `json:"skipped,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Duration string            `json:"duration"`
}

// Counts returns the number of events per kind.
func (r Report) Counts() map[EventKind]int {
	counts := make(map[EventKind]int)
	for _, event := range r.Events {
		counts[event.Kind]++
	}
	return counts
}

// ToJSON serialises the report. Event values and refs are exported as plain
// data.
func (r Report) ToJSON() ([]byte, error) {
	out := reportJSON{
		RunID:    r.RunID,
		Events:   make([]exportedEvent, len(r.Events)),
		Skipped:  r.Skipped,
		Errors:   r.Errors,
		Duration: r.Duration.String(),
	}
	for i, event := range r.Events {
		out.Events[i] = exportEvent(event)
	}
	return json.Marshal(out)
}

// ReportFromJSON decodes a payload produced by ToJSON. Refs come back as
// copies detached from the session snapshots.
func ReportFromJSON(payload []byte) (Report, error) {
	var in reportJSON
	if err := json.Unmarshal(payload, &in); err != nil {
		return Report{}, err
	}
	report := Report{
		RunID:   in.RunID,
		Skipped: in.Skipped,
		Errors:  in.Errors,
	}
	if in.Duration != "" {
		d, err := time.ParseDuration(in.Duration)
		if err != nil {
			return Report{}, err
		}
		report.Duration = d
	}
	for _, raw := range in.Events {
		event, err := importEvent(raw)
		if err != nil {
			return Report{}, err
		}
		report.Events = append(report.Events, event)
	}
	return report, nil
}
