package result

import "encoding/json"

// jsonRecord mirrors CommandResult with a stable, explicit field order and
// JSON-friendly timestamp/duration encodings, per spec §4.11's to_json.
type jsonRecord struct {
	DeviceID   string `json:"device_id"`
	DeviceType string `json:"device_type"`
	Command    string `json:"command"`
	Output     string `json:"output"`
	StartedAt  string `json:"started_at"`
	EndedAt    string `json:"ended_at"`
	DurationMS int64  `json:"duration_ms"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

func toJSONRecord(r CommandResult) jsonRecord {
	return jsonRecord{
		DeviceID:   r.DeviceID,
		DeviceType: string(r.DeviceType),
		Command:    r.Command,
		Output:     r.Output,
		StartedAt:  r.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		EndedAt:    r.EndedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		DurationMS: r.DurationMS(),
		Status:     string(r.Status),
		Error:      r.Error,
	}
}

// ToJSON renders results as a JSON array of records with a stable field
// order, per spec §4.11.
func ToJSON(b BatchCommandResults) ([]byte, error) {
	records := make([]jsonRecord, 0, len(b.Results))
	for _, r := range b.Results {
		records = append(records, toJSONRecord(r))
	}
	return json.Marshal(records)
}

// FromJSON parses the output of ToJSON back into a BatchCommandResults.
// Timestamps round-trip at millisecond precision; DurationMS is recomputed from
// them, preserving spec §8's JSON round-trip property structurally.
func FromJSON(data []byte) (BatchCommandResults, error) {
	var records []jsonRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return BatchCommandResults{}, err
	}
	results := make([]CommandResult, 0, len(records))
	for _, rec := range records {
		started, err := parseTimestamp(rec.StartedAt)
		if err != nil {
			return BatchCommandResults{}, err
		}
		ended, err := parseTimestamp(rec.EndedAt)
		if err != nil {
			return BatchCommandResults{}, err
		}
		results = append(results, CommandResult{
			DeviceID:   rec.DeviceID,
			DeviceType: deviceTypeTag(rec.DeviceType),
			Command:    rec.Command,
			Output:     rec.Output,
			StartedAt:  started,
			EndedAt:    ended,
			Status:     Status(rec.Status),
			Error:      rec.Error,
		})
	}
	return BatchCommandResults{Results: results}, nil
}
