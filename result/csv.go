package result

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

var csvHeader = []string{"device_id", "device_type", "command", "status", "duration_ms", "started_at", "ended_at", "error", "output"}

// ToCSV renders results with a header row, per spec §4.11's to_csv.
func ToCSV(b BatchCommandResults) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range b.Results {
		row := []string{
			r.DeviceID,
			string(r.DeviceType),
			r.Command,
			string(r.Status),
			fmt.Sprintf("%d", r.DurationMS()),
			r.StartedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			r.EndedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			r.Error,
			r.Output,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// FromCSV parses the output of ToCSV back into a BatchCommandResults.
func FromCSV(data []byte) (BatchCommandResults, error) {
	r := csv.NewReader(bytes.NewReader(data))
	rows, err := r.ReadAll()
	if err != nil {
		return BatchCommandResults{}, err
	}
	if len(rows) == 0 {
		return BatchCommandResults{}, nil
	}
	results := make([]CommandResult, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if len(row) != len(csvHeader) {
			return BatchCommandResults{}, fmt.Errorf("malformed csv row: %v", row)
		}
		started, err := parseTimestamp(row[5])
		if err != nil {
			return BatchCommandResults{}, err
		}
		ended, err := parseTimestamp(row[6])
		if err != nil {
			return BatchCommandResults{}, err
		}
		results = append(results, CommandResult{
			DeviceID:   row[0],
			DeviceType: deviceTypeTag(row[1]),
			Command:    row[2],
			Status:     Status(row[3]),
			StartedAt:  started,
			EndedAt:    ended,
			Error:      row[7],
			Output:     row[8],
		})
	}
	return BatchCommandResults{Results: results}, nil
}
