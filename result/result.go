// Package result implements the Result Model & Utilities (C11): the
// CommandResult/BatchCommandResults value types from spec §3 and the
// pure-function utilities over them (table/JSON/CSV rendering, grouping,
// comparison).
package result

import (
	"time"

	"github.com/netvendor/netdev/devicetype"
)

// Status is the terminal state of one command execution.
type Status string

const (
	Success Status = "success"
	Failed  Status = "failed"
	Timeout Status = "timeout"
	Skipped Status = "skipped"
)

// CommandResult is one command's outcome on one device, per spec §3.
type CommandResult struct {
	DeviceID   string
	DeviceType devicetype.Tag
	Command    string
	Output     string
	StartedAt  time.Time
	EndedAt    time.Time
	Status     Status
	Error      string
}

// DurationMS is the wall-clock duration of the call in milliseconds. It
// uses EndedAt.Sub(StartedAt), which resolves to the monotonic reading Go
// attaches to time.Now() values, per spec §3's "monotonic + wall" pair.
func (r CommandResult) DurationMS() int64 {
	if r.EndedAt.IsZero() || r.StartedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt).Milliseconds()
}

// Skip returns a Skipped result for cmd on device, used by the parallel
// execution manager when a failure strategy cuts a device's queue short.
func Skip(deviceID string, deviceType devicetype.Tag, cmd string) CommandResult {
	now := time.Now()
	return CommandResult{
		DeviceID:   deviceID,
		DeviceType: deviceType,
		Command:    cmd,
		StartedAt:  now,
		EndedAt:    now,
		Status:     Skipped,
	}
}

// BatchCommandResults is the ordered aggregate from spec §3: stable-ordered
// by (device submission order, then command order within device), plus
// derived counts.
type BatchCommandResults struct {
	Results []CommandResult
}

// Devices returns the number of distinct device ids represented, in first-
// seen order.
func (b BatchCommandResults) Devices() int {
	return len(b.deviceOrder())
}

func (b BatchCommandResults) deviceOrder() []string {
	seen := make(map[string]bool)
	var order []string
	for _, r := range b.Results {
		if !seen[r.DeviceID] {
			seen[r.DeviceID] = true
			order = append(order, r.DeviceID)
		}
	}
	return order
}

// Commands returns the total number of CommandResult entries.
func (b BatchCommandResults) Commands() int { return len(b.Results) }

// Successes returns the count of Status == Success.
func (b BatchCommandResults) Successes() int { return b.countStatus(Success) }

// Failures returns the count of Status == Failed.
func (b BatchCommandResults) Failures() int { return b.countStatus(Failed) }

// Timeouts returns the count of Status == Timeout.
func (b BatchCommandResults) Timeouts() int { return b.countStatus(Timeout) }

// SkippedCount returns the count of Status == Skipped.
func (b BatchCommandResults) SkippedCount() int { return b.countStatus(Skipped) }

func (b BatchCommandResults) countStatus(s Status) int {
	n := 0
	for _, r := range b.Results {
		if r.Status == s {
			n++
		}
	}
	return n
}

// TotalDuration sums DurationMS across every result, in milliseconds.
func (b BatchCommandResults) TotalDuration() int64 {
	var total int64
	for _, r := range b.Results {
		total += r.DurationMS()
	}
	return total
}
