package parallel

import (
	"time"

	"github.com/netvendor/netdev/devicetype"
	"github.com/netvendor/netdev/result"
)

// skipAll emits a Skipped CommandResult for every remaining command in a
// device's queue, used when a failure strategy or cancellation cuts the
// queue short before those commands ever ran.
func skipAll(id string, deviceType devicetype.Tag, cmds []string) []result.CommandResult {
	results := make([]result.CommandResult, 0, len(cmds))
	for _, cmd := range cmds {
		results = append(results, result.Skip(id, deviceType, cmd))
	}
	return results
}

// timeoutAll emits a Timeout CommandResult for every command in a device's
// queue, used when permit acquisition itself times out before any command
// could run, per spec §4.9 step 2.
func timeoutAll(id string, deviceType devicetype.Tag, cmds []string, err error) []result.CommandResult {
	now := time.Now()
	results := make([]result.CommandResult, 0, len(cmds))
	for _, cmd := range cmds {
		results = append(results, result.CommandResult{
			DeviceID: id, DeviceType: deviceType, Command: cmd,
			StartedAt: now, EndedAt: now, Status: result.Timeout, Error: err.Error(),
		})
	}
	return results
}

// failAll emits a Failed CommandResult for every command in a device's
// queue, used when the initial connect itself fails.
func failAll(id string, deviceType devicetype.Tag, cmds []string, err error) []result.CommandResult {
	now := time.Now()
	results := make([]result.CommandResult, 0, len(cmds))
	for _, cmd := range cmds {
		results = append(results, result.CommandResult{
			DeviceID: id, DeviceType: deviceType, Command: cmd,
			StartedAt: now, EndedAt: now, Status: result.Failed, Error: err.Error(),
		})
	}
	return results
}
