package autodetect

import (
	"fmt"

	"github.com/netvendor/netdev/devicetype"
)

// FailureError reports that no candidate bucket cleared minThreshold, per
// spec §4.8/§7's AutodetectFailure.
type FailureError struct {
	Scores map[devicetype.Tag]int
}

func (e *FailureError) Error() string {
	return fmt.Sprintf("autodetection failed: no device type cleared the score threshold (scores: %v)", e.Scores)
}
