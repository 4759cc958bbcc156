package result

import (
	"time"

	"github.com/netvendor/netdev/devicetype"
)

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse("2006-01-02T15:04:05.000Z07:00", s)
}

func deviceTypeTag(s string) devicetype.Tag {
	return devicetype.Tag(s)
}
