// Package autodetect implements the device-type autodetector (C8): a
// scored pattern engine that identifies a vendor from live command output.
// It depends only on transport and devicetype so that device can depend on
// it without creating an import cycle.
package autodetect

import (
	"context"
	"regexp"
	"time"

	"github.com/netvendor/netdev/devicetype"
	"github.com/netvendor/netdev/transport"
)

// probe is one candidate command plus a set of scored patterns. A pattern
// match contributes Weight to its Tag's bucket.
type probe struct {
	command string
	matches []patternWeight
}

type patternWeight struct {
	tag     devicetype.Tag
	pattern *regexp.Regexp
	weight  int
}

// minThreshold is the minimum bucket score required to accept a result,
// per spec §4.8.
const minThreshold = 2

var probes = []probe{
	{
		command: "show version",
		matches: []patternWeight{
			{devicetype.CiscoIOSXR, regexp.MustCompile(`(?i)IOS XR`), 3},
			{devicetype.CiscoNXOS, regexp.MustCompile(`(?i)NX-OS`), 3},
			{devicetype.CiscoIOSXE, regexp.MustCompile(`(?i)IOS-XE|IOS XE`), 3},
			{devicetype.CiscoIOS, regexp.MustCompile(`(?i)Cisco IOS Software`), 2},
			{devicetype.CiscoASA, regexp.MustCompile(`(?i)Adaptive Security Appliance|ASA`), 3},
			{devicetype.AristaEOS, regexp.MustCompile(`(?i)Arista`), 3},
		},
	},
	{
		command: "show system information",
		matches: []patternWeight{
			{devicetype.AristaEOS, regexp.MustCompile(`(?i)Arista`), 2},
		},
	},
	{
		command: "show version | match JUNOS",
		matches: []patternWeight{
			{devicetype.JuniperJunos, regexp.MustCompile(`(?i)JUNOS`), 3},
		},
	},
	{
		command: "",
		matches: []patternWeight{
			{devicetype.JuniperJunos, regexp.MustCompile(`[%$]\s*$`), 1},
			{devicetype.CiscoASA, regexp.MustCompile(`>\s*$`), 1},
		},
	},
}

// Detect dials once, reuses the channel for all probes, then disconnects,
// per spec §4.8. It never returns devicetype.Autodetect.
func Detect(ctx context.Context, params transport.DialParams, probeTimeout time.Duration) (devicetype.Tag, error) {
	ch, err := transport.Dial(ctx, params)
	if err != nil {
		return "", err
	}
	defer ch.Close()

	if probeTimeout <= 0 {
		probeTimeout = 5 * time.Second
	}

	scores := make(map[devicetype.Tag]int)

	for _, p := range probes {
		if p.command != "" {
			if err := ch.WriteChannel([]byte(p.command + "\n")); err != nil {
				continue
			}
		} else {
			if err := ch.WriteChannel([]byte("\n")); err != nil {
				continue
			}
		}
		out, _ := ch.ReadChannel(time.Now().Add(probeTimeout))
		for _, m := range p.matches {
			if m.pattern.Match(out) {
				scores[m.tag] += m.weight
			}
		}
	}

	// devicetype.All is already ordered by tie-break priority, so the first
	// strictly-greater score wins ties in favor of the earlier (higher
	// priority) tag automatically.
	best, bestScore := devicetype.Tag(""), 0
	for _, tag := range devicetype.All {
		if score := scores[tag]; score > bestScore {
			best, bestScore = tag, score
		}
	}

	if bestScore < minThreshold {
		return "", &FailureError{Scores: scores}
	}
	return best, nil
}
