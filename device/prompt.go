package device

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// PromptModel is the Base Connection's view of the device's prompt, per
// spec §3. It starts empty and is set during session preparation and by
// SetBasePrompt; mode transitions leave it unchanged.
type PromptModel struct {
	BasePrompt string
	Regex      *regexp.Regexp
}

// empty reports whether session preparation has not yet run.
func (p PromptModel) empty() bool { return p.Regex == nil }

// capturePrompt extracts the base prompt from a raw line of output by
// trimming whitespace and stripping exactly one trailing metacharacter
// (the vendor's mode-indicator suffix), per spec §3's Prompt Model.
func capturePrompt(line string, suffixClass string) (string, error) {
	trimmed := strings.TrimRight(line, "\r\n ")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" {
		return "", fmt.Errorf("empty prompt line")
	}
	runes := []rune(trimmed)
	last := runes[len(runes)-1]
	if !strings.ContainsRune(suffixClass, last) {
		return "", fmt.Errorf("prompt line %q does not end in expected suffix class %q", trimmed, suffixClass)
	}
	return strings.TrimSpace(string(runes[:len(runes)-1])), nil
}

// compilePromptRegex builds `^<base_prompt>[<suffix-class>]\s*$`, matched
// against the last non-empty line of channel output, per spec §6.
func compilePromptRegex(basePrompt, suffixClass string) *regexp.Regexp {
	pattern := fmt.Sprintf(`(?m)^%s[%s]\s*$`, regexp.QuoteMeta(basePrompt), suffixClass)
	return regexp.MustCompile(pattern)
}

// lastNonEmptyLine returns the last non-blank line of output, used both for
// prompt capture and general trailing-line inspection.
func lastNonEmptyLine(output []byte) string {
	lines := bytes.Split(output, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(string(lines[i]))
		if line != "" {
			return line
		}
	}
	return ""
}
