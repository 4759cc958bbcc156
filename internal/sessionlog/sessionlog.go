// Package sessionlog implements the append-only per-session transcript writer
// (C3). It is deliberately separate from internal/logging: the session log is
// a persisted wire-level artifact (spec §6's "Session log format"), not a
// diagnostic log stream, and it records the wire bytes without redaction.
package sessionlog

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/netvendor/netdev/internal/logging"
)

// Direction marks which way bytes moved across the wire.
type Direction string

const (
	Sent     Direction = ">>"
	Received Direction = "<<"
)

// Config controls whether and how session transcripts are persisted.
type Config struct {
	Enabled       bool
	Directory     string
	LogBinaryData bool
}

// Log is an append-only transcript writer for a single SSH session. Writes
// for one Log are total-ordered (spec §5); independent Logs never share
// state.
type Log struct {
	mu     sync.Mutex
	cfg    Config
	id     string
	file   *os.File
	warned bool
	closed bool
}

// Open creates (or reopens) a session transcript. If cfg.Enabled is false,
// the returned Log is a no-op: Write/Close never fail and never touch disk,
// per spec §7 ("session-log writes never fail the operation").
func Open(cfg Config, sessionID string) *Log {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	l := &Log{cfg: cfg, id: sessionID}
	if !cfg.Enabled {
		return l
	}

	path := l.path()
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		l.warnOnce(err)
		return l
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		l.warnOnce(err)
		return l
	}
	l.file = f
	return l
}

func (l *Log) path() string {
	return filepath.Join(l.cfg.Directory, l.id+".log")
}

// Write appends one transcript line: "<ISO8601> <direction> <bytes>".
// Non-printable bytes are escaped unless LogBinaryData is set. Errors are
// swallowed after a single warning, per spec §7.
func (l *Log) Write(dir Direction, data []byte) {
	if l == nil || !l.cfg.Enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.file == nil {
		return
	}

	var payload string
	if l.cfg.LogBinaryData {
		payload = string(data)
	} else {
		payload = escape(data)
	}

	line := fmt.Sprintf("%s %s %s\n", time.Now().UTC().Format(time.RFC3339Nano), dir, payload)
	if _, err := l.file.WriteString(line); err != nil {
		l.warnOnce(err)
	}
}

// Close finalizes the transcript. Safe to call multiple times.
func (l *Log) Close() {
	if l == nil || !l.cfg.Enabled {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || l.file == nil {
		return
	}
	l.closed = true
	if err := l.file.Close(); err != nil {
		l.warnOnce(err)
	}
}

func (l *Log) warnOnce(err error) {
	if l.warned {
		return
	}
	l.warned = true
	logging.FromContext(nil).Warn().Err(err).Str("component", "sessionlog").Str("session_id", l.id).
		Msg("session log write failed; subsequent errors for this session are suppressed")
}

// escape renders non-printable bytes (anything outside printable ASCII and
// common whitespace) as \xHH sequences so the transcript stays valid UTF-8
// text, per spec §6's session log format. It operates on the raw bytes
// directly rather than decoding them as UTF-8, since device output is not
// guaranteed to be valid UTF-8 to begin with.
func escape(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c == '\n' || c == '\t' || (c >= 0x20 && c < 0x7f) {
			b.WriteByte(c)
			continue
		}
		b.WriteString("\\x")
		hex := strconv.FormatUint(uint64(c), 16)
		if len(hex) == 1 {
			b.WriteByte('0')
		}
		b.WriteString(hex)
	}
	return b.String()
}
