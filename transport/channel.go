// Package transport implements the SSH channel primitive (C4): dialing,
// authentication and pattern/deadline-bounded reads and writes over a
// single interactive shell channel. It knows nothing about vendor prompt
// grammars; that lives one layer up in the device package.
package transport

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/netvendor/netdev/internal/bufpool"
	"github.com/netvendor/netdev/internal/logging"
	"github.com/netvendor/netdev/internal/sessionlog"
)

const (
	defaultTermWidth  = 511
	defaultTermHeight = 1000

	readChunkSize = 4096
)

// chunk is one read result delivered by the background reader goroutine.
type chunk struct {
	data []byte
	err  error
}

// Channel is a single interactive SSH shell channel. Unlike a plain
// io.Reader, it supports deadline-bounded reads: stdout has no
// SetReadDeadline, so a background goroutine drains it continuously and
// feeds chunks over a channel that ReadBuffer/ReadUntilPattern select
// against with a timer.
type Channel struct {
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	chunks  chan chunk

	pool *bufpool.Pool
	log  *sessionlog.Log

	mu     sync.Mutex
	closed bool
}

func newChannel(client *ssh.Client, p DialParams) (*Channel, error) {
	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}

	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}

	width, height := p.TermWidth, p.TermHeight
	if width <= 0 {
		width = defaultTermWidth
	}
	if height <= 0 {
		height = defaultTermHeight
	}
	modes := ssh.TerminalModes{
		ssh.ECHO:          0,
		ssh.TTY_OP_ISPEED: 14400,
		ssh.TTY_OP_OSPEED: 14400,
	}
	if err := session.RequestPty("vt100", height, width, modes); err != nil {
		session.Close()
		return nil, fmt.Errorf("request pty: %w", err)
	}
	if err := session.Shell(); err != nil {
		session.Close()
		return nil, fmt.Errorf("start shell: %w", err)
	}

	pool := p.Pool
	if pool == nil {
		pool = bufpool.New()
	}

	ch := &Channel{
		client:  client,
		session: session,
		stdin:   stdin,
		chunks:  make(chan chunk, 16),
		pool:    pool,
		log:     sessionlog.Open(p.SessionLog, p.SessionID),
	}
	go ch.readLoop(stdout)
	return ch, nil
}

// readLoop continuously drains stdout and publishes chunks. It is the only
// goroutine that ever calls Read on the underlying pipe, so ReadBuffer can
// safely abandon a wait on timeout without losing bytes: they arrive on a
// later call instead.
func (c *Channel) readLoop(stdout io.Reader) {
	defer close(c.chunks)
	buf := make([]byte, readChunkSize)
	for {
		n, err := stdout.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			c.chunks <- chunk{data: data}
		}
		if err != nil {
			if err != io.EOF {
				logging.Global().Debug().Err(err).Msg("transport: read loop terminating")
			}
			c.chunks <- chunk{err: err}
			return
		}
	}
}

// WriteChannel writes data to the remote shell's stdin verbatim; callers
// are responsible for line termination (spec §6: "\n" with each command).
func (c *Channel) WriteChannel(data []byte) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	n, err := c.stdin.Write(data)
	c.log.Write(sessionlog.Sent, data)
	if err != nil {
		return &IoError{Kind: IoWrite, Err: err}
	}
	if n != len(data) {
		return &IoError{Kind: IoPartialWrite, Err: fmt.Errorf("wrote %d of %d bytes", n, len(data))}
	}
	return nil
}

// quietInterval is the poll interval from spec §4.4: once this much time
// passes with nothing new arriving, ReadBuffer/ReadChannel return whatever
// accumulated instead of waiting out the full deadline.
const quietInterval = 30 * time.Millisecond

// ReadBuffer waits for up to maxBytes, returning early once quietInterval
// passes with no new data or once deadline is reached, whichever comes
// first. It never errors on timeout: a short (or empty) read is a valid
// result, per spec §4.4. The lease is seeded at a single read-chunk
// capacity and grows by append, rather than pre-sizing to maxBytes, since
// maxBytes may be unbounded (see ReadChannel).
func (c *Channel) ReadBuffer(maxBytes int, deadline time.Time) ([]byte, error) {
	lease := c.pool.Acquire(readChunkSize)
	out := lease.Bytes()[:0]
	defer func() {
		lease.Set(out)
		lease.Release()
	}()

	deadlineTimer := time.NewTimer(time.Until(deadline))
	defer deadlineTimer.Stop()
	quietTimer := time.NewTimer(quietInterval)
	defer quietTimer.Stop()

	finish := func(err error) ([]byte, error) {
		result := make([]byte, len(out))
		copy(result, out)
		return result, err
	}

	for len(out) < maxBytes {
		select {
		case ch, ok := <-c.chunks:
			if !ok {
				return finish(&IoError{Kind: IoRead, Err: io.EOF})
			}
			if ch.err != nil {
				if len(out) > 0 {
					return finish(nil)
				}
				return finish(&IoError{Kind: IoRead, Err: ch.err})
			}
			out = append(out, ch.data...)
			if !quietTimer.Stop() {
				<-quietTimer.C
			}
			quietTimer.Reset(quietInterval)
		case <-quietTimer.C:
			return finish(nil)
		case <-deadlineTimer.C:
			return finish(nil)
		}
	}
	return finish(nil)
}

// ReadChannel reads until quietInterval passes with no new data or deadline
// is reached, returning everything received. It is the unbounded-length
// counterpart of ReadBuffer, used for drain reads
// (e.g. discarding a banner) where a byte cap would be arbitrary.
func (c *Channel) ReadChannel(deadline time.Time) ([]byte, error) {
	return c.ReadBuffer(int(^uint(0)>>1), deadline)
}

// ReadUntilPrompt accumulates bytes until promptRegex matches the trailing
// portion of the buffer or deadline passes, returning a PatternTimeoutError
// (with the accumulated bytes attached) in the latter case. This is the
// core primitive behind spec §4.5's SendCommand/SendConfigSet loop.
func (c *Channel) ReadUntilPrompt(promptRegex *regexp.Regexp, deadline time.Time) ([]byte, error) {
	return c.ReadUntilPattern(promptRegex, deadline)
}

// lastNonEmptyLine returns the last non-blank line of buf, matching spec
// §4.4's "return as soon as the last line matches" for both
// ReadUntilPrompt and ReadUntilPattern.
func lastNonEmptyLine(buf []byte) string {
	lines := bytes.Split(buf, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) > 0 {
			return string(line)
		}
	}
	return ""
}

// ReadUntilPattern is ReadUntilPrompt generalized to an arbitrary
// terminating pattern, used for prompt detection, the enable-secret prompt
// and command-echo verification.
func (c *Channel) ReadUntilPattern(pattern *regexp.Regexp, deadline time.Time) ([]byte, error) {
	lease := c.pool.Acquire(readChunkSize)
	out := lease.Bytes()[:0]
	defer func() {
		lease.Set(out)
		lease.Release()
	}()

	timer := time.NewTimer(time.Until(deadline))
	defer timer.Stop()

	for {
		if pattern.MatchString(lastNonEmptyLine(out)) {
			result := make([]byte, len(out))
			copy(result, out)
			c.log.Write(sessionlog.Received, result)
			return result, nil
		}
		select {
		case ch, ok := <-c.chunks:
			if !ok {
				result := make([]byte, len(out))
				copy(result, out)
				return result, &IoError{Kind: IoRead, Err: io.EOF}
			}
			if ch.err != nil {
				result := make([]byte, len(out))
				copy(result, out)
				return result, &IoError{Kind: IoRead, Err: ch.err}
			}
			out = append(out, ch.data...)
		case <-timer.C:
			result := make([]byte, len(out))
			copy(result, out)
			c.log.Write(sessionlog.Received, result)
			return result, &PatternTimeoutError{Pattern: pattern.String(), Accumulated: result}
		}
	}
}

// Close terminates the session and the underlying SSH client connection.
// Safe to call multiple times.
func (c *Channel) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.log.Close()
	sessErr := c.session.Close()
	clientErr := c.client.Close()
	if sessErr != nil && sessErr != io.EOF {
		return sessErr
	}
	if clientErr != nil && clientErr != io.EOF {
		return clientErr
	}
	return nil
}
