package parallel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCancelTokenInitiallyNotCancelled(t *testing.T) {
	tok := NewCancelToken()
	assert.False(t, tok.Cancelled())
	select {
	case <-tok.Done():
		t.Fatal("Done channel closed before Cancel")
	default:
	}
}

func TestCancelTokenCancelIdempotent(t *testing.T) {
	tok := NewCancelToken()
	tok.Cancel()
	tok.Cancel()
	assert.True(t, tok.Cancelled())
	select {
	case <-tok.Done():
	default:
		t.Fatal("Done channel not closed after Cancel")
	}
}

func TestCancelTokenConcurrentCancel(t *testing.T) {
	tok := NewCancelToken()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			tok.Cancel()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for concurrent Cancel calls")
		}
	}
	assert.True(t, tok.Cancelled())
}
