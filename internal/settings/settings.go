// Package settings implements the process-wide tunables tree (C10):
// defaults, an optional file overlay, then environment overrides, one
// variable per leaf under a shared NETDEV_ prefix. Later updates publish a
// new snapshot; existing readers keep whatever they already loaded.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"sync/atomic"
	"time"
)

const envPrefix = "NETDEV_"

// Network groups connect/read/write timeouts and retry tunables.
type Network struct {
	ConnectTimeout        time.Duration `json:"connect_timeout_ms" env:"NETWORK_CONNECT_TIMEOUT_MS"`
	CommandTimeout        time.Duration `json:"command_timeout_ms" env:"NETWORK_COMMAND_TIMEOUT_MS"`
	PatternMatchTimeout   time.Duration `json:"pattern_match_timeout_ms" env:"NETWORK_PATTERN_MATCH_TIMEOUT_MS"`
	CommandExecDelay      time.Duration `json:"command_exec_delay_ms" env:"NETWORK_COMMAND_EXEC_DELAY_MS"`
	RetryDelay            time.Duration `json:"retry_delay_ms" env:"NETWORK_RETRY_DELAY_MS"`
	MaxRetryAttempts      int           `json:"max_retry_attempts" env:"NETWORK_MAX_RETRY_ATTEMPTS"`
	DefaultPort           int           `json:"default_port" env:"NETWORK_DEFAULT_PORT"`
	DeviceOperationTimeout time.Duration `json:"device_operation_timeout_ms" env:"NETWORK_DEVICE_OPERATION_TIMEOUT_MS"`
}

// SSH groups the transport-level timeouts specific to the SSH handshake
// and keepalive behavior.
type SSH struct {
	BlockingTimeout    time.Duration `json:"blocking_timeout_ms" env:"SSH_BLOCKING_TIMEOUT_MS"`
	AuthTimeout        time.Duration `json:"auth_timeout_ms" env:"SSH_AUTH_TIMEOUT_MS"`
	KeepaliveInterval  time.Duration `json:"keepalive_interval_ms" env:"SSH_KEEPALIVE_INTERVAL_MS"`
	ChannelOpenTimeout time.Duration `json:"channel_open_timeout_ms" env:"SSH_CHANNEL_OPEN_TIMEOUT_MS"`
}

// UnmarshalJSON decodes the `_ms`-suffixed duration fields as milliseconds,
// matching setField's env-override convention, instead of encoding/json's
// default of treating a bare number as nanoseconds for a time.Duration
// field. Fields absent from data leave n's existing value (typically a
// Defaults() value) untouched.
func (n *Network) UnmarshalJSON(data []byte) error {
	type alias struct {
		ConnectTimeoutMS       int64 `json:"connect_timeout_ms"`
		CommandTimeoutMS       int64 `json:"command_timeout_ms"`
		PatternMatchTimeoutMS  int64 `json:"pattern_match_timeout_ms"`
		CommandExecDelayMS     int64 `json:"command_exec_delay_ms"`
		RetryDelayMS           int64 `json:"retry_delay_ms"`
		MaxRetryAttempts       int   `json:"max_retry_attempts"`
		DefaultPort            int   `json:"default_port"`
		DeviceOperationTimeoutMS int64 `json:"device_operation_timeout_ms"`
	}
	a := alias{
		ConnectTimeoutMS:         int64(n.ConnectTimeout / time.Millisecond),
		CommandTimeoutMS:         int64(n.CommandTimeout / time.Millisecond),
		PatternMatchTimeoutMS:    int64(n.PatternMatchTimeout / time.Millisecond),
		CommandExecDelayMS:       int64(n.CommandExecDelay / time.Millisecond),
		RetryDelayMS:             int64(n.RetryDelay / time.Millisecond),
		MaxRetryAttempts:         n.MaxRetryAttempts,
		DefaultPort:              n.DefaultPort,
		DeviceOperationTimeoutMS: int64(n.DeviceOperationTimeout / time.Millisecond),
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	n.ConnectTimeout = time.Duration(a.ConnectTimeoutMS) * time.Millisecond
	n.CommandTimeout = time.Duration(a.CommandTimeoutMS) * time.Millisecond
	n.PatternMatchTimeout = time.Duration(a.PatternMatchTimeoutMS) * time.Millisecond
	n.CommandExecDelay = time.Duration(a.CommandExecDelayMS) * time.Millisecond
	n.RetryDelay = time.Duration(a.RetryDelayMS) * time.Millisecond
	n.MaxRetryAttempts = a.MaxRetryAttempts
	n.DefaultPort = a.DefaultPort
	n.DeviceOperationTimeout = time.Duration(a.DeviceOperationTimeoutMS) * time.Millisecond
	return nil
}

// UnmarshalJSON decodes the `_ms`-suffixed duration fields as milliseconds;
// see Network.UnmarshalJSON.
func (s *SSH) UnmarshalJSON(data []byte) error {
	type alias struct {
		BlockingTimeoutMS    int64 `json:"blocking_timeout_ms"`
		AuthTimeoutMS        int64 `json:"auth_timeout_ms"`
		KeepaliveIntervalMS  int64 `json:"keepalive_interval_ms"`
		ChannelOpenTimeoutMS int64 `json:"channel_open_timeout_ms"`
	}
	a := alias{
		BlockingTimeoutMS:    int64(s.BlockingTimeout / time.Millisecond),
		AuthTimeoutMS:        int64(s.AuthTimeout / time.Millisecond),
		KeepaliveIntervalMS:  int64(s.KeepaliveInterval / time.Millisecond),
		ChannelOpenTimeoutMS: int64(s.ChannelOpenTimeout / time.Millisecond),
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	s.BlockingTimeout = time.Duration(a.BlockingTimeoutMS) * time.Millisecond
	s.AuthTimeout = time.Duration(a.AuthTimeoutMS) * time.Millisecond
	s.KeepaliveInterval = time.Duration(a.KeepaliveIntervalMS) * time.Millisecond
	s.ChannelOpenTimeout = time.Duration(a.ChannelOpenTimeoutMS) * time.Millisecond
	return nil
}

// Buffer groups the buffer-pool tunables.
type Buffer struct {
	ReadSize       int  `json:"read_buffer_size" env:"BUFFER_READ_SIZE"`
	PoolSize       int  `json:"pool_size" env:"BUFFER_POOL_SIZE"`
	ReuseThreshold int  `json:"reuse_threshold" env:"BUFFER_REUSE_THRESHOLD"`
	AutoClear      bool `json:"auto_clear" env:"BUFFER_AUTO_CLEAR"`
}

// Concurrency groups the parallel execution manager's limits.
type Concurrency struct {
	MaxConnections      int           `json:"max_connections" env:"CONCURRENCY_MAX_CONNECTIONS"`
	PermitAcquireTimeout time.Duration `json:"permit_acquire_timeout_ms" env:"CONCURRENCY_PERMIT_ACQUIRE_TIMEOUT_MS"`
	IdleTimeout         time.Duration `json:"idle_timeout_ms" env:"CONCURRENCY_IDLE_TIMEOUT_MS"`
}

// UnmarshalJSON decodes the `_ms`-suffixed duration fields as milliseconds;
// see Network.UnmarshalJSON.
func (c *Concurrency) UnmarshalJSON(data []byte) error {
	type alias struct {
		MaxConnections         int   `json:"max_connections"`
		PermitAcquireTimeoutMS int64 `json:"permit_acquire_timeout_ms"`
		IdleTimeoutMS          int64 `json:"idle_timeout_ms"`
	}
	a := alias{
		MaxConnections:         c.MaxConnections,
		PermitAcquireTimeoutMS: int64(c.PermitAcquireTimeout / time.Millisecond),
		IdleTimeoutMS:          int64(c.IdleTimeout / time.Millisecond),
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	c.MaxConnections = a.MaxConnections
	c.PermitAcquireTimeout = time.Duration(a.PermitAcquireTimeoutMS) * time.Millisecond
	c.IdleTimeout = time.Duration(a.IdleTimeoutMS) * time.Millisecond
	return nil
}

// Logging groups session-transcript knobs (structured diagnostic logging
// itself is configured purely through internal/logging's own env vars).
type Logging struct {
	EnableSessionLog bool   `json:"enable_session_log" env:"LOGGING_ENABLE_SESSION_LOG"`
	SessionLogPath   string `json:"session_log_path" env:"LOGGING_SESSION_LOG_PATH"`
	LogBinaryData    bool   `json:"log_binary_data" env:"LOGGING_LOG_BINARY_DATA"`
}

// Settings is one immutable snapshot of the whole tree.
type Settings struct {
	Network     Network
	SSH         SSH
	Buffer      Buffer
	Concurrency Concurrency
	Logging     Logging
}

// Defaults returns the built-in baseline, the first layer of the
// defaults → file → env precedence chain.
func Defaults() Settings {
	return Settings{
		Network: Network{
			ConnectTimeout:         10 * time.Second,
			CommandTimeout:         10 * time.Second,
			PatternMatchTimeout:    10 * time.Second,
			CommandExecDelay:       100 * time.Millisecond,
			RetryDelay:             time.Second,
			MaxRetryAttempts:       0,
			DefaultPort:            22,
			DeviceOperationTimeout: 30 * time.Second,
		},
		SSH: SSH{
			BlockingTimeout:    10 * time.Second,
			AuthTimeout:        10 * time.Second,
			KeepaliveInterval:  30 * time.Second,
			ChannelOpenTimeout: 10 * time.Second,
		},
		Buffer: Buffer{
			ReadSize:       4096,
			PoolSize:       16,
			ReuseThreshold: 1 << 20,
			AutoClear:      false,
		},
		Concurrency: Concurrency{
			MaxConnections:       10,
			PermitAcquireTimeout: 30 * time.Second,
			IdleTimeout:          5 * time.Minute,
		},
		Logging: Logging{
			EnableSessionLog: false,
			LogBinaryData:    false,
		},
	}
}

// Load builds a Settings snapshot following defaults → configFile (if
// non-empty and readable) → environment overrides.
func Load(configFilePath string) (Settings, error) {
	s := Defaults()

	if configFilePath != "" {
		data, err := os.ReadFile(configFilePath)
		if err != nil {
			return s, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("parse config file: %w", err)
		}
	}

	if err := applyEnvOverrides(&s); err != nil {
		return s, fmt.Errorf("apply environment overrides: %w", err)
	}

	return s, nil
}

// applyEnvOverrides walks every leaf field tagged `env:"..."` and, if the
// corresponding NETDEV_-prefixed variable is set, parses and assigns it.
func applyEnvOverrides(s *Settings) error {
	v := reflect.ValueOf(s).Elem()
	for i := 0; i < v.NumField(); i++ {
		group := v.Field(i)
		for j := 0; j < group.NumField(); j++ {
			field := group.Field(j)
			tag := group.Type().Field(j).Tag.Get("env")
			if tag == "" {
				continue
			}
			raw, ok := os.LookupEnv(envPrefix + tag)
			if !ok {
				continue
			}
			if err := setField(field, raw); err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, tag, err)
			}
		}
	}
	return nil
}

func setField(field reflect.Value, raw string) error {
	switch field.Kind() {
	case reflect.Int, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			ms, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(int64(time.Duration(ms) * time.Millisecond))
			return nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.String:
		field.SetString(strings.TrimSpace(raw))
	default:
		return fmt.Errorf("unsupported field kind %s", field.Kind())
	}
	return nil
}

// Store publishes Settings snapshots atomically: Publish installs a new
// snapshot, Current returns whatever was last published. Subsequent reads
// observe the update; in-flight readers keep the snapshot they already
// captured, per spec §3's Settings lifecycle.
type Store struct {
	v atomic.Value
}

// NewStore creates a Store pre-populated with initial.
func NewStore(initial Settings) *Store {
	s := &Store{}
	s.v.Store(initial)
	return s
}

// Current returns the most recently published snapshot.
func (s *Store) Current() Settings {
	return s.v.Load().(Settings)
}

// Publish installs a new snapshot for subsequent readers.
func (s *Store) Publish(next Settings) {
	s.v.Store(next)
}
