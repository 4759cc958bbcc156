package device

// SessionState is the session-state triple from spec §3/§4.6, held by
// BaseConnection.
// Initial value is the zero value: {false,false,false}.
type SessionState struct {
	Connected   bool
	Privileged  bool
	Configuring bool
}
