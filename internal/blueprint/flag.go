// Package blueprint holds the blueprint presentation-mode flag.
// Every transition is logged exactly once.
package blueprint

// Sink receives operator-visible log lines.
type Sink interface {
	Append(message string)
}

const (
	enabledMessage  = "System state changed: Blueprint Mode ENABLED"
	disabledMessage = "System state changed: Blueprint Mode DISABLED"
)

// Message returns the transition log line for the given state.
func Message(enabled bool) string {
	if enabled {
		return enabledMessage
	}
	return disabledMessage
}

// Flag is the mode switch. Not safe for concurrent use; callers serialize.
type Flag struct {
	enabled bool
	sink    Sink
}

// New returns a disabled flag.
func New(sink Sink) *Flag {
	return &Flag{sink: sink}
}

// Enabled reports the current mode.
func (f *Flag) Enabled() bool { return f.enabled }

// Toggle flips the mode, logs the transition and returns the new value.
func (f *Flag) Toggle() bool {
	f.enabled = !f.enabled
	f.sink.Append(Message(f.enabled))
	return f.enabled
}

// Announce logs the current mode without changing it. Used when the hosting
// surface mounts so the initial state is visible in the log.
func (f *Flag) Announce() {
	f.sink.Append(Message(f.enabled))
}
