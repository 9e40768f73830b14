package presence

import "sync"

// ChannelSensor is a sensor fed by Set, used by the interactive CLI and
// by tests.
type ChannelSensor struct {
	events chan bool
	once   sync.Once
}

// NewChannelSensor creates a sensor with the given buffer.
func NewChannelSensor(buffer int) *ChannelSensor {
	return &ChannelSensor{events: make(chan bool, buffer)}
}

// Events implements the runner's PresenceSensor.
func (s *ChannelSensor) Events() <-chan bool { return s.events }

// Set sends one signal. It blocks when the buffer is full.
func (s *ChannelSensor) Set(present bool) { s.events <- present }

// Close ends the signal stream.
func (s *ChannelSensor) Close() { s.once.Do(func() { close(s.events) }) }
