package options

import "fmt"

// Trigger is the execution event that causes a frame capture.
type Trigger string

const (
	// TriggerLastFrame captures after the final frame. This is the default.
	TriggerLastFrame Trigger = "last_frame"

	// TriggerFsCommand captures on an explicit command from the running media.
	// It is the manual trigger and may be shared by several comparisons.
	TriggerFsCommand Trigger = "fs_command"
)

// Triggers lists every recognized trigger.
var Triggers = []Trigger{TriggerLastFrame, TriggerFsCommand}

// IsManual reports whether the trigger is exempt from the uniqueness rule.
func (t Trigger) IsManual() bool {
	return t == TriggerFsCommand
}

// OrDefault returns TriggerLastFrame for the zero value.
func (t Trigger) OrDefault() Trigger {
	if t == "" {
		return TriggerLastFrame
	}
	return t
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Trigger) UnmarshalText(text []byte) error {
	for _, known := range Triggers {
		if string(text) == string(known) {
			*t = known
			return nil
		}
	}
	return fmt.Errorf("unknown trigger %q: must be one of %v", text, Triggers)
}

// MarshalText implements encoding.TextMarshaler.
func (t Trigger) MarshalText() ([]byte, error) {
	return []byte(t.OrDefault()), nil
}
