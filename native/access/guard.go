package access

import "errors"

// ErrPaused is returned by pause-gated entry points while the engine is
// paused.
var ErrPaused = errors.New("access: paused")

// PauseView exposes the paused flag to modules that gate entry points on it.
type PauseView interface {
	Paused() bool
}

// Guard returns ErrPaused when the supplied view reports a paused state. A nil
// view is treated as unpaused so optional wiring stays safe.
func Guard(p PauseView) error {
	if p == nil {
		return nil
	}
	if p.Paused() {
		return ErrPaused
	}
	return nil
}
