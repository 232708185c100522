package schedule

import "github.com/cockroachdb/errors"

// ErrAlreadyRunning is returned by Loop.Run when another Run is active.
var ErrAlreadyRunning = errors.New("schedule: loop is already running")
