package memory

import "time"

// Clock returns the current time. System holds one in its Clock field
// (New sets RealClock); replacing it with a fixed clock freezes time and
// keeps snapshot exports byte-identical across runs.
type Clock func() time.Time

// RealClock is the default Clock, backed by time.Now.
func RealClock() time.Time { return time.Now() }
