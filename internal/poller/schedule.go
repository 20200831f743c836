package poller

import "time"

// DefaultWakeSecond is the second-of-minute at which cycles start.
const DefaultWakeSecond = 59

// NextWakeDelay returns the delay from now until the next wall-clock instant
// whose second-of-minute equals offset. A result of zero is never returned:
// at exactly the target second the next minute's is chosen.
func NextWakeDelay(now time.Time, offset int) time.Duration {
	delay := time.Duration(offset-now.Second()) * time.Second
	if delay <= 0 {
		delay += time.Minute
	}
	return delay - time.Duration(now.Nanosecond())
}
