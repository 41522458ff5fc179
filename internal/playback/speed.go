package playback

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	MinSpeed     = 1
	MaxSpeed     = 100
	DefaultSpeed = 60

	// minRate is the slowest reveal rate in characters per second.
	minRate = 2
	// minInterval bounds the tick frequency.
	minInterval = 16 * time.Millisecond

	// SettleDelay is how long a finished run stays Running before it
	// drops back to Idle.
	SettleDelay = 200 * time.Millisecond
)

// ClampSpeed bounds speed to [MinSpeed, MaxSpeed].
func ClampSpeed(speed int) int {
	if speed < MinSpeed {
		return MinSpeed
	}
	if speed > MaxSpeed {
		return MaxSpeed
	}
	return speed
}

// Rate returns the reveal rate in characters per second for speed.
func Rate(speed int) int {
	rate := int(math.Round(float64(ClampSpeed(speed)) * 0.8))
	return max(minRate, rate)
}

// Interval returns the tick interval for speed.
func Interval(speed int) time.Duration {
	ms := int(math.Round(1000 / float64(Rate(speed))))
	return max(minInterval, time.Duration(ms)*time.Millisecond)
}

// ParseSpeed interprets a speed typed into a dialog. Empty input means the
// dialog was cancelled (ok=false). Input that is not a number, or is below
// MinSpeed, becomes MinSpeed; anything above MaxSpeed becomes MaxSpeed.
func ParseSpeed(input string) (speed int, ok bool) {
	if input == "" {
		return 0, false
	}
	digits := leadingInt(strings.TrimSpace(input))
	n, err := strconv.Atoi(digits)
	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(digits, "-") {
			return MinSpeed, true
		}
		return MaxSpeed, true
	}
	if err != nil {
		return MinSpeed, true
	}
	return ClampSpeed(n), true
}

// leadingInt returns the optional sign and digits at the start of s, so
// "60fps" reads as 60.
func leadingInt(s string) string {
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
