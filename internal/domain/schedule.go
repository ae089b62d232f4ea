package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Default schedule: first stop at 09:00, each subsequent stop 30 minutes
// later, wrapping past midnight (index 30 lands on "00:00" next day).
const (
	scheduleBaseMinutes = 9 * 60
	scheduleStepMinutes = 30
	minutesPerDay       = 24 * 60
)

// DeriveTime returns the estimated time-of-arrival for the stop at the given
// position. A well-formed explicit time ("H:MM" or "HH:MM") wins and is
// returned zero-padded; anything else falls back to the positional default.
func DeriveTime(index int, explicit string) string {
	if hour, minute, ok := parseClock(explicit); ok {
		return fmt.Sprintf("%02d:%02d", hour, minute)
	}

	total := (scheduleBaseMinutes + scheduleStepMinutes*index) % minutesPerDay
	if total < 0 {
		total += minutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func parseClock(s string) (hour, minute int, ok bool) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	if len(parts[0]) < 1 || len(parts[0]) > 2 || len(parts[1]) != 2 {
		return 0, 0, false
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, false
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, false
	}

	return hour, minute, true
}
