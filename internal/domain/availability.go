package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SlotDuration = time.Hour

	DefaultMaxSearchWindowDays = 5

	// DefaultMaxSlotsPerPublish is one month of hourly slots.
	DefaultMaxSlotsPerPublish = 31 * 24
)

// AvailabilityPeriod is a caller supplied block of free time. Its bounds are
// wall-clock values without an offset.
type AvailabilityPeriod struct {
	Start time.Time
	End   time.Time
}

// InUTC reinterprets the wall-clock fields of the period as UTC, discarding
// whatever location the values carried.
func (p AvailabilityPeriod) InUTC() AvailabilityPeriod {
	return AvailabilityPeriod{Start: wallClockUTC(p.Start), End: wallClockUTC(p.End)}
}

func wallClockUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)
}

type SearchWindow struct {
	StartingFrom time.Time
	EndingAt     time.Time
}

// ValidateSlot checks that both bounds are present, fall on the hour and are
// ordered. Equal bounds are accepted.
func ValidateSlot(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return &InvalidTimeError{msg: "Start / End should not be null"}
	}
	if start.Minute() != 0 || end.Minute() != 0 {
		return NewValidationError("Agenda Availability Start / End minute cannot be different then 00")
	}
	if start.After(end) {
		return NewValidationError("Agenda Availability End cannot be later then Agenda Availability Start")
	}
	return nil
}

// ValidateWindow rejects windows with a missing bound or a span longer than
// maxDays days. A non-positive maxDays falls back to the default ceiling.
// The ceiling is an exact duration of maxDays*24h, not a count of whole days.
func ValidateWindow(w SearchWindow, maxDays int) error {
	if w.StartingFrom.IsZero() || w.EndingAt.IsZero() {
		return &InvalidTimeError{msg: "Start / End should not be null"}
	}
	if maxDays <= 0 {
		maxDays = DefaultMaxSearchWindowDays
	}
	if w.EndingAt.Sub(w.StartingFrom) > time.Duration(maxDays)*24*time.Hour {
		return validationErrorf("Search period shouldn't be greater than %d days", maxDays)
	}
	return nil
}

// ExpandPeriod splits a period into consecutive one hour slots starting at
// period.Start. The last slot is emitted in full even when it runs past
// period.End.
func ExpandPeriod(ownerID uuid.UUID, period AvailabilityPeriod) []Slot {
	if !period.Start.Before(period.End) {
		return nil
	}
	var out []Slot
	for cursor := period.Start; cursor.Before(period.End); cursor = cursor.Add(SlotDuration) {
		out = append(out, Slot{
			OwnerID:   ownerID,
			StartTime: cursor,
			EndTime:   cursor.Add(SlotDuration),
		})
	}
	return out
}

// CountSlots reports how many slots ExpandPeriod would emit for the period.
// It works on Unix seconds so periods longer than a time.Duration can hold
// do not overflow.
func CountSlots(period AvailabilityPeriod) int64 {
	if !period.Start.Before(period.End) {
		return 0
	}
	secs := period.End.Unix() - period.Start.Unix()
	if period.End.Nanosecond() > period.Start.Nanosecond() {
		secs++
	}
	step := int64(SlotDuration / time.Second)
	return (secs + step - 1) / step
}

// ValidateSlotCount rejects a batch of periods that would expand into more
// than maxSlots slots. A non-positive maxSlots falls back to the default.
func ValidateSlotCount(periods []AvailabilityPeriod, maxSlots int) error {
	if maxSlots <= 0 {
		maxSlots = DefaultMaxSlotsPerPublish
	}
	var total int64
	for _, p := range periods {
		total += CountSlots(p)
		if total > int64(maxSlots) {
			return validationErrorf("Agenda Availability cannot exceed %d slots per request", maxSlots)
		}
	}
	return nil
}

// ExpandPeriods expands each period in order and concatenates the results.
// Overlapping periods yield duplicate slots.
func ExpandPeriods(ownerID uuid.UUID, periods []AvailabilityPeriod) []Slot {
	var out []Slot
	for _, p := range periods {
		out = append(out, ExpandPeriod(ownerID, p)...)
	}
	return out
}
