package models

import "time"

// SlotPlaceholder fills grid cells that have no stored subject.
const SlotPlaceholder = "-"

// TeachingDays are the canonical rendered weekdays, in grid order.
var TeachingDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri"}

// StorableDays are the days accepted for storage. Sat/Sun slots persist but
// never appear in the rendered grid.
var StorableDays = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// CanonicalTimeSlots are the four fixed slot labels, in grid order.
var CanonicalTimeSlots = []string{"9-10 AM", "10-11 AM", "11-1 PM", "2-4 PM"}

// IsTeachingDay reports whether day is part of the rendered Mon-Fri set.
func IsTeachingDay(day string) bool {
	for _, d := range TeachingDays {
		if d == day {
			return true
		}
	}
	return false
}

// IsStorableDay reports whether day may be persisted at all.
func IsStorableDay(day string) bool {
	for _, d := range StorableDays {
		if d == day {
			return true
		}
	}
	return false
}

// ScheduleSlot is the sparse persisted form: at most one subject per
// (student, day, time slot).
type ScheduleSlot struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_ref" json:"-"`
	Day       string    `db:"day" json:"day"`
	TimeSlot  string    `db:"time_slot" json:"timeSlot"`
	Subject   string    `db:"subject" json:"subject"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// WeeklyScheduleGrid is the dense derived form: always 5 days x 4 slots,
// placeholder-filled. Consumers never special-case absent cells.
type WeeklyScheduleGrid map[string]map[string]string
