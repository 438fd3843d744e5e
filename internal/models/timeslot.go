package models

import (
	"encoding/json"
	"fmt"
)

// TimeSlot is a part of the day a participant can be available for.
type TimeSlot string

const (
	SlotBreakfast TimeSlot = "breakfast"
	SlotLunch     TimeSlot = "lunch"
	SlotDinner    TimeSlot = "dinner"
	SlotAllDay    TimeSlot = "allday"
)

// AllTimeSlots lists the enumeration in canonical display order.
var AllTimeSlots = []TimeSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotAllDay}

var slotLabels = map[TimeSlot]string{
	SlotBreakfast: "Breakfast",
	SlotLunch:     "Lunch",
	SlotDinner:    "Dinner",
	SlotAllDay:    "All Day",
}

var slotEmoji = map[TimeSlot]string{
	SlotBreakfast: "🌅",
	SlotLunch:     "☀️",
	SlotDinner:    "🌙",
	SlotAllDay:    "🎉",
}

var slotHours = map[TimeSlot]string{
	SlotBreakfast: "~8-11am",
	SlotLunch:     "~11am-2pm",
	SlotDinner:    "~6-9pm",
	SlotAllDay:    "The whole day!",
}

// Valid reports whether s belongs to the enumeration.
func (s TimeSlot) Valid() bool {
	_, ok := slotLabels[s]
	return ok
}

// Label is the human readable name, e.g. "All Day".
func (s TimeSlot) Label() string {
	if label, ok := slotLabels[s]; ok {
		return label
	}
	return string(s)
}

// Emoji is the icon shown next to the label.
func (s TimeSlot) Emoji() string {
	return slotEmoji[s]
}

// Hours is the rough time range the slot stands for.
func (s TimeSlot) Hours() string {
	return slotHours[s]
}

// Display renders "<emoji> <label>".
func (s TimeSlot) Display() string {
	if e := s.Emoji(); e != "" {
		return e + " " + s.Label()
	}
	return s.Label()
}

func (s *TimeSlot) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	slot := TimeSlot(raw)
	if !slot.Valid() {
		return fmt.Errorf("unknown time slot %q", raw)
	}
	*s = slot
	return nil
}

// SlotSet is a set over the closed TimeSlot enumeration.
// The zero value is the empty set.
type SlotSet uint8

func slotBit(s TimeSlot) SlotSet {
	for i, slot := range AllTimeSlots {
		if slot == s {
			return 1 << uint(i)
		}
	}
	return 0
}

// NewSlotSet builds a set by selecting each slot in order, so the all-day
// exclusivity rule applies exactly as if a user had clicked them one by one.
func NewSlotSet(slots ...TimeSlot) SlotSet {
	var set SlotSet
	for _, s := range slots {
		set = set.Select(s)
	}
	return set
}

// Has reports membership.
func (set SlotSet) Has(s TimeSlot) bool {
	bit := slotBit(s)
	return bit != 0 && set&bit != 0
}

// Empty reports whether no slot is selected.
func (set SlotSet) Empty() bool {
	return set == 0
}

// Select adds a slot. All day replaces everything; any other slot clears all day first.
func (set SlotSet) Select(s TimeSlot) SlotSet {
	bit := slotBit(s)
	if bit == 0 {
		return set
	}
	if s == SlotAllDay {
		return bit
	}
	return (set &^ slotBit(SlotAllDay)) | bit
}

// Deselect removes a slot.
func (set SlotSet) Deselect(s TimeSlot) SlotSet {
	return set &^ slotBit(s)
}

// Toggle flips a slot, honouring the same exclusivity as Select.
func (set SlotSet) Toggle(s TimeSlot) SlotSet {
	if set.Has(s) {
		return set.Deselect(s)
	}
	return set.Select(s)
}

// Slots returns the members in canonical order. Never nil.
func (set SlotSet) Slots() []TimeSlot {
	out := make([]TimeSlot, 0, len(AllTimeSlots))
	for _, s := range AllTimeSlots {
		if set.Has(s) {
			out = append(out, s)
		}
	}
	return out
}

// SubsetOf reports whether every member of set is also in other.
func (set SlotSet) SubsetOf(other SlotSet) bool {
	return set&^other == 0
}

// UnionOf collects slots without applying the exclusivity rule. Used for an
// event's allowed slots, where all day may coexist with the others.
func UnionOf(slots []TimeSlot) SlotSet {
	var set SlotSet
	for _, s := range slots {
		set |= slotBit(s)
	}
	return set
}
