package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// DateLayout is the calendar date format used for host dates and availability keys.
const DateLayout = "2006-01-02"

// DateList is an ordered set of calendar dates stored as a jsonb array.
type DateList []string

// SlotList is a list of time slots stored as a jsonb array.
type SlotList []TimeSlot

// Availability maps a host date to the slots selected on it. A missing key
// and an empty list both mean "not available".
type Availability map[string][]TimeSlot

// Sorted returns a deduplicated, ascending copy. YYYY-MM-DD sorts lexically in calendar order.
func (d DateList) Sorted() []string {
	seen := make(map[string]struct{}, len(d))
	out := make([]string, 0, len(d))
	for _, date := range d {
		if _, ok := seen[date]; ok {
			continue
		}
		seen[date] = struct{}{}
		out = append(out, date)
	}
	sort.Strings(out)
	return out
}

// Contains reports whether date is one of the listed dates.
func (d DateList) Contains(date string) bool {
	for _, existing := range d {
		if existing == date {
			return true
		}
	}
	return false
}

// Set converts the list into a SlotSet without the all-day exclusivity.
func (s SlotList) Set() SlotSet {
	return UnionOf(s)
}

// AvailableOn reports whether at least one slot is recorded for date.
func (a Availability) AvailableOn(date string) bool {
	return len(a[date]) > 0
}

func (d DateList) Value() (driver.Value, error) { return encodeJSON([]string(d), []string{}) }

func (d *DateList) Scan(src interface{}) error {
	var out []string
	if err := decodeJSONField(src, &out); err != nil {
		return fmt.Errorf("scan host dates: %w", err)
	}
	*d = out
	return nil
}

func (s SlotList) Value() (driver.Value, error) { return encodeJSON([]TimeSlot(s), []TimeSlot{}) }

func (s *SlotList) Scan(src interface{}) error {
	var out []TimeSlot
	if err := decodeJSONField(src, &out); err != nil {
		return fmt.Errorf("scan time slots: %w", err)
	}
	*s = out
	return nil
}

func (a Availability) Value() (driver.Value, error) {
	return encodeJSON(map[string][]TimeSlot(a), map[string][]TimeSlot{})
}

func (a *Availability) Scan(src interface{}) error {
	out := map[string][]TimeSlot{}
	if err := decodeJSONField(src, &out); err != nil {
		return fmt.Errorf("scan availability: %w", err)
	}
	*a = out
	return nil
}

func encodeJSON(v interface{}, empty interface{}) (driver.Value, error) {
	if isNil(v) {
		v = empty
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func isNil(v interface{}) bool {
	switch t := v.(type) {
	case []string:
		return t == nil
	case []TimeSlot:
		return t == nil
	case map[string][]TimeSlot:
		return t == nil
	}
	return v == nil
}

// decodeJSONField accepts a jsonb value as []byte or string. Rows written by
// clients that stringified the payload first arrive as a JSON string holding
// the encoded document; those are unwrapped once before decoding.
func decodeJSONField(src interface{}, dest interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported source type %T", src)
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}

	if raw[0] == '"' {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return err
		}
		raw = []byte(inner)
	}

	return json.Unmarshal(raw, dest)
}
