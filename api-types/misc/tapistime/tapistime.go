// Package tapistime handles timestamps in TAPIS responses.
//
// TAPIS writes UTC timestamps with or without fraction of second,
// like "2024-09-30T14:00:00.123456Z" or "2024-09-30T14:00:00Z".
package tapistime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Format used to stringify Time.
const Format = "2006-01-02T15:04:05.000000Z07:00"

var zoned = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
}

// TAPIS sometimes omits time offset. Such timestamps are UTC.
var unzoned = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Time is a timestamp in TAPIS responses.
type Time time.Time

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Equal(other Time) bool {
	return t.Time().Equal(other.Time())
}

func (t Time) String() string {
	return t.Time().UTC().Format(Format)
}

// Parse a TAPIS timestamp.
func Parse(s string) (time.Time, error) {
	for _, f := range zoned {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, f := range unzoned {
		if t, err := time.ParseInLocation(f, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("tapistime: cannot parse %q", s)
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts null and empty string as zero value.
func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Time{}
		return nil
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}
