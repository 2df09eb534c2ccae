package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

var bangkok = time.FixedZone("ICT", 7*60*60)

// Layouts the backend has been seen to send. Timestamps without a zone are
// taken as local hospital time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		parsed, err := time.ParseInLocation(layout, s, bangkok)
		if err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// ThaiDate formats the date the way th-TH toLocaleDateString does, with the
// Buddhist era year: 15/1/2569.
func (t Timestamp) ThaiDate() string {
	if t.IsZero() {
		return "-"
	}
	local := t.In(bangkok)
	return fmt.Sprintf("%d/%d/%d", local.Day(), int(local.Month()), local.Year()+543)
}
