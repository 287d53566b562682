// Package date provides a calendar date column rendered as YYYY-MM-DD.
package date

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
)

const Layout = "2006-01-02"

// Date wraps datatypes.Date so the column keeps its DATE type while JSON
// uses the plain calendar form instead of a full timestamp.
type Date struct {
	datatypes.Date
}

func New(year int, month time.Month, day int) Date {
	return Date{datatypes.Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))}
}

func FromTime(t time.Time) Date {
	return New(t.Year(), t.Month(), t.Day())
}

func Parse(s string) (Date, error) {
	t, err := time.Parse(Layout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, err
	}
	return FromTime(t), nil
}

func (d Date) Time() time.Time { return time.Time(d.Date) }

func (d Date) IsZero() bool { return d.Time().IsZero() }

func (d Date) String() string { return d.Time().Format(Layout) }

func (d Date) Before(other Date) bool { return d.Time().Before(other.Time()) }

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var raw *string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil || *raw == "" {
		*d = Date{}
		return nil
	}
	value := *raw
	if len(value) > len(Layout) {
		value = value[:len(Layout)]
	}
	parsed, err := Parse(value)
	if err != nil {
		return fmt.Errorf("invalid date %q", *raw)
	}
	*d = parsed
	return nil
}

// Scan accepts the textual dates some drivers return besides time.Time.
func (d *Date) Scan(value any) error {
	switch v := value.(type) {
	case string:
		return d.scanText(v)
	case []byte:
		return d.scanText(string(v))
	default:
		if err := d.Date.Scan(value); err != nil {
			return err
		}
		*d = FromTime(d.Time())
		return nil
	}
}

func (d *Date) scanText(v string) error {
	if len(v) > len(Layout) {
		v = v[:len(Layout)]
	}
	parsed, err := Parse(v)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) Value() (driver.Value, error) {
	return d.Date.Value()
}
