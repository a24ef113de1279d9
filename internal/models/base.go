package models

import "time"

// BaseModel contains the bookkeeping columns shared by persisted records
type BaseModel struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DateLayout is the key format of a snapshot history.
const DateLayout = "2006-01-02"

// DayKey formats t as a history key in UTC.
func DayKey(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDayKey parses a history key back into a UTC midnight time.
func ParseDayKey(key string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, key, time.UTC)
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
