package core

import (
	"strings"
	"time"
)

const (
	DateLayout = "02/01/2006"
	isoLayout  = "2006-01-02"
)

// DateToISO converts DD/MM/YYYY into YYYY-MM-DD. Input that does not split
// into three slash separated segments yields an empty string.
func DateToISO(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	parts := strings.Split(value, "/")
	if len(parts) != 3 {
		return ""
	}
	day, month, year := parts[0], parts[1], parts[2]
	if day == "" || month == "" || year == "" {
		return ""
	}
	return year + "-" + padLeft(month, 2) + "-" + padLeft(day, 2)
}

// DateFromISO converts YYYY-MM-DD (optionally followed by a time part) into
// DD/MM/YYYY. Empty or malformed input yields an empty string.
func DateFromISO(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if idx := strings.IndexAny(value, "T "); idx >= 0 {
		value = value[:idx]
	}
	parts := strings.Split(value, "-")
	if len(parts) != 3 {
		return ""
	}
	year, month, day := parts[0], parts[1], parts[2]
	if day == "" || month == "" || year == "" {
		return ""
	}
	return padLeft(day, 2) + "/" + padLeft(month, 2) + "/" + year
}

// ParseDate parses a DD/MM/YYYY calendar date.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(value), time.UTC)
}

// FormatDate renders t as DD/MM/YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DayNumber maps a DD/MM/YYYY date onto an ordinal day count so closing
// dates compare chronologically. ok is false when value is not a date.
func DayNumber(value string) (int64, bool) {
	t, err := ParseDate(value)
	if err != nil {
		return 0, false
	}
	return t.Unix() / 86400, true
}

func padLeft(value string, width int) string {
	if len(value) >= width {
		return value
	}
	return strings.Repeat("0", width-len(value)) + value
}
