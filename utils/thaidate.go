package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BEOffset converts a Gregorian year to the Buddhist Era.
const BEOffset = 543

var thaiMonths = [12]string{
	"มกราคม", "กุมภาพันธ์", "มีนาคม", "เมษายน", "พฤษภาคม", "มิถุนายน",
	"กรกฎาคม", "สิงหาคม", "กันยายน", "ตุลาคม", "พฤศจิกายน", "ธันวาคม",
}

var thaiMonthIndex = func() map[string]time.Month {
	m := make(map[string]time.Month, len(thaiMonths))
	for i, name := range thaiMonths {
		m[name] = time.Month(i + 1)
	}
	return m
}()

// BEYear returns the Buddhist Era year of t.
func BEYear(t time.Time) int {
	return t.Year() + BEOffset
}

// ThaiDate formats t as "2 มกราคม 2568". The zero time formats as "".
func ThaiDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d %s %d", t.Day(), thaiMonths[t.Month()-1], BEYear(t))
}

// ShortBEDate formats t as "02/01/2568".
func ShortBEDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%02d/%02d/%d", t.Day(), int(t.Month()), BEYear(t))
}

// ISODate formats t as YYYY-MM-DD, or "" for the zero time.
func ISODate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// ParseISODate parses a strict YYYY-MM-DD value as a UTC date.
func ParseISODate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseDate accepts the date shapes the office forms send: YYYY-MM-DD, DD/MM/YYYY, MM/DD/YYYY and
// "2 มกราคม 2568" (BE years above 2400 are converted back to AD).
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.DateOnly, "2/1/2006", "1/2/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	parts := strings.Fields(s)
	if len(parts) != 3 {
		return time.Time{}, false
	}
	month, ok := thaiMonthIndex[parts[1]]
	if !ok {
		return time.Time{}, false
	}
	day, err1 := strconv.Atoi(parts[0])
	year, err2 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil {
		return time.Time{}, false
	}
	if year > 2400 {
		year -= BEOffset
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// DateOnly truncates t to midnight UTC of its calendar day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
