package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Jalali is a day in the Persian solar hijri calendar.
type Jalali struct {
	Year  int
	Month int
	Day   int
}

// Week starts on Saturday.
var weekdayNames = [7]string{
	"شنبه", "یکشنبه", "دوشنبه", "سه‌شنبه", "چهارشنبه", "پنج‌شنبه", "جمعه",
}

var weekdayShortNames = [7]string{"ش", "ی", "د", "س", "چ", "پ", "ج"}

// MonthNames returns the Persian month names, Farvardin first.
func MonthNames() []string {
	names := make([]string, 0, 12)
	for m := ptime.Farvardin; m <= ptime.Esfand; m++ {
		names = append(names, m.String())
	}
	return names
}

// WeekdayNames returns the Persian weekday names, Saturday first.
func WeekdayNames() []string { return weekdayNames[:] }

// WeekdayShortNames returns one-letter weekday names, Saturday first.
func WeekdayShortNames() []string { return weekdayShortNames[:] }

// MonthName returns the Persian name of month m (1-12).
func MonthName(m int) string {
	if m < 1 || m > 12 {
		return ""
	}
	return ptime.Month(m).String()
}

// WeekdayName returns the Persian name of a Go weekday.
func WeekdayName(w time.Weekday) string {
	return weekdayNames[(int(w)+1)%7]
}

// ToJalali converts a Gregorian date.
func ToJalali(d Date) Jalali {
	pt := ptime.New(d.Time(time.UTC))
	return Jalali{Year: pt.Year(), Month: int(pt.Month()), Day: pt.Day()}
}

// FromJalali converts a Jalali date back to Gregorian. j must be a valid day.
func FromJalali(j Jalali) Date {
	pt := ptime.Date(j.Year, ptime.Month(j.Month), j.Day, 12, 0, 0, 0, time.UTC)
	return DateOf(pt.Time())
}

// IsLeap reports whether the Jalali year has 30 days in Esfand.
func IsLeap(year int) bool {
	esfand29 := ptime.Date(year, ptime.Esfand, 29, 12, 0, 0, 0, time.UTC)
	next := ptime.New(esfand29.Time().AddDate(0, 0, 1))
	return next.Month() == ptime.Esfand
}

// DaysInMonth returns the length of a Jalali month.
func DaysInMonth(year, month int) int {
	switch {
	case month <= 6:
		return 31
	case month <= 11:
		return 30
	case IsLeap(year):
		return 30
	default:
		return 29
	}
}

// String formats j as YYYY/MM/DD with Latin digits.
func (j Jalali) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", j.Year, j.Month, j.Day)
}

// ParseJalali parses YYYY/MM/DD (or YYYY-MM-DD) in Persian or Latin digits.
func ParseJalali(s string) (Date, error) {
	s = strings.TrimSpace(LatinDigits(s))
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w %q: want YYYY/MM/DD", errInvalidDate, s)
	}

	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w %q: want YYYY/MM/DD", errInvalidDate, s)
		}
		n[i] = v
	}

	j := Jalali{Year: n[0], Month: n[1], Day: n[2]}
	if j.Year < 1 || j.Month < 1 || j.Month > 12 || j.Day < 1 || j.Day > DaysInMonth(j.Year, j.Month) {
		return Date{}, fmt.Errorf("%w %q: day out of range", errInvalidDate, s)
	}
	return FromJalali(j), nil
}

// jalaliYearLimit separates Jalali from Gregorian years in ParseInput. Jalali
// years stay well below it for any date a task can plausibly have.
const jalaliYearLimit = 1700

// ParseInput reads a date typed by a user: Jalali (1403/07/23) or Gregorian
// (2024-10-14), in Persian or Latin digits. The calendar is picked by the
// year.
func ParseInput(s string) (Date, error) {
	s = strings.TrimSpace(LatinDigits(s))
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '-' })
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w %q", errInvalidDate, s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return Date{}, fmt.Errorf("%w %q", errInvalidDate, s)
	}
	if year < jalaliYearLimit {
		return ParseJalali(s)
	}
	return Parse(strings.Join(parts, "-"))
}
