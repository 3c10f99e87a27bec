package calendar

import (
	"fmt"
	"strings"
	"time"
)

const (
	persianDigits = "۰۱۲۳۴۵۶۷۸۹"
	latinDigits   = "0123456789"
)

var (
	toPersian = buildReplacer(latinDigits, persianDigits)
	toLatin   = buildReplacer(persianDigits, latinDigits)
)

func buildReplacer(from, to string) *strings.Replacer {
	src, dst := []rune(from), []rune(to)
	pairs := make([]string, 0, 2*len(src))
	for i := range src {
		pairs = append(pairs, string(src[i]), string(dst[i]))
	}
	return strings.NewReplacer(pairs...)
}

// PersianDigits replaces Latin digits in s with Persian digits.
func PersianDigits(s string) string { return toPersian.Replace(s) }

// LatinDigits replaces Persian digits in s with Latin digits.
func LatinDigits(s string) string { return toLatin.Replace(s) }

// FormatJalali renders d as jYYYY/jMM/jDD in Persian digits.
// The zero Date renders as "".
func FormatJalali(d Date) string {
	if d.IsZero() {
		return ""
	}
	return PersianDigits(ToJalali(d).String())
}

// FormatJalaliLong renders d as "weekday، day month year", for example
// "چهارشنبه، ۲۲ مهر ۱۴۰۵".
func FormatJalaliLong(d Date) string {
	if d.IsZero() {
		return ""
	}
	j := ToJalali(d)
	weekday := WeekdayName(d.Time(nil).Weekday())
	return PersianDigits(fmt.Sprintf("%s، %d %s %d", weekday, j.Day, MonthName(j.Month), j.Year))
}

// Relative describes d relative to today: امروز, دیروز, فردا, or a day count
// in the past or future.
func Relative(d, today Date) string {
	if d.IsZero() {
		return ""
	}
	diff := today.DaysSince(d)
	switch {
	case diff == 0:
		return "امروز"
	case diff == 1:
		return "دیروز"
	case diff == -1:
		return "فردا"
	case diff > 0:
		return PersianDigits(fmt.Sprintf("%d روز پیش", diff))
	default:
		return PersianDigits(fmt.Sprintf("%d روز آینده", -diff))
	}
}

// FormatTime renders an HH:MM time-of-day in Persian digits.
func FormatTime(hhmm string) string {
	return PersianDigits(hhmm)
}

// Info describes the current day in both calendars.
type Info struct {
	PersianDate     string `json:"persian_date"`
	PersianDateLong string `json:"persian_date_long"`
	PersianTime     string `json:"persian_time"`
	GregorianDate   string `json:"gregorian_date"`
	DayName         string `json:"day_name"`
	MonthName       string `json:"month_name"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	Day             int    `json:"day"`
}

// InfoAt returns the Info for now observed in loc.
func InfoAt(now time.Time, loc *time.Location) Info {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	d := DateOf(local)
	j := ToJalali(d)
	return Info{
		PersianDate:     j.String(),
		PersianDateLong: FormatJalaliLong(d),
		PersianTime:     local.Format("15:04"),
		GregorianDate:   d.String(),
		DayName:         WeekdayName(local.Weekday()),
		MonthName:       MonthName(j.Month),
		Year:            j.Year,
		Month:           j.Month,
		Day:             j.Day,
	}
}
