// Package markethours gates the scanner daemon to NSE trading sessions so it
// does not burn provider quota scanning a closed market.
package markethours

import "time"

// IST is the Indian Standard Time location (UTC+5:30).
var IST = time.FixedZone("IST", 5*3600+30*60)

// NSE cash session in IST.
const (
	openHour    = 9
	openMinute  = 15
	closeHour   = 15
	closeMinute = 30
)

// holidays2026 lists NSE trading holidays (IST dates, "MM-DD").
var holidays2026 = map[string]bool{
	"01-26": true, // Republic Day
	"03-03": true, // Holi
	"04-03": true, // Good Friday
	"05-01": true, // Maharashtra Day
	"08-15": true, // Independence Day
	"10-02": true, // Gandhi Jayanti
	"11-09": true, // Diwali (Laxmi Pujan)
	"12-25": true, // Christmas
}

// IsHoliday reports whether t falls on an NSE trading holiday.
func IsHoliday(t time.Time) bool {
	return holidays2026[t.In(IST).Format("01-02")]
}

// IsTradingDay reports whether t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	ist := t.In(IST)
	wd := ist.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !IsHoliday(ist)
}

// IsMarketOpen reports whether t falls within NSE trading hours
// (9:15 AM - 3:30 PM IST, Mon-Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	ist := t.In(IST)
	hm := ist.Hour()*60 + ist.Minute()
	return hm >= openHour*60+openMinute && hm < closeHour*60+closeMinute
}

// NextOpen returns the next session open at or after t.
func NextOpen(t time.Time) time.Time {
	ist := t.In(IST)
	todayOpen := time.Date(ist.Year(), ist.Month(), ist.Day(), openHour, openMinute, 0, 0, IST)
	if ist.Before(todayOpen) && IsTradingDay(ist) {
		return todayOpen
	}
	d := ist.AddDate(0, 0, 1)
	for i := 0; i < 14; i++ {
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), openHour, openMinute, 0, 0, IST)
		}
		d = d.AddDate(0, 0, 1)
	}
	return todayOpen.AddDate(0, 0, 1)
}
