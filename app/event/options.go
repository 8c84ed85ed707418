package event

import (
	"time"

	"github.com/ehime-live/live-schedule/app/venue"
)

// Options are the choices offered by the filter form.
type Options struct {
	Years  []int        `json:"years"`
	Months []int        `json:"months"`
	Areas  []venue.Area `json:"areas"`
	Venues []string     `json:"venues"`
}

// DeriveOptions computes the filter choices from the stored date range
// (earliest and latest event dates, YYYY-MM-DD) and the current filter.
// Months are only offered once a year is selected and are clipped to
// the range.
func DeriveOptions(minDate, maxDate string, f Filter) Options {
	opts := Options{
		Years:  []int{},
		Months: []int{},
		Areas:  venue.Areas(),
	}

	first, errFirst := time.Parse(time.DateOnly, minDate)
	last, errLast := time.Parse(time.DateOnly, maxDate)
	if errFirst == nil && errLast == nil && !last.Before(first) {
		for y := first.Year(); y <= last.Year(); y++ {
			opts.Years = append(opts.Years, y)
		}

		if f.Year >= first.Year() && f.Year <= last.Year() {
			from, to := 1, 12
			if f.Year == first.Year() {
				from = int(first.Month())
			}
			if f.Year == last.Year() {
				to = int(last.Month())
			}
			for m := from; m <= to; m++ {
				opts.Months = append(opts.Months, m)
			}
		}
	}

	if f.Area != "" {
		venues, err := venue.VenuesIn(f.Area)
		if err == nil {
			opts.Venues = venues
		}
	} else {
		opts.Venues = venue.AllVenues()
	}
	if opts.Venues == nil {
		opts.Venues = []string{}
	}

	return opts
}

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
