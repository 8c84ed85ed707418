package event

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ehime-live/live-schedule/app/database"
	"github.com/ehime-live/live-schedule/app/venue"
)

var ErrInvalidFilter = errors.New("invalid filter")

// Filter is the table view selection. Zero values mean "all".
type Filter struct {
	Year      int
	Month     int
	Area      venue.Area
	Venue     string
	SortField database.SortField
	Ascending bool
}

func DefaultFilter() Filter {
	return Filter{SortField: database.SortByDate, Ascending: true}
}

// ParseFilter reads a filter from query or form values
// (year, month, area, venue, sort, order).
func ParseFilter(values url.Values) (Filter, error) {
	f := DefaultFilter()

	if s := strings.TrimSpace(values.Get("year")); s != "" {
		year, err := strconv.Atoi(s)
		if err != nil || year < 1 || year > 9999 {
			return f, fmt.Errorf("%w: year '%s'", ErrInvalidFilter, s)
		}
		f.Year = year
	}

	if s := strings.TrimSpace(values.Get("month")); s != "" {
		month, err := strconv.Atoi(s)
		if err != nil || month < 1 || month > 12 {
			return f, fmt.Errorf("%w: month '%s'", ErrInvalidFilter, s)
		}
		if f.Year == 0 {
			return f, fmt.Errorf("%w: month requires year", ErrInvalidFilter)
		}
		f.Month = month
	}

	if s := strings.TrimSpace(values.Get("area")); s != "" {
		area, err := venue.ParseArea(s)
		if err != nil {
			return f, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
		f.Area = area
	}

	f.Venue = strings.TrimSpace(values.Get("venue"))

	switch s := strings.TrimSpace(values.Get("sort")); s {
	case "", string(database.SortByDate):
		f.SortField = database.SortByDate
	case string(database.SortByVenue):
		f.SortField = database.SortByVenue
	default:
		return f, fmt.Errorf("%w: sort field '%s'", ErrInvalidFilter, s)
	}

	switch s := strings.ToLower(strings.TrimSpace(values.Get("order"))); s {
	case "", "asc":
		f.Ascending = true
	case "desc":
		f.Ascending = false
	default:
		return f, fmt.Errorf("%w: order '%s'", ErrInvalidFilter, s)
	}

	return f, nil
}

// Values encodes the filter back into query values, omitting defaults.
func (f Filter) Values() url.Values {
	values := url.Values{}
	if f.Year > 0 {
		values.Set("year", strconv.Itoa(f.Year))
	}
	if f.Month > 0 {
		values.Set("month", strconv.Itoa(f.Month))
	}
	if f.Area != "" {
		values.Set("area", string(f.Area))
	}
	if f.Venue != "" {
		values.Set("venue", f.Venue)
	}
	if f.SortField == database.SortByVenue {
		values.Set("sort", string(database.SortByVenue))
	}
	if !f.Ascending {
		values.Set("order", "desc")
	}
	return values
}

// ToggleSort returns the filter for a click on a sort column: the same
// field flips direction, a new field starts ascending.
func (f Filter) ToggleSort(field database.SortField) Filter {
	if f.SortField == field {
		f.Ascending = !f.Ascending
	} else {
		f.SortField = field
		f.Ascending = true
	}
	return f
}

// Query builds the repository query for the filter. The boolean is false
// when the filter cannot match anything (an area without venues), in
// which case storage need not be queried.
func (f Filter) Query() (database.EventQuery, bool) {
	query := database.EventQuery{
		SortField: f.SortField,
		Ascending: f.Ascending,
	}
	if query.SortField == "" {
		query.SortField = database.SortByDate
	}

	switch {
	case f.Year > 0 && f.Month > 0:
		query.DateFrom = fmt.Sprintf("%04d-%02d-01", f.Year, f.Month)
		query.DateTo = fmt.Sprintf("%04d-%02d-%02d", f.Year, f.Month, daysIn(f.Year, f.Month))
	case f.Year > 0:
		query.DateFrom = fmt.Sprintf("%04d-01-01", f.Year)
		query.DateTo = fmt.Sprintf("%04d-12-31", f.Year)
	}

	switch {
	case f.Venue != "":
		query.Venues = []string{f.Venue}
	case f.Area != "":
		venues, err := venue.VenuesIn(f.Area)
		if err != nil || len(venues) == 0 {
			return query, false
		}
		query.Venues = venues
	}

	return query, true
}
