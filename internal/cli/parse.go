package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/alexanderramin/shiftlog/internal/geo"
)

const (
	dateLayout  = "2006-01-02"
	monthLayout = "2006-01"
)

// dayFlag resolves a --date value in the app's zone, defaulting to today.
func (a *App) dayFlag(value string) (time.Time, error) {
	if value == "" {
		y, m, d := a.now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, a.location()), nil
	}
	t, err := time.ParseInLocation(dateLayout, value, a.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD)", value)
	}
	return t, nil
}

// monthFlag resolves a --month value to the first of that month, defaulting
// to the current month.
func (a *App) monthFlag(value string) (time.Time, error) {
	if value == "" {
		y, m, _ := a.now().Date()
		return time.Date(y, m, 1, 0, 0, 0, 0, a.location()), nil
	}
	t, err := time.ParseInLocation(monthLayout, value, a.location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month %q (want YYYY-MM)", value)
	}
	return t, nil
}

func parsePoint(latArg, lngArg string) (geo.Point, error) {
	lat, err := strconv.ParseFloat(latArg, 64)
	if err != nil || lat < -90 || lat > 90 {
		return geo.Point{}, fmt.Errorf("invalid latitude %q", latArg)
	}
	lng, err := strconv.ParseFloat(lngArg, 64)
	if err != nil || lng < -180 || lng > 180 {
		return geo.Point{}, fmt.Errorf("invalid longitude %q", lngArg)
	}
	return geo.Point{Lat: lat, Lng: lng}, nil
}
