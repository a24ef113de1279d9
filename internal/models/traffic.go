package models

import (
	"errors"
	"time"
)

// ErrInsufficientTraffic is returned when the traffic series is too short to
// pick yesterday and the day before.
var ErrInsufficientTraffic = errors.New("traffic window needs at least 3 days of views")

// DayTraffic is the views count of one day.
type DayTraffic struct {
	Timestamp time.Time `json:"timestamp"`
	Count     int       `json:"count"`
	Uniques   int       `json:"uniques"`
}

// TrafficWindow is the daily views series, oldest first.
type TrafficWindow struct {
	Views      []DayTraffic `json:"views"`
	Yesterday  *DayTraffic  `json:"yesterday,omitempty"`
	TwoDaysAgo *DayTraffic  `json:"two_days_ago,omitempty"`
}

// Pick returns the second-to-last and third-to-last entries of the series.
//
// The selection is positional: if GitHub omits a day from the series the
// picked entries are not the calendar days their names suggest.
func (w TrafficWindow) Pick() (yesterday, twoDaysAgo DayTraffic, err error) {
	n := len(w.Views)
	if n < 3 {
		return DayTraffic{}, DayTraffic{}, ErrInsufficientTraffic
	}
	return w.Views[n-2], w.Views[n-3], nil
}

// ReferrerStat is one entry of the top referrers list.
type ReferrerStat struct {
	Referrer string `json:"referrer"`
	Count    int    `json:"count"`
	Uniques  int    `json:"uniques"`
}
