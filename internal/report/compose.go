package report

import (
	"fmt"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/Kamar-Folarin/github-reporter/internal/models"
)

// CounterMetric is a headline counter compared against stored snapshots.
// Delta is the change since the reference day and PriorDelta the change on
// the reference day itself; each is nil when a snapshot it needs is missing.
type CounterMetric struct {
	Label      string `json:"label"`
	Value      int    `json:"value"`
	Reference  *int   `json:"reference,omitempty"`
	Delta      *int   `json:"delta,omitempty"`
	PriorDelta *int   `json:"prior_delta,omitempty"`
}

// HasDelta reports whether the metric can be shown with a change indicator.
func (m CounterMetric) HasDelta() bool {
	return m.Delta != nil
}

// TrafficMetric compares yesterday's traffic with the day before.
// RelativeDelta is nil when the day before had no traffic.
type TrafficMetric struct {
	Label         string   `json:"label"`
	Value         int      `json:"value"`
	Reference     int      `json:"reference"`
	RelativeDelta *float64 `json:"relative_delta,omitempty"`
}

// TrafficSummary describes the whole views window.
type TrafficSummary struct {
	Days         int     `json:"days"`
	TotalViews   int     `json:"total_views"`
	TotalUniques int     `json:"total_uniques"`
	MeanViews    float64 `json:"mean_views"`
	MedianViews  float64 `json:"median_views"`
}

// ItemView is an issue or pull request as shown in a report.
type ItemView struct {
	models.Item
	New bool `json:"new"`
}

// Data is everything a report shows.
type Data struct {
	Owner        string                `json:"owner"`
	Name         string                `json:"name"`
	Since        time.Time             `json:"since"`
	ReferenceDay time.Time             `json:"reference_day"`
	GeneratedAt  time.Time             `json:"generated_at"`
	Stars        CounterMetric         `json:"stars"`
	Downloads    CounterMetric         `json:"downloads"`
	OpenIssues   CounterMetric         `json:"open_issues"`
	Views        TrafficMetric         `json:"views"`
	Uniques      TrafficMetric         `json:"uniques"`
	Summary      TrafficSummary        `json:"summary"`
	Traffic      []models.DayTraffic   `json:"traffic"`
	Issues       []ItemView            `json:"issues"`
	Pulls        []ItemView            `json:"pulls"`
	Referrers    []models.ReferrerStat `json:"referrers"`
}

// FullName returns "owner/name".
func (d *Data) FullName() string {
	return d.Owner + "/" + d.Name
}

// Compose combines freshly collected data with the stored history.
//
// Counter deltas come from history[referenceDay] and the day before it.
// Traffic deltas come only from the collected traffic window. A traffic
// window shorter than three days fails with models.ErrInsufficientTraffic.
func Compose(collected *models.CollectedData, history models.History, referenceDay time.Time) (*Data, error) {
	if collected == nil {
		return nil, fmt.Errorf("compose: no collected data")
	}

	yesterday, twoDaysAgo, err := collected.Traffic.Pick()
	if err != nil {
		return nil, fmt.Errorf("compose %s/%s: %w", collected.Owner, collected.Name, err)
	}

	referenceDay = models.StartOfDay(referenceDay)
	ref, hasRef := history.On(referenceDay)
	prev, hasPrev := history.On(referenceDay.AddDate(0, 0, -1))

	stored := func(ok bool, v int) *int {
		if !ok {
			return nil
		}
		return &v
	}
	storedIssues := func(ok bool, s models.DaySnapshot) *int {
		if !ok || s.OpenIssues == nil {
			return nil
		}
		v := *s.OpenIssues
		return &v
	}

	summary, err := summarize(collected.Traffic.Views)
	if err != nil {
		return nil, fmt.Errorf("compose %s/%s: %w", collected.Owner, collected.Name, err)
	}

	return &Data{
		Owner:        collected.Owner,
		Name:         collected.Name,
		Since:        collected.Since,
		ReferenceDay: referenceDay,
		Stars:        counter("Stars", collected.Stars, stored(hasRef, ref.Stars), stored(hasPrev, prev.Stars)),
		Downloads:    counter("Downloads", collected.Downloads, stored(hasRef, ref.Downloads), stored(hasPrev, prev.Downloads)),
		OpenIssues:   counter("Open issues", collected.OpenIssues, storedIssues(hasRef, ref), storedIssues(hasPrev, prev)),
		Views:        traffic("Views", yesterday.Count, twoDaysAgo.Count),
		Uniques:      traffic("Unique visitors", yesterday.Uniques, twoDaysAgo.Uniques),
		Summary:      summary,
		Traffic:      collected.Traffic.Views,
		Issues:       itemViews(collected.Issues, collected.Since),
		Pulls:        itemViews(collected.Pulls, collected.Since),
		Referrers:    collected.Referrers,
	}, nil
}

func counter(label string, value int, reference, prior *int) CounterMetric {
	m := CounterMetric{Label: label, Value: value, Reference: reference}
	if reference != nil {
		d := value - *reference
		m.Delta = &d
		if prior != nil {
			p := *reference - *prior
			m.PriorDelta = &p
		}
	}
	return m
}

func traffic(label string, value, reference int) TrafficMetric {
	m := TrafficMetric{Label: label, Value: value, Reference: reference}
	if reference != 0 {
		r := float64(value-reference) / float64(reference)
		m.RelativeDelta = &r
	}
	return m
}

func summarize(views []models.DayTraffic) (TrafficSummary, error) {
	s := TrafficSummary{Days: len(views)}
	counts := make(stats.Float64Data, 0, len(views))
	for _, v := range views {
		s.TotalViews += v.Count
		s.TotalUniques += v.Uniques
		counts = append(counts, float64(v.Count))
	}

	var err error
	if s.MeanViews, err = counts.Mean(); err != nil {
		return s, fmt.Errorf("mean views: %w", err)
	}
	if s.MedianViews, err = counts.Median(); err != nil {
		return s, fmt.Errorf("median views: %w", err)
	}
	return s, nil
}

func itemViews(items []models.Item, since time.Time) []ItemView {
	out := make([]ItemView, 0, len(items))
	for _, item := range items {
		out = append(out, ItemView{Item: item, New: item.CreatedSince(since)})
	}
	return out
}
