// Package flow computes lean flow metrics over a board: cycle and lead
// time statistics, throughput, WIP aging, bottleneck detection and flow
// efficiency.
package flow

import (
	"time"

	"github.com/okian/flowboard/internal/domain/model"
)

// Default analysis configuration constants.
const (
	// defaultBottleneckThreshold flags columns without an explicit WIP
	// limit once they pile up past this many cards. Heuristic, tunable.
	defaultBottleneckThreshold = 10
	criticalLimitFactor        = 1.5
	hoursPerDay                = 24
)

// Bottleneck severities.
const (
	SeverityCritical = "critical"
	SeverityWarning  = "warning"
)

// Analyzer computes flow reports for boards.
type Analyzer struct {
	bottleneckThreshold int
	clock               func() time.Time
}

// Option applies a configuration option to the Analyzer.
type Option func(*Analyzer)

// WithBottleneckThreshold sets the card count past which a column without
// an explicit WIP limit is flagged as a bottleneck.
func WithBottleneckThreshold(threshold int) Option {
	return func(a *Analyzer) {
		if threshold > 0 {
			a.bottleneckThreshold = threshold
		}
	}
}

// WithClock sets the time source, used by tests for determinism.
func WithClock(clock func() time.Time) Option {
	return func(a *Analyzer) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// New constructs an Analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		bottleneckThreshold: defaultBottleneckThreshold,
		clock:               time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Stats summarizes a duration sample in hours.
type Stats struct {
	AvgHours float64 `json:"avg_hours"`
	P50Hours float64 `json:"p50_hours"`
	P85Hours float64 `json:"p85_hours"`
	P95Hours float64 `json:"p95_hours"`
}

// AgeBucket counts in-progress cards inside one age range.
type AgeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Aging reports how long in-progress cards have been sitting.
type Aging struct {
	Buckets    []AgeBucket `json:"buckets"`
	OldestDays float64     `json:"oldest_days"`
	MeanDays   float64     `json:"mean_days"`
}

// Bottleneck flags a column that is at or past its healthy capacity.
type Bottleneck struct {
	Column   model.ColumnType `json:"column"`
	Count    int              `json:"count"`
	Limit    int              `json:"limit,omitempty"` // 0 when the column has no explicit limit
	Severity string           `json:"severity"`
}

// Report is the full lean flow output for one board and lookback window.
type Report struct {
	WindowDays       int          `json:"window_days"`
	Completed        int          `json:"completed"`
	CycleTime        Stats        `json:"cycle_time"`
	LeadTime         Stats        `json:"lead_time"`
	ThroughputPerDay float64      `json:"throughput_per_day"`
	WIP              int          `json:"wip"`
	FlowEfficiency   float64      `json:"flow_efficiency"`
	Aging            Aging        `json:"aging"`
	Bottlenecks      []Bottleneck `json:"bottlenecks"`
}

// Analyze computes the flow report for a board over a lookback window in
// days. Cycle time is completed-started, lead time is completed-created;
// cards missing a timestamp are excluded from the affected sample. Flow
// efficiency is computed on raw seconds so the rounded hour values do not
// compound error.
func (a *Analyzer) Analyze(b *model.Board, days int) Report {
	now := a.clock()
	windowStart := now.Add(-time.Duration(days) * hoursPerDay * time.Hour)

	var (
		cycleHours   []float64
		leadHours    []float64
		cycleSeconds float64
		leadSeconds  float64
		completed    int
		wip          int
		inProgress   []*model.Card
	)

	for _, col := range b.Columns {
		for _, card := range col.Cards {
			if card.InProgress() {
				wip++
				inProgress = append(inProgress, card)
			}
			if card.CompletedAt == nil || card.CompletedAt.Before(windowStart) {
				continue
			}
			completed++
			leadHours = append(leadHours, card.CompletedAt.Sub(card.CreatedAt).Hours())
			if card.StartedAt != nil {
				cycleHours = append(cycleHours, card.CompletedAt.Sub(*card.StartedAt).Hours())
				cycleSeconds += card.CompletedAt.Sub(*card.StartedAt).Seconds()
				leadSeconds += card.CompletedAt.Sub(card.CreatedAt).Seconds()
			}
		}
	}

	report := Report{
		WindowDays:  days,
		Completed:   completed,
		CycleTime:   summarize(cycleHours),
		LeadTime:    summarize(leadHours),
		WIP:         wip,
		Aging:       a.aging(inProgress, now),
		Bottlenecks: a.bottlenecks(b),
	}
	if days > 0 {
		report.ThroughputPerDay = float64(completed) / float64(days)
	}
	if leadSeconds > 0 {
		report.FlowEfficiency = cycleSeconds / leadSeconds
	}
	return report
}

// summarize computes average and interpolated percentiles for a sample.
func summarize(sample []float64) Stats {
	if len(sample) == 0 {
		return Stats{}
	}
	sum := 0.0
	for _, v := range sample {
		sum += v
	}
	return Stats{
		AvgHours: sum / float64(len(sample)),
		P50Hours: Percentile(sample, 0.50),
		P85Hours: Percentile(sample, 0.85),
		P95Hours: Percentile(sample, 0.95),
	}
}

// agingBoundsDays are the upper bounds of the aging buckets, in days.
var agingBoundsDays = []struct {
	label string
	upper float64
}{
	{"0-1", 1},
	{"1-3", 3},
	{"3-7", 7},
	{"7-14", 14},
	{"14+", -1},
}

// aging buckets in-progress cards by how many days they have been active.
// A card's age starts at started_at, falling back to created_at.
func (a *Analyzer) aging(cards []*model.Card, now time.Time) Aging {
	aging := Aging{Buckets: make([]AgeBucket, len(agingBoundsDays))}
	for i, b := range agingBoundsDays {
		aging.Buckets[i] = AgeBucket{Label: b.label}
	}
	if len(cards) == 0 {
		return aging
	}

	sum := 0.0
	for _, card := range cards {
		since := card.CreatedAt
		if card.StartedAt != nil {
			since = *card.StartedAt
		}
		ageDays := now.Sub(since).Hours() / hoursPerDay
		if ageDays < 0 {
			ageDays = 0
		}
		sum += ageDays
		if ageDays > aging.OldestDays {
			aging.OldestDays = ageDays
		}
		for i, b := range agingBoundsDays {
			if b.upper < 0 || ageDays < b.upper {
				aging.Buckets[i].Count++
				break
			}
		}
	}
	aging.MeanDays = sum / float64(len(cards))
	return aging
}

// bottlenecks flags columns at or past capacity. Columns with an explicit
// WIP limit are critical past 1.5x the limit; columns without one use the
// configured heuristic threshold.
func (a *Analyzer) bottlenecks(b *model.Board) []Bottleneck {
	var out []Bottleneck
	for _, col := range b.Columns {
		count := len(col.Cards)
		switch {
		case col.WIPLimit > 0 && count >= col.WIPLimit:
			severity := SeverityWarning
			if float64(count) > criticalLimitFactor*float64(col.WIPLimit) {
				severity = SeverityCritical
			}
			out = append(out, Bottleneck{Column: col.Type, Count: count, Limit: col.WIPLimit, Severity: severity})
		case col.WIPLimit == 0 && count > a.bottleneckThreshold:
			out = append(out, Bottleneck{Column: col.Type, Count: count, Severity: SeverityWarning})
		}
	}
	return out
}
