package generic

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// BOUNDARY TABLE - Where categories start and stop on the calendar
// =============================================================================

// HourRange assigns a category to an hour-of-day window [StartHour, EndHour).
// A window with EndHour <= StartHour wraps midnight (e.g. 22 -> 7). Equal
// hours describe an empty window.
type HourRange struct {
	Category  Category
	StartHour int
	EndHour   int
}

func (r HourRange) contains(minuteOfDay int) bool {
	start, end := r.StartHour*60, r.EndHour*60
	switch {
	case start == end:
		return false
	case start < end:
		return minuteOfDay >= start && minuteOfDay < end
	default:
		return minuteOfDay >= start || minuteOfDay < end
	}
}

// WeeklyRange assigns a category to a window that spans weekdays, e.g.
// Friday 18:00 -> Monday 07:00. The window wraps the week when its end lies
// before its start in Monday-first order.
type WeeklyRange struct {
	Category  Category
	StartDay  time.Weekday
	StartHour int
	EndDay    time.Weekday
	EndHour   int
}

func (w WeeklyRange) contains(t time.Time) bool {
	pos := minuteOfWeek(t.Weekday(), t.Hour()*60+t.Minute())
	start := minuteOfWeek(w.StartDay, w.StartHour*60)
	end := minuteOfWeek(w.EndDay, w.EndHour*60)
	switch {
	case start == end:
		return false
	case start < end:
		return pos >= start && pos < end
	default:
		return pos >= start || pos < end
	}
}

// minuteOfWeek counts from Monday 00:00.
func minuteOfWeek(day time.Weekday, minuteOfDay int) int {
	return ((int(day)+6)%7)*minutesPerDay + minuteOfDay
}

// BoundaryTable is the full rule set for one classifier.
//
// Priority decides between overlapping windows: the matching category that
// appears first in Priority wins. Categories missing from Priority rank after
// listed ones, weekly windows before hour windows. Time covered by no window
// falls into Fallback.
type BoundaryTable struct {
	Weekly   []WeeklyRange
	Daily    []HourRange
	Priority []Category
	Fallback Category
}

// Validate checks hour bounds and the fallback.
func (t BoundaryTable) Validate() error {
	if t.Fallback == "" {
		return &ConfigError{Field: "fallback", Message: "fallback category is required"}
	}
	for _, r := range t.Daily {
		if !validHour(r.StartHour) || !validHour(r.EndHour) {
			return &ConfigError{Field: string(r.Category), Message: fmt.Sprintf("hours %d-%d outside 0-24", r.StartHour, r.EndHour)}
		}
	}
	for _, w := range t.Weekly {
		if !validHour(w.StartHour) || !validHour(w.EndHour) {
			return &ConfigError{Field: string(w.Category), Message: fmt.Sprintf("hours %d-%d outside 0-24", w.StartHour, w.EndHour)}
		}
		if w.StartDay < time.Sunday || w.StartDay > time.Saturday || w.EndDay < time.Sunday || w.EndDay > time.Saturday {
			return &ConfigError{Field: string(w.Category), Message: "weekday out of range"}
		}
	}
	return nil
}

func validHour(h int) bool { return h >= 0 && h <= 24 }

// Categories returns every category the table can produce, in priority order.
func (t BoundaryTable) Categories() []Category {
	seen := make(map[Category]bool)
	var out []Category
	add := func(c Category) {
		if c != "" && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range t.Priority {
		add(c)
	}
	for _, w := range t.Weekly {
		add(w.Category)
	}
	for _, r := range t.Daily {
		add(r.Category)
	}
	add(t.Fallback)
	return out
}

// =============================================================================
// PARTITIONER - Cuts an interval at every boundary and sums per category
// =============================================================================

// Partitioner classifies intervals against one BoundaryTable.
// It holds no mutable state and is safe for concurrent use.
type Partitioner struct {
	table BoundaryTable
	rank  map[Category]int
}

// NewPartitioner validates the table and precomputes the priority ranking.
func NewPartitioner(table BoundaryTable) (*Partitioner, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	rank := make(map[Category]int)
	for i, c := range table.Categories() {
		rank[c] = i
	}
	return &Partitioner{table: table, rank: rank}, nil
}

// Table returns the boundary table.
func (p *Partitioner) Table() BoundaryTable { return p.table }

// Partition returns unrounded hours per category. Empty and inverted
// intervals produce an empty map.
func (p *Partitioner) Partition(iv Interval) map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal)
	if iv.Empty() {
		return out
	}

	cuts := p.cutPoints(iv)
	prev := iv.Start
	for _, cut := range append(cuts, iv.End) {
		seconds := int64(cut.Sub(prev) / time.Second)
		if seconds > 0 {
			cat := p.categoryAt(prev)
			h := decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600))
			out[cat] = out[cat].Add(h)
		}
		prev = cut
	}
	return out
}

// cutPoints lists every boundary strictly inside the interval, sorted.
func (p *Partitioner) cutPoints(iv Interval) []time.Time {
	var cuts []time.Time
	add := func(t time.Time) {
		if t.After(iv.Start) && t.Before(iv.End) {
			cuts = append(cuts, t)
		}
	}

	for day := DateOf(iv.Start).AddDate(0, 0, -1); !day.After(iv.End); day = day.AddDate(0, 0, 1) {
		add(day)
		for _, r := range p.table.Daily {
			add(day.Add(time.Duration(r.StartHour) * time.Hour))
			add(day.Add(time.Duration(r.EndHour) * time.Hour))
		}
		for _, w := range p.table.Weekly {
			if day.Weekday() == w.StartDay {
				add(day.Add(time.Duration(w.StartHour) * time.Hour))
			}
			if day.Weekday() == w.EndDay {
				add(day.Add(time.Duration(w.EndHour) * time.Hour))
			}
		}
	}

	sort.Slice(cuts, func(i, j int) bool { return cuts[i].Before(cuts[j]) })
	dedup := cuts[:0]
	for i, c := range cuts {
		if i == 0 || !c.Equal(cuts[i-1]) {
			dedup = append(dedup, c)
		}
	}
	return dedup
}

// categoryAt resolves the category for the piece starting at t. Pieces never
// straddle a boundary, so the start is representative.
func (p *Partitioner) categoryAt(t time.Time) Category {
	best := p.table.Fallback
	bestRank := -1
	consider := func(c Category) {
		r, ok := p.rank[c]
		if !ok {
			return
		}
		if bestRank == -1 || r < bestRank {
			best, bestRank = c, r
		}
	}

	for _, w := range p.table.Weekly {
		if w.contains(t) {
			consider(w.Category)
		}
	}
	minute := t.Hour()*60 + t.Minute()
	for _, r := range p.table.Daily {
		if r.contains(minute) {
			consider(r.Category)
		}
	}
	return best
}

// =============================================================================
// SPLIT - Partition, deduct a break, round
// =============================================================================

// Split is the rounded result of classifying one worked interval.
type Split struct {
	Hours map[Category]decimal.Decimal
	Total decimal.Decimal
}

// Get returns hours for c, zero when absent.
func (s Split) Get(c Category) decimal.Decimal {
	if h, ok := s.Hours[c]; ok {
		return h
	}
	return decimal.Zero
}

// Split partitions iv and removes breakMinutes proportionally from every
// category. The break is clamped to the interval length. Buckets are rounded
// to HourPrecision and the rounding residue goes to the largest bucket, so
// the buckets always sum to Total.
func (p *Partitioner) Split(iv Interval, breakMinutes int64) (Split, error) {
	if breakMinutes < 0 {
		return Split{}, ErrNegativeBreak
	}

	raw := p.Partition(iv)
	rawHours := SumHours(valuesOf(raw)...)
	if rawHours.IsZero() {
		return Split{Hours: map[Category]decimal.Decimal{}, Total: decimal.Zero}, nil
	}

	rawMinutes := iv.Minutes()
	if breakMinutes > rawMinutes {
		breakMinutes = rawMinutes
	}
	worked := rawHours.Sub(MinutesToHours(breakMinutes))
	if !worked.IsPositive() {
		return Split{Hours: map[Category]decimal.Decimal{}, Total: decimal.Zero}, nil
	}

	ratio := worked.Div(rawHours)
	scaled := make(map[Category]decimal.Decimal, len(raw))
	for c, h := range raw {
		scaled[c] = h.Mul(ratio)
	}

	total := RoundHours(worked)
	return Split{
		Hours: RoundPreservingTotal(scaled, p.table.Categories(), total),
		Total: total,
	}, nil
}

// RoundPreservingTotal rounds every bucket to HourPrecision and moves the
// residue against total into the largest bucket (first in order on ties).
func RoundPreservingTotal(hours map[Category]decimal.Decimal, order []Category, total decimal.Decimal) map[Category]decimal.Decimal {
	out := make(map[Category]decimal.Decimal, len(hours))
	sum := decimal.Zero
	var largest Category
	largestVal := decimal.Zero
	for _, c := range orderedKeys(hours, order) {
		h := hours[c]
		r := RoundHours(h)
		out[c] = r
		sum = sum.Add(r)
		if largest == "" || h.GreaterThan(largestVal) {
			largest, largestVal = c, h
		}
	}
	if diff := total.Sub(sum); !diff.IsZero() && largest != "" {
		out[largest] = out[largest].Add(diff)
	}
	return out
}

func orderedKeys(m map[Category]decimal.Decimal, order []Category) []Category {
	seen := make(map[Category]bool, len(m))
	keys := make([]Category, 0, len(m))
	for _, c := range order {
		if _, ok := m[c]; ok && !seen[c] {
			keys = append(keys, c)
			seen[c] = true
		}
	}
	var rest []Category
	for c := range m {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	return append(keys, rest...)
}

func valuesOf(m map[Category]decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}
