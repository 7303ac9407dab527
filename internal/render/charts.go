package render

import (
	"errors"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/edumetric-labs/edumetric/pkg/core"
)

// DefaultBins is the histogram bin count used by the dashboard.
const DefaultBins = 10

// ErrNoScores is returned when a summary is requested for no data.
var ErrNoScores = errors.New("no scores")

// labelOrder fixes the slice order of label donuts.
var labelOrder = []string{"high", "medium", "low", "poor"}

// Slice is one donut segment.
type Slice struct {
	Label   string
	Count   int
	Percent float64
}

// DonutChart is a label distribution. Kind is what a segment click drills
// down on.
type DonutChart struct {
	Title  string
	Kind   core.FilterKind
	Slices []Slice
	Total  int
}

// Empty reports whether the chart has nothing to show.
func (d DonutChart) Empty() bool { return d.Total == 0 }

// Donut builds a label distribution chart.
func Donut(title string, kind core.FilterKind, counts map[string]int) DonutChart {
	d := DonutChart{Title: title, Kind: kind}
	for _, n := range counts {
		d.Total += n
	}
	if d.Total == 0 {
		return d
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		oi, oj := rank(labels[i]), rank(labels[j])
		if oi != oj {
			return oi < oj
		}
		return labels[i] < labels[j]
	})
	for _, l := range labels {
		n := counts[l]
		d.Slices = append(d.Slices, Slice{
			Label:   l,
			Count:   n,
			Percent: float64(n) * 100 / float64(d.Total),
		})
	}
	return d
}

func rank(label string) int {
	if i := slices.Index(labelOrder, label); i >= 0 {
		return i
	}
	return len(labelOrder)
}

// Donuts builds the three label charts of an analysis.
func Donuts(counts core.LabelCounts) []DonutChart {
	out := make([]DonutChart, 0, 3)
	for _, k := range core.FilterKinds() {
		out = append(out, Donut(Upper(k.String())+" DISTRIBUTION", k, counts.For(k)))
	}
	return out
}

// KindForChart maps a chart element id back to the label it plots. Ids
// containing "perf", "risk" or "drop" map to the matching kind.
func KindForChart(chartID string) (core.FilterKind, bool) {
	id := strings.ToLower(chartID)
	switch {
	case strings.Contains(id, "perf"):
		return core.FilterPerformance, true
	case strings.Contains(id, "risk"):
		return core.FilterRisk, true
	case strings.Contains(id, "drop"):
		return core.FilterDropout, true
	default:
		return 0, false
	}
}

// BoxSummary is a five-number summary plus mean.
type BoxSummary struct {
	N      int
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
	Mean   float64
}

// BoxPlot summarises a score distribution.
func BoxPlot(scores []float64) (BoxSummary, error) {
	if len(scores) == 0 {
		return BoxSummary{}, ErrNoScores
	}
	data := stats.Float64Data(scores)

	var b BoxSummary
	var err error
	b.N = len(scores)
	if b.Min, err = data.Min(); err != nil {
		return BoxSummary{}, err
	}
	if b.Max, err = data.Max(); err != nil {
		return BoxSummary{}, err
	}
	if b.Median, err = stats.Median(data); err != nil {
		return BoxSummary{}, err
	}
	if b.Mean, err = stats.Mean(data); err != nil {
		return BoxSummary{}, err
	}
	// Percentile is undefined for very small samples; fall back to the median.
	if b.Q1, err = stats.Percentile(data, 25); err != nil {
		b.Q1 = b.Median
	}
	if b.Q3, err = stats.Percentile(data, 75); err != nil {
		b.Q3 = b.Median
	}
	return b, nil
}

// Bin is one histogram bucket covering [Lo, Hi).
type Bin struct {
	Lo    float64
	Hi    float64
	Count int
}

// Histogram buckets scores into n equal-width bins spanning their range.
func Histogram(scores []float64, n int) ([]Bin, error) {
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	if n <= 0 {
		n = DefaultBins
	}

	x := slices.Clone(scores)
	sort.Float64s(x)
	lo, hi := x[0], x[len(x)-1]
	if lo == hi {
		hi = lo + 1
	}

	dividers := make([]float64, n+1)
	floats.Span(dividers, lo, hi)
	// The last divider is exclusive, so nudge it past the maximum.
	dividers[n] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, x, nil)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: int(counts[i])}
	}
	return bins, nil
}

// TrendPoint is one semester average.
type TrendPoint struct {
	Semester int
	Value    float64
}

// SemesterTrend drops missing and zero semesters, keeping 1-based numbering.
func SemesterTrend(values []core.OptFloat) []TrendPoint {
	var out []TrendPoint
	for i, v := range values {
		if !v.Valid || v.Value == 0 {
			continue
		}
		out = append(out, TrendPoint{Semester: i + 1, Value: v.Value})
	}
	return out
}
