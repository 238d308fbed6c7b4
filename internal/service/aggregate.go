package service

import (
	"cmp"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/godilite/termosti/internal/repository/models"
)

var yearPattern = regexp.MustCompile(`\d{4}`)

// ExtractYear returns the first four consecutive digits of period, or NoYear.
func ExtractYear(period string) string {
	if y := yearPattern.FindString(period); y != "" {
		return y
	}
	return NoYear
}

// ParseParticipation reads the leading decimal number of raw ("12.5%" is 12.5).
// Anything unparsable is 0.
func ParseParticipation(raw string) float64 {
	return models.ParticipationValue(raw)
}

// IsJanuary reports whether a period denotes a January measurement.
func IsJanuary(period string) bool {
	return strings.Contains(period, "01/") || strings.Contains(strings.ToLower(period), "jan")
}

// FilterByTerms keeps records whose term is exactly one of terms, in input order.
func FilterByTerms(records []models.SurveyRecord, terms []string) []models.SurveyRecord {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}

	out := make([]models.SurveyRecord, 0, len(records))
	for _, r := range records {
		if _, ok := set[r.Term]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Group collects the participation values that fell under one key.
type Group struct {
	Values  []float64
	Average float64
}

// GroupAverage buckets records by key and averages each bucket. key returns
// false to leave a record out. Groups exist only for keys that received a
// record; the second result lists keys in first-seen order.
func GroupAverage[K comparable](records []models.SurveyRecord, key func(models.SurveyRecord) (K, bool)) (map[K]*Group, []K) {
	groups := make(map[K]*Group)
	var order []K

	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		g, exists := groups[k]
		if !exists {
			g = &Group{}
			groups[k] = g
			order = append(order, k)
		}
		g.Values = append(g.Values, ParseParticipation(r.Participation))
	}

	for _, g := range groups {
		g.Average = mean(g.Values)
	}
	return groups, order
}

// mean sums in ascending order so the result does not depend on input order.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	return sum / float64(len(sorted))
}

// Rank orders the terms of ordered that have an average, highest first.
// Equal averages keep their order from ordered; ranks run 1..n without gaps.
func Rank(averages map[string]float64, ordered []string) []RankedEntry {
	out := make([]RankedEntry, 0, len(ordered))
	for _, term := range ordered {
		if avg, ok := averages[term]; ok {
			out = append(out, RankedEntry{Term: term, AverageParticipation: avg})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].AverageParticipation > out[j].AverageParticipation
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// ComputeYearlyTotals joins per-year side totals, years ascending.
func ComputeYearlyTotals(frontend, backend map[string]float64) []YearlyTotals {
	years := make([]string, 0, len(frontend)+len(backend))
	for y := range frontend {
		years = append(years, y)
	}
	for y := range backend {
		if _, ok := frontend[y]; !ok {
			years = append(years, y)
		}
	}
	slices.Sort(years)

	out := make([]YearlyTotals, len(years))
	for i, y := range years {
		f, b := frontend[y], backend[y]
		t := YearlyTotals{
			Year:          y,
			FrontendTotal: f,
			BackendTotal:  b,
			GrandTotal:    f + b,
			Leader:        leader(f, b),
		}
		if t.GrandTotal != 0 {
			t.FrontendShare = f / t.GrandTotal * 100
			t.BackendShare = b / t.GrandTotal * 100
		}
		out[i] = t
	}
	return out
}

func leader(frontend, backend float64) Side {
	switch {
	case frontend > backend:
		return SideFrontend
	case backend > frontend:
		return SideBackend
	default:
		return SideTie
	}
}

// Trend is the side's total in the latest year minus its total in the earliest.
// Fewer than two distinct years give 0.
func Trend(totals []YearlyTotals, side Side) TrendDelta {
	delta := TrendDelta{Group: side}
	if len(totals) < 2 {
		return delta
	}

	sorted := slices.Clone(totals)
	slices.SortStableFunc(sorted, func(a, b YearlyTotals) int { return cmp.Compare(a.Year, b.Year) })

	first, last := sorted[0], sorted[len(sorted)-1]
	if first.Year == last.Year {
		return delta
	}
	delta.Delta = sideTotal(last, side) - sideTotal(first, side)
	return delta
}

func sideTotal(t YearlyTotals, side Side) float64 {
	switch side {
	case SideFrontend:
		return t.FrontendTotal
	case SideBackend:
		return t.BackendTotal
	default:
		return t.GrandTotal
	}
}

// yearlyTermAverages averages records per (year, term), dropping records with
// no year. Years come back ascending.
func yearlyTermAverages(records []models.SurveyRecord) (map[string]map[string]float64, []string) {
	type yearTerm struct{ year, term string }

	groups, order := GroupAverage(records, func(r models.SurveyRecord) (yearTerm, bool) {
		y := ExtractYear(r.Period)
		if y == NoYear {
			return yearTerm{}, false
		}
		return yearTerm{year: y, term: r.Term}, true
	})

	byYear := make(map[string]map[string]float64)
	var years []string
	for _, k := range order {
		if _, ok := byYear[k.year]; !ok {
			byYear[k.year] = make(map[string]float64)
			years = append(years, k.year)
		}
		byYear[k.year][k.term] = groups[k].Average
	}
	slices.Sort(years)
	return byYear, years
}
