package view

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"scentlog/internal/record"
)

// SortOption selects the output order.
type SortOption string

const (
	SortRatingDesc SortOption = "rating_desc"
	SortRatingAsc  SortOption = "rating_asc"
	SortNameAsc    SortOption = "name_asc"
	SortNameDesc   SortOption = "name_desc"
)

// SortOptions lists every supported order.
var SortOptions = []SortOption{SortRatingDesc, SortRatingAsc, SortNameAsc, SortNameDesc}

// ParseSortOption validates a sort name. Empty selects rating_desc.
func ParseSortOption(s string) (SortOption, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortRatingDesc, nil
	}
	for _, opt := range SortOptions {
		if string(opt) == s {
			return opt, nil
		}
	}
	return "", fmt.Errorf("unknown sort option %q", s)
}

// Filter is the user-entered filter and sort state. Bounds are raw text; blank
// or non-numeric bounds are ignored.
type Filter struct {
	Search    string
	Brand     string
	Segment   string
	RatingMin string
	RatingMax string
	PriceMin  string
	PriceMax  string
	Sort      SortOption
}

// Key identifies the filter state; a change in Key resets pagination.
func (f Filter) Key() string {
	return strings.Join([]string{
		f.Search, f.Brand, f.Segment,
		f.RatingMin, f.RatingMax, f.PriceMin, f.PriceMax,
		string(f.Sort),
	}, "\x1f")
}

// ParseBound parses a numeric bound. ok is false for blank or non-finite text.
func ParseBound(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Projector evaluates filters with a fixed collation language.
type Projector struct {
	tag language.Tag
}

// NewProjector returns a Projector collating names for tag.
func NewProjector(tag language.Tag) *Projector {
	return &Projector{tag: tag}
}

// Project applies f to records with English collation.
func Project(records []record.Record, f Filter) []record.Record {
	return NewProjector(language.English).Project(records, f)
}

// Project filters and sorts records. The result shares no backing array with
// records.
func (p *Projector) Project(records []record.Record, f Filter) []record.Record {
	segmentField := DetectSegmentField(records)
	search := strings.ToLower(f.Search)

	ratingMin, hasRatingMin := ParseBound(f.RatingMin)
	ratingMax, hasRatingMax := ParseBound(f.RatingMax)
	priceMin, hasPriceMin := ParseBound(f.PriceMin)
	priceMax, hasPriceMax := ParseBound(f.PriceMax)

	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if search != "" && !matchesSearch(r, search, segmentField) {
			continue
		}
		if f.Brand != "" && r.Brand != f.Brand {
			continue
		}
		if f.Segment != "" && segmentField != "" && f.Brand == "" {
			if v, _ := r.Extra(segmentField); v != f.Segment {
				continue
			}
		}
		if hasRatingMin && r.Rating < ratingMin {
			continue
		}
		if hasRatingMax && r.Rating > ratingMax {
			continue
		}
		if (hasPriceMin || hasPriceMax) && !r.HasPrice {
			continue
		}
		if hasPriceMin && r.Price < priceMin {
			continue
		}
		if hasPriceMax && r.Price > priceMax {
			continue
		}
		out = append(out, r)
	}

	p.sort(out, f.Sort)
	return out
}

func matchesSearch(r record.Record, lowerTerm, segmentField string) bool {
	candidates := []string{r.Name, r.Brand, r.PID}
	if segmentField != "" {
		if v, ok := r.Extra(segmentField); ok {
			candidates = append(candidates, v)
		}
	}
	for _, c := range candidates {
		if c != "" && strings.Contains(strings.ToLower(c), lowerTerm) {
			return true
		}
	}
	return false
}

func (p *Projector) sort(records []record.Record, opt SortOption) {
	switch opt {
	case SortRatingAsc:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Rating < records[j].Rating
		})
	case SortNameAsc, SortNameDesc:
		col := collate.New(p.tag)
		desc := opt == SortNameDesc
		sort.SliceStable(records, func(i, j int) bool {
			if desc {
				return col.CompareString(records[j].Name, records[i].Name) < 0
			}
			return col.CompareString(records[i].Name, records[j].Name) < 0
		})
	default:
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Rating > records[j].Rating
		})
	}
}
