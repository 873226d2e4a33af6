package history

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"scentlog/internal/csvio"
	"scentlog/internal/logging"
	"scentlog/internal/record"
)

// Point is one observed rating.
type Point struct {
	Rating     float64   `json:"rating"`
	Date       time.Time `json:"date"`
	Revision   string    `json:"revision"`
	TimeRated  string    `json:"timeRated,omitempty"`
	CommitDate time.Time `json:"commitDate"`
}

// Timeline is the rating history of one perfume.
type Timeline struct {
	ID          string    `json:"id"`
	PID         string    `json:"pid,omitempty"`
	Brand       string    `json:"brand"`
	Name        string    `json:"name"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	Ratings     []Point   `json:"ratings"`
}

// Latest returns the most recent point.
func (t Timeline) Latest() Point {
	if len(t.Ratings) == 0 {
		return Point{}
	}
	return t.Ratings[len(t.Ratings)-1]
}

// Report is the outcome of Build.
type Report struct {
	GeneratedAt time.Time  `json:"generatedAt"`
	Revisions   []Revision `json:"revisions"`
	Timelines   []Timeline `json:"timelines"`
}

// Build walks every revision oldest first and records a rating point each
// time a perfume's rating changes. Revisions whose content cannot be loaded
// are skipped.
func Build(ctx context.Context, provider Provider, tag language.Tag, logger *slog.Logger) (Report, error) {
	logger = logging.WithContext(ctx, logging.NewComponentLogger(logger, "history"))
	revisions, err := provider.Revisions(ctx)
	if err != nil {
		return Report{}, err
	}

	byID := make(map[string]*Timeline)
	var used []Revision
	for _, rev := range revisions {
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		text, err := provider.Content(ctx, rev.ID)
		if err != nil {
			logging.WarnWithContext(logger, "revision content unavailable", "history_content_failed",
				slog.String("revision", rev.ShortID()),
				logging.Error(err),
				slog.String(logging.FieldImpact, "revision skipped in timelines"),
			)
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		table, err := csvio.ReadTable(strings.NewReader(strings.TrimPrefix(text, "\uFEFF")))
		if err != nil {
			continue
		}
		absorb(byID, table, rev)
		used = append(used, rev)
	}

	timelines := make([]Timeline, 0, len(byID))
	for _, t := range byID {
		timelines = append(timelines, *t)
	}
	sortTimelines(tag, timelines)
	return Report{GeneratedAt: time.Now().UTC(), Revisions: used, Timelines: timelines}, nil
}

func absorb(byID map[string]*Timeline, table csvio.Table, rev Revision) {
	for _, row := range table.Rows {
		brand, _ := table.Value(row, record.FieldBrand)
		name, _ := table.Value(row, record.FieldName)
		if brand == "" || name == "" {
			continue
		}
		pid, _ := table.Value(row, record.FieldPID)
		rawRating, _ := table.Value(row, record.FieldRating)
		rating, ok := record.ParseLeadingFloat(strings.Replace(rawRating, ",", ".", 1))
		if !ok {
			continue
		}
		timeRated, _ := table.Value(row, record.FieldTimeRated)

		id, _ := record.Identity(record.Record{Brand: brand, Name: name, PID: pid})
		date := ApproxDate(rev.Timestamp, timeRated)

		t, exists := byID[id]
		if !exists {
			t = &Timeline{ID: id, PID: pid, Brand: brand, Name: name, FirstSeenAt: date}
			byID[id] = t
		}
		if n := len(t.Ratings); n > 0 && t.Ratings[n-1].Rating == rating {
			continue
		}
		t.Ratings = append(t.Ratings, Point{
			Rating:     rating,
			Date:       date,
			Revision:   rev.ID,
			TimeRated:  timeRated,
			CommitDate: rev.Timestamp,
		})
	}
}

func sortTimelines(tag language.Tag, timelines []Timeline) {
	col := collate.New(tag)
	sort.SliceStable(timelines, func(i, j int) bool {
		if c := col.CompareString(timelines[i].Brand, timelines[j].Brand); c != 0 {
			return c < 0
		}
		return col.CompareString(timelines[i].Name, timelines[j].Name) < 0
	})
}

// Find returns timelines whose brand, name or pid contains term.
func Find(timelines []Timeline, term string) []Timeline {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return timelines
	}
	var out []Timeline
	for _, t := range timelines {
		if strings.Contains(strings.ToLower(t.Brand), term) ||
			strings.Contains(strings.ToLower(t.Name), term) ||
			strings.Contains(strings.ToLower(t.PID), term) {
			out = append(out, t)
		}
	}
	return out
}
