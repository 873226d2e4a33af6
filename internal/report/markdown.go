package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// WriteMarkdown renders stats as a markdown document.
func WriteMarkdown(w io.Writer, title string, stats Stats) error {
	md := markdown.NewMarkdown(w)
	md.H1(title)
	md.PlainText("")

	if stats.Count == 0 {
		md.Note("The collection is empty.")
		return md.Build()
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Perfumes", strconv.Itoa(stats.Count)},
			{"Average rating", formatFloat(stats.Mean)},
			{"Median rating", formatFloat(stats.Median)},
		},
	})
	md.PlainText("")

	writeHistogram(md, stats.Histogram)
	writePrice(md, stats.Price)
	writeSegments(md, stats)
	return md.Build()
}

func writeHistogram(md *markdown.Markdown, bins []Bin) {
	md.H2("Rating Distribution")
	md.PlainText("")
	rows := make([][]string, 0, len(bins))
	for _, bin := range bins {
		if bin.Count == 0 && bin.Cumulative == 0 {
			continue
		}
		rows = append(rows, []string{
			strconv.FormatFloat(bin.Rating, 'f', 1, 64),
			strconv.Itoa(bin.Count),
			strconv.Itoa(bin.Cumulative),
			formatFloat(bin.Trend),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Rating", "Count", "At or above", "Trend"},
		Rows:   rows,
	})
	md.PlainText("")
}

func writePrice(md *markdown.Markdown, trend *PriceTrend) {
	md.H2("Price vs Rating")
	md.PlainText("")
	if trend == nil {
		md.PlainText("Not enough priced perfumes for a trend.")
		md.PlainText("")
		return
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Priced perfumes", strconv.Itoa(trend.Points)},
			{"Slope per ln(price)", formatFloat(trend.Slope)},
			{"Intercept", formatFloat(trend.Intercept)},
			{"Rating at " + formatFloat(trend.MinPrice), formatFloat(trend.At(trend.MinPrice))},
			{"Rating at " + formatFloat(trend.MaxPrice), formatFloat(trend.At(trend.MaxPrice))},
		},
	})
	md.PlainText("")
}

func writeSegments(md *markdown.Markdown, stats Stats) {
	if stats.SegmentField == "" || len(stats.Segments) == 0 {
		return
	}
	md.H2("Segments")
	md.PlainText("")

	rows := make([][]string, 0, len(stats.Segments))
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle(stats.SegmentField),
		piechart.WithShowData(true),
	)
	for _, entry := range stats.Segments {
		rows = append(rows, []string{entry.Label, strconv.Itoa(entry.Count)})
		chart.LabelAndIntValue(entry.Label, uint64(entry.Count))
	}
	md.Table(markdown.TableSet{
		Header: []string{"Segment", "Count"},
		Rows:   rows,
	})
	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
