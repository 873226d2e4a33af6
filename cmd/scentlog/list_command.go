package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"scentlog/internal/record"
	"scentlog/internal/view"
)

type listOptions struct {
	search    string
	brand     string
	segment   string
	ratingMin string
	ratingMax string
	priceMin  string
	priceMax  string
	sort      string
	pages     int
	all       bool
}

type listOutput struct {
	Total        int             `json:"total"`
	Shown        int             `json:"shown"`
	HasMore      bool            `json:"hasMore"`
	SegmentField string          `json:"segmentField,omitempty"`
	Records      []record.Record `json:"records"`
}

func newListCommand(ctx *commandContext) *cobra.Command {
	var opts listOptions
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List perfumes matching the filters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				sortOpt := opts.sort
				if sortOpt == "" {
					sortOpt = rt.cfg.View.DefaultSort
				}
				sortBy, err := view.ParseSortOption(sortOpt)
				if err != nil {
					return err
				}
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}

				filter := view.Filter{
					Search:    opts.search,
					Brand:     opts.brand,
					Segment:   opts.segment,
					RatingMin: opts.ratingMin,
					RatingMax: opts.ratingMax,
					PriceMin:  opts.priceMin,
					PriceMax:  opts.priceMax,
					Sort:      sortBy,
				}
				projected := view.NewProjector(rt.cfg.ViewLanguage()).Project(records, filter)

				window := view.NewWindow(rt.cfg.View.PageSize, rt.cfg.View.PageSize)
				window.Sync(filter.Key())
				for i := 1; i < opts.pages; i++ {
					window.Grow(len(projected))
				}
				visible := window.Visible(projected)
				if opts.all {
					visible = projected
				}

				out := listOutput{
					Total:        len(projected),
					Shown:        len(visible),
					HasMore:      len(visible) < len(projected),
					SegmentField: view.DetectSegmentField(records),
					Records:      visible,
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, out)
				}
				renderList(cmd, out, len(records))
				return nil
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.search, "search", "s", "", "Substring match on name, brand, PID or segment")
	flags.StringVar(&opts.brand, "brand", "", "Exact brand")
	flags.StringVar(&opts.segment, "segment", "", "Exact market segment (ignored with --brand)")
	flags.StringVar(&opts.ratingMin, "rating-min", "", "Minimum rating")
	flags.StringVar(&opts.ratingMax, "rating-max", "", "Maximum rating")
	flags.StringVar(&opts.priceMin, "price-min", "", "Minimum price")
	flags.StringVar(&opts.priceMax, "price-max", "", "Maximum price")
	flags.StringVar(&opts.sort, "sort", "", "Sort order: rating_desc, rating_asc, name_asc, name_desc")
	flags.IntVar(&opts.pages, "pages", 1, "Number of pages to show")
	flags.BoolVar(&opts.all, "all", false, "Show every matching perfume")
	return cmd
}

func renderList(cmd *cobra.Command, out listOutput, collectionSize int) {
	w := cmd.OutOrStdout()
	if out.Total == 0 {
		if collectionSize == 0 {
			fmt.Fprintln(w, "Collection is empty; import a CSV with `scentlog import <file>`")
		} else {
			fmt.Fprintln(w, "No perfumes match the filters")
		}
		return
	}
	colorize := shouldColorize(w)

	headers := []string{"#", "Brand", "Name", "PID", "Rating", "Price"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight}
	if out.SegmentField != "" {
		headers = append(headers, out.SegmentField)
		aligns = append(aligns, alignLeft)
	}
	rows := make([][]string, 0, len(out.Records))
	for i, r := range out.Records {
		row := []string{strconv.Itoa(i + 1), r.Brand, r.Name, dim(r.PID, colorize), formatRating(r), formatPrice(r)}
		if out.SegmentField != "" {
			segment, _ := r.Extra(out.SegmentField)
			row = append(row, segment)
		}
		rows = append(rows, row)
	}
	fmt.Fprint(w, renderTable(headers, rows, aligns))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Showing %d of %d perfumes", out.Shown, out.Total)
	if out.HasMore {
		fmt.Fprint(w, " (use --pages or --all for more)")
	}
	fmt.Fprintln(w)
}

func newBrandsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "brands",
		Short: "List distinct brands",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				return printOptions(cmd, ctx, view.BrandOptions(rt.cfg.ViewLanguage(), records))
			})
		},
	}
}

func newSegmentsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "segments",
		Short: "List distinct market segments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSession(cmd, func(c context.Context, rt *runtime) error {
				records, err := rt.session.Snapshot()
				if err != nil {
					return err
				}
				field := view.DetectSegmentField(records)
				if field == "" {
					if ctx.jsonOutput() {
						return writeJSON(cmd, []string{})
					}
					fmt.Fprintln(cmd.OutOrStdout(), "No market segment column in the collection")
					return nil
				}
				return printOptions(cmd, ctx, view.SegmentOptions(rt.cfg.ViewLanguage(), records, field))
			})
		},
	}
}

func printOptions(cmd *cobra.Command, ctx *commandContext, options []string) error {
	if ctx.jsonOutput() {
		if options == nil {
			options = []string{}
		}
		return writeJSON(cmd, options)
	}
	for _, opt := range options {
		fmt.Fprintln(cmd.OutOrStdout(), opt)
	}
	return nil
}
