package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// maxCellWidth bounds left-aligned columns; longer cells are trimmed.
const maxCellWidth = 60

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		cc := table.ColumnConfig{
			Number:           i + 1,
			Align:            text.AlignLeft,
			AlignHeader:      text.AlignLeft,
			WidthMax:         maxCellWidth,
			WidthMaxEnforcer: text.Trim,
		}
		if i < len(aligns) && aligns[i] == alignRight {
			cc.Align = text.AlignRight
			cc.WidthMax = 0
			cc.WidthMaxEnforcer = nil
		}
		columnConfigs = append(columnConfigs, cc)
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
