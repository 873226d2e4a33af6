package main

import (
	"io"
	"os"
	"strconv"

	"github.com/mattn/go-isatty"

	"scentlog/internal/record"
)

const (
	ansiDim   = "\033[2m"
	ansiReset = "\033[0m"
)

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func dim(s string, colorize bool) string {
	if !colorize || s == "" {
		return s
	}
	return ansiDim + s + ansiReset
}

func formatRating(r record.Record) string {
	return strconv.FormatFloat(r.Rating, 'f', -1, 64)
}

func formatPrice(r record.Record) string {
	if !r.HasPrice {
		return ""
	}
	return strconv.FormatFloat(r.Price, 'f', 2, 64)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return strconv.FormatInt(n, 10) + " B"
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(n)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
