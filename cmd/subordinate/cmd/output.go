package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/solatis/subordinate/internal/rules"
)

// newTable returns a table writer rendering to w in the light style.
func newTable(w io.Writer, header table.Row) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(header)
	style := table.StyleLight
	style.Format.Header = text.FormatDefault
	tw.SetStyle(style)
	return tw
}

// since renders t relative to now, or "-" for the zero time.
func since(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func count(n int) string {
	return humanize.Comma(int64(n))
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

func value(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%q", rules.FormatValue(v))
}
