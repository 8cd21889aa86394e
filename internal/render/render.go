// Package render formats a trace table for the console.
package render

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/toricodesthings/trace-extraction-service/internal/extract"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// Write renders t in the named format. previewRows limits the text output to
// that many rows from each end; zero or less prints every row.
func Write(w io.Writer, format string, t *extract.Table, previewRows int) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return Text(w, t, previewRows)
	case FormatYAML:
		return YAML(w, t)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// Text prints a head/tail preview followed by the table dimensions.
func Text(w io.Writer, t *extract.Table, previewRows int) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(extract.Columns, "\t"))

	n := t.Len()
	writeRow := func(i int) {
		r := t.Rows[i]
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t\n", i, num(r.TimeS), num(r.Trace1V), num(r.Trace2V))
	}
	if previewRows <= 0 || n <= 2*previewRows {
		for i := 0; i < n; i++ {
			writeRow(i)
		}
	} else {
		for i := 0; i < previewRows; i++ {
			writeRow(i)
		}
		fmt.Fprintf(tw, "...\t...\t...\t...\t\n")
		for i := n - previewRows; i < n; i++ {
			writeRow(i)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\n[%d rows x %d columns]\n", n, len(extract.Columns))
	if err != nil || len(t.Metadata) == 0 {
		return err
	}
	keys := make([]string, 0, len(t.Metadata))
	for k := range t.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s: %s\n", k, t.Metadata[k]); err != nil {
			return err
		}
	}
	return nil
}

func YAML(w io.Writer, t *extract.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(t); err != nil {
		return err
	}
	return enc.Close()
}

func num(v float64) string { return strconv.FormatFloat(v, 'g', 6, 64) }
