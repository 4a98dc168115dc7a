package versionboard

import (
	"fmt"
	"html"
	"strings"
)

// PlaceholderURL is the documentation link used when no URL is registered
// for an engine key.
const PlaceholderURL = "#"

// DocumentationIndex maps engine keys to documentation URLs. It is built
// once and only read afterwards.
type DocumentationIndex map[string]string

// Lookup returns the URL registered for engineKey, or [PlaceholderURL].
func (d DocumentationIndex) Lookup(engineKey string) string {
	if engineKey == "" {
		return PlaceholderURL
	}
	if url, ok := d[engineKey]; ok && url != "" {
		return url
	}
	return PlaceholderURL
}

// ReportRow is one (service, version, documentation link) entry of the
// report.
type ReportRow struct {
	Service string `json:"service"`
	Version string `json:"version"`
	DocURL  string `json:"doc_url"`
}

// FormatRow builds the [ReportRow] for one version of a service, resolving
// the documentation link through index.
func FormatRow(index DocumentationIndex, service, version, engineKey string) ReportRow {
	return ReportRow{
		Service: service,
		Version: version,
		DocURL:  index.Lookup(engineKey),
	}
}

// HTML returns the table row markup of r. Values are HTML-escaped.
func (r ReportRow) HTML() string {
	return fmt.Sprintf("<tr>\n<td>%s</td>\n<td><a href='%s'>%s</a></td>\n</tr>\n",
		html.EscapeString(r.Service),
		html.EscapeString(r.DocURL),
		html.EscapeString(r.Version),
	)
}

// RowsHTML concatenates the markup of rows in order.
func RowsHTML(rows []ReportRow) string {
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(r.HTML())
	}
	return b.String()
}
