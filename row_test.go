package versionboard

import (
	"strings"
	"testing"
)

func TestDocumentationIndex_Lookup(t *testing.T) {
	docs := DocumentationIndex{"redis": "https://example.com/redis", "blank": ""}

	tests := []struct {
		key  string
		want string
	}{
		{"redis", "https://example.com/redis"},
		{"unknown-engine", PlaceholderURL},
		{"", PlaceholderURL},
		{"blank", PlaceholderURL},
	}
	for _, tt := range tests {
		if got := docs.Lookup(tt.key); got != tt.want {
			t.Errorf("Lookup(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFormatRow(t *testing.T) {
	docs := DocumentationIndex{"redis": "https://example.com/redis"}

	row := FormatRow(docs, "Amazon ElastiCache redis", "7.1", "redis")
	want := ReportRow{Service: "Amazon ElastiCache redis", Version: "7.1", DocURL: "https://example.com/redis"}
	if row != want {
		t.Errorf("FormatRow() = %+v, want %+v", row, want)
	}

	if row := FormatRow(docs, "Amazon RDS custom-engine", "1.0", "custom-engine"); row.DocURL != "#" {
		t.Errorf("unknown engine key DocURL = %q, want #", row.DocURL)
	}
}

func TestReportRow_HTML(t *testing.T) {
	row := ReportRow{Service: "Amazon EKS", Version: "1.29", DocURL: "https://example.com/eks"}

	want := "<tr>\n<td>Amazon EKS</td>\n<td><a href='https://example.com/eks'>1.29</a></td>\n</tr>\n"
	if got := row.HTML(); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestReportRow_HTMLEscapes(t *testing.T) {
	row := ReportRow{Service: "A <b>", Version: "1' onclick='x", DocURL: "#"}

	got := row.HTML()
	if strings.Contains(got, "<b>") || strings.Contains(got, "' onclick") {
		t.Errorf("HTML() did not escape values: %q", got)
	}
}

func TestRowsHTML(t *testing.T) {
	rows := []ReportRow{
		{Service: "A", Version: "2", DocURL: "#"},
		{Service: "A", Version: "1", DocURL: "#"},
	}

	got := RowsHTML(rows)
	if strings.Index(got, ">2<") > strings.Index(got, ">1<") {
		t.Errorf("RowsHTML() changed row order: %q", got)
	}
	if RowsHTML(nil) != "" {
		t.Error("RowsHTML(nil) should be empty")
	}
}
