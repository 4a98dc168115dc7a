package versionboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"sync"
	"time"

	"github.com/jpalmerr/versionboard/page"
)

// Report is the output of one aggregation run.
type Report struct {
	// Rows holds every row, in catalog order.
	Rows []ReportRow `json:"rows"`

	// Failures lists services skipped under [FailureIsolate]. Always empty
	// under [FailFast].
	Failures []Failure `json:"failures,omitempty"`

	Title            string    `json:"title"`
	GeneratedAt      time.Time `json:"generated_at"`
	GeneratorVersion string    `json:"generator_version"`
}

// Failure records a service dropped from a report.
type Failure struct {
	Service string
	Err     error
}

// MarshalJSON renders the error as its message.
func (f Failure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Service string `json:"service"`
		Error   string `json:"error"`
	}{f.Service, msg})
}

// Body returns the concatenated row markup of the report.
func (r *Report) Body() string {
	return RowsHTML(r.Rows)
}

// Services returns the distinct service labels of the report, in order.
func (r *Report) Services() []string {
	seen := make(map[string]bool)
	var out []string
	for _, row := range r.Rows {
		if !seen[row.Service] {
			seen[row.Service] = true
			out = append(out, row.Service)
		}
	}
	return out
}

const pageDateLayout = "2006-01-02 15:04:05 MST"

var (
	pageOnce sync.Once
	pageTmpl *template.Template
	pageErr  error
)

func pageTemplate() (*template.Template, error) {
	pageOnce.Do(func() {
		pageTmpl, pageErr = template.ParseFS(page.Assets, page.TemplateName)
	})
	return pageTmpl, pageErr
}

// RenderPage writes the full HTML page of report to w.
func RenderPage(w io.Writer, report *Report) error {
	if report == nil {
		return fmt.Errorf("render page: report is nil")
	}
	tmpl, err := pageTemplate()
	if err != nil {
		return fmt.Errorf("parse page template: %w", err)
	}

	data := struct {
		Title            string
		Body             template.HTML
		GeneratedAt      string
		GeneratorVersion string
		Failures         []Failure
	}{
		Title:            report.Title,
		Body:             template.HTML(report.Body()), // rows are escaped by ReportRow.HTML
		GeneratedAt:      report.GeneratedAt.UTC().Format(pageDateLayout),
		GeneratorVersion: report.GeneratorVersion,
		Failures:         report.Failures,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// RenderPageBytes is like [RenderPage] but returns the page.
func RenderPageBytes(report *Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderPage(&buf, report); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
