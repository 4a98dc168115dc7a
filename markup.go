package versionboard

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// MarkupExtractor reads versions out of an HTML page.
//
// Each markup extractor encodes one assumption about the upstream page
// layout. When the layout changes the extractor returns a [ParseError]
// instead of guessing.
type MarkupExtractor struct {
	rule string
	fn   func(doc *goquery.Document) ([]string, error)
}

// Kind returns [SourceHTML].
func (e MarkupExtractor) Kind() SourceKind { return SourceHTML }

// Rule returns the name of the extraction rule, used in errors and logs.
func (e MarkupExtractor) Rule() string { return e.rule }

// Extract implements [Extractor].
func (e MarkupExtractor) Extract(payload RawPayload) ([]string, error) {
	if payload.Kind != SourceHTML {
		return nil, parseErrorf(e.rule, "expected an html payload, got %q", payload.Kind)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(payload.HTML))
	if err != nil {
		return nil, parseErrorf(e.rule, "failed to parse HTML: %v", err)
	}
	return e.fn(doc)
}

// ItemizedList extracts versions from the first itemized list of a page.
//
// Upstream layout:
//
//	<div class="itemizedlist">
//	  <ul class="itemizedlist" type="disc">
//	    <li class="listitem"><p><code class="code">1.29</code></p></li>
//
// The version is the text of the first node inside the first child element
// of each list item.
func ItemizedList() MarkupExtractor {
	const rule = "itemized-list"
	return MarkupExtractor{
		rule: rule,
		fn: func(doc *goquery.Document) ([]string, error) {
			container := doc.Find("div.itemizedlist").First()
			if container.Length() == 0 {
				return nil, parseErrorf(rule, "no div.itemizedlist")
			}
			list := container.Find("ul.itemizedlist").First()
			if list.Length() == 0 {
				return nil, parseErrorf(rule, "no ul.itemizedlist inside div.itemizedlist")
			}

			var versions []string
			list.Find("li.listitem").Each(func(_ int, item *goquery.Selection) {
				first := item.Children().First().Contents().First()
				if v := strings.TrimSpace(first.Text()); v != "" {
					versions = append(versions, v)
				}
			})
			return versions, nil
		},
	}
}

// TableFirstColumn extracts the first cell of every table row found inside
// the containers matched by containerSelector. Rows with a single cell are
// headings or notes and are skipped. Newlines inside cells are removed.
//
// Upstream layout:
//
//	<div class="awsui-util-container">
//	  <table><tr><td>Node.js 22</td><td>nodejs22.x</td>...</tr></table>
func TableFirstColumn(containerSelector string) MarkupExtractor {
	rule := "table-first-column:" + containerSelector
	return MarkupExtractor{
		rule: rule,
		fn: func(doc *goquery.Document) ([]string, error) {
			containers := doc.Find(containerSelector)
			if containers.Length() == 0 {
				return nil, parseErrorf(rule, "no %s", containerSelector)
			}

			var versions []string
			containers.Find("tr").Each(func(_ int, row *goquery.Selection) {
				cells := row.Find("td")
				if cells.Length() <= 1 {
					return
				}
				v := strings.ReplaceAll(cells.First().Text(), "\n", "")
				if v = strings.TrimSpace(v); v != "" {
					versions = append(versions, v)
				}
			})
			return versions, nil
		},
	}
}

// ProsePattern extracts a single version from a sentence. It reads the text
// of the first paragraph inside the element matched by containerSelector and
// returns the first capture group of pattern. A missing paragraph or a
// sentence that no longer matches is a [ParseError].
//
// This is the most fragile rule: any rewording of the sentence breaks it.
func ProsePattern(containerSelector string, pattern *regexp.Regexp) MarkupExtractor {
	rule := "prose-pattern:" + containerSelector
	return MarkupExtractor{
		rule: rule,
		fn: func(doc *goquery.Document) ([]string, error) {
			paragraph := doc.Find(containerSelector).First().Find("p").First()
			if paragraph.Length() == 0 {
				return nil, parseErrorf(rule, "no paragraph inside %s", containerSelector)
			}
			m := pattern.FindStringSubmatch(paragraph.Text())
			if len(m) < 2 || m[1] == "" {
				return nil, parseErrorf(rule, "sentence no longer matches %q", pattern.String())
			}
			return []string{m[1]}, nil
		},
	}
}
