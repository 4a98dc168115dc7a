// Package page provides the embedded HTML template of the published
// version report.
//
// The template is parsed with html/template by the versionboard package.
// It receives the report title, the pre-rendered table rows, the generation
// date, the generator version and the list of skipped services.
package page

import "embed"

// TemplateName is the path of the page template inside [Assets].
const TemplateName = "assets/index.template.html"

// Assets holds the page template.
//
//go:embed assets/*
var Assets embed.FS
