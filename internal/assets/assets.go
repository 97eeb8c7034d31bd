// Package assets provides embedded static assets for the application.
package assets

import (
	_ "embed"
)

// PageTemplate is the html/template source wrapping a rendered answer into a
// standalone page. It expects Title, CodeCSS and Body fields.
//
//go:embed templates/page.html
var PageTemplate string
