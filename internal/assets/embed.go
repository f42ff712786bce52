// Package assets holds documents compiled into the warden binary via go:embed.
package assets

import (
	_ "embed"
)

// DefaultTerms is the markdown terms-of-service document served when
// jail.tos_path is not configured.
//
//go:embed terms.md
var DefaultTerms []byte
