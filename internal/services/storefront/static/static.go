// Package static embeds the storefront stylesheet and images.
package static

import "embed"

// FS exposes storefront static assets for HTTP serving.
//
//go:embed css images
var FS embed.FS
