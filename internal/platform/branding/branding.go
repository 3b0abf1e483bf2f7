// Package branding holds product naming shared by every rendered surface.
package branding

// AppName is the product name used in titles and headers.
const AppName = "Coffee Connoisseur"
