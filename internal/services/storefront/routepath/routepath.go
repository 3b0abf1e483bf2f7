// Package routepath names the storefront routes.
package routepath

const (
	Root        = "/"
	Health      = "/healthz"
	Static      = "/static/"
	Store       = "/coffee-store/{id}"
	StoreUpvote = "/coffee-store/{id}/upvote"
)
