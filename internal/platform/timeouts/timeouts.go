// Package timeouts defines shared timeout constants used across services.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// APIRequest caps a single storefront call to the coffee store API when no
// explicit timeout is configured.
const APIRequest = 5 * time.Second

// StoragePing caps the connectivity check performed when opening a database.
const StoragePing = 5 * time.Second
