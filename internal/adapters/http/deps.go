package http

import (
	"github.com/nats-io/nats.go"

	"github.com/samirrijal/vertiwatch/internal/adapters/postgres"
	"github.com/samirrijal/vertiwatch/internal/adapters/valkey"
	"github.com/samirrijal/vertiwatch/internal/core/usecases"
)

// Dependencies holds all services needed by HTTP handlers. Tracks, NATS, DB
// and Cache are optional and may be nil.
type Dependencies struct {
	Loop      *usecases.FrameLoop
	Reference *usecases.ReferenceService
	Tracks    *usecases.TrackService
	Hub       *Hub
	NATS      *nats.Conn
	DB        *postgres.DB
	Cache     *valkey.Cache
	// StaticDir, when set, is served at / for the browser bundle.
	StaticDir string
	// OpenAPIPath overrides DefaultOpenAPIPath for /docs.
	OpenAPIPath string
}
