package admin

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Andromalius22/Nexora/internal/players"
	"github.com/Andromalius22/Nexora/internal/session"
	"github.com/Andromalius22/Nexora/pkg/logger"
	"github.com/gorilla/handlers"
)

// Endpoint :
// A small HTTP surface exposing the health of the game
// server. It serves a single `/status` route and is meant
// for operators, not for game clients.
type Endpoint struct {
	server  *session.Server
	manager *players.Manager
	log     logger.Logger
	started time.Time
}

// NewEndpoint :
// Builds the admin endpoint over the provided game server
// and player store.
//
// Returns the built-in endpoint.
func NewEndpoint(server *session.Server, manager *players.Manager, log logger.Logger) *Endpoint {
	return &Endpoint{
		server:  server,
		manager: manager,
		log:     log,
		started: time.Now(),
	}
}

// status :
// Reports the player count, the connected client count and
// the uptime of the process.
func (e *Endpoint) status(w http.ResponseWriter, r *http.Request) {
	report := map[string]interface{}{
		"players":        len(e.manager.All()),
		"connected":      e.server.ConnectedCount(),
		"uptime_seconds": int64(time.Since(e.started).Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		e.log.Trace(logger.Error, "admin", fmt.Sprintf("Failed to encode status (err: %v)", err))
	}
}

// Serve :
// Binds the admin port and serves until the process exits.
// The handler chain carries request logging and panic
// recovery.
//
// The `port` defines the port to bind.
//
// Returns any error from the HTTP server.
func (e *Endpoint) Serve(port int) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/status", e.status)

	chain := handlers.RecoveryHandler()(
		handlers.CombinedLoggingHandler(os.Stdout, mux),
	)

	e.log.Trace(logger.Notice, "admin", fmt.Sprintf("Admin endpoint listening on port %d", port))

	return http.ListenAndServe(fmt.Sprintf(":%d", port), chain)
}
