package http

import (
	nethttp "net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/preston-bernstein/match-feed-service/internal/http/handlers"
)

// matrixSuffix captures optional ";key=value" parameters trailing a path segment.
const matrixSuffix = "{" + handlers.VarMatrix + ":(?:;[^/]*)?}"

// NewRouter registers the feed routes, wrapped with permissive CORS for GET.
func NewRouter(h *handlers.Handler) nethttp.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = nethttp.HandlerFunc(handlers.NotFound)
	r.MethodNotAllowedHandler = nethttp.HandlerFunc(handlers.MethodNotAllowed)

	r.HandleFunc("/health", h.Health).Methods(nethttp.MethodGet)
	r.HandleFunc("/ready", h.Ready).Methods(nethttp.MethodGet)

	users := r.PathPrefix("/v1/users/{" + handlers.VarUserID + "}").Subrouter()
	users.HandleFunc("/matches"+matrixSuffix, h.Matches).Methods(nethttp.MethodGet)
	users.HandleFunc("/teasermatches"+matrixSuffix, h.Teaser).Methods(nethttp.MethodGet)
	users.HandleFunc("/matchedusers"+matrixSuffix, h.MatchedUsers).Methods(nethttp.MethodGet)
	users.HandleFunc("/count", h.Count).Methods(nethttp.MethodGet)
	users.HandleFunc("/matches/{"+handlers.VarMatchID+"}", h.Match).Methods(nethttp.MethodGet)

	internal := r.PathPrefix("/v1/internal/users/{" + handlers.VarUserID + "}").Subrouter()
	internal.HandleFunc("/matches", h.InternalMatches).Methods(nethttp.MethodGet)
	internal.HandleFunc("/matches/{"+handlers.VarMatchID+"}", h.Match).Methods(nethttp.MethodGet)

	return cors.New(cors.Options{
		AllowedMethods: []string{nethttp.MethodGet, nethttp.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID", handlers.HeaderPlatform},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler(r)
}
