package handlers

import (
	"context"
	"errors"
	"log/slog"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/preston-bernstein/match-feed-service/internal/app/feeds"
	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/feed"
	"github.com/preston-bernstein/match-feed-service/internal/http/requestutil"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
)

// Route variable names shared with the router.
const (
	VarUserID  = "userId"
	VarMatchID = "matchId"
	VarMatrix  = "matrix"
)

// HeaderPlatform carries the client platform for teaser telemetry.
const HeaderPlatform = "platform"

var errBadRequest = errors.New("bad request")

// Handler wires HTTP routes to the feed service.
type Handler struct {
	svc    *feeds.Service
	logger *slog.Logger
	ready  func() bool
}

// NewHandler constructs a Handler. A nil ready func reports ready unconditionally.
func NewHandler(svc *feeds.Service, logger *slog.Logger, ready func() bool) *Handler {
	return &Handler{svc: svc, logger: logger, ready: ready}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, nethttp.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness once feed settings have loaded.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.ready == nil || h.ready() {
		writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	writeError(w, r, nethttp.StatusServiceUnavailable, "feed settings not loaded", h.logger)
}

// Matches serves one page of the user's feed. status and locale matrix parameters are required.
func (h *Handler) Matches(w nethttp.ResponseWriter, r *nethttp.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	matrix := matrixParams(r)
	tokens := matches.SplitTokens(matrix["status"])
	locale := strings.TrimSpace(matrix.Get("locale"))
	if len(tokens) == 0 || locale == "" {
		writeError(w, r, nethttp.StatusBadRequest, "status and locale are required", h.logger)
		return
	}
	statuses, err := matches.ParseTokens(tokens)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	q := r.URL.Query()
	viewHidden, err1 := queryBool(q, "viewHidden")
	allowedSeePhotos, err2 := queryBool(q, "allowedSeePhotos")
	pageNum, err3 := queryInt(q, "pageNum", 0)
	pageSize, err4 := queryInt(q, "pageSize", 0)
	if err := errors.Join(err1, err2, err3, err4); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
		return
	}

	req, err := matches.NewRequestBuilder().
		UserID(userID).
		Statuses(statuses).
		Locale(locale).
		Page(pageNum, pageSize).
		ViewHidden(viewHidden).
		AllowedSeePhotos(allowedSeePhotos).
		Build()
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	page, err := h.svc.Matches(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	logging.Info(loggerFromContext(r, h.logger), "served matches",
		logging.FieldUserID, userID,
		logging.FieldCount, len(page.Matches),
	)
	writeJSON(w, nethttp.StatusOK, page, h.logger)
}

type teaserResponse struct {
	Matches []matches.FeedItem `json:"matches"`
}

// Teaser serves the photo teaser strip. Only new and comm statuses are accepted; store errors
// degrade to an empty list.
func (h *Handler) Teaser(w nethttp.ResponseWriter, r *nethttp.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	statuses, err := matches.ParseTokens(matches.SplitTokens(matrixParams(r)["status"]))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	for status := range statuses {
		if g := matches.GroupOf(status); g != matches.GroupNew && g != matches.GroupComm {
			writeError(w, r, nethttp.StatusBadRequest, "teaser supports only new and comm statuses", h.logger)
			return
		}
	}

	resultSize, err := queryInt(r.URL.Query(), "resultSize", feeds.DefaultTeaserResultSize)
	if err != nil || resultSize <= 0 {
		writeError(w, r, nethttp.StatusBadRequest, "resultSize must be a positive integer", h.logger)
		return
	}

	req, err := matches.NewRequestBuilder().
		UserID(userID).
		Statuses(statuses).
		TeaserResultSize(resultSize).
		AllowedSeePhotos(true).
		Metadata(matches.MetadataUserAgent, r.Header.Get("User-Agent")).
		Metadata(matches.MetadataPlatform, r.Header.Get(HeaderPlatform)).
		Build()
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	items, err := h.svc.Teaser(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, teaserResponse{Matches: items}, h.logger)
}

type matchedUsersResponse struct {
	Users []feeds.MatchedUser `json:"users"`
}

// MatchedUsers serves the condensed match list. An empty status selects every status.
func (h *Handler) MatchedUsers(w nethttp.ResponseWriter, r *nethttp.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	matrix := matrixParams(r)
	tokens := matches.SplitTokens(matrix["status"])
	if len(tokens) == 0 {
		tokens = []string{matches.AllToken}
	}
	statuses, err := matches.ParseTokens(tokens)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	q := r.URL.Query()
	viewHidden, err1 := queryBool(q, "viewHidden")
	excludeClosed, err2 := queryBool(q, "excludeClosed")
	if err := errors.Join(err1, err2); err != nil {
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
		return
	}

	req, err := matches.NewRequestBuilder().
		UserID(userID).
		Statuses(statuses).
		Locale(matrix.Get("locale")).
		ViewHidden(viewHidden).
		AllowedSeePhotos(true).
		ExcludeClosedMatches(excludeClosed).
		SortBy(q.Get("sortBy")).
		Build()
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	users, err := h.svc.MatchedUsers(r.Context(), req)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, matchedUsersResponse{Users: users}, h.logger)
}

// Count serves per-group match totals.
func (h *Handler) Count(w nethttp.ResponseWriter, r *nethttp.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	counts, err := h.svc.Count(r.Context(), userID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, counts, h.logger)
}

// Match serves a single match, 404 when absent.
func (h *Handler) Match(w nethttp.ResponseWriter, r *nethttp.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	matchID, err := positiveID(mux.Vars(r)[VarMatchID])
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid match id", h.logger)
		return
	}
	item, found, err := h.svc.Match(r.Context(), userID, matchID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	if !found {
		writeError(w, r, nethttp.StatusNotFound, "match not found", h.logger)
		return
	}
	writeJSON(w, nethttp.StatusOK, item, h.logger)
}

type internalFeedResponse struct {
	UserID  int64              `json:"userId"`
	Matches []matches.FeedItem `json:"matches"`
}

// InternalMatches serves the user's complete unfiltered feed.
func (h *Handler) InternalMatches(w nethttp.ResponseWriter, r *nethttp.Request) {
	userID, ok := h.userID(w, r)
	if !ok {
		return
	}
	items, err := h.svc.InternalFeed(r.Context(), userID)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}
	writeJSON(w, nethttp.StatusOK, internalFeedResponse{UserID: userID, Matches: items}, h.logger)
}

func (h *Handler) userID(w nethttp.ResponseWriter, r *nethttp.Request) (int64, bool) {
	id, err := positiveID(mux.Vars(r)[VarUserID])
	if err != nil {
		writeError(w, r, nethttp.StatusBadRequest, "invalid user id", h.logger)
		return 0, false
	}
	return id, true
}

// writeFailure maps service errors onto status codes.
func (h *Handler) writeFailure(w nethttp.ResponseWriter, r *nethttp.Request, err error) {
	logger := loggerFromContext(r, h.logger)
	switch {
	case errors.Is(err, matches.ErrNoValidStatus),
		errors.Is(err, matches.ErrMissingUserID),
		errors.Is(err, feeds.ErrInvalidSort),
		errors.Is(err, errBadRequest):
		writeError(w, r, nethttp.StatusBadRequest, err.Error(), h.logger)
	case errors.Is(err, context.Canceled):
		writeError(w, r, nethttp.StatusServiceUnavailable, "request cancelled", h.logger)
	default:
		if aggErr, ok := feed.AsAggregationError(err); ok {
			logging.Error(logger, "feed aggregation failed", aggErr,
				logging.FieldUserID, aggErr.UserID,
				logging.FieldStrategy, aggErr.Strategy,
			)
			writeError(w, r, nethttp.StatusInternalServerError, "failed to load matches", h.logger)
			return
		}
		logging.Error(logger, "request failed", err)
		writeError(w, r, nethttp.StatusInternalServerError, "internal error", h.logger)
	}
}

func matrixParams(r *nethttp.Request) url.Values {
	return requestutil.ParseMatrix(mux.Vars(r)[VarMatrix])
}

func positiveID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadRequest
	}
	return id, nil
}

func queryBool(q url.Values, key string) (bool, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return v, nil
}

func queryInt(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New("invalid " + key)
	}
	return v, nil
}
