package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/IbbyMan/citypane/internal/frame"
	"github.com/IbbyMan/citypane/internal/gallery"
	"github.com/IbbyMan/citypane/internal/imagegen"
	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/observability"
	"github.com/IbbyMan/citypane/internal/validation"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	gallery   *gallery.Service
	manager   *frame.Manager
	generator imagegen.Generator
	logger    *zap.Logger
	// CachePing, when set, is called by the health check. Used when the cache
	// backend is memcached.
	cachePing func() error
	dbPing    func(ctx context.Context) error
	// generateTimeout bounds background generations kicked off by handlers.
	generateTimeout time.Duration
}

// NewHandler returns a new Handler.
func NewHandler(
	gallerySvc *gallery.Service,
	manager *frame.Manager,
	generator imagegen.Generator,
	logger *zap.Logger,
	cachePing func() error,
	dbPing func(ctx context.Context) error,
	generateTimeout time.Duration,
) *Handler {
	if generateTimeout <= 0 {
		generateTimeout = 3 * time.Minute
	}
	return &Handler{
		gallery:         gallerySvc,
		manager:         manager,
		generator:       generator,
		logger:          logger,
		cachePing:       cachePing,
		dbPing:          dbPing,
		generateTimeout: generateTimeout,
	}
}

// NewRouter wires all routes and middleware. Requests are counted on tracker
// so shutdown can drain them after the listener closes.
func NewRouter(h *Handler, logger *zap.Logger, limiter *rate.Limiter, requestTimeout time.Duration, tracker *InFlightTracker) *mux.Router {
	r := mux.NewRouter()
	r.Use(CorrelationIDMiddleware(logger))
	r.Use(MetricsMiddleware(tracker))

	r.HandleFunc("/health", h.GetHealth).Methods(http.MethodGet)
	r.Handle("/metrics", observability.MetricsHandler()).Methods(http.MethodGet)

	// The relay answers OPTIONS and 405s other methods itself, so it is
	// registered without a method matcher. Image generation outlives the
	// normal request timeout; the relay carries its own.
	r.Handle("/api/generate",
		RateLimitMiddleware(limiter)(TimeoutMiddleware(h.generateTimeout)(http.HandlerFunc(h.Generate))))

	api := r.PathPrefix("/api").Subrouter()
	if requestTimeout > 0 {
		api.Use(TimeoutMiddleware(requestTimeout))
	}
	api.HandleFunc("/onboard", h.Onboard).Methods(http.MethodPost)
	api.HandleFunc("/locations", h.ListLocations).Methods(http.MethodGet)
	api.HandleFunc("/frames", h.ListFrames).Methods(http.MethodGet)
	api.HandleFunc("/frames", h.AddFrame).Methods(http.MethodPost)
	api.HandleFunc("/frames/{uuid}", h.GetFrame).Methods(http.MethodGet)
	api.HandleFunc("/frames/{uuid}", h.DeleteFrame).Methods(http.MethodDelete)
	api.HandleFunc("/frames/{uuid}/refresh", h.RefreshFrame).Methods(http.MethodPost)

	return r
}

// Onboard handles POST /api/onboard. Creates the owner profile, their own
// frame, and kicks off its first generation.
func (h *Handler) Onboard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string `json:"name"`
		HomeCityID string `json:"homeCityId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	profile, selfFrame, err := h.gallery.Onboard(r.Context(), body.Name, body.HomeCityID)
	if err != nil {
		writeGalleryError(w, r, err)
		return
	}

	homeLoc, _ := locations.ByID(profile.HomeCityID)
	h.manager.SetHomeCity(homeLoc)

	o, err := h.manager.Add(selfFrame)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "failed to register frame")
		return
	}
	h.ensureAsync(o)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"profile": profile,
		"frame":   o.View(),
	})
}

// ListFrames handles GET /api/frames.
func (h *Handler) ListFrames(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"frames": h.manager.Views(),
	})
}

// AddFrame handles POST /api/frames.
func (h *Handler) AddFrame(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
		CityID   string `json:"cityId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}

	f, err := h.gallery.AddFrame(r.Context(), body.Nickname, body.CityID)
	if err != nil {
		writeGalleryError(w, r, err)
		return
	}

	o, err := h.manager.Add(f)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "failed to register frame")
		return
	}
	h.ensureAsync(o)

	writeJSON(w, http.StatusCreated, o.View())
}

// GetFrame handles GET /api/frames/{uuid}.
func (h *Handler) GetFrame(w http.ResponseWriter, r *http.Request) {
	o, ok := h.manager.Get(mux.Vars(r)["uuid"])
	if !ok {
		writeError(w, r, http.StatusNotFound, "FRAME_NOT_FOUND", "no such frame")
		return
	}
	writeJSON(w, http.StatusOK, o.View())
}

// DeleteFrame handles DELETE /api/frames/{uuid}. Removing a frame discards
// any generation still in flight for it.
func (h *Handler) DeleteFrame(w http.ResponseWriter, r *http.Request) {
	uuid := mux.Vars(r)["uuid"]
	if err := h.gallery.DeleteFrame(r.Context(), uuid); err != nil {
		writeGalleryError(w, r, err)
		return
	}
	h.manager.Remove(uuid)
	w.WriteHeader(http.StatusNoContent)
}

// RefreshFrame handles POST /api/frames/{uuid}/refresh: forced regeneration
// with fresh weather and an evicted cache entry. Responds 202 with the frame
// already in its loading state.
func (h *Handler) RefreshFrame(w http.ResponseWriter, r *http.Request) {
	o, ok := h.manager.Get(mux.Vars(r)["uuid"])
	if !ok {
		writeError(w, r, http.StatusNotFound, "FRAME_NOT_FOUND", "no such frame")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.generateTimeout)
		defer cancel()
		o.Refresh(ctx)
	}()

	writeJSON(w, http.StatusAccepted, o.View())
}

// ListLocations handles GET /api/locations.
func (h *Handler) ListLocations(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		ID      string `json:"id"`
		NameEN  string `json:"nameEn"`
		NameCN  string `json:"nameCn"`
		Special bool   `json:"special"`
	}
	all := locations.All()
	out := make([]entry, 0, len(all))
	for _, loc := range all {
		out = append(out, entry{ID: loc.ID, NameEN: loc.NameEN, NameCN: loc.NameCN, Special: loc.Special})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"locations": out})
}

// GetHealth handles GET /health. Reports per-dependency checks; any unhealthy
// dependency turns the overall status and yields a 503.
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	healthy := true

	if h.dbPing != nil {
		if err := h.dbPing(r.Context()); err != nil {
			checks["gallery"] = "unhealthy"
			healthy = false
		} else {
			checks["gallery"] = "healthy"
		}
	}
	if h.cachePing != nil {
		if err := h.cachePing(); err != nil {
			checks["cache"] = "unhealthy"
			healthy = false
		} else {
			checks["cache"] = "healthy"
		}
	}

	status := "healthy"
	statusCode := http.StatusOK
	if !healthy {
		status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, map[string]interface{}{
		"status":    status,
		"service":   "citypane",
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ensureAsync runs a frame's first generation off the request goroutine so
// creation responds immediately with the loading state.
func (h *Handler) ensureAsync(o *frame.Orchestrator) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.generateTimeout)
		defer cancel()
		o.Ensure(ctx)
	}()
}

// writeGalleryError maps gallery sentinel errors onto the API error contract.
func writeGalleryError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, gallery.ErrFrameLimit):
		writeError(w, r, http.StatusConflict, "FRAME_LIMIT", "gallery is full")
	case errors.Is(err, gallery.ErrUnknownCity):
		writeError(w, r, http.StatusBadRequest, "UNKNOWN_CITY", "city is not in the registry")
	case errors.Is(err, gallery.ErrNotOnboarded):
		writeError(w, r, http.StatusConflict, "NOT_ONBOARDED", "onboarding required first")
	case errors.Is(err, gallery.ErrAlreadyOnboarded):
		writeError(w, r, http.StatusConflict, "ALREADY_ONBOARDED", "profile already exists")
	case errors.Is(err, gallery.ErrFrameNotFound):
		writeError(w, r, http.StatusNotFound, "FRAME_NOT_FOUND", "no such frame")
	case errors.Is(err, gallery.ErrSelfFrame):
		writeError(w, r, http.StatusForbidden, "SELF_FRAME", "own frame cannot be deleted")
	case errors.Is(err, validation.ErrNicknameEmpty),
		errors.Is(err, validation.ErrNicknameTooLong),
		errors.Is(err, validation.ErrNicknameInvalidChars):
		writeError(w, r, http.StatusBadRequest, "INVALID_NICKNAME", err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "INTERNAL", "internal error")
		if logger, ok := r.Context().Value("logger").(*zap.Logger); ok && logger != nil {
			logger.Error("gallery operation failed", zap.Error(err))
		}
	}
}

// writeJSON writes a JSON response with the specified HTTP status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes an error response in the standard error format with code,
// message, and requestId (correlation ID) if available in request context.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	corrID := ""
	if v := r.Context().Value("correlation_id"); v != nil {
		corrID = v.(string)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":      code,
			"message":   message,
			"requestId": corrID,
		},
	})
}
