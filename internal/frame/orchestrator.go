// Package frame drives image generation for gallery frames. Each frame owns a
// small state machine (idle, loading, success, error) and the cache-aside flow
// around the image provider.
package frame

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/cache"
	"github.com/IbbyMan/citypane/internal/imagegen"
	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
	"github.com/IbbyMan/citypane/internal/observability"
	"github.com/IbbyMan/citypane/internal/scene"
	"github.com/IbbyMan/citypane/internal/sound"
)

// State is a frame's position in the generation lifecycle.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateError   State = "error"
)

// Error codes surfaced to clients.
const (
	ErrCodeTokenExhausted       = "TOKEN_EXHAUSTED"
	ErrCodeAllModelsUnavailable = "ALL_MODELS_UNAVAILABLE"
	ErrCodeGenerationFailed     = "GENERATION_FAILED"
)

// User-facing error copy.
const (
	quotaUserMessage   = "API 调用请求成功，但是 token 已用完，请联系 ibby 充值。"
	genericUserMessage = "窗外的风景暂时无法送达，请稍后再试。"
)

// Deps are the collaborators an orchestrator needs.
type Deps struct {
	Cache     cache.Store
	Generator imagegen.Generator
	Weather   WeatherSource
	Messages  *scene.MessagePicker
	Logger    *zap.Logger
	// HomeCityName returns the gallery owner's home city name for loading copy.
	HomeCityName func() string
}

// WeatherSource resolves current conditions for a location.
type WeatherSource interface {
	Snapshot(ctx context.Context, loc locations.Location) models.WeatherSnapshot
}

// View is a read-only snapshot of a frame for serving.
type View struct {
	UUID           string                 `json:"uuid"`
	Type           models.FrameType       `json:"type"`
	Nickname       string                 `json:"nickname"`
	CityID         string                 `json:"cityId"`
	CityNameEN     string                 `json:"cityNameEn"`
	CityNameCN     string                 `json:"cityNameCn"`
	State          State                  `json:"state"`
	ImageURL       string                 `json:"imageUrl,omitempty"`
	LoadingMessage string                 `json:"loadingMessage,omitempty"`
	ErrorMessage   string                 `json:"errorMessage,omitempty"`
	ErrorCode      string                 `json:"errorCode,omitempty"`
	Weather        models.WeatherSnapshot `json:"weather"`
	Sound          string                 `json:"sound"`
}

// Orchestrator runs the generation lifecycle for one frame. All state is
// guarded by mu; generation itself happens outside the lock and results are
// applied only if the frame's epoch has not moved on (a close or forced
// refresh bumps the epoch, so stale results are discarded silently).
type Orchestrator struct {
	frame models.Frame
	loc   locations.Location
	deps  Deps

	mu             sync.Mutex
	snap           models.WeatherSnapshot
	hasSnap        bool
	state          State
	imageURL       string
	loadingMessage string
	errorMessage   string
	errorCode      string
	currentKey     string
	epoch          uint64
	inFlight       bool
}

// New creates an idle orchestrator for a persisted frame.
func New(f models.Frame, loc locations.Location, deps Deps) *Orchestrator {
	return &Orchestrator{frame: f, loc: loc, deps: deps, state: StateIdle}
}

// Frame returns the persisted frame record.
func (o *Orchestrator) Frame() models.Frame { return o.frame }

// UpdateWeather fetches fresh conditions and reports whether the scene cache
// key changed as a result. A changed key means the current image no longer
// matches the scene and the caller should regenerate.
func (o *Orchestrator) UpdateWeather(ctx context.Context) bool {
	snap := o.deps.Weather.Snapshot(ctx, o.loc)

	o.mu.Lock()
	defer o.mu.Unlock()
	prevKey := o.currentKey
	o.snap = snap
	o.hasSnap = true
	newKey := scene.Compose(o.loc, snap).Key.String()
	return prevKey != "" && prevKey != newKey
}

// Ensure brings the frame to a terminal state for the current scene. It is a
// no-op when a generation is already in flight or when the frame already shows
// a successful image for the current scene key.
func (o *Orchestrator) Ensure(ctx context.Context) {
	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return
	}
	needsWeather := !o.hasSnap
	o.mu.Unlock()

	if needsWeather {
		o.UpdateWeather(ctx)
	}

	o.mu.Lock()
	sc := scene.Compose(o.loc, o.snap)
	if o.inFlight || (o.state == StateSuccess && o.currentKey == sc.Key.String()) {
		o.mu.Unlock()
		return
	}
	epoch := o.beginLoadingLocked(sc)
	o.mu.Unlock()

	o.generate(ctx, sc, epoch, false)
}

// Refresh forces a regeneration: fresh weather, cache entry evicted first,
// provider called unconditionally. Any generation already in flight is
// invalidated and its result will be discarded.
func (o *Orchestrator) Refresh(ctx context.Context) {
	snap := o.deps.Weather.Snapshot(ctx, o.loc)

	o.mu.Lock()
	o.epoch++
	o.snap = snap
	o.hasSnap = true
	sc := scene.Compose(o.loc, snap)
	epoch := o.beginLoadingLocked(sc)
	o.mu.Unlock()

	if err := o.deps.Cache.Evict(ctx, sc.Key.String()); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("evict").Inc()
		o.deps.Logger.Warn("cache evict failed before forced refresh",
			zap.String("key", sc.Key.String()), zap.Error(err))
	}

	o.generate(ctx, sc, epoch, true)
}

// Close invalidates any in-flight generation. The orchestrator must not be
// reused after Close; a late result is dropped without touching state.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.epoch++
	o.inFlight = false
}

// beginLoadingLocked transitions to loading and returns the epoch the caller
// must present when applying the result. Callers hold mu.
func (o *Orchestrator) beginLoadingLocked(sc scene.Scene) uint64 {
	o.inFlight = true
	o.state = StateLoading
	o.errorMessage = ""
	o.errorCode = ""
	o.loadingMessage = o.deps.Messages.LoadingMessage(
		o.loc.NameCN, o.frame.Nickname, o.deps.HomeCityName(), sc.Key.TimeOfDay, o.loc.Special)
	return o.epoch
}

// generate runs the cache-aside flow. force skips the cache read (forced
// refresh already evicted the key, the skip just removes the race window).
func (o *Orchestrator) generate(ctx context.Context, sc scene.Scene, epoch uint64, force bool) {
	key := sc.Key.String()

	if !force {
		imageURL, hit, err := o.deps.Cache.Get(ctx, key)
		if err != nil {
			observability.CacheErrorsTotal.WithLabelValues("get").Inc()
			o.deps.Logger.Warn("cache read failed, generating",
				zap.String("key", key), zap.Error(err))
		}
		if hit {
			observability.CacheHitsTotal.WithLabelValues("image").Inc()
			o.applySuccess(epoch, key, imageURL, "cache_hit")
			return
		}
	}

	result, err := o.deps.Generator.Generate(ctx, models.GenerationRequest{
		Prompt:         sc.Prompt,
		NegativePrompt: sc.NegativePrompt,
	})
	if err != nil {
		o.applyError(epoch, err)
		return
	}

	// A cache write failure costs one regeneration later, never the frame.
	if err := o.deps.Cache.Set(ctx, key, result.ImageURL); err != nil {
		observability.CacheErrorsTotal.WithLabelValues("set").Inc()
		o.deps.Logger.Warn("cache write failed, serving uncached image",
			zap.String("key", key), zap.Error(err))
	}

	o.applySuccess(epoch, key, result.ImageURL, "success")
}

func (o *Orchestrator) applySuccess(epoch uint64, key, imageURL, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != epoch {
		observability.GenerationsTotal.WithLabelValues("discarded").Inc()
		return
	}
	observability.GenerationsTotal.WithLabelValues(outcome).Inc()
	o.inFlight = false
	o.state = StateSuccess
	o.imageURL = imageURL
	o.currentKey = key
	o.loadingMessage = ""
}

func (o *Orchestrator) applyError(epoch uint64, err error) {
	code := ErrCodeGenerationFailed
	message := genericUserMessage

	var allModels *imagegen.AllModelsUnavailableError
	switch {
	case errors.Is(err, imagegen.ErrQuotaExhausted):
		code = ErrCodeTokenExhausted
		message = quotaUserMessage
	case errors.As(err, &allModels):
		code = ErrCodeAllModelsUnavailable
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.epoch != epoch {
		observability.GenerationsTotal.WithLabelValues("discarded").Inc()
		return
	}
	observability.GenerationsTotal.WithLabelValues("error").Inc()
	o.deps.Logger.Error("frame generation failed",
		zap.String("frameUuid", o.frame.UUID),
		zap.String("cityId", o.frame.CityID),
		zap.String("errorCode", code),
		zap.Error(err))
	o.inFlight = false
	o.state = StateError
	o.errorMessage = message
	o.errorCode = code
	o.loadingMessage = ""
}

// View returns the frame's current presentation state. Sound is derived fresh
// on every call rather than stored.
func (o *Orchestrator) View() View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return View{
		UUID:           o.frame.UUID,
		Type:           o.frame.Type,
		Nickname:       o.frame.Nickname,
		CityID:         o.frame.CityID,
		CityNameEN:     o.loc.NameEN,
		CityNameCN:     o.loc.NameCN,
		State:          o.state,
		ImageURL:       o.imageURL,
		LoadingMessage: o.loadingMessage,
		ErrorMessage:   o.errorMessage,
		ErrorCode:      o.errorCode,
		Weather:        o.snap,
		Sound:          sound.Select(o.loc, o.snap.Weather, o.snap.LocalTime.Hour()),
	}
}
