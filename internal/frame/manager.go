package frame

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
	"github.com/IbbyMan/citypane/internal/observability"
)

// Manager owns the live orchestrators for every registered frame and runs the
// periodic sweeps (weather poll, forced refresh) across them.
type Manager struct {
	deps Deps

	mu           sync.RWMutex
	frames       map[string]*Orchestrator
	homeCityName string
}

// NewManager creates an empty manager. The orchestrator deps' HomeCityName is
// wired to the manager so loading copy follows SetHomeCity.
func NewManager(deps Deps) *Manager {
	m := &Manager{frames: make(map[string]*Orchestrator)}
	deps.HomeCityName = m.HomeCityName
	m.deps = deps
	return m
}

// SetHomeCity records the gallery owner's home city for loading copy.
func (m *Manager) SetHomeCity(loc locations.Location) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.homeCityName = loc.NameCN
}

// HomeCityName returns the owner's home city name, or empty before onboarding.
func (m *Manager) HomeCityName() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.homeCityName
}

// Add registers a persisted frame and returns its orchestrator. The frame's
// city must exist in the location registry.
func (m *Manager) Add(f models.Frame) (*Orchestrator, error) {
	loc, ok := locations.ByID(f.CityID)
	if !ok {
		return nil, fmt.Errorf("unknown city %q for frame %s", f.CityID, f.UUID)
	}

	o := New(f, loc, m.deps)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.frames[f.UUID]; ok {
		existing.Close()
	} else {
		observability.FramesActive.Inc()
	}
	m.frames[f.UUID] = o
	return o, nil
}

// Remove closes and forgets a frame's orchestrator. Any in-flight generation
// result is discarded.
func (m *Manager) Remove(uuid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.frames[uuid]; ok {
		o.Close()
		delete(m.frames, uuid)
		observability.FramesActive.Dec()
	}
}

// Get returns the orchestrator for a frame UUID.
func (m *Manager) Get(uuid string) (*Orchestrator, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.frames[uuid]
	return o, ok
}

func (m *Manager) all() []*Orchestrator {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Orchestrator, 0, len(m.frames))
	for _, o := range m.frames {
		out = append(out, o)
	}
	return out
}

// Views returns a snapshot of every frame, oldest first.
func (m *Manager) Views() []View {
	orchestrators := m.all()
	sort.Slice(orchestrators, func(i, j int) bool {
		return orchestrators[i].Frame().CreatedAt < orchestrators[j].Frame().CreatedAt
	})
	views := make([]View, 0, len(orchestrators))
	for _, o := range orchestrators {
		views = append(views, o.View())
	}
	return views
}

// EnsureAll brings every frame to a terminal state for its current scene.
// Used at startup and after onboarding.
func (m *Manager) EnsureAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, o := range m.all() {
		wg.Add(1)
		go func(o *Orchestrator) {
			defer wg.Done()
			o.Ensure(ctx)
		}(o)
	}
	wg.Wait()
}

// PollWeather refreshes conditions for every frame and regenerates those whose
// scene key changed. Frames whose scene is unchanged keep their image.
func (m *Manager) PollWeather(ctx context.Context) {
	var wg sync.WaitGroup
	for _, o := range m.all() {
		wg.Add(1)
		go func(o *Orchestrator) {
			defer wg.Done()
			if o.UpdateWeather(ctx) {
				m.deps.Logger.Info("scene changed after weather poll, regenerating",
					zap.String("frameUuid", o.Frame().UUID),
					zap.String("cityId", o.Frame().CityID))
				o.Ensure(ctx)
			}
		}(o)
	}
	wg.Wait()
}

// RefreshAll forces regeneration of every frame: fresh weather, evicted cache
// entries, unconditional provider calls.
func (m *Manager) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, o := range m.all() {
		wg.Add(1)
		go func(o *Orchestrator) {
			defer wg.Done()
			o.Refresh(ctx)
		}(o)
	}
	wg.Wait()
}
