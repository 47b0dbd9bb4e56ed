package gallery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return NewService(store, zap.NewNop())
}

// TestOnboard verifies that onboarding creates the profile and the owner's own
// frame in the home city.
func TestOnboard(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	profile, self, err := svc.Onboard(ctx, "ibby", "beijing")
	if err != nil {
		t.Fatalf("Onboard() error = %v", err)
	}
	if profile.Name != "ibby" || profile.HomeCityID != "beijing" {
		t.Errorf("profile = %+v", profile)
	}
	if self.Type != models.FrameSelf || self.CityID != "beijing" || self.Nickname != "ibby" {
		t.Errorf("self frame = %+v", self)
	}
	if self.UUID == "" {
		t.Error("self frame missing UUID")
	}

	frames, err := svc.Frames(ctx)
	if err != nil {
		t.Fatalf("Frames() error = %v", err)
	}
	if len(frames) != 1 {
		t.Errorf("Frames() len = %d, want 1", len(frames))
	}
}

// TestOnboard_Twice verifies the one-time onboarding guard.
func TestOnboard_Twice(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, _, err := svc.Onboard(ctx, "ibby", "beijing"); err != nil {
		t.Fatalf("first Onboard() error = %v", err)
	}
	_, _, err := svc.Onboard(ctx, "other", "london")
	if !errors.Is(err, ErrAlreadyOnboarded) {
		t.Errorf("second Onboard() error = %v, want ErrAlreadyOnboarded", err)
	}
}

// TestOnboard_Validation verifies nickname and city checks.
func TestOnboard_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, _, err := svc.Onboard(ctx, "   ", "beijing"); err == nil {
		t.Error("Onboard() with blank name succeeded, want error")
	}
	if _, _, err := svc.Onboard(ctx, "ibby", "atlantis"); !errors.Is(err, ErrUnknownCity) {
		t.Errorf("Onboard() with unknown city error = %v, want ErrUnknownCity", err)
	}
}

// TestAddFrame_RequiresOnboarding verifies that connection frames cannot be
// added before a profile exists.
func TestAddFrame_RequiresOnboarding(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, err := svc.AddFrame(ctx, "kei", "tokyo")
	if !errors.Is(err, ErrNotOnboarded) {
		t.Errorf("AddFrame() error = %v, want ErrNotOnboarded", err)
	}
}

// TestAddFrame_Limit verifies the frame cap including the owner's own frame.
func TestAddFrame_Limit(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, _, err := svc.Onboard(ctx, "ibby", "beijing"); err != nil {
		t.Fatalf("Onboard() error = %v", err)
	}

	// The self frame occupies one slot, so MaxFrames-1 more fit.
	for i := 0; i < MaxFrames-1; i++ {
		if _, err := svc.AddFrame(ctx, fmt.Sprintf("friend%d", i), "tokyo"); err != nil {
			t.Fatalf("AddFrame(%d) error = %v", i, err)
		}
	}

	_, err := svc.AddFrame(ctx, "one-too-many", "tokyo")
	if !errors.Is(err, ErrFrameLimit) {
		t.Errorf("AddFrame() over the cap error = %v, want ErrFrameLimit", err)
	}
}

// TestDeleteFrame verifies deletion rules: connections are deletable, the
// owner's own frame is not, unknown UUIDs 404.
func TestDeleteFrame(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, self, err := svc.Onboard(ctx, "ibby", "beijing")
	if err != nil {
		t.Fatalf("Onboard() error = %v", err)
	}
	conn, err := svc.AddFrame(ctx, "kei", "tokyo")
	if err != nil {
		t.Fatalf("AddFrame() error = %v", err)
	}

	if err := svc.DeleteFrame(ctx, conn.UUID); err != nil {
		t.Errorf("DeleteFrame(connection) error = %v", err)
	}
	if err := svc.DeleteFrame(ctx, self.UUID); !errors.Is(err, ErrSelfFrame) {
		t.Errorf("DeleteFrame(self) error = %v, want ErrSelfFrame", err)
	}
	if err := svc.DeleteFrame(ctx, "no-such-uuid"); !errors.Is(err, ErrFrameNotFound) {
		t.Errorf("DeleteFrame(unknown) error = %v, want ErrFrameNotFound", err)
	}
}

// TestBootstrap_DropsUnknownCities verifies that frames pointing at cities no
// longer in the registry are purged at startup rather than served broken.
func TestBootstrap_DropsUnknownCities(t *testing.T) {
	ctx := context.Background()
	store, err := OpenStore(":memory:")
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	svc := NewService(store, zap.NewNop())

	if _, _, err := svc.Onboard(ctx, "ibby", "beijing"); err != nil {
		t.Fatalf("Onboard() error = %v", err)
	}
	// Insert a frame for a city that was since removed from the registry.
	if err := store.InsertFrame(ctx, models.Frame{
		UUID: "orphan", Type: models.FrameConnection, Nickname: "x", CityID: "gone-city", CreatedAt: 2,
	}); err != nil {
		t.Fatalf("InsertFrame() error = %v", err)
	}

	_, onboarded, frames, err := svc.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if !onboarded {
		t.Error("Bootstrap() onboarded = false, want true")
	}
	if len(frames) != 1 {
		t.Fatalf("Bootstrap() kept %d frames, want 1", len(frames))
	}

	// The orphan is gone from the database too.
	remaining, _ := store.Frames(ctx)
	for _, f := range remaining {
		if f.UUID == "orphan" {
			t.Error("orphan frame still in database after bootstrap")
		}
	}
}

// TestBootstrap_BeforeOnboarding verifies the empty-state path.
func TestBootstrap_BeforeOnboarding(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	_, onboarded, frames, err := svc.Bootstrap(ctx)
	if err != nil {
		t.Fatalf("Bootstrap() error = %v", err)
	}
	if onboarded {
		t.Error("onboarded = true before any onboarding")
	}
	if len(frames) != 0 {
		t.Errorf("frames = %d, want 0", len(frames))
	}
}
