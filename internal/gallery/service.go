package gallery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/IbbyMan/citypane/internal/locations"
	"github.com/IbbyMan/citypane/internal/models"
	"github.com/IbbyMan/citypane/internal/validation"
)

// MaxFrames caps the gallery size, the owner's own window included.
const MaxFrames = 12

var (
	ErrFrameLimit       = errors.New("frame limit reached")
	ErrUnknownCity      = errors.New("unknown city")
	ErrNotOnboarded     = errors.New("not onboarded")
	ErrAlreadyOnboarded = errors.New("already onboarded")
	ErrFrameNotFound    = errors.New("frame not found")
	ErrSelfFrame        = errors.New("cannot delete own frame")
)

// Service enforces gallery rules over the store: the frame cap, city registry
// membership, nickname validity, and the one-time onboarding flow.
type Service struct {
	store  *Store
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a gallery service.
func NewService(store *Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Onboard creates the owner's profile and their own frame in the home city.
// It fails if a profile already exists.
func (s *Service) Onboard(ctx context.Context, name, homeCityID string) (models.Profile, models.Frame, error) {
	name, err := validation.ValidateNickname(name)
	if err != nil {
		return models.Profile{}, models.Frame{}, err
	}
	if _, ok := locations.ByID(homeCityID); !ok {
		return models.Profile{}, models.Frame{}, fmt.Errorf("%w: %s", ErrUnknownCity, homeCityID)
	}
	if _, exists, err := s.store.Profile(ctx); err != nil {
		return models.Profile{}, models.Frame{}, err
	} else if exists {
		return models.Profile{}, models.Frame{}, ErrAlreadyOnboarded
	}

	profile := models.Profile{Name: name, HomeCityID: homeCityID}
	if err := s.store.SaveProfile(ctx, profile); err != nil {
		return models.Profile{}, models.Frame{}, err
	}

	self := models.Frame{
		UUID:      uuid.New().String(),
		Type:      models.FrameSelf,
		Nickname:  name,
		CityID:    homeCityID,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.store.InsertFrame(ctx, self); err != nil {
		return models.Profile{}, models.Frame{}, err
	}

	s.logger.Info("gallery onboarded",
		zap.String("homeCityId", homeCityID),
		zap.String("selfFrameUuid", self.UUID))
	return profile, self, nil
}

// AddFrame adds a connection frame, enforcing the frame cap.
func (s *Service) AddFrame(ctx context.Context, nickname, cityID string) (models.Frame, error) {
	if _, exists, err := s.store.Profile(ctx); err != nil {
		return models.Frame{}, err
	} else if !exists {
		return models.Frame{}, ErrNotOnboarded
	}
	nickname, err := validation.ValidateNickname(nickname)
	if err != nil {
		return models.Frame{}, err
	}
	if _, ok := locations.ByID(cityID); !ok {
		return models.Frame{}, fmt.Errorf("%w: %s", ErrUnknownCity, cityID)
	}

	count, err := s.store.CountFrames(ctx)
	if err != nil {
		return models.Frame{}, err
	}
	if count >= MaxFrames {
		return models.Frame{}, ErrFrameLimit
	}

	f := models.Frame{
		UUID:      uuid.New().String(),
		Type:      models.FrameConnection,
		Nickname:  nickname,
		CityID:    cityID,
		CreatedAt: s.now().UnixMilli(),
	}
	if err := s.store.InsertFrame(ctx, f); err != nil {
		return models.Frame{}, err
	}
	return f, nil
}

// DeleteFrame removes a connection frame. The owner's own frame cannot be
// deleted.
func (s *Service) DeleteFrame(ctx context.Context, frameUUID string) error {
	f, found, err := s.store.FrameByUUID(ctx, frameUUID)
	if err != nil {
		return err
	}
	if !found {
		return ErrFrameNotFound
	}
	if f.Type == models.FrameSelf {
		return ErrSelfFrame
	}
	if _, err := s.store.DeleteFrame(ctx, frameUUID); err != nil {
		return err
	}
	return nil
}

// Frames returns all persisted frames, oldest first.
func (s *Service) Frames(ctx context.Context) ([]models.Frame, error) {
	return s.store.Frames(ctx)
}

// Profile returns the owner's profile if onboarding has happened.
func (s *Service) Profile(ctx context.Context) (models.Profile, bool, error) {
	return s.store.Profile(ctx)
}

// Bootstrap loads the persisted state for startup. Frames referencing cities
// no longer in the registry are dropped from the database rather than served
// broken.
func (s *Service) Bootstrap(ctx context.Context) (models.Profile, bool, []models.Frame, error) {
	profile, onboarded, err := s.store.Profile(ctx)
	if err != nil {
		return models.Profile{}, false, nil, err
	}

	frames, err := s.store.Frames(ctx)
	if err != nil {
		return models.Profile{}, false, nil, err
	}

	kept := frames[:0]
	for _, f := range frames {
		if _, ok := locations.ByID(f.CityID); !ok {
			s.logger.Warn("dropping frame with unknown city",
				zap.String("frameUuid", f.UUID),
				zap.String("cityId", f.CityID))
			if _, err := s.store.DeleteFrame(ctx, f.UUID); err != nil {
				return models.Profile{}, false, nil, err
			}
			continue
		}
		kept = append(kept, f)
	}
	return profile, onboarded, kept, nil
}
