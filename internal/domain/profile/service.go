package profile

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/yanqian/rencard-user/pkg/errors"
	"github.com/yanqian/rencard-user/pkg/util"
)

// Service manages the profile sections of an account.
type Service interface {
	// Provision creates any missing default section. It is idempotent.
	Provision(ctx context.Context, userID string) error
	Get(ctx context.Context, userID string) (Profile, error)
	// Update returns a *ValidationError when the request is rejected.
	Update(ctx context.Context, userID string, req UpdateRequest) error
	SetPhoto(ctx context.Context, userID, blobURL string) (Photo, error)
}

type service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs a Service instance.
func NewService(repo Repository, logger *slog.Logger) Service {
	return &service{repo: repo, logger: logger.With("component", "profile.service"), now: util.NowUTC}
}

func (s *service) Provision(ctx context.Context, userID string) error {
	now := s.now()
	about := DefaultAbout()
	prefs := DefaultPreferences()
	defaults := Profile{
		About:       &about,
		Preferences: &prefs,
		Location:    &Location{LastUpdated: now},
		Photo:       &Photo{UploadedAt: now},
	}
	if err := s.repo.EnsureDefaults(ctx, userID, defaults); err != nil {
		return apperrors.Wrap(apperrors.CodeProfile, "failed to provision profile", err)
	}
	s.logger.Debug("profile provisioned", "user_id", userID)
	return nil
}

// Get loads every section concurrently.
func (s *service) Get(ctx context.Context, userID string) (Profile, error) {
	var out Profile
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		about, ok, err := s.repo.GetAbout(gctx, userID)
		if ok {
			out.About = &about
		}
		return err
	})
	g.Go(func() error {
		prefs, ok, err := s.repo.GetPreferences(gctx, userID)
		if ok {
			out.Preferences = &prefs
		}
		return err
	})
	g.Go(func() error {
		loc, ok, err := s.repo.GetLocation(gctx, userID)
		if ok {
			out.Location = &loc
		}
		return err
	})
	g.Go(func() error {
		photo, ok, err := s.repo.GetPhoto(gctx, userID)
		if ok {
			out.Photo = &photo
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return Profile{}, apperrors.Wrap(apperrors.CodeProfile, "failed to load profile", err)
	}
	return out, nil
}

// Update replaces the editable sections. Location.LastUpdated is always
// stamped with the server clock.
func (s *service) Update(ctx context.Context, userID string, req UpdateRequest) error {
	if errs := validateUpdate(req); len(errs) > 0 {
		return &ValidationError{Messages: errs}
	}
	loc := *req.Location
	loc.LastUpdated = s.now()
	if err := s.repo.Save(ctx, userID, *req.About, *req.Preferences, loc); err != nil {
		return apperrors.Wrap(apperrors.CodeProfile, "failed to update profile", err)
	}
	return nil
}

func (s *service) SetPhoto(ctx context.Context, userID, blobURL string) (Photo, error) {
	if errs := validatePhotoURL(blobURL); len(errs) > 0 {
		return Photo{}, &ValidationError{Messages: errs}
	}
	photo := Photo{BlobURL: blobURL, UploadedAt: s.now()}
	if err := s.repo.SavePhoto(ctx, userID, photo); err != nil {
		return Photo{}, apperrors.Wrap(apperrors.CodeProfile, "failed to save photo", err)
	}
	return photo, nil
}
