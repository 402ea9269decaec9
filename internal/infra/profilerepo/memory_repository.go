package profilerepo

import (
	"context"
	"sync"

	"github.com/yanqian/rencard-user/internal/domain/profile"
)

// MemoryRepository keeps profile sections in process memory.
type MemoryRepository struct {
	mu          sync.RWMutex
	about       map[string]profile.About
	preferences map[string]profile.Preferences
	locations   map[string]profile.Location
	photos      map[string]profile.Photo
}

// NewMemoryRepository constructs an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		about:       make(map[string]profile.About),
		preferences: make(map[string]profile.Preferences),
		locations:   make(map[string]profile.Location),
		photos:      make(map[string]profile.Photo),
	}
}

func (r *MemoryRepository) GetAbout(_ context.Context, userID string) (profile.About, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.about[userID]
	return v, ok, nil
}

func (r *MemoryRepository) GetPreferences(_ context.Context, userID string) (profile.Preferences, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.preferences[userID]
	return v, ok, nil
}

func (r *MemoryRepository) GetLocation(_ context.Context, userID string) (profile.Location, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.locations[userID]
	return v, ok, nil
}

func (r *MemoryRepository) GetPhoto(_ context.Context, userID string) (profile.Photo, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.photos[userID]
	return v, ok, nil
}

func (r *MemoryRepository) EnsureDefaults(_ context.Context, userID string, defaults profile.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.about[userID]; !ok && defaults.About != nil {
		r.about[userID] = *defaults.About
	}
	if _, ok := r.preferences[userID]; !ok && defaults.Preferences != nil {
		r.preferences[userID] = *defaults.Preferences
	}
	if _, ok := r.locations[userID]; !ok && defaults.Location != nil {
		r.locations[userID] = *defaults.Location
	}
	if _, ok := r.photos[userID]; !ok && defaults.Photo != nil {
		r.photos[userID] = *defaults.Photo
	}
	return nil
}

func (r *MemoryRepository) Save(_ context.Context, userID string, about profile.About, prefs profile.Preferences, loc profile.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.about[userID] = about
	r.preferences[userID] = prefs
	r.locations[userID] = loc
	return nil
}

func (r *MemoryRepository) SavePhoto(_ context.Context, userID string, photo profile.Photo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photos[userID] = photo
	return nil
}

var _ profile.Repository = (*MemoryRepository)(nil)
