package profile

import (
	"context"
	"time"
)

// About is the free-form part of a profile.
type About struct {
	Description string `json:"description"`
	IsSmoker    bool   `json:"isSmoker"`
	Alcohol     string `json:"alcohol"`
	Religion    string `json:"religion"`
}

// Preferences describe whom the user wants to be matched with.
type Preferences struct {
	PreferredSex    string `json:"preferredSex"`
	MinPreferredAge int    `json:"minPreferredAge"`
	MaxPreferredAge int    `json:"maxPreferredAge"`
	SearchRadiusKm  int    `json:"searchRadiusKm"`
}

// Location is the last reported position in WGS84 degrees.
type Location struct {
	Longitude   float64   `json:"longitude"`
	Latitude    float64   `json:"latitude"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// Photo references an image kept in external blob storage.
type Photo struct {
	BlobURL    string    `json:"blobUrl,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Profile aggregates the sections. A nil section has not been provisioned.
type Profile struct {
	About       *About       `json:"about"`
	Location    *Location    `json:"location"`
	Preferences *Preferences `json:"preferences"`
	Photo       *Photo       `json:"photo"`
}

// UpdateRequest replaces about, location and preferences in one call.
type UpdateRequest struct {
	About       *About       `json:"about"`
	Location    *Location    `json:"location"`
	Preferences *Preferences `json:"preferences"`
}

// Repository persists profile sections keyed by user id.
type Repository interface {
	GetAbout(ctx context.Context, userID string) (About, bool, error)
	GetPreferences(ctx context.Context, userID string) (Preferences, bool, error)
	GetLocation(ctx context.Context, userID string) (Location, bool, error)
	GetPhoto(ctx context.Context, userID string) (Photo, bool, error)
	// EnsureDefaults inserts each non-nil section of defaults that the user
	// does not have yet. Existing sections are left untouched.
	EnsureDefaults(ctx context.Context, userID string, defaults Profile) error
	// Save upserts about, preferences and location together.
	Save(ctx context.Context, userID string, about About, prefs Preferences, loc Location) error
	SavePhoto(ctx context.Context, userID string, photo Photo) error
}

// DefaultAbout is provisioned for new accounts.
func DefaultAbout() About {
	return About{Description: "", IsSmoker: false, Alcohol: "None", Religion: "Other"}
}

// DefaultPreferences is provisioned for new accounts.
func DefaultPreferences() Preferences {
	return Preferences{PreferredSex: "both", MinPreferredAge: 18, MaxPreferredAge: 100, SearchRadiusKm: 1}
}
