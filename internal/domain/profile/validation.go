package profile

import (
	"net/url"
	"strings"
)

const maxDescriptionLength = 500

var (
	alcoholLevels  = map[string]struct{}{"None": {}, "Rarely": {}, "Frequently": {}}
	preferredSexes = map[string]struct{}{"male": {}, "female": {}, "both": {}}
)

// ValidationError lists every rejected field of an update.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

func validateUpdate(req UpdateRequest) []string {
	var errs []string
	if req.About == nil {
		errs = append(errs, "About is required.")
	} else {
		errs = append(errs, validateAbout(*req.About)...)
	}
	if req.Location == nil {
		errs = append(errs, "Location is required.")
	} else {
		errs = append(errs, validateLocation(*req.Location)...)
	}
	if req.Preferences == nil {
		errs = append(errs, "Preferences are required.")
	} else {
		errs = append(errs, validatePreferences(*req.Preferences)...)
	}
	return errs
}

func validateAbout(a About) []string {
	var errs []string
	if len([]rune(a.Description)) > maxDescriptionLength {
		errs = append(errs, "Description must be at most 500 characters.")
	}
	if _, ok := alcoholLevels[a.Alcohol]; !ok {
		errs = append(errs, "Alcohol must be one of 'None', 'Rarely' or 'Frequently'.")
	}
	if strings.TrimSpace(a.Religion) == "" {
		errs = append(errs, "Religion is required.")
	}
	return errs
}

func validatePreferences(p Preferences) []string {
	var errs []string
	if _, ok := preferredSexes[p.PreferredSex]; !ok {
		errs = append(errs, "Preferred sex must be 'male', 'female' or 'both'.")
	}
	if p.MinPreferredAge < 18 {
		errs = append(errs, "Minimum preferred age must be at least 18.")
	}
	if p.MaxPreferredAge > 100 {
		errs = append(errs, "Maximum preferred age must not exceed 100.")
	}
	if p.MinPreferredAge > p.MaxPreferredAge {
		errs = append(errs, "Minimum preferred age must not exceed maximum preferred age.")
	}
	if p.SearchRadiusKm < 1 {
		errs = append(errs, "Search radius must be at least 1 km.")
	}
	return errs
}

func validateLocation(l Location) []string {
	var errs []string
	if l.Longitude < -180 || l.Longitude > 180 {
		errs = append(errs, "Longitude must be between -180 and 180.")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		errs = append(errs, "Latitude must be between -90 and 90.")
	}
	return errs
}

func validatePhotoURL(raw string) []string {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return []string{"Photo URL must be an absolute http(s) URL."}
	}
	return nil
}
