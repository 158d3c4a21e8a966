// Package tryouts holds the static AAU basketball tryout listing: an embedded
// dataset plus the filtering and sorting applied to it by the listing API.
package tryouts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

//go:embed tryouts.json
var rawTryouts []byte

// Tryout is a single tryout listing.
type Tryout struct {
	ID                   string `json:"id"`
	TeamName             string `json:"teamName"`
	OrganizationName     string `json:"organizationName,omitempty"`
	AgeGroup             string `json:"ageGroup"`
	GradeLevel           string `json:"gradeLevel,omitempty"`
	Gender               string `json:"gender"`
	TryoutDate           string `json:"tryoutDate"`
	TryoutEndDate        string `json:"tryoutEndDate,omitempty"`
	StartTime            string `json:"startTime"`
	EndTime              string `json:"endTime,omitempty"`
	Venue                string `json:"venue"`
	Address              string `json:"address"`
	City                 string `json:"city"`
	ZipCode              string `json:"zipCode,omitempty"`
	ContactEmail         string `json:"contactEmail,omitempty"`
	ContactPhone         string `json:"contactPhone,omitempty"`
	WebsiteURL           string `json:"websiteUrl,omitempty"`
	RegistrationURL      string `json:"registrationUrl,omitempty"`
	RegistrationDeadline string `json:"registrationDeadline,omitempty"`
	Cost                 string `json:"cost,omitempty"`
	Notes                string `json:"notes,omitempty"`
	SkillLevel           string `json:"skillLevel,omitempty"`
	ScheduleStatus       string `json:"scheduleStatus,omitempty"`
	CreatedAt            string `json:"createdAt"`
	UpdatedAt            string `json:"updatedAt"`
	Source               string `json:"source,omitempty"`
}

// Load parses the embedded tryout dataset.
func Load() ([]Tryout, error) {
	var tryouts []Tryout
	if err := json.Unmarshal(rawTryouts, &tryouts); err != nil {
		return nil, fmt.Errorf("parsing tryouts dataset: %w", err)
	}
	return tryouts, nil
}

// ByID finds a tryout by its identifier.
func ByID(tryouts []Tryout, id string) (Tryout, bool) {
	for _, t := range tryouts {
		if t.ID == id {
			return t, true
		}
	}
	return Tryout{}, false
}

// Cities returns the sorted set of distinct cities across all tryouts.
func Cities(tryouts []Tryout) []string {
	seen := make(map[string]bool)
	cities := make([]string, 0)
	for _, t := range tryouts {
		if !seen[t.City] {
			seen[t.City] = true
			cities = append(cities, t.City)
		}
	}
	sort.Strings(cities)
	return cities
}

// Filters narrows a tryout list. Empty fields match everything; list fields
// match when the tryout's value is any of the listed values. The search query
// matches team or organization name, case-insensitively.
type Filters struct {
	Query     string
	AgeGroups []string
	Genders   []string
	Cities    []string
}

// Filter returns the tryouts matching all criteria, preserving input order.
func Filter(tryouts []Tryout, f Filters) []Tryout {
	filtered := make([]Tryout, 0, len(tryouts))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	for _, t := range tryouts {
		if len(f.AgeGroups) > 0 && !contains(f.AgeGroups, t.AgeGroup) {
			continue
		}
		if len(f.Genders) > 0 && !contains(f.Genders, t.Gender) {
			continue
		}
		if len(f.Cities) > 0 && !contains(f.Cities, t.City) {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(t.TeamName), query) &&
			!strings.Contains(strings.ToLower(t.OrganizationName), query) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

// SortOrder represents the available sorting options
type SortOrder string

const (
	SortByDate     SortOrder = "date"
	SortByCity     SortOrder = "city"
	SortByAgeGroup SortOrder = "ageGroup"
)

// Sort orders tryouts in place by the given sort order.
func Sort(tryouts []Tryout, order SortOrder) {
	switch order {
	case SortByCity:
		sort.Slice(tryouts, func(i, j int) bool {
			if tryouts[i].City != tryouts[j].City {
				return tryouts[i].City < tryouts[j].City
			}
			return compareByDate(tryouts[i], tryouts[j])
		})
	case SortByAgeGroup:
		sort.Slice(tryouts, func(i, j int) bool {
			if tryouts[i].AgeGroup != tryouts[j].AgeGroup {
				return tryouts[i].AgeGroup < tryouts[j].AgeGroup
			}
			return compareByDate(tryouts[i], tryouts[j])
		})
	default:
		sort.Slice(tryouts, func(i, j int) bool {
			return compareByDate(tryouts[i], tryouts[j])
		})
	}
}

// compareByDate compares two tryouts by date. Returns true if tryout i should
// come before tryout j; unparseable dates sort last.
func compareByDate(i, j Tryout) bool {
	dateI, errI := time.Parse("2006-01-02", i.TryoutDate)
	dateJ, errJ := time.Parse("2006-01-02", j.TryoutDate)

	if errI == nil && errJ == nil {
		return dateI.Before(dateJ)
	}
	if errI == nil {
		return true
	}
	if errJ == nil {
		return false
	}
	return i.TeamName < j.TeamName
}
