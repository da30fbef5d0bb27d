package service

import (
	"regexp"
	"strings"

	"offert-mockup-me/models"
)

// Canonical view labels in the fixed order product photos are presented
const (
	ViewFront = "Front"
	ViewRight = "Right"
	ViewBack  = "Back"
	ViewLeft  = "Left"
)

// DefaultViewOrder is the order views appear in documents and responses
var DefaultViewOrder = []string{ViewFront, ViewRight, ViewBack, ViewLeft}

// viewSuffixRegex matches an existing view suffix at the end of a base URL,
// in either naming convention, case-insensitive. Full names must come
// before single letters so "_Front.jpg" is not cut at "_F".
var viewSuffixRegex = regexp.MustCompile(`(?i)_(Front|Back|Left|Right|F|B|L|R)\.jpg$`)

// CleanBaseURL strips a trailing view suffix (_F.jpg, _Front.jpg, ...) from
// a product image URL, yielding the canonical base both conventions are
// derived from. URLs without a view suffix are returned unchanged.
func CleanBaseURL(baseURL string) string {
	return viewSuffixRegex.ReplaceAllString(baseURL, "")
}

// ResolveAngleImages derives the per-view image URL set for a product image.
// For each requested view (default: all four, in fixed order) it produces a
// short-form URL (first letter suffix) and a long-form URL (full view name).
// This is pure string computation: no network access, and an empty base URL
// yields an empty set without error.
func ResolveAngleImages(baseURL string, views ...string) models.AngleImageSet {
	if strings.TrimSpace(baseURL) == "" {
		return models.AngleImageSet{}
	}

	if len(views) == 0 {
		views = DefaultViewOrder
	}

	cleanBase := CleanBaseURL(baseURL)

	set := models.AngleImageSet{Views: make([]models.AngleImage, 0, len(views))}
	for _, view := range views {
		if view == "" {
			continue
		}
		label := strings.ToUpper(view[:1]) + view[1:]
		set.Views = append(set.Views, models.AngleImage{
			View:     label,
			ShortURL: cleanBase + "_" + label[:1] + ".jpg",
			LongURL:  cleanBase + "_" + label + ".jpg",
		})
	}

	return set
}
