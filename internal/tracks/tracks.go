// Package tracks normalizes the raw timed-text track listing into subtitle
// descriptors indexed by output format.
package tracks

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aci2n/subarr/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// rawList mirrors the track listing feed
type rawList struct {
	Tracks []rawTrack `json:"timedtexttracks"`
}

type rawTrack struct {
	Language          string                     `json:"language"`
	RawTrackType      string                     `json:"rawTrackType"`
	IsForcedNarrative bool                       `json:"isForcedNarrative"`
	IsNoneTrack       bool                       `json:"isNoneTrack"`
	TTDownloadables   map[string]rawDownloadable `json:"ttDownloadables"`
}

type rawDownloadable struct {
	DownloadUrls map[string]string `json:"downloadUrls"`
}

// Language identifies a subtitle track's language and variant
type Language struct {
	ID  string // raw language code from the feed, e.g. "ja"
	Tag string // display tag, e.g. "ja[cc]-forced", used in filenames
	// Name is the English language name, diagnostics only
	Name string
}

// Descriptor is one normalized subtitle track. ByFormat only carries formats
// with at least one download URL; a descriptor with an empty ByFormat is
// never produced.
type Descriptor struct {
	Language Language
	ByFormat map[models.FormatID][]string
}

// URLs returns the ordered fallback URLs for a format, if present
func (d Descriptor) URLs(format models.FormatID) ([]string, bool) {
	urls, ok := d.ByFormat[format]
	return urls, ok
}

// Build parses the raw track listing and returns the retained descriptors in
// feed order. Placeholder tracks and tracks contributing to zero formats are
// dropped; a format with no URLs is omitted silently. Both conditions are
// expected and only logged.
func Build(doc json.RawMessage, logger *logrus.Logger) ([]Descriptor, error) {
	var raw rawList
	if err := json.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse track listing: %w", err)
	}

	var descriptors []Descriptor
	for _, track := range raw.Tracks {
		if track.IsNoneTrack {
			continue
		}

		byFormat := make(map[models.FormatID][]string)
		for id, format := range models.Formats {
			downloadable, ok := track.TTDownloadables[format.Name]
			if !ok {
				continue
			}
			urls := orderedURLs(downloadable.DownloadUrls)
			if len(urls) == 0 {
				logger.WithFields(logrus.Fields{
					"language": track.Language,
					"format":   id,
				}).Warn("Track advertises a format with no download URLs")
				continue
			}
			byFormat[id] = urls
		}

		if len(byFormat) == 0 {
			logger.WithField("language", track.Language).Debug("Track has no downloadables, dropping")
			continue
		}

		descriptors = append(descriptors, Descriptor{
			Language: Language{
				ID:   track.Language,
				Tag:  displayTag(track),
				Name: languageName(track.Language),
			},
			ByFormat: byFormat,
		})
	}

	return descriptors, nil
}

// displayTag composes the language id with a bracketed variant marker and a
// forced-narrative suffix: "en", "en[cc]", "en[commentary]-forced"
func displayTag(track rawTrack) string {
	tag := track.Language + variantMarker(track.RawTrackType)
	if track.IsForcedNarrative {
		tag += "-forced"
	}
	return tag
}

func variantMarker(rawType string) string {
	switch rawType {
	case "", "subtitles":
		return ""
	case "closedcaptions":
		return "[cc]"
	default:
		return "[" + rawType + "]"
	}
}

// orderedURLs flattens a downloadUrls object (keyed by CDN id) into a
// deterministic fallback order by sorting the keys
func orderedURLs(byCDN map[string]string) []string {
	keys := make([]string, 0, len(byCDN))
	for key := range byCDN {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		if byCDN[key] != "" {
			urls = append(urls, byCDN[key])
		}
	}
	return urls
}

func languageName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	return display.English.Languages().Name(tag)
}
