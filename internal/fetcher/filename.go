package fetcher

import (
	"fmt"
	"strings"

	"github.com/aci2n/subarr/internal/catalog"
)

// Fixed filename markers
const (
	releaseGroupMarker = "WEBRip"
	sourceMarker       = "Netflix"
	tokenSeparator     = "."
)

// Filename builds the output filename for one subtitle:
//
//	<series>.S01E09.<title>.<id>.WEBRip.Netflix.<langtag>.<ext>
//
// The position and title tokens are omitted for standalone items. Season and
// episode numbers are padded to two digits; larger numbers render in full.
func Filename(episode catalog.EpisodeRef, langTag string, ext string) string {
	tokens := []string{episode.SeriesTitle}

	if episode.Position != nil {
		tokens = append(tokens, fmt.Sprintf("S%02dE%02d", episode.Position.Season, episode.Position.Episode))
	}
	if episode.Title != "" {
		tokens = append(tokens, episode.Title)
	}

	tokens = append(tokens, string(episode.ID), releaseGroupMarker, sourceMarker, langTag, ext)
	return strings.Join(tokens, tokenSeparator)
}
