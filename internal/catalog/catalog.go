// Package catalog normalizes the raw catalog metadata feed into an ordered
// episode view. The raw document is whatever the watch page's metadata call
// returned; its shape is validated up front and any mismatch is a fatal
// input error for the step.
package catalog

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aci2n/subarr/internal/models"
)

// Recognized video kinds in the raw feed
const (
	kindShow         = "show"
	kindMovie        = "movie"
	kindSupplemental = "supplemental"
)

// rawDocument mirrors the metadata feed
type rawDocument struct {
	Video rawVideo `json:"video"`
}

type rawVideo struct {
	Type           string              `json:"type"`
	ID             models.ContainerID  `json:"id"`
	Title          string              `json:"title"`
	CurrentEpisode *models.ContainerID `json:"currentEpisode"`
	Seasons        []rawSeason         `json:"seasons"`
}

type rawSeason struct {
	Seq      int          `json:"seq"`
	Episodes []rawEpisode `json:"episodes"`
}

type rawEpisode struct {
	ID    models.ContainerID `json:"id"`
	Title string             `json:"title"`
	Seq   int                `json:"seq"`
}

// Position locates an episode within its series
type Position struct {
	Season  int
	Episode int
}

// EpisodeRef is one entry of the normalized view. For standalone items the
// position is absent and the title empty; SeriesTitle carries the item title.
type EpisodeRef struct {
	ID          models.ContainerID
	Title       string
	Position    *Position
	SeriesTitle string
}

// View is the normalized catalog: all episodes in (season, episode) order
// plus the index of the currently active one
type View struct {
	Episodes     []EpisodeRef
	CurrentIndex int
}

// First returns the first episode of the view
func (v View) First() EpisodeRef {
	return v.Episodes[0]
}

// Current returns the currently active episode
func (v View) Current() EpisodeRef {
	return v.Episodes[v.CurrentIndex]
}

// Next returns the episode after the current one, if any
func (v View) Next() (EpisodeRef, bool) {
	if v.CurrentIndex+1 < len(v.Episodes) {
		return v.Episodes[v.CurrentIndex+1], true
	}
	return EpisodeRef{}, false
}

// Normalize parses and validates a raw catalog document. Shows are flattened
// across seasons into one ordered sequence; movies and supplementals become a
// single-element view. All shape errors are fatal for the step.
func Normalize(doc json.RawMessage) (View, error) {
	var raw rawDocument
	if err := json.Unmarshal(doc, &raw); err != nil {
		return View{}, fmt.Errorf("failed to parse catalog document: %w", err)
	}

	video := raw.Video
	switch video.Type {
	case kindShow:
		return normalizeShow(video)
	case kindMovie, kindSupplemental:
		return View{
			Episodes: []EpisodeRef{{
				ID:          video.ID,
				SeriesTitle: video.Title,
			}},
			CurrentIndex: 0,
		}, nil
	default:
		return View{}, fmt.Errorf("unknown video type: %q", video.Type)
	}
}

func normalizeShow(video rawVideo) (View, error) {
	if video.CurrentEpisode == nil {
		return View{}, fmt.Errorf("current episode marker missing from catalog")
	}

	var episodes []EpisodeRef
	for _, season := range video.Seasons {
		for _, episode := range season.Episodes {
			episodes = append(episodes, EpisodeRef{
				ID:          episode.ID,
				Title:       episode.Title,
				Position:    &Position{Season: season.Seq, Episode: episode.Seq},
				SeriesTitle: video.Title,
			})
		}
	}

	if len(episodes) == 0 {
		return View{}, fmt.Errorf("catalog contains no episodes")
	}

	// Season/episode sequence numbers are dense enough but not necessarily
	// contiguous; one active marker per catalog rules out ties
	sort.SliceStable(episodes, func(i, j int) bool {
		if episodes[i].Position.Season != episodes[j].Position.Season {
			return episodes[i].Position.Season < episodes[j].Position.Season
		}
		return episodes[i].Position.Episode < episodes[j].Position.Episode
	})

	currentIndex := -1
	for i, episode := range episodes {
		if episode.ID == *video.CurrentEpisode {
			currentIndex = i
			break
		}
	}
	if currentIndex == -1 {
		return View{}, fmt.Errorf("current episode %s not found in catalog", *video.CurrentEpisode)
	}

	return View{Episodes: episodes, CurrentIndex: currentIndex}, nil
}
