package controllers

import (
	"context"

	"github.com/aci2n/subarr/internal/catalog"
	"github.com/aci2n/subarr/internal/fetcher"
	"github.com/aci2n/subarr/internal/locator"
	"github.com/aci2n/subarr/internal/models"
	"github.com/aci2n/subarr/internal/tracks"
	"github.com/sirupsen/logrus"
)

// Failure records one candidate whose every source failed
type Failure struct {
	Descriptor tracks.Descriptor
	Err        error
}

// Success pairs a persisted artifact with the descriptor it came from
type Success struct {
	Descriptor tracks.Descriptor
	Artifact   fetcher.Artifact
}

// Outcome is the per-track result of one step. It feeds the traversal
// decision and the diagnostics ledger and is never carried across steps.
type Outcome struct {
	Attempted []tracks.Descriptor
	Succeeded []Success
	Failed    []Failure
}

// StepController downloads the subtitles selected by the locator's language
// filter and format for a single container
type StepController struct {
	fetcher *fetcher.Fetcher
	logger  *logrus.Logger
}

// NewStepController creates a new step controller
func NewStepController(f *fetcher.Fetcher, logger *logrus.Logger) *StepController {
	return &StepController{
		fetcher: f,
		logger:  logger,
	}
}

// Run attempts one fallback download per matching descriptor, sequentially
// and in descriptor order. A candidate lacking the requested format is
// skipped; a candidate whose sources are all dead becomes a Failure. Zero
// matching candidates is an observable condition, not an error: the caller
// still gets an outcome to decide the next traversal action with.
func (c *StepController) Run(ctx context.Context, descriptors []tracks.Descriptor, episode catalog.EpisodeRef, state locator.State) Outcome {
	var candidates []tracks.Descriptor
	for _, descriptor := range descriptors {
		if state.HasLang(descriptor.Language.ID) {
			candidates = append(candidates, descriptor)
		}
	}

	if len(candidates) == 0 {
		c.logger.WithFields(logrus.Fields{
			"container_id": episode.ID,
			"filter":       state.Langs,
			"available":    languageTags(descriptors),
		}).Warn("No subtitle languages match the filter")
		return Outcome{}
	}

	format, ok := formatFor(state)
	if !ok {
		// Unreachable with a decoded locator, which always carries a
		// recognized format id
		c.logger.WithField("format", state.Format).Error("Unrecognized format id")
		return Outcome{}
	}

	var outcome Outcome
	for _, candidate := range candidates {
		urls, ok := candidate.URLs(format.ID)
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"language": candidate.Language.Tag,
				"format":   format.ID,
			}).Info("Requested format not available for track, skipping")
			continue
		}

		filename := fetcher.Filename(episode, candidate.Language.Tag, format.Ext)
		outcome.Attempted = append(outcome.Attempted, candidate)

		artifact, err := c.fetcher.DownloadFirst(ctx, urls, filename)
		if err != nil {
			c.logger.WithError(err).WithFields(logrus.Fields{
				"language": candidate.Language.Tag,
				"filename": filename,
			}).Error("All sources failed for track")
			outcome.Failed = append(outcome.Failed, Failure{Descriptor: candidate, Err: err})
			continue
		}

		outcome.Succeeded = append(outcome.Succeeded, Success{Descriptor: candidate, Artifact: *artifact})
	}

	c.logger.WithFields(logrus.Fields{
		"container_id": episode.ID,
		"attempted":    len(outcome.Attempted),
		"succeeded":    len(outcome.Succeeded),
		"failed":       len(outcome.Failed),
	}).Info("Step downloads finished")

	return outcome
}

func formatFor(state locator.State) (models.Format, bool) {
	format, ok := models.Formats[state.Format]
	return format, ok
}

func languageTags(descriptors []tracks.Descriptor) []string {
	tags := make([]string, len(descriptors))
	for i, descriptor := range descriptors {
		tags[i] = descriptor.Language.Tag
	}
	return tags
}
