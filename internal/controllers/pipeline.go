package controllers

import (
	"context"
	"time"

	"github.com/aci2n/subarr/internal/catalog"
	"github.com/aci2n/subarr/internal/feeds"
	"github.com/aci2n/subarr/internal/locator"
	"github.com/aci2n/subarr/internal/models"
	"github.com/aci2n/subarr/internal/tracks"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Action tells the shim what to do after a step
type Action string

const (
	ActionNone     Action = "none"     // terminal: no mode, single mode, or batch done on this page
	ActionNavigate Action = "navigate" // load TargetURL, which carries the next locator
	ActionReload   Action = "reload"   // restart this step verbatim, same locator
)

// Result is the outward-facing summary of one step
type Result struct {
	StepID     string            `json:"step_id"`
	Action     Action            `json:"action"`
	TargetURL  string            `json:"target_url,omitempty"`
	Transition models.Transition `json:"transition,omitempty"`
	Attempted  int               `json:"attempted"`
	Succeeded  int               `json:"succeeded"`
	Failed     int               `json:"failed"`
}

// History is the diagnostics ledger. Writes are best-effort: a ledger
// failure is logged and the step proceeds, because control flow must stay
// derivable from the locator and the feeds alone.
type History interface {
	CreateStepRecord(record *models.StepRecord) error
	CreateDownload(download *models.Download) error
}

// Pipeline runs one complete step: decode the locator, join the feeds,
// normalize, download, decide the traversal, answer with one action
type Pipeline struct {
	exchange    *feeds.Exchange
	steps       *StepController
	traversal   *TraversalController
	history     History
	feedTimeout time.Duration
	logger      *logrus.Logger
}

// NewPipeline creates a new pipeline
func NewPipeline(
	exchange *feeds.Exchange,
	steps *StepController,
	traversal *TraversalController,
	history History,
	feedTimeout time.Duration,
	logger *logrus.Logger,
) *Pipeline {
	return &Pipeline{
		exchange:    exchange,
		steps:       steps,
		traversal:   traversal,
		history:     history,
		feedTimeout: feedTimeout,
		logger:      logger,
	}
}

// Execute runs one step for the given raw locator. Fatal errors (malformed
// feeds, feed timeout) all collapse into the reload action with nothing
// half-persisted; the raw feed may simply not have loaded yet.
func (p *Pipeline) Execute(ctx context.Context, rawLocator string) Result {
	stepID := uuid.NewString()
	log := p.logger.WithField("step_id", stepID)
	defer p.exchange.Reset()

	state := locator.Decode(rawLocator)
	if state.Mode == models.ModeNone {
		log.Info("No mode in locator, nothing to do")
		return Result{StepID: stepID, Action: ActionNone}
	}

	log.WithFields(logrus.Fields{
		"mode":   state.Mode,
		"format": state.Format,
		"langs":  state.Langs,
		"queue":  len(state.Queue),
		"first":  state.First,
	}).Info("Step started, waiting for feeds")

	waitCtx, cancel := context.WithTimeout(ctx, p.feedTimeout)
	defer cancel()

	catalogDoc, tracksDoc, err := p.exchange.Await(waitCtx)
	if err != nil {
		return p.restart(log, stepID, "feeds never arrived", err)
	}

	view, err := catalog.Normalize(catalogDoc)
	if err != nil {
		return p.restart(log, stepID, "catalog rejected", err)
	}

	descriptors, err := tracks.Build(tracksDoc, p.logger)
	if err != nil {
		return p.restart(log, stepID, "track listing rejected", err)
	}

	outcome := p.steps.Run(ctx, descriptors, view.Current(), state)
	decision := p.traversal.Decide(state, view, outcome)

	p.record(log, stepID, rawLocator, state, view, outcome, decision)

	result := Result{
		StepID:     stepID,
		Transition: decision.Transition,
		Attempted:  len(outcome.Attempted),
		Succeeded:  len(outcome.Succeeded),
		Failed:     len(outcome.Failed),
	}
	if decision.TargetURL != "" {
		result.Action = ActionNavigate
		result.TargetURL = decision.TargetURL
	} else {
		result.Action = ActionNone
	}

	log.WithFields(logrus.Fields{
		"transition": decision.Transition,
		"action":     result.Action,
		"target":     decision.TargetURL,
	}).Info("Step finished")

	return result
}

// restart converts any fatal step error into the uniform recovery edge
func (p *Pipeline) restart(log *logrus.Entry, stepID, reason string, err error) Result {
	log.WithError(err).WithField("reason", reason).Error("Step failed, requesting restart with the same locator")
	return Result{StepID: stepID, Action: ActionReload}
}

// record writes the ledger entries for a completed step
func (p *Pipeline) record(
	log *logrus.Entry,
	stepID string,
	rawLocator string,
	state locator.State,
	view catalog.View,
	outcome Outcome,
	decision Decision,
) {
	if p.history == nil {
		return
	}

	current := view.Current()
	record := &models.StepRecord{
		StepUUID:    stepID,
		Locator:     rawLocator,
		ContainerID: string(current.ID),
		SeriesTitle: current.SeriesTitle,
		Mode:        state.Mode,
		Transition:  decision.Transition,
		TargetURL:   decision.TargetURL,
		Attempted:   len(outcome.Attempted),
		Succeeded:   len(outcome.Succeeded),
		Failed:      len(outcome.Failed),
	}
	if err := p.history.CreateStepRecord(record); err != nil {
		log.WithError(err).Error("Failed to record step in ledger")
	}

	for _, success := range outcome.Succeeded {
		download := &models.Download{
			StepUUID:     stepID,
			ContainerID:  string(current.ID),
			SeriesTitle:  current.SeriesTitle,
			Filename:     success.Artifact.Filename,
			LanguageID:   success.Descriptor.Language.ID,
			LanguageTag:  success.Descriptor.Language.Tag,
			LanguageName: success.Descriptor.Language.Name,
			Format:       state.Format,
			SizeBytes:    success.Artifact.SizeBytes,
			SourceURL:    success.Artifact.SourceURL,
		}
		if err := p.history.CreateDownload(download); err != nil {
			log.WithError(err).Error("Failed to record download in ledger")
		}
	}
}
