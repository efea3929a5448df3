package controllers

import (
	"net/url"

	"github.com/aci2n/subarr/internal/catalog"
	"github.com/aci2n/subarr/internal/locator"
	"github.com/aci2n/subarr/internal/models"
	"github.com/sirupsen/logrus"
)

// Decision is the traversal outcome of one step. TargetURL is empty for the
// terminal transitions (continue-only); every other transition carries
// exactly one redirect target with a freshly encoded locator.
type Decision struct {
	Transition models.Transition
	TargetURL  string
}

// URLBuilder constructs navigation targets on the streaming site
type URLBuilder struct {
	origin    string
	watchPath string
}

// NewURLBuilder creates a URL builder for an origin like
// https://www.netflix.com and a path segment like "watch"
func NewURLBuilder(origin, watchPath string) *URLBuilder {
	return &URLBuilder{origin: origin, watchPath: watchPath}
}

// Watch builds a container page URL with the encoded state attached
func (b *URLBuilder) Watch(id models.ContainerID, state locator.State) string {
	return b.origin + "/" + url.PathEscape(b.watchPath) + "/" + url.PathEscape(string(id)) + "?" + locator.Encode(state)
}

// Home returns the bare origin, the batch termination target
func (b *URLBuilder) Home() string {
	return b.origin
}

// TraversalController decides, after each step, whether to keep walking the
// current container, jump to the next queued one, or stop
type TraversalController struct {
	urls   *URLBuilder
	logger *logrus.Logger
}

// NewTraversalController creates a new traversal controller
func NewTraversalController(urls *URLBuilder, logger *logrus.Logger) *TraversalController {
	return &TraversalController{
		urls:   urls,
		logger: logger,
	}
}

// Decide evaluates the transition rules in order:
//
//  1. single mode never redirects
//  2. a first-of-queue-item landing on the wrong episode redirects to the
//     container's first episode (desync recovery)
//  3. a sibling episode advances, whether or not anything was downloaded
//  4. a non-empty queue advances to its head
//  5. otherwise the batch terminates at the home page
func (c *TraversalController) Decide(state locator.State, view catalog.View, outcome Outcome) Decision {
	if state.Mode == models.ModeSingle {
		return Decision{Transition: models.TransitionContinueOnly}
	}

	current := view.Current()

	if state.First && current.ID != view.First().ID {
		next := state.WithoutFirst()
		target := c.urls.Watch(view.First().ID, next)
		c.logger.WithFields(logrus.Fields{
			"expected": view.First().ID,
			"landed":   current.ID,
			"target":   target,
		}).Warn("Landed past the first episode of a queued container, redirecting back")
		return Decision{Transition: models.TransitionQueueHeadFirst, TargetURL: target}
	}

	if sibling, ok := view.Next(); ok {
		next := state.WithoutFirst()
		target := c.urls.Watch(sibling.ID, next)

		if len(outcome.Succeeded) == 0 {
			c.logger.WithFields(logrus.Fields{
				"container_id": current.ID,
				"target":       target,
			}).Warn("No subtitles downloaded for episode, skipping ahead")
			return Decision{Transition: models.TransitionSkipSibling, TargetURL: target}
		}

		c.logger.WithFields(logrus.Fields{
			"container_id": current.ID,
			"target":       target,
		}).Info("Advancing to next episode")
		return Decision{Transition: models.TransitionAdvanceSibling, TargetURL: target}
	}

	if len(state.Queue) > 0 {
		next := state
		next.Queue = state.Queue[1:]
		if len(next.Queue) == 0 {
			next.Queue = nil
		}
		next.First = true

		target := c.urls.Watch(state.Queue[0], next)
		c.logger.WithFields(logrus.Fields{
			"target":    target,
			"remaining": len(next.Queue),
		}).Info("Advancing to next queued container")
		return Decision{Transition: models.TransitionAdvanceQueue, TargetURL: target}
	}

	c.logger.Info("Batch finished, returning to home page")
	return Decision{Transition: models.TransitionTerminate, TargetURL: c.urls.Home()}
}
