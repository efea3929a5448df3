// Package feeds hands the two raw documents intercepted on a watch page over
// to the pipeline. Each feed is single-fire per step: the shim offers a
// document once, the step consumes it once, and leftovers are cleared before
// the next step so no step ever reads stale data.
package feeds

import (
	"context"
	"encoding/json"
	"fmt"
)

// Exchange buffers at most one catalog document and one track listing
type Exchange struct {
	catalog chan json.RawMessage
	tracks  chan json.RawMessage
}

// NewExchange creates an empty exchange
func NewExchange() *Exchange {
	return &Exchange{
		catalog: make(chan json.RawMessage, 1),
		tracks:  make(chan json.RawMessage, 1),
	}
}

// OfferCatalog delivers the catalog document for the upcoming step.
// Returns false if one is already pending.
func (e *Exchange) OfferCatalog(doc json.RawMessage) bool {
	select {
	case e.catalog <- doc:
		return true
	default:
		return false
	}
}

// OfferTracks delivers the track listing for the upcoming step.
// Returns false if one is already pending.
func (e *Exchange) OfferTracks(doc json.RawMessage) bool {
	select {
	case e.tracks <- doc:
		return true
	default:
		return false
	}
}

// Await blocks until both documents have arrived or the context expires.
// Offer order does not matter; each document is consumed exactly once.
func (e *Exchange) Await(ctx context.Context) (json.RawMessage, json.RawMessage, error) {
	var catalogDoc, tracksDoc json.RawMessage
	haveCatalog, haveTracks := false, false

	for !haveCatalog || !haveTracks {
		select {
		case catalogDoc = <-e.catalog:
			haveCatalog = true
		case tracksDoc = <-e.tracks:
			haveTracks = true
		case <-ctx.Done():
			return nil, nil, fmt.Errorf("timed out waiting for feeds (catalog=%t tracks=%t): %w",
				haveCatalog, haveTracks, ctx.Err())
		}
	}

	return catalogDoc, tracksDoc, nil
}

// Reset drops any pending documents. Called after a step completes so a
// document offered for an abandoned step cannot leak into the next one.
func (e *Exchange) Reset() {
	select {
	case <-e.catalog:
	default:
	}
	select {
	case <-e.tracks:
	default:
	}
}
