package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/aci2n/subarr/internal/feeds"
	"github.com/sirupsen/logrus"
)

// Raw feed documents are page-sized JSON blobs; cap reads defensively
const maxFeedSize = 20 * 1024 * 1024 // 20MB

// FeedHandler receives the two raw documents the shim intercepted on the
// current watch page
type FeedHandler struct {
	exchange *feeds.Exchange
	logger   *logrus.Logger
}

// NewFeedHandler creates a new feed handler
func NewFeedHandler(exchange *feeds.Exchange, logger *logrus.Logger) *FeedHandler {
	return &FeedHandler{
		exchange: exchange,
		logger:   logger,
	}
}

// ServeCatalog handles the catalog metadata feed
func (h *FeedHandler) ServeCatalog(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, "catalog", h.exchange.OfferCatalog)
}

// ServeTracks handles the track listing feed
func (h *FeedHandler) ServeTracks(w http.ResponseWriter, r *http.Request) {
	h.serveFeed(w, r, "tracks", h.exchange.OfferTracks)
}

func (h *FeedHandler) serveFeed(w http.ResponseWriter, r *http.Request, name string, offer func(json.RawMessage) bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxFeedSize))
	if err != nil {
		h.logger.WithError(err).WithField("feed", name).Error("Failed to read feed body")
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !json.Valid(body) {
		h.logger.WithField("feed", name).Error("Feed body is not valid JSON")
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	accepted := offer(json.RawMessage(body))
	if !accepted {
		// A feed for the current step already arrived; the shim posted twice
		// or a previous step's leftovers were not yet consumed
		h.logger.WithField("feed", name).Warn("Feed already pending, ignoring duplicate offer")
	}

	h.logger.WithFields(logrus.Fields{
		"feed":       name,
		"size_bytes": len(body),
		"accepted":   accepted,
	}).Debug("Feed received")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"accepted": accepted})
}
