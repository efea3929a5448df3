package feeds

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestAwaitEitherOrder(t *testing.T) {
	e := NewExchange()

	if !e.OfferTracks(json.RawMessage(`{"timedtexttracks": []}`)) {
		t.Fatal("First tracks offer should be accepted")
	}
	if !e.OfferCatalog(json.RawMessage(`{"video": {}}`)) {
		t.Fatal("First catalog offer should be accepted")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	catalogDoc, tracksDoc, err := e.Await(ctx)
	if err != nil {
		t.Fatalf("Await failed: %v", err)
	}
	if string(catalogDoc) != `{"video": {}}` {
		t.Errorf("Catalog document mismatch: %s", catalogDoc)
	}
	if string(tracksDoc) != `{"timedtexttracks": []}` {
		t.Errorf("Tracks document mismatch: %s", tracksDoc)
	}
}

func TestAwaitTimesOutWithOneFeedMissing(t *testing.T) {
	e := NewExchange()
	e.OfferCatalog(json.RawMessage(`{}`))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, _, err := e.Await(ctx); err == nil {
		t.Error("Expected a timeout error with the tracks feed missing")
	}
}

func TestOfferRejectsDuplicates(t *testing.T) {
	e := NewExchange()

	if !e.OfferCatalog(json.RawMessage(`{}`)) {
		t.Fatal("First offer should be accepted")
	}
	if e.OfferCatalog(json.RawMessage(`{}`)) {
		t.Error("Second offer before consumption should be rejected")
	}
}

func TestResetDropsPending(t *testing.T) {
	e := NewExchange()
	e.OfferCatalog(json.RawMessage(`{"stale": true}`))
	e.Reset()

	if !e.OfferCatalog(json.RawMessage(`{}`)) {
		t.Error("Offer after reset should be accepted")
	}
}
