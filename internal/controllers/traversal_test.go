package controllers

import (
	"io"
	"reflect"
	"testing"

	"github.com/aci2n/subarr/internal/catalog"
	"github.com/aci2n/subarr/internal/fetcher"
	"github.com/aci2n/subarr/internal/locator"
	"github.com/aci2n/subarr/internal/models"
	"github.com/aci2n/subarr/internal/tracks"
	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testTraversal() *TraversalController {
	return NewTraversalController(NewURLBuilder("https://example.com", "watch"), testLogger())
}

func showView(currentIndex int) catalog.View {
	series := "Show"
	return catalog.View{
		Episodes: []catalog.EpisodeRef{
			{ID: "e1", Title: "One", Position: &catalog.Position{Season: 1, Episode: 1}, SeriesTitle: series},
			{ID: "e2", Title: "Two", Position: &catalog.Position{Season: 1, Episode: 2}, SeriesTitle: series},
			{ID: "e3", Title: "Three", Position: &catalog.Position{Season: 1, Episode: 3}, SeriesTitle: series},
		},
		CurrentIndex: currentIndex,
	}
}

func oneSuccess() Outcome {
	return Outcome{
		Succeeded: []Success{{Artifact: fetcher.Artifact{Filename: "f.vtt", SizeBytes: 10}}},
		Attempted: []tracks.Descriptor{{}},
	}
}

func TestDecideSingleModeNeverRedirects(t *testing.T) {
	c := testTraversal()
	state := locator.State{Mode: models.ModeSingle, Format: models.FormatPrimary}

	for _, outcome := range []Outcome{oneSuccess(), {}} {
		for _, view := range []catalog.View{showView(0), showView(2)} {
			decision := c.Decide(state, view, outcome)
			if decision.Transition != models.TransitionContinueOnly {
				t.Errorf("Expected continue_only, got %s", decision.Transition)
			}
			if decision.TargetURL != "" {
				t.Errorf("Single mode must not redirect, got %s", decision.TargetURL)
			}
		}
	}
}

func TestDecideAdvanceSibling(t *testing.T) {
	c := testTraversal()
	state := locator.State{
		Mode:   models.ModeBatch,
		Queue:  []models.ContainerID{"q1"},
		Langs:  []string{"ja"},
		Format: models.FormatPrimary,
	}

	decision := c.Decide(state, showView(0), oneSuccess())
	if decision.Transition != models.TransitionAdvanceSibling {
		t.Fatalf("Expected advance_sibling, got %s", decision.Transition)
	}

	want := "https://example.com/watch/e2?" + locator.Encode(state)
	if decision.TargetURL != want {
		t.Errorf("Target mismatch:\n got %s\nwant %s", decision.TargetURL, want)
	}

	// Queue, filter and format ride along unchanged; first stays cleared
	next := locator.Decode(decision.TargetURL[len("https://example.com/watch/e2?"):])
	if !reflect.DeepEqual(next.Queue, state.Queue) {
		t.Errorf("Queue should be unchanged, got %v", next.Queue)
	}
	if next.First {
		t.Error("First flag must be cleared when advancing to a sibling")
	}
}

func TestDecideSkipSiblingOnZeroDownloads(t *testing.T) {
	c := testTraversal()
	state := locator.State{Mode: models.ModeBatch, Format: models.FormatPrimary}

	decision := c.Decide(state, showView(0), Outcome{})
	if decision.Transition != models.TransitionSkipSibling {
		t.Fatalf("Expected skip_sibling, got %s", decision.Transition)
	}
	want := "https://example.com/watch/e2?" + locator.Encode(state)
	if decision.TargetURL != want {
		t.Errorf("Skip must advance to the same target as a success:\n got %s\nwant %s", decision.TargetURL, want)
	}
}

func TestDecideAdvanceQueue(t *testing.T) {
	c := testTraversal()
	state := locator.State{
		Mode:   models.ModeBatch,
		Queue:  []models.ContainerID{"q1", "q2"},
		Format: models.FormatPrimary,
	}

	decision := c.Decide(state, showView(2), oneSuccess())
	if decision.Transition != models.TransitionAdvanceQueue {
		t.Fatalf("Expected advance_queue, got %s", decision.Transition)
	}

	wantState := locator.State{
		Mode:   models.ModeBatch,
		Queue:  []models.ContainerID{"q2"},
		Format: models.FormatPrimary,
		First:  true,
	}
	want := "https://example.com/watch/q1?" + locator.Encode(wantState)
	if decision.TargetURL != want {
		t.Errorf("Target mismatch:\n got %s\nwant %s", decision.TargetURL, want)
	}
}

func TestDecideQueueDrainsToNil(t *testing.T) {
	c := testTraversal()
	state := locator.State{
		Mode:   models.ModeBatch,
		Queue:  []models.ContainerID{"q1"},
		Format: models.FormatPrimary,
	}

	decision := c.Decide(state, showView(2), oneSuccess())

	next := locator.Decode(decision.TargetURL[len("https://example.com/watch/q1?"):])
	if next.Queue != nil {
		t.Errorf("Drained queue should decode as nil, got %v", next.Queue)
	}
	if !next.First {
		t.Error("First flag must be set when jumping to a queued container")
	}
}

func TestDecideQueueHeadDesyncRecovery(t *testing.T) {
	c := testTraversal()
	state := locator.State{
		Mode:   models.ModeBatch,
		Queue:  []models.ContainerID{"q9"},
		Format: models.FormatPrimary,
		First:  true,
	}

	// Landed on e2 but a fresh queue jump must begin at e1
	decision := c.Decide(state, showView(1), oneSuccess())
	if decision.Transition != models.TransitionQueueHeadFirst {
		t.Fatalf("Expected queue_head_first, got %s", decision.Transition)
	}

	wantState := state.WithoutFirst()
	want := "https://example.com/watch/e1?" + locator.Encode(wantState)
	if decision.TargetURL != want {
		t.Errorf("Target mismatch:\n got %s\nwant %s", decision.TargetURL, want)
	}
}

func TestDecideFirstFlagOnCorrectLanding(t *testing.T) {
	c := testTraversal()
	state := locator.State{Mode: models.ModeBatch, Format: models.FormatPrimary, First: true}

	// Landed exactly on the first episode: proceed normally
	decision := c.Decide(state, showView(0), oneSuccess())
	if decision.Transition != models.TransitionAdvanceSibling {
		t.Errorf("Expected advance_sibling, got %s", decision.Transition)
	}
}

func TestDecideTerminate(t *testing.T) {
	c := testTraversal()
	state := locator.State{Mode: models.ModeBatch, Format: models.FormatPrimary}

	decision := c.Decide(state, showView(2), oneSuccess())
	if decision.Transition != models.TransitionTerminate {
		t.Fatalf("Expected terminate, got %s", decision.Transition)
	}
	if decision.TargetURL != "https://example.com" {
		t.Errorf("Termination should target the bare origin, got %s", decision.TargetURL)
	}
}
