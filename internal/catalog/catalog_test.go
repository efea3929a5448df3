package catalog

import (
	"encoding/json"
	"fmt"
	"testing"
)

const showDocTemplate = `{
  "video": {
    "type": "show",
    "title": "Test Show",
    "currentEpisode": %q,
    "seasons": [
      {"seq": 1, "episodes": [
        {"id": "a", "title": "One", "seq": 1},
        {"id": "b", "title": "Two", "seq": 2}
      ]},
      {"seq": 2, "episodes": [
        {"id": "c", "title": "Three", "seq": 1}
      ]}
    ]
  }
}`

func showDoc(t *testing.T, currentID string) json.RawMessage {
	t.Helper()
	return json.RawMessage(fmt.Sprintf(showDocTemplate, currentID))
}

func TestNormalizeShowOrderingAndNext(t *testing.T) {
	view, err := Normalize(showDoc(t, "b"))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	wantOrder := []string{"a", "b", "c"}
	if len(view.Episodes) != len(wantOrder) {
		t.Fatalf("Expected %d episodes, got %d", len(wantOrder), len(view.Episodes))
	}
	for i, id := range wantOrder {
		if string(view.Episodes[i].ID) != id {
			t.Errorf("Episode %d: expected id %s, got %s", i, id, view.Episodes[i].ID)
		}
	}

	if string(view.Current().ID) != "b" {
		t.Errorf("Expected current b, got %s", view.Current().ID)
	}
	next, ok := view.Next()
	if !ok || string(next.ID) != "c" {
		t.Errorf("Expected next c, got %v (%v)", next.ID, ok)
	}
	if view.Current().Position == nil || view.Current().Position.Season != 1 || view.Current().Position.Episode != 2 {
		t.Errorf("Current position mismatch: %+v", view.Current().Position)
	}
	if view.Current().SeriesTitle != "Test Show" {
		t.Errorf("Series title mismatch: %s", view.Current().SeriesTitle)
	}
}

func TestNormalizeShowLastEpisode(t *testing.T) {
	view, err := Normalize(showDoc(t, "c"))
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if string(view.Current().ID) != "c" {
		t.Errorf("Expected current c, got %s", view.Current().ID)
	}
	if _, ok := view.Next(); ok {
		t.Error("Expected no next episode after the last one")
	}
}

func TestNormalizeShowErrors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{
			name: "missing current marker",
			doc:  `{"video": {"type": "show", "title": "X", "seasons": [{"seq": 1, "episodes": [{"id": "a", "seq": 1}]}]}}`,
		},
		{
			name: "empty seasons",
			doc:  `{"video": {"type": "show", "title": "X", "currentEpisode": "a", "seasons": []}}`,
		},
		{
			name: "current not in catalog",
			doc:  `{"video": {"type": "show", "title": "X", "currentEpisode": "zz", "seasons": [{"seq": 1, "episodes": [{"id": "a", "seq": 1}]}]}}`,
		},
		{
			name: "unknown kind",
			doc:  `{"video": {"type": "trailer", "id": 1, "title": "X"}}`,
		},
		{
			name: "not json",
			doc:  `garbage`,
		},
	}

	for _, tc := range cases {
		if _, err := Normalize(json.RawMessage(tc.doc)); err == nil {
			t.Errorf("%s: expected an error", tc.name)
		}
	}
}

func TestNormalizeStandalone(t *testing.T) {
	doc := json.RawMessage(`{"video": {"type": "movie", "id": 80100172, "title": "Some Movie"}}`)

	view, err := Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(view.Episodes) != 1 {
		t.Fatalf("Expected a single-element view, got %d", len(view.Episodes))
	}
	current := view.Current()
	if string(current.ID) != "80100172" {
		t.Errorf("Numeric id should normalize to string, got %s", current.ID)
	}
	if current.Position != nil {
		t.Error("Standalone item should have no position")
	}
	if current.Title != "" {
		t.Error("Standalone item should have no episode title")
	}
	if current.SeriesTitle != "Some Movie" {
		t.Errorf("Series title mismatch: %s", current.SeriesTitle)
	}
	if _, ok := view.Next(); ok {
		t.Error("Standalone item should have no next")
	}
}
