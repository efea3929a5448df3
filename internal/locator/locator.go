// Package locator serializes the traversal state into the query string of a
// watch-page URL. The locator is the only thing that survives between steps:
// every step decodes it, does its work, and encodes a fresh state into the
// next redirect. A queue run is usually kicked off with a hand-built locator
// such as:
//
//	/watch/80100172?mode=batch&first&langs=ja&format=primary&queue=80100173,80100174
package locator

import (
	"net/url"
	"strings"

	"github.com/aci2n/subarr/internal/models"
)

// Wire field names
const (
	keyMode   = "mode"
	keyQueue  = "queue"
	keyLangs  = "langs"
	keyFormat = "format"
	keyFirst  = "first"
)

// State is the decoded traversal state. Values are never mutated in place;
// the traversal controller derives new ones for each redirect.
type State struct {
	Mode   models.Mode
	Queue  []models.ContainerID // containers still to visit after this one
	Langs  []string             // language filter, empty means everything
	Format models.FormatID
	First  bool // just jumped to a new queue item, landing not yet verified
}

// WithoutFirst returns a copy of the state with the first flag cleared
func (s State) WithoutFirst() State {
	s.First = false
	return s
}

// HasLang reports whether a language id passes the filter
func (s State) HasLang(id string) bool {
	if len(s.Langs) == 0 {
		return true
	}
	for _, lang := range s.Langs {
		if lang == id {
			return true
		}
	}
	return false
}

// Decode parses a raw query string into a State. Decoding is total: missing
// or unrecognized fields fall back to their defaults (mode none, empty queue
// and filter, primary format, first unset). A malformed query string decodes
// to the zero state, which makes the pipeline a no-op.
func Decode(raw string) State {
	raw = strings.TrimPrefix(raw, "?")
	params, err := url.ParseQuery(raw)
	if err != nil {
		return State{Mode: models.ModeNone, Format: models.FormatPrimary}
	}

	return State{
		Mode:   models.ParseMode(params.Get(keyMode)),
		Queue:  splitIDs(params.Get(keyQueue)),
		Langs:  splitList(params.Get(keyLangs)),
		Format: models.ParseFormat(params.Get(keyFormat)),
		First:  params.Has(keyFirst),
	}
}

// Encode renders a State into query-string form. Mode and format are always
// written; empty collections and a false first flag are omitted to keep the
// wire form minimal.
func Encode(state State) string {
	params := url.Values{}
	params.Set(keyMode, string(state.Mode))
	params.Set(keyFormat, string(state.Format))
	if state.First {
		params.Set(keyFirst, "")
	}
	if len(state.Langs) > 0 {
		params.Set(keyLangs, strings.Join(state.Langs, ","))
	}
	if len(state.Queue) > 0 {
		params.Set(keyQueue, joinIDs(state.Queue))
	}
	return params.Encode()
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func splitIDs(raw string) []models.ContainerID {
	parts := splitList(raw)
	if parts == nil {
		return nil
	}
	ids := make([]models.ContainerID, len(parts))
	for i, part := range parts {
		ids[i] = models.ContainerID(part)
	}
	return ids
}

func joinIDs(ids []models.ContainerID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}
