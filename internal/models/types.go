package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Mode represents the traversal mode encoded in a locator
type Mode string

const (
	ModeSingle Mode = "single" // download the current container only, never redirect
	ModeBatch  Mode = "batch"  // walk siblings and the queue
	ModeNone   Mode = "none"   // no-op pipeline
)

// ParseMode maps a wire token to a Mode, falling back to ModeNone
func ParseMode(raw string) Mode {
	switch Mode(strings.ToLower(raw)) {
	case ModeSingle:
		return ModeSingle
	case ModeBatch:
		return ModeBatch
	default:
		return ModeNone
	}
}

// FormatID identifies one of the recognized subtitle output formats
type FormatID string

const (
	FormatPrimary    FormatID = "primary"
	FormatAlternate  FormatID = "alternate"
	FormatSimplified FormatID = "simplified"
)

// Format describes a subtitle format: its wire id, the machine name used in
// the track listing's download tables, and the file extension for saved files
type Format struct {
	ID   FormatID
	Name string
	Ext  string
}

// Formats is the fixed registry of recognized subtitle formats
var Formats = map[FormatID]Format{
	FormatPrimary:    {ID: FormatPrimary, Name: "webvtt-lssdh-ios8", Ext: "vtt"},
	FormatAlternate:  {ID: FormatAlternate, Name: "dfxp-ls-sdh", Ext: "dfxp"},
	FormatSimplified: {ID: FormatSimplified, Name: "simplesdh", Ext: "xml"},
}

// ParseFormat maps a wire token to a FormatID, falling back to FormatPrimary
func ParseFormat(raw string) FormatID {
	switch FormatID(strings.ToLower(raw)) {
	case FormatAlternate:
		return FormatAlternate
	case FormatSimplified:
		return FormatSimplified
	default:
		return FormatPrimary
	}
}

// Transition represents the traversal decision taken after a step
type Transition string

const (
	TransitionContinueOnly   Transition = "continue_only"    // single mode, no redirect
	TransitionAdvanceSibling Transition = "advance_sibling"  // next episode in the same container
	TransitionSkipSibling    Transition = "skip_sibling"     // same target, zero downloads
	TransitionAdvanceQueue   Transition = "advance_queue"    // head of the remaining queue
	TransitionQueueHeadFirst Transition = "queue_head_first" // desync recovery after a queue jump
	TransitionTerminate      Transition = "terminate"        // batch finished, return home
)

// ContainerID addresses one watchable unit (an episode or a standalone item).
// Catalog feeds carry numeric ids while locators carry strings, so it decodes
// from either JSON representation.
type ContainerID string

// UnmarshalJSON accepts both `"80100172"` and `80100172`
func (c *ContainerID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = ContainerID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("container id must be a string or number: %w", err)
	}
	*c = ContainerID(n.String())
	return nil
}
