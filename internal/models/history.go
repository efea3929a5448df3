package models

import "time"

// StepRecord is the diagnostics ledger entry for one pipeline step.
// It is written after the traversal decision and never read back by the
// pipeline itself: control state lives exclusively in the locator.
type StepRecord struct {
	ID       uint64 `boltholdKey:"ID"`
	StepUUID string `boltholdIndex:"StepUUID"`

	Locator     string
	ContainerID string `boltholdIndex:"ContainerID"`
	SeriesTitle string

	Mode       Mode
	Transition Transition `boltholdIndex:"Transition"`
	TargetURL  string

	Attempted int
	Succeeded int
	Failed    int

	CreatedAt time.Time
}

// Download records one subtitle file persisted to disk
type Download struct {
	ID       uint64 `boltholdKey:"ID"`
	StepUUID string `boltholdIndex:"StepUUID"`

	ContainerID string `boltholdIndex:"ContainerID"`
	SeriesTitle string
	Filename    string

	LanguageID   string `boltholdIndex:"LanguageID"`
	LanguageTag  string
	LanguageName string
	Format       FormatID

	SizeBytes int64
	SourceURL string

	CreatedAt time.Time
}
