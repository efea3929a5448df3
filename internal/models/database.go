package models

import (
	"fmt"
	"time"

	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Database wraps the bolthold store holding the step/download ledger
type Database struct {
	store *bolthold.Store
}

// NewDatabase creates a new database connection
func NewDatabase(path string) (*Database, error) {
	store, err := bolthold.Open(path, 0600, &bolthold.Options{
		Options: &bbolt.Options{
			Timeout: 1 * time.Second,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return &Database{store: store}, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	return db.store.Close()
}

// Step records

// CreateStepRecord appends a step record to the ledger
func (db *Database) CreateStepRecord(record *StepRecord) error {
	record.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), record)
}

// GetStepRecordsByContainer retrieves all step records for a container
func (db *Database) GetStepRecordsByContainer(containerID string) ([]*StepRecord, error) {
	var records []*StepRecord
	err := db.store.Find(&records, bolthold.Where("ContainerID").Eq(containerID))
	return records, err
}

// GetAllStepRecords retrieves every step record in the ledger
func (db *Database) GetAllStepRecords() ([]*StepRecord, error) {
	var records []*StepRecord
	err := db.store.Find(&records, nil)
	return records, err
}

// Downloads

// CreateDownload appends a download entry to the ledger
func (db *Database) CreateDownload(download *Download) error {
	download.CreatedAt = time.Now()
	return db.store.Insert(bolthold.NextSequence(), download)
}

// GetAllDownloads retrieves every recorded download
func (db *Database) GetAllDownloads() ([]*Download, error) {
	var downloads []*Download
	err := db.store.Find(&downloads, nil)
	return downloads, err
}

// GetDownloadsByStep retrieves the downloads produced by one step
func (db *Database) GetDownloadsByStep(stepUUID string) ([]*Download, error) {
	var downloads []*Download
	err := db.store.Find(&downloads, bolthold.Where("StepUUID").Eq(stepUUID))
	return downloads, err
}

// Pruning

// PruneOlderThan deletes ledger entries created before the cutoff.
// Returns how many step records and downloads were removed.
func (db *Database) PruneOlderThan(cutoff time.Time) (int, int, error) {
	var records []*StepRecord
	if err := db.store.Find(&records, bolthold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return 0, 0, fmt.Errorf("failed to find stale step records: %w", err)
	}
	for _, record := range records {
		if err := db.store.Delete(record.ID, &StepRecord{}); err != nil {
			return 0, 0, fmt.Errorf("failed to delete step record: %w", err)
		}
	}

	var downloads []*Download
	if err := db.store.Find(&downloads, bolthold.Where("CreatedAt").Lt(cutoff)); err != nil {
		return len(records), 0, fmt.Errorf("failed to find stale downloads: %w", err)
	}
	for _, download := range downloads {
		if err := db.store.Delete(download.ID, &Download{}); err != nil {
			return len(records), 0, fmt.Errorf("failed to delete download: %w", err)
		}
	}

	return len(records), len(downloads), nil
}
