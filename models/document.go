package models

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentCounter is the last issued run number of a numbering series within a period.
// Rows are locked for update while a number is issued.
type DocumentCounter struct {
	Series    string `gorm:"primaryKey;size:16"`
	Period    string `gorm:"primaryKey;size:16"`
	Value     int    `gorm:"not null"`
	UpdatedAt time.Time
}

// DocumentRevision keeps the state of a document before it was edited or deleted.
type DocumentRevision struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Kind      string         `json:"kind" gorm:"size:20;index:idx_document_revisions_kind_number,priority:1"` // invoice | billnote | creditnote
	Number    string         `json:"number" gorm:"size:64;index:idx_document_revisions_kind_number,priority:2"`
	Action    string         `json:"action" gorm:"size:10"` // update | delete
	Snapshot  datatypes.JSON `json:"snapshot"`
	CreatedAt time.Time      `json:"created_at"`
}
