package models

import (
	"time"

	"gorm.io/datatypes"
)

// BillNote (ใบวางบิล) groups a customer's invoices into one payment request.
type BillNote struct {
	ID             uint           `json:"idx" gorm:"primaryKey"`
	BillNoteNumber string         `json:"billnote_number" gorm:"size:20;not null;uniqueIndex"`
	BillDate       datatypes.Date `json:"bill_date" gorm:"not null;index"`
	CustomerID     uint           `json:"customer_id" gorm:"index"`

	CustomerName string `json:"fname" gorm:"size:255"`
	PersonID     string `json:"personid" gorm:"size:32;index"`
	Tel          string `json:"tel" gorm:"size:64"`
	Mobile       string `json:"mobile" gorm:"size:64"`
	Address      string `json:"cf_personaddress"`
	Zipcode      string `json:"cf_personzipcode" gorm:"size:10"`
	Province     string `json:"cf_provincename" gorm:"size:128"`
	TaxID        string `json:"cf_taxid" gorm:"size:13"`
	Branch       string `json:"branch" gorm:"size:64"`

	TotalAmount float64        `json:"total_amount" gorm:"type:numeric(12,2)"`
	Items       []BillNoteItem `json:"items" gorm:"foreignKey:BillNoteID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BillNoteItem references one invoice. An invoice number may appear in at most one bill note;
// the unique index backs the request-level duplicate guard.
type BillNoteItem struct {
	ID            uint            `json:"idx" gorm:"primaryKey"`
	BillNoteID    uint            `json:"-" gorm:"not null;index"`
	InvoiceNumber string          `json:"invoice_number" gorm:"size:64;not null;uniqueIndex"`
	InvoiceDate   *datatypes.Date `json:"invoice_date"`
	DueDate       *datatypes.Date `json:"due_date"`
	Amount        float64         `json:"amount" gorm:"type:numeric(12,2)"`
}
