package models

import (
	"time"

	"gorm.io/datatypes"
)

// Invoice is a tax invoice (ใบกำกับภาษี) with the customer fields snapshotted at issue time.
type Invoice struct {
	ID            uint           `json:"idx" gorm:"primaryKey"`
	InvoiceNumber string         `json:"invoice_number" gorm:"size:64;not null;uniqueIndex"`
	InvoiceDate   datatypes.Date `json:"invoice_date" gorm:"not null;index"`
	GRNNumber     string         `json:"grn_number" gorm:"size:64;index"`
	DNNumber      string         `json:"dn_number" gorm:"size:64"`
	PONumber      string         `json:"po_number" gorm:"size:64"`

	// Customer snapshot
	CustomerName string `json:"fname" gorm:"size:255"`
	PersonID     string `json:"personid" gorm:"size:32;index"`
	Tel          string `json:"tel" gorm:"size:64"`
	Mobile       string `json:"mobile" gorm:"size:64"`
	Address      string `json:"cf_personaddress"`
	Zipcode      string `json:"cf_personzipcode" gorm:"size:10"`
	Province     string `json:"cf_provincename" gorm:"size:128"`
	TaxID        string `json:"cf_taxid" gorm:"size:13"`
	Branch       string `json:"cf_branch" gorm:"size:64"`

	CreditDays     int             `json:"fmlpaymentcreditday"`
	DueDate        *datatypes.Date `json:"due_date"`
	CarNumberPlate string          `json:"car_numberplate" gorm:"size:20;index"`
	DriverID       string          `json:"driver_id" gorm:"size:8;index"`

	Items []InvoiceItem `json:"items" gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type InvoiceItem struct {
	ID            uint    `json:"idx" gorm:"primaryKey"`
	InvoiceID     uint    `json:"-" gorm:"not null;index"`
	InvoiceNumber string  `json:"invoice_number" gorm:"size:64;index"` // denormalized for reports
	PersonID      string  `json:"personid" gorm:"size:32"`
	ItemCode      string  `json:"cf_itemid" gorm:"size:20;index"`
	ItemName      string  `json:"cf_itemname" gorm:"size:1000"`
	UnitName      string  `json:"cf_unitname" gorm:"size:20"`
	UnitPrice     float64 `json:"unit_price" gorm:"type:numeric(12,2)"`
	Ordinal       int     `json:"cf_items_ordinary"`
	Quantity      float64 `json:"quantity" gorm:"type:numeric(12,3)"`
	Amount        float64 `json:"amount" gorm:"type:numeric(12,2)"`
}
