package models

import (
	"time"

	"gorm.io/datatypes"

	"ssincom-backend/utils"
)

// CreditNote (ใบลดหนี้) reduces previously invoiced amounts, usually because of pricing fines.
type CreditNote struct {
	ID               uint           `json:"idx" gorm:"primaryKey"`
	CreditNoteNumber string         `json:"creditnote_number" gorm:"size:40;not null;uniqueIndex"`
	DocDate          datatypes.Date `json:"creditnote_date" gorm:"not null;index"`
	Reason           string         `json:"reason" gorm:"size:255"`
	PersonID         string         `json:"personid" gorm:"size:32;index"`

	Items []CreditNoteItem `json:"items" gorm:"foreignKey:CreditNoteID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreditNoteItem struct {
	ID             uint    `json:"idx" gorm:"primaryKey"`
	CreditNoteID   uint    `json:"-" gorm:"not null;index"`
	GRNNumber      string  `json:"grn_number" gorm:"size:64"`
	InvoiceNumber  string  `json:"invoice_number" gorm:"size:64;index"`
	ItemCode       string  `json:"cf_itemid" gorm:"size:20"`
	ItemName       string  `json:"cf_itemname" gorm:"size:1000"`
	Quantity       float64 `json:"quantity" gorm:"type:numeric(12,3)"`
	Fine           float64 `json:"fine" gorm:"type:numeric(12,2)"`
	PriceAfterFine float64 `json:"price_after_fine" gorm:"type:numeric(12,2)"`

	// Derived at save time from quantity, fine and price_after_fine.
	OriginalAmount float64 `json:"original_amount" gorm:"type:numeric(12,2)"`
	NewAmount      float64 `json:"new_amount" gorm:"type:numeric(12,2)"`
	OriginalVAT    float64 `json:"original_vat" gorm:"type:numeric(12,2)"`
	NewVAT         float64 `json:"new_vat" gorm:"type:numeric(12,2)"`
	OriginalTotal  float64 `json:"original_total" gorm:"type:numeric(12,2)"`
	NewTotal       float64 `json:"new_total" gorm:"type:numeric(12,2)"`
	FineDifference float64 `json:"fine_difference" gorm:"type:numeric(12,2)"`
}

// Recalculate fills the derived amounts. The original unit price is price_after_fine + fine.
func (it *CreditNoteItem) Recalculate() {
	it.NewAmount = utils.LineAmount(it.Quantity, it.PriceAfterFine)
	it.OriginalAmount = utils.LineAmount(it.Quantity, utils.Sum(it.PriceAfterFine, it.Fine))
	it.OriginalVAT, it.OriginalTotal = utils.VAT(it.OriginalAmount)
	it.NewVAT, it.NewTotal = utils.VAT(it.NewAmount)
	it.FineDifference = utils.Sum(it.OriginalAmount, -it.NewAmount)
}
