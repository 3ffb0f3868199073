package controllers

import (
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"ssincom-backend/apperr"
	"ssincom-backend/database"
	"ssincom-backend/models"
	"ssincom-backend/utils"
)

func TestInvoiceInputToModel(t *testing.T) {
	fallback := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	in := InvoiceInput{
		InvoiceNumber:   "INV001",
		InvoiceDate:     "10/01/2025",
		CustomerNameAlt: "ACME",
		TaxIDAlt:        "0105551234567",
		CreditDays:      30,
		Items: []InvoiceItemInput{
			{ProductCode: "P1", Description: "หินคลุก", Quantity: 3, UnitPrice: 33.335},
			{},
			{ItemCode: "P2", ItemName: "ทราย", Quantity: 2, UnitPrice: 50},
		},
	}

	inv, err := in.toModel(fallback)
	if err != nil {
		t.Fatal(err)
	}
	if got := utils.ISODate(time.Time(inv.InvoiceDate)); got != "2025-01-10" {
		t.Errorf("invoice date = %s", got)
	}
	if inv.DueDate == nil || utils.ISODate(time.Time(*inv.DueDate)) != "2025-02-09" {
		t.Errorf("due date = %v, want 2025-02-09", inv.DueDate)
	}
	if inv.CustomerName != "ACME" || inv.TaxID != "0105551234567" {
		t.Errorf("aliases not applied: %q %q", inv.CustomerName, inv.TaxID)
	}
	if len(inv.Items) != 2 {
		t.Fatalf("blank rows should be skipped, got %d items", len(inv.Items))
	}
	first, second := inv.Items[0], inv.Items[1]
	if first.ItemCode != "P1" || first.Amount != 100.01 || first.Ordinal != 1 {
		t.Errorf("first item = %+v", first)
	}
	if second.Ordinal != 3 || second.Amount != 100 {
		t.Errorf("second item keeps its form position: %+v", second)
	}
	if got := invoiceAmount(inv.Items); got != 200.01 {
		t.Errorf("invoiceAmount = %v", got)
	}

	explicit := InvoiceInput{InvoiceNumber: "INV002", DueDate: "2025-07-01", CreditDays: 30}
	inv, err = explicit.toModel(fallback)
	if err != nil {
		t.Fatal(err)
	}
	if utils.ISODate(time.Time(inv.InvoiceDate)) != "2025-06-01" || utils.ISODate(time.Time(*inv.DueDate)) != "2025-07-01" {
		t.Errorf("explicit due date overridden: %+v", inv)
	}

	if _, err := (InvoiceInput{InvoiceDate: "yesterday"}).toModel(fallback); err == nil {
		t.Error("expected an error for an unparseable date")
	}
}

func TestBuildCreditNoteItems(t *testing.T) {
	items := buildCreditNoteItems(7, []CreditNoteItemInput{
		{InvoiceNumber: "INV001", SumQuantity: 10, Fine: 5, PriceAfterFine: 95},
	})
	if len(items) != 1 {
		t.Fatalf("got %d items", len(items))
	}
	it := items[0]
	if it.CreditNoteID != 7 || it.Quantity != 10 {
		t.Errorf("item = %+v", it)
	}
	if it.OriginalAmount != 1000 || it.NewAmount != 950 || it.FineDifference != 50 {
		t.Errorf("amounts: original %v new %v diff %v", it.OriginalAmount, it.NewAmount, it.FineDifference)
	}
	if it.OriginalTotal != 1070 || it.NewTotal != 1016.5 {
		t.Errorf("totals: %v %v", it.OriginalTotal, it.NewTotal)
	}
}

func TestGuardInvoiceUsage(t *testing.T) {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	note := models.BillNote{BillNoteNumber: "BNTS6801000001", BillDate: datatypes.Date(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))}
	if err := db.Create(&note).Error; err != nil {
		t.Fatal(err)
	}
	if err := db.Create(&models.BillNoteItem{BillNoteID: note.ID, InvoiceNumber: "INV001", Amount: 1070}).Error; err != nil {
		t.Fatal(err)
	}

	_, err = guardInvoiceUsage(db, []BillNoteItemInput{{InvoiceNumber: "INV002"}, {InvoiceNumber: "INV001"}}, 0)
	var ce *apperr.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a conflict, got %v", err)
	}
	if len(ce.Duplicates) != 1 || ce.Duplicates[0] != "INV001" {
		t.Errorf("duplicates = %v", ce.Duplicates)
	}
	if !errors.Is(err, apperr.ErrDuplicate) {
		t.Error("conflict should match ErrDuplicate")
	}

	// the note being edited may keep its own invoices
	numbers, err := guardInvoiceUsage(db, []BillNoteItemInput{{InvoiceNumber: "INV001"}}, note.ID)
	if err != nil || len(numbers) != 1 {
		t.Errorf("self exclusion: %v %v", numbers, err)
	}

	if _, err := guardInvoiceUsage(db, []BillNoteItemInput{{InvoiceNumber: "INV003"}, {InvoiceNumber: "INV003"}}, 0); err == nil {
		t.Error("repeated invoice in one request should be rejected")
	}

	// the unique index backs the guard
	err = db.Create(&models.BillNoteItem{BillNoteID: note.ID + 1, InvoiceNumber: "INV001"}).Error
	if err == nil {
		t.Error("second bill note item for INV001 was stored")
	}
}
