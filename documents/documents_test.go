package documents

import (
	"strings"
	"testing"
	"time"

	"ssincom-backend/config"
)

func TestNewCreditNoteView(t *testing.T) {
	lines := []CreditLine{
		{InvoiceNumber: "INV001", Description: "A", Quantity: 10, Fine: 2, PriceAfterFine: 8},  // 100 -> 80
		{InvoiceNumber: "INV002", Description: "B", Quantity: 3, Fine: 0, PriceAfterFine: 5},   // no change
		{InvoiceNumber: "INV003", Description: "C", Quantity: 1, Fine: -4, PriceAfterFine: 10}, // increase, ignored
	}
	v := NewCreditNoteView(Party{}, Party{}, "SSCR1-0101/2568", time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), "", lines)

	if v.Reason != DefaultCreditReason {
		t.Errorf("Reason = %q", v.Reason)
	}
	if v.ReduceValue != 20 {
		t.Errorf("ReduceValue = %v, want 20", v.ReduceValue)
	}
	if v.ReduceVAT != 1.4 || v.Total != 21.4 {
		t.Errorf("VAT/Total = %v/%v, want 1.4/21.4", v.ReduceVAT, v.Total)
	}
	if row := v.Pages[0].Rows[0]; row.OldAmount != 100 || row.NewAmount != 80 {
		t.Errorf("row 0 = %+v", row)
	}
}

func TestCreditNotePagination(t *testing.T) {
	tests := []struct {
		lines     int
		wantPages int
		lastRows  int
	}{
		{0, 1, 0},
		{1, 1, 1},
		{10, 1, 10},
		{11, 2, 1},
		{25, 3, 5},
	}
	for _, tt := range tests {
		lines := make([]CreditLine, tt.lines)
		v := NewCreditNoteView(Party{}, Party{}, "X", time.Time{}, "r", lines)
		if v.TotalPages != tt.wantPages || len(v.Pages) != tt.wantPages {
			t.Errorf("%d lines: pages = %d, want %d", tt.lines, v.TotalPages, tt.wantPages)
			continue
		}
		if got := len(v.Pages[len(v.Pages)-1].Rows); got != tt.lastRows {
			t.Errorf("%d lines: last page rows = %d, want %d", tt.lines, got, tt.lastRows)
		}
	}
}

func TestNewInvoiceViewTotals(t *testing.T) {
	v := NewInvoiceView(InvoiceView{Lines: []InvoiceLine{
		{Quantity: 2, UnitPrice: 50.25},
		{Quantity: 1.5, UnitPrice: 10},
	}})
	if v.Subtotal != 115.5 {
		t.Fatalf("Subtotal = %v", v.Subtotal)
	}
	if v.VAT != 8.09 || v.Grand != 123.59 {
		t.Fatalf("VAT/Grand = %v/%v", v.VAT, v.Grand)
	}
}

func TestRenderTemplates(t *testing.T) {
	engine, err := NewEngine()
	if err != nil {
		t.Fatal(err)
	}
	seller := SellerParty(config.DefaultCompany())
	date := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	inv := NewInvoiceView(InvoiceView{
		Seller: seller,
		Buyer:  Party{Name: "ร้านทดสอบ", Branch: "สำนักงานใหญ่"},
		Number: "IV6801-0001",
		Date:   date,
		Lines:  []InvoiceLine{{Code: "P1", Description: "ปูนซีเมนต์", Quantity: 10, UnitPrice: 100}},
	}).WithVariant(InvoiceVariants[1])
	out, err := Render(engine, "invoice", inv)
	if err != nil {
		t.Fatal(err)
	}
	html := string(out)
	for _, want := range []string{"IV6801-0001", "ใบเสร็จรับเงิน", "2 มกราคม 2568", "1,070.00", "หนึ่งพันเจ็ดสิบบาทถ้วน", seller.TaxID} {
		if !strings.Contains(html, want) {
			t.Errorf("invoice html missing %q", want)
		}
	}

	bn := NewBillNoteView(BillNoteView{
		Seller: seller,
		Number: "BNTS6801000001",
		Date:   date,
		Lines:  []BillNoteLine{{InvoiceNumber: "INV001", InvoiceDate: date, Amount: 107}},
	})
	out, err = Render(engine, "billnote", bn)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "BNTS6801000001") || !strings.Contains(string(out), "02/01/2568") {
		t.Error("bill note html missing number or BE date")
	}

	lines := make([]CreditLine, 12)
	cn := NewCreditNoteView(seller, Party{Name: "ลูกค้า"}, "SSCR1-0201/2568", date, "", lines).WithVariant(CreditNoteVariants[1])
	out, err = Render(engine, "creditnote", cn)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(out), `class="sheet"`); got != 2 {
		t.Errorf("credit note sheets = %d, want 2", got)
	}
	if !strings.Contains(string(out), "สำเนา") {
		t.Error("credit note copy remark missing")
	}
}

func TestFindVariant(t *testing.T) {
	if v := FindVariant(InvoiceVariants, "receipt_copy"); !v.Copy || v.Title != "ใบเสร็จรับเงิน" {
		t.Errorf("receipt_copy = %+v", v)
	}
	if v := FindVariant(InvoiceVariants, "nope"); v.Code != "invoice_original" {
		t.Errorf("fallback = %q", v.Code)
	}
}
