package documents

import (
	"time"

	"ssincom-backend/config"
	"ssincom-backend/utils"
)

// Variant is one printed copy of a document.
type Variant struct {
	Code   string
	Title  string
	Copy   bool
	Remark string
}

// InvoiceVariants is the print order of the merged invoice PDF.
var InvoiceVariants = []Variant{
	{Code: "invoice_original", Title: "ใบกำกับภาษี/ใบส่งของ/ใบแจ้งหนี้", Remark: "ต้นฉบับ"},
	{Code: "receipt_original", Title: "ใบเสร็จรับเงิน", Remark: "ต้นฉบับ"},
	{Code: "invoice_copy", Title: "ใบกำกับภาษี/ใบส่งของ/ใบแจ้งหนี้", Copy: true, Remark: "สำเนา"},
	{Code: "receipt_copy", Title: "ใบเสร็จรับเงิน", Copy: true, Remark: "สำเนา"},
}

var CreditNoteVariants = []Variant{
	{Code: "creditnote_original", Title: "ใบลดหนี้/ใบกำกับภาษี", Remark: "ต้นฉบับ"},
	{Code: "creditnote_copy", Title: "ใบลดหนี้/ใบกำกับภาษี", Copy: true, Remark: "สำเนา"},
}

// FindVariant returns the variant with code, or the first one.
func FindVariant(variants []Variant, code string) Variant {
	for _, v := range variants {
		if v.Code == code {
			return v
		}
	}
	return variants[0]
}

// Party is a buyer or seller block.
type Party struct {
	Code    string
	Name    string
	Address string
	Branch  string
	TaxID   string
	Phone   string
}

func SellerParty(c config.Company) Party {
	return Party{Name: c.Name, Address: c.Address, Branch: c.Branch, TaxID: c.TaxID, Phone: c.Phone}
}

type InvoiceLine struct {
	Code        string
	Description string
	Unit        string
	Quantity    float64
	UnitPrice   float64
	Amount      float64
}

type InvoiceView struct {
	Variant    Variant
	Seller     Party
	Buyer      Party
	Number     string
	Date       time.Time
	DueDate    time.Time
	CreditDays int
	GRNNumber  string
	DNNumber   string
	PONumber   string
	CarPlate   string
	DriverName string
	Lines      []InvoiceLine
	Subtotal   float64
	VAT        float64
	Grand      float64
}

// NewInvoiceView computes line amounts and the VAT totals.
func NewInvoiceView(v InvoiceView) InvoiceView {
	amounts := make([]float64, len(v.Lines))
	for i := range v.Lines {
		v.Lines[i].Amount = utils.LineAmount(v.Lines[i].Quantity, v.Lines[i].UnitPrice)
		amounts[i] = v.Lines[i].Amount
	}
	v.Subtotal = utils.Sum(amounts...)
	v.VAT, v.Grand = utils.VAT(v.Subtotal)
	return v
}

// WithVariant returns a copy of v printed as variant.
func (v InvoiceView) WithVariant(variant Variant) InvoiceView {
	v.Variant = variant
	return v
}

type BillNoteLine struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	DueDate       time.Time
	Amount        float64
}

type BillNoteView struct {
	Seller Party
	Buyer  Party
	Number string
	Date   time.Time
	Lines  []BillNoteLine
	Total  float64
}

func NewBillNoteView(v BillNoteView) BillNoteView {
	amounts := make([]float64, len(v.Lines))
	for i, l := range v.Lines {
		amounts[i] = l.Amount
	}
	v.Total = utils.Sum(amounts...)
	return v
}

// CreditNoteRowsPerPage is how many rows fit one printed credit note page.
const CreditNoteRowsPerPage = 10

// CreditLine is one credited item as entered on the form.
type CreditLine struct {
	InvoiceNumber  string
	InvoiceDate    time.Time
	Description    string
	Quantity       float64
	Fine           float64
	PriceAfterFine float64
}

type CreditRow struct {
	InvoiceNumber string
	InvoiceDate   time.Time
	Description   string
	OldAmount     float64
	NewAmount     float64
}

type CreditPage struct {
	Number int
	Rows   []CreditRow
}

type CreditNoteView struct {
	Variant     Variant
	Seller      Party
	Buyer       Party
	Number      string
	Date        time.Time
	Reason      string
	Pages       []CreditPage
	TotalPages  int
	ReduceValue float64
	ReduceVAT   float64
	Total       float64
}

// DefaultCreditReason is printed when the form leaves the reason empty.
const DefaultCreditReason = "คิดราคาสินค้าไม่ถูกต้อง"

// NewCreditNoteView prices every line at old = (price_after_fine + fine) × qty and new = price_after_fine × qty.
// Only decreases count toward the reduce value; VAT is charged on that value.
func NewCreditNoteView(seller, buyer Party, number string, date time.Time, reason string, lines []CreditLine) CreditNoteView {
	if reason == "" {
		reason = DefaultCreditReason
	}
	rows := make([]CreditRow, 0, len(lines))
	reduce := make([]float64, 0, len(lines))
	for _, l := range lines {
		oldAmt := utils.LineAmount(l.Quantity, utils.Sum(l.PriceAfterFine, l.Fine))
		newAmt := utils.LineAmount(l.Quantity, l.PriceAfterFine)
		rows = append(rows, CreditRow{
			InvoiceNumber: l.InvoiceNumber,
			InvoiceDate:   l.InvoiceDate,
			Description:   l.Description,
			OldAmount:     oldAmt,
			NewAmount:     newAmt,
		})
		reduce = append(reduce, max(0, utils.Sum(oldAmt, -newAmt)))
	}

	v := CreditNoteView{
		Variant: CreditNoteVariants[0],
		Seller:  seller,
		Buyer:   buyer,
		Number:  number,
		Date:    date,
		Reason:  reason,
		Pages:   paginate(rows, CreditNoteRowsPerPage),
	}
	v.TotalPages = len(v.Pages)
	v.ReduceValue = utils.Sum(reduce...)
	v.ReduceVAT, v.Total = utils.VAT(v.ReduceValue)
	return v
}

func (v CreditNoteView) WithVariant(variant Variant) CreditNoteView {
	v.Variant = variant
	return v
}

// paginate always returns at least one (possibly empty) page.
func paginate(rows []CreditRow, per int) []CreditPage {
	pages := []CreditPage{}
	for start := 0; start < len(rows); start += per {
		end := min(start+per, len(rows))
		pages = append(pages, CreditPage{Number: len(pages) + 1, Rows: rows[start:end]})
	}
	if len(pages) == 0 {
		pages = append(pages, CreditPage{Number: 1})
	}
	return pages
}
