package controllers

import (
	"errors"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ssincom-backend/apperr"
	"ssincom-backend/database"
	"ssincom-backend/documents"
	"ssincom-backend/middlewares"
	"ssincom-backend/models"
	"ssincom-backend/numbering"
	"ssincom-backend/report"
	"ssincom-backend/utils"
)

type BillNoteItemInput struct {
	InvoiceNumber string  `json:"invoice_number" validate:"required,max=64"`
	InvoiceDate   string  `json:"invoice_date"`
	DueDate       string  `json:"due_date"`
	Amount        float64 `json:"amount" validate:"gte=0"`
}

type BillNoteInput struct {
	CustomerID uint                `json:"customer_id" validate:"required"`
	BillDate   string              `json:"bill_date"`
	Items      []BillNoteItemInput `json:"items" validate:"required,min=1,dive"`
}

type billNoteInvoice struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   *string `json:"invoice_date"`
	DueDate       *string `json:"due_date"`
	Amount        float64 `json:"amount"`
	UsedIn        *string `json:"used_in,omitempty"`
}

type billNoteCustomer struct {
	ID       uint   `json:"idx"`
	Name     string `json:"name"`
	TaxID    string `json:"tax_id"`
	Branch   string `json:"branch"`
	Address  string `json:"address"`
	PersonID string `json:"person_id"`
}

func findCustomer(db *gorm.DB, id uint) (models.Customer, error) {
	var cust models.Customer
	err := db.First(&cust, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return cust, apperr.NotFound("ลูกค้า")
	}
	return cust, err
}

// invoiceGrandTotals maps invoice number to its grand total (items + VAT).
func invoiceGrandTotals(db *gorm.DB, numbers []string) (map[string]models.Invoice, map[string]float64, error) {
	invoices := map[string]models.Invoice{}
	grands := map[string]float64{}
	if len(numbers) == 0 {
		return invoices, grands, nil
	}
	var rows []models.Invoice
	if err := db.Preload("Items").Where("invoice_number IN ?", numbers).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	for _, inv := range rows {
		_, grand := utils.VAT(invoiceAmount(inv.Items))
		invoices[inv.InvoiceNumber] = inv
		grands[inv.InvoiceNumber] = grand
	}
	return invoices, grands, nil
}

// billedElsewhere returns invoice number -> bill note number for numbers already on another bill note.
func billedElsewhere(db *gorm.DB, numbers []string, excludeBillNoteID uint) (map[string]string, error) {
	type row struct {
		InvoiceNumber  string
		BillNoteNumber string
	}
	var rows []row
	q := db.Table("bill_note_items").
		Select("bill_note_items.invoice_number, bill_notes.bill_note_number").
		Joins("JOIN bill_notes ON bill_notes.id = bill_note_items.bill_note_id").
		Where("bill_note_items.invoice_number IN ?", numbers)
	if excludeBillNoteID != 0 {
		q = q.Where("bill_note_items.bill_note_id <> ?", excludeBillNoteID)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	used := make(map[string]string, len(rows))
	for _, r := range rows {
		used[r.InvoiceNumber] = r.BillNoteNumber
	}
	return used, nil
}

// guardInvoiceUsage rejects invoice numbers that repeat in the payload or already belong to another bill note.
func guardInvoiceUsage(db *gorm.DB, items []BillNoteItemInput, excludeBillNoteID uint) ([]string, error) {
	numbers := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, dup := seen[it.InvoiceNumber]; dup {
			return nil, badRequest("ใบกำกับ %s ซ้ำในรายการ", it.InvoiceNumber)
		}
		seen[it.InvoiceNumber] = struct{}{}
		numbers = append(numbers, it.InvoiceNumber)
	}

	used, err := billedElsewhere(db, numbers, excludeBillNoteID)
	if err != nil {
		return nil, err
	}
	if len(used) > 0 {
		dups := make([]string, 0, len(used))
		for n := range used {
			dups = append(dups, n)
		}
		sort.Strings(dups)
		return nil, apperr.NewConflict("ใบกำกับถูกใช้ในใบวางบิลอื่นแล้ว", dups...)
	}
	return numbers, nil
}

// buildBillNoteItems prefers the stored invoice dates and grand totals over the submitted values.
func buildBillNoteItems(db *gorm.DB, billNoteID uint, items []BillNoteItemInput, numbers []string) ([]models.BillNoteItem, error) {
	invoices, grands, err := invoiceGrandTotals(db, numbers)
	if err != nil {
		return nil, err
	}
	out := make([]models.BillNoteItem, 0, len(items))
	for _, it := range items {
		row := models.BillNoteItem{BillNoteID: billNoteID, InvoiceNumber: it.InvoiceNumber, Amount: it.Amount}
		if inv, ok := invoices[it.InvoiceNumber]; ok {
			d := inv.InvoiceDate
			row.InvoiceDate = &d
			row.DueDate = inv.DueDate
			row.Amount = grands[it.InvoiceNumber]
		} else {
			if row.InvoiceDate, err = parseOptionalDate("invoice_date", it.InvoiceDate); err != nil {
				return nil, err
			}
			if row.DueDate, err = parseOptionalDate("due_date", it.DueDate); err != nil {
				return nil, err
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func sumBillNoteItems(items []models.BillNoteItem) float64 {
	amounts := make([]float64, len(items))
	for i, it := range items {
		amounts[i] = it.Amount
	}
	return utils.Sum(amounts...)
}

func snapshotCustomer(b *models.BillNote, cust models.Customer) {
	b.CustomerID = cust.ID
	b.CustomerName = cust.Name
	b.PersonID = cust.PersonID
	b.Tel = cust.Tel
	b.Mobile = cust.Mobile
	b.Address = cust.Address
	b.Zipcode = cust.Zipcode
	b.Province = cust.Province
	b.TaxID = cust.TaxID
	b.Branch = cust.BranchLabel()
}

func billDate(s string) (datatypes.Date, error) {
	if strings.TrimSpace(s) == "" {
		return datatypes.Date(today()), nil
	}
	t, err := parseDate("bill_date", s)
	if err != nil {
		return datatypes.Date{}, err
	}
	return datatypes.Date(t), nil
}

// NextBillNoteNumber shows the number the next bill note dated bill_date (default today) would get.
func NextBillNoteNumber(c *fiber.Ctx) error {
	date, err := billDate(c.Query("bill_date"))
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	number, err := numbering.PeekBillNoteNumber(db, dateOf(date))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"billnote_number": number})
}

// BillNoteCandidates lists a customer's invoices in the date range with their grand totals.
// Invoices already billed carry the bill note number in used_in.
func BillNoteCandidates(c *fiber.Ctx) error {
	customerID := c.QueryInt("customer_id")
	if customerID <= 0 {
		return badRequest("customer_id is required")
	}
	rng, err := report.DateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	cust, err := findCustomer(db, uint(customerID))
	if err != nil {
		return err
	}

	var invoices []models.Invoice
	q := whereDateRange(db.Model(&models.Invoice{}), "invoice_date", rng.From, rng.To)
	err = q.Where("person_id = ?", cust.PersonID).
		Preload("Items").
		Order("invoice_date ASC, id ASC").
		Find(&invoices).Error
	if err != nil {
		return err
	}

	numbers := make([]string, len(invoices))
	for i, inv := range invoices {
		numbers[i] = inv.InvoiceNumber
	}
	used := map[string]string{}
	if len(numbers) > 0 {
		if used, err = billedElsewhere(db, numbers, 0); err != nil {
			return err
		}
	}

	out := make([]billNoteInvoice, len(invoices))
	grands := make([]float64, len(invoices))
	for i, inv := range invoices {
		_, grands[i] = utils.VAT(invoiceAmount(inv.Items))
		out[i] = billNoteInvoice{
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   isoDatePtr(&inv.InvoiceDate),
			DueDate:       isoDatePtr(inv.DueDate),
			Amount:        grands[i],
		}
		if bn, ok := used[inv.InvoiceNumber]; ok {
			out[i].UsedIn = &bn
		}
	}

	return c.JSON(fiber.Map{
		"customer": billNoteCustomer{
			ID:       cust.ID,
			Name:     cust.Name,
			TaxID:    cust.TaxID,
			Branch:   cust.BranchLabel(),
			Address:  cust.Address,
			PersonID: cust.PersonID,
		},
		"invoices": out,
		"summary":  fiber.Map{"total_amount": utils.Sum(grands...)},
	})
}

func CreateBillNote(c *fiber.Ctx) error {
	var in BillNoteInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	date, err := billDate(in.BillDate)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	cust, err := findCustomer(db, in.CustomerID)
	if err != nil {
		return err
	}
	numbers, err := guardInvoiceUsage(db, in.Items, 0)
	if err != nil {
		return err
	}

	number, err := numbering.NextBillNoteNumber(db, dateOf(date))
	if err != nil {
		return err
	}
	note := models.BillNote{BillNoteNumber: number, BillDate: date}
	snapshotCustomer(&note, cust)
	if err := db.Create(&note).Error; err != nil {
		return err
	}

	items, err := buildBillNoteItems(db, note.ID, in.Items, numbers)
	if err != nil {
		return err
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}
	note.TotalAmount = sumBillNoteItems(items)
	if err := db.Model(&note).Update("total_amount", note.TotalAmount).Error; err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"ok":              true,
		"billnote_number": note.BillNoteNumber,
		"idx":             note.ID,
		"total_amount":    note.TotalAmount,
	})
}

type billNoteListRow struct {
	ID             uint    `json:"idx"`
	BillNoteNumber string  `json:"billnote_number"`
	BillDate       string  `json:"bill_date"`
	CustomerName   string  `json:"fname"`
	PersonID       string  `json:"personid"`
	InvoiceCount   int     `json:"invoice_count"`
	TotalAmount    float64 `json:"total_amount"`
}

func ListBillNotes(c *fiber.Ctx) error {
	rng, err := report.DateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	q := whereDateRange(db.Model(&models.BillNote{}), "bill_date", rng.From, rng.To)
	q = whereContains(q, c.Query("q"), "bill_note_number", "customer_name", "person_id")
	var notes []models.BillNote
	if err := q.Preload("Items").Order("bill_date DESC, id DESC").Find(&notes).Error; err != nil {
		return err
	}
	out := make([]billNoteListRow, len(notes))
	for i, n := range notes {
		out[i] = billNoteListRow{
			ID:             n.ID,
			BillNoteNumber: n.BillNoteNumber,
			BillDate:       isoDate(n.BillDate),
			CustomerName:   n.CustomerName,
			PersonID:       n.PersonID,
			InvoiceCount:   len(n.Items),
			TotalAmount:    n.TotalAmount,
		}
	}
	return c.JSON(out)
}

func loadBillNote(db *gorm.DB, number string) (models.BillNote, error) {
	var note models.BillNote
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("invoice_date ASC, id ASC") }).
		Where("bill_note_number = ?", number).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return note, apperr.NotFound("ใบวางบิล")
	}
	return note, err
}

// refreshAmounts recomputes every line from the invoices it references; lines whose invoice is gone keep
// the stored amount.
func refreshAmounts(db *gorm.DB, note *models.BillNote) error {
	numbers := make([]string, len(note.Items))
	for i, it := range note.Items {
		numbers[i] = it.InvoiceNumber
	}
	_, grands, err := invoiceGrandTotals(db, numbers)
	if err != nil {
		return err
	}
	for i, it := range note.Items {
		if g, ok := grands[it.InvoiceNumber]; ok {
			note.Items[i].Amount = g
		}
	}
	note.TotalAmount = sumBillNoteItems(note.Items)
	return nil
}

func GetBillNote(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	note, err := loadBillNote(db, c.Params("number"))
	if err != nil {
		return err
	}
	if err := refreshAmounts(db, &note); err != nil {
		return err
	}

	invoices := make([]billNoteInvoice, len(note.Items))
	for i, it := range note.Items {
		invoices[i] = billNoteInvoice{
			InvoiceNumber: it.InvoiceNumber,
			InvoiceDate:   isoDatePtr(it.InvoiceDate),
			DueDate:       isoDatePtr(it.DueDate),
			Amount:        it.Amount,
		}
	}
	return c.JSON(fiber.Map{
		"customer": billNoteCustomer{
			ID:       note.CustomerID,
			Name:     note.CustomerName,
			TaxID:    note.TaxID,
			Branch:   note.Branch,
			Address:  note.Address,
			PersonID: note.PersonID,
		},
		"invoices":        invoices,
		"summary":         fiber.Map{"total_amount": note.TotalAmount},
		"billnote_number": note.BillNoteNumber,
		"bill_date":       isoDate(note.BillDate),
	})
}

type BillNoteUpdate struct {
	CustomerID uint                `json:"customer_id"`
	BillDate   string              `json:"bill_date"`
	Items      []BillNoteItemInput `json:"items" validate:"required,min=1,dive"`
}

// UpdateBillNote replaces the invoice lines. The number never changes, even when bill_date moves
// to another month.
func UpdateBillNote(c *fiber.Ctx) error {
	var in BillNoteUpdate
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	note, err := loadBillNote(db, c.Params("number"))
	if err != nil {
		return err
	}
	if err := saveRevision(db, "billnote", note.BillNoteNumber, "update", note); err != nil {
		return err
	}

	numbers, err := guardInvoiceUsage(db, in.Items, note.ID)
	if err != nil {
		return err
	}
	if in.CustomerID != 0 && in.CustomerID != note.CustomerID {
		cust, err := findCustomer(db, in.CustomerID)
		if err != nil {
			return err
		}
		snapshotCustomer(&note, cust)
	}
	if in.BillDate != "" {
		if note.BillDate, err = billDate(in.BillDate); err != nil {
			return err
		}
	}

	if err := db.Where("bill_note_id = ?", note.ID).Delete(&models.BillNoteItem{}).Error; err != nil {
		return err
	}
	items, err := buildBillNoteItems(db, note.ID, in.Items, numbers)
	if err != nil {
		return err
	}
	if err := db.Create(&items).Error; err != nil {
		return err
	}
	note.TotalAmount = sumBillNoteItems(items)
	note.Items = nil
	if err := db.Omit("Items").Save(&note).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "billnote_number": note.BillNoteNumber, "total_amount": note.TotalAmount})
}

func DeleteBillNote(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	note, err := loadBillNote(db, c.Params("number"))
	if err != nil {
		return err
	}
	if err := saveRevision(db, "billnote", note.BillNoteNumber, "delete", note); err != nil {
		return err
	}
	if err := db.Where("bill_note_id = ?", note.ID).Delete(&models.BillNoteItem{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.BillNote{}, note.ID).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func billNoteView(note models.BillNote) documents.BillNoteView {
	lines := make([]documents.BillNoteLine, len(note.Items))
	for i, it := range note.Items {
		lines[i] = documents.BillNoteLine{
			InvoiceNumber: it.InvoiceNumber,
			InvoiceDate:   datePtrOf(it.InvoiceDate),
			DueDate:       datePtrOf(it.DueDate),
			Amount:        it.Amount,
		}
	}
	addr := strings.TrimSpace(strings.Join([]string{note.Address, note.Province, note.Zipcode}, " "))
	return documents.NewBillNoteView(documents.BillNoteView{
		Seller: documents.SellerParty(company),
		Buyer: documents.Party{
			Code:    note.PersonID,
			Name:    note.CustomerName,
			Address: addr,
			Branch:  note.Branch,
			TaxID:   note.TaxID,
			Phone:   firstNonEmpty(note.Tel, note.Mobile),
		},
		Number: note.BillNoteNumber,
		Date:   dateOf(note.BillDate),
		Lines:  lines,
	})
}

func storedBillNoteView(c *fiber.Ctx) (documents.BillNoteView, error) {
	db, err := database.FromCtx(c)
	if err != nil {
		return documents.BillNoteView{}, err
	}
	note, err := loadBillNote(db, c.Params("number"))
	if err != nil {
		return documents.BillNoteView{}, err
	}
	if err := refreshAmounts(db, &note); err != nil {
		return documents.BillNoteView{}, err
	}
	return billNoteView(note), nil
}

// PreviewBillNote renders an unsaved bill note; the number shown is the one it would get.
func PreviewBillNote(c *fiber.Ctx) error {
	var in BillNoteInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	date, err := billDate(in.BillDate)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	cust, err := findCustomer(db, in.CustomerID)
	if err != nil {
		return err
	}
	number, err := numbering.PeekBillNoteNumber(db, dateOf(date))
	if err != nil {
		return err
	}
	numbers := make([]string, len(in.Items))
	for i, it := range in.Items {
		numbers[i] = it.InvoiceNumber
	}
	items, err := buildBillNoteItems(db, 0, in.Items, numbers)
	if err != nil {
		return err
	}
	note := models.BillNote{BillNoteNumber: number, BillDate: date, Items: items}
	snapshotCustomer(&note, cust)
	return renderHTML(c, "billnote", billNoteView(note))
}

func PreviewStoredBillNote(c *fiber.Ctx) error {
	view, err := storedBillNoteView(c)
	if err != nil {
		return err
	}
	return renderHTML(c, "billnote", view)
}

func ExportBillNotePDF(c *fiber.Ctx) error {
	view, err := storedBillNoteView(c)
	if err != nil {
		return err
	}
	return sendPDF(c, "billnote_"+view.Number+".pdf", "billnote", view)
}
