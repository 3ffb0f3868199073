package controllers

import (
	"errors"
	"sort"
	"strings"
	"time"

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

type CreditNoteItemInput struct {
	GRNNumber      string  `json:"grn_number" validate:"max=64"`
	InvoiceNumber  string  `json:"invoice_number" validate:"max=64"`
	ItemCode       string  `json:"cf_itemid" validate:"max=20"`
	ItemName       string  `json:"cf_itemname" validate:"max=1000"`
	Quantity       float64 `json:"quantity" norm:"qty" validate:"gte=0"`
	SumQuantity    float64 `json:"sum_quantity" norm:"qty" validate:"gte=0"`
	Fine           float64 `json:"fine" validate:"gte=0"`
	PriceAfterFine float64 `json:"price_after_fine" validate:"gte=0"`
}

func (in CreditNoteItemInput) qty() float64 {
	if in.Quantity != 0 {
		return in.Quantity
	}
	return in.SumQuantity
}

// CreditNoteBuyer is the buyer block of the credit note form.
type CreditNoteBuyer struct {
	PersonID string `json:"personid"`
	Name     string `json:"name"`
	Addr     string `json:"addr"`
	Branch   string `json:"branch"`
	Tax      string `json:"tax"`
	Tel      string `json:"tel"`
	Mobile   string `json:"mobile"`
	Zipcode  string `json:"zipcode"`
	Prov     string `json:"prov"`
}

type CreditNoteInput struct {
	Number   string                `json:"creditnote_number" validate:"max=40"`
	Date     string                `json:"creditnote_date"`
	Reason   string                `json:"reason" validate:"max=255"`
	PersonID string                `json:"personid" validate:"max=32"`
	Buyer    *CreditNoteBuyer      `json:"buyer"`
	Variant  string                `json:"variant"`
	Items    []CreditNoteItemInput `json:"items" validate:"dive"`
}

func (in CreditNoteInput) date() (time.Time, error) {
	if strings.TrimSpace(in.Date) == "" {
		return today(), nil
	}
	return parseDate("creditnote_date", in.Date)
}

func buildCreditNoteItems(noteID uint, in []CreditNoteItemInput) []models.CreditNoteItem {
	items := make([]models.CreditNoteItem, 0, len(in))
	for _, it := range in {
		row := models.CreditNoteItem{
			CreditNoteID:   noteID,
			GRNNumber:      it.GRNNumber,
			InvoiceNumber:  it.InvoiceNumber,
			ItemCode:       it.ItemCode,
			ItemName:       it.ItemName,
			Quantity:       it.qty(),
			Fine:           it.Fine,
			PriceAfterFine: it.PriceAfterFine,
		}
		row.Recalculate()
		items = append(items, row)
	}
	return items
}

func creditInputsOf(items []models.CreditNoteItem) []CreditNoteItemInput {
	out := make([]CreditNoteItemInput, len(items))
	for i, it := range items {
		out[i] = CreditNoteItemInput{
			GRNNumber:      it.GRNNumber,
			InvoiceNumber:  it.InvoiceNumber,
			ItemCode:       it.ItemCode,
			ItemName:       it.ItemName,
			Quantity:       it.Quantity,
			Fine:           it.Fine,
			PriceAfterFine: it.PriceAfterFine,
		}
	}
	return out
}

// firstInvoicePersonID is the customer code on the first referenced invoice.
func firstInvoicePersonID(db *gorm.DB, items []CreditNoteItemInput) (string, error) {
	for _, it := range items {
		if it.InvoiceNumber == "" {
			continue
		}
		var ids []string
		err := db.Model(&models.Invoice{}).Where("invoice_number = ?", it.InvoiceNumber).Limit(1).Pluck("person_id", &ids).Error
		if err != nil {
			return "", err
		}
		if len(ids) > 0 && ids[0] != "" {
			return ids[0], nil
		}
	}
	return "", nil
}

// resolveBuyerID picks the customer code: explicit personid, then the buyer block, then the first invoice.
func resolveBuyerID(db *gorm.DB, in CreditNoteInput) (string, error) {
	if in.PersonID != "" {
		return in.PersonID, nil
	}
	if in.Buyer != nil && in.Buyer.PersonID != "" {
		return in.Buyer.PersonID, nil
	}
	return firstInvoicePersonID(db, in.Items)
}

func lookupBuyer(db *gorm.DB, personID string) (*CreditNoteBuyer, error) {
	if personID == "" {
		return nil, nil
	}
	var cust models.Customer
	err := db.Where("person_id = ?", personID).First(&cust).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &CreditNoteBuyer{
		PersonID: cust.PersonID,
		Name:     cust.Name,
		Addr:     cust.Address,
		Branch:   cust.BranchLabel(),
		Tax:      cust.TaxID,
		Tel:      cust.Tel,
		Mobile:   cust.Mobile,
		Zipcode:  cust.Zipcode,
		Prov:     cust.Province,
	}, nil
}

// creditNoteView prints the customer record when it exists, otherwise the buyer block as typed.
func creditNoteView(db *gorm.DB, number string, date time.Time, in CreditNoteInput) (documents.CreditNoteView, error) {
	personID, err := resolveBuyerID(db, in)
	if err != nil {
		return documents.CreditNoteView{}, err
	}
	buyer, err := lookupBuyer(db, personID)
	if err != nil {
		return documents.CreditNoteView{}, err
	}
	if buyer == nil && in.Buyer != nil {
		buyer = in.Buyer
	}
	var party documents.Party
	if buyer != nil {
		party = documents.Party{
			Code:    buyer.PersonID,
			Name:    buyer.Name,
			Address: strings.TrimSpace(strings.Join([]string{buyer.Addr, buyer.Prov, buyer.Zipcode}, " ")),
			Branch:  buyer.Branch,
			TaxID:   buyer.Tax,
			Phone:   firstNonEmpty(buyer.Tel, buyer.Mobile),
		}
	}

	invoiceDates, err := invoiceDatesOf(db, in.Items)
	if err != nil {
		return documents.CreditNoteView{}, err
	}
	lines := make([]documents.CreditLine, len(in.Items))
	for i, it := range in.Items {
		lines[i] = documents.CreditLine{
			InvoiceNumber:  it.InvoiceNumber,
			InvoiceDate:    invoiceDates[it.InvoiceNumber],
			Description:    it.ItemName,
			Quantity:       it.qty(),
			Fine:           it.Fine,
			PriceAfterFine: it.PriceAfterFine,
		}
	}
	if number == "" {
		number = "-"
	}
	return documents.NewCreditNoteView(documents.SellerParty(company), party, number, date, in.Reason, lines), nil
}

func invoiceDatesOf(db *gorm.DB, items []CreditNoteItemInput) (map[string]time.Time, error) {
	numbers := make([]string, 0, len(items))
	for _, it := range items {
		if it.InvoiceNumber != "" {
			numbers = append(numbers, it.InvoiceNumber)
		}
	}
	dates := make(map[string]time.Time, len(numbers))
	if len(numbers) == 0 {
		return dates, nil
	}
	var invoices []models.Invoice
	if err := db.Select("invoice_number", "invoice_date").Where("invoice_number IN ?", numbers).Find(&invoices).Error; err != nil {
		return nil, err
	}
	for _, inv := range invoices {
		dates[inv.InvoiceNumber] = dateOf(inv.InvoiceDate)
	}
	return dates, nil
}

func creditNoteNumberParam(c *fiber.Ctx) (string, error) {
	no := strings.TrimSpace(c.Query("no"))
	if no == "" {
		return "", badRequest("no is required")
	}
	return no, nil
}

func loadCreditNote(db *gorm.DB, number string) (models.CreditNote, error) {
	var note models.CreditNote
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Where("credit_note_number = ?", number).
		First(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return note, apperr.NotFound("ใบลดหนี้")
	}
	return note, err
}

// GenerateCreditNoteNumber previews the next number for the given document date.
func GenerateCreditNoteNumber(c *fiber.Ctx) error {
	date := today()
	if s := c.Query("date"); s != "" {
		d, err := parseDate("date", s)
		if err != nil {
			return err
		}
		date = d
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	number, err := numbering.PeekCreditNoteNumber(db, date)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"number": number})
}

func CreateCreditNote(c *fiber.Ctx) error {
	var in CreditNoteInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	if len(in.Items) == 0 {
		return badRequest("at least one item is required")
	}
	date, err := in.date()
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	number := in.Number
	if number != "" {
		var n int64
		if err := db.Model(&models.CreditNote{}).Where("credit_note_number = ?", number).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.NewConflict("เลขเอกสารถูกใช้แล้ว", number)
		}
	} else if number, err = numbering.NextCreditNoteNumber(db, date); err != nil {
		return err
	}

	personID, err := resolveBuyerID(db, in)
	if err != nil {
		return err
	}
	note := models.CreditNote{
		CreditNoteNumber: number,
		DocDate:          datatypes.Date(date),
		Reason:           in.Reason,
		PersonID:         personID,
	}
	if err := db.Create(&note).Error; err != nil {
		return err
	}
	items := buildCreditNoteItems(note.ID, in.Items)
	if err := db.Create(&items).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "creditnote_number": number})
}

type creditNoteListRow struct {
	Number       string  `json:"creditnote_number"`
	CreatedAt    string  `json:"created_at"`
	CustomerName *string `json:"customer_name"`
	TotalAmount  float64 `json:"total_amount"`
}

// SearchCreditNotes lists up to 100 credit notes; total_amount is the sum of the new (after fine) amounts.
func SearchCreditNotes(c *fiber.Ctx) error {
	rng, err := report.DateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	q := whereDateRange(db.Model(&models.CreditNote{}), "doc_date", rng.From, rng.To)
	q = whereContains(q, c.Query("q"), "credit_note_number", "person_id")
	var notes []models.CreditNote
	if err := q.Preload("Items").Order("doc_date DESC, credit_note_number DESC").Limit(100).Find(&notes).Error; err != nil {
		return err
	}

	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.PersonID != "" {
			ids = append(ids, n.PersonID)
		}
	}
	names := map[string]string{}
	if len(ids) > 0 {
		var customers []models.Customer
		if err := db.Select("person_id", "name").Where("person_id IN ?", ids).Find(&customers).Error; err != nil {
			return err
		}
		for _, cust := range customers {
			names[cust.PersonID] = cust.Name
		}
	}

	out := make([]creditNoteListRow, len(notes))
	for i, n := range notes {
		amounts := make([]float64, len(n.Items))
		for j, it := range n.Items {
			amounts[j] = it.NewAmount
		}
		out[i] = creditNoteListRow{
			Number:      n.CreditNoteNumber,
			CreatedAt:   isoDate(n.DocDate),
			TotalAmount: utils.Sum(amounts...),
		}
		if name, ok := names[n.PersonID]; ok {
			out[i].CustomerName = &name
		}
	}
	return c.JSON(out)
}

func GetCreditNote(c *fiber.Ctx) error {
	no, err := creditNoteNumberParam(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	note, err := loadCreditNote(db, no)
	if err != nil {
		return err
	}
	buyer, err := lookupBuyer(db, note.PersonID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"head": fiber.Map{
			"creditnote_number": note.CreditNoteNumber,
			"created_at":        isoDate(note.DocDate),
			"updated_at":        note.UpdatedAt,
			"reason":            note.Reason,
			"personid":          note.PersonID,
		},
		"items": note.Items,
		"buyer": buyer,
	})
}

// UpdateCreditNote replaces the items; the number is kept.
func UpdateCreditNote(c *fiber.Ctx) error {
	no, err := creditNoteNumberParam(c)
	if err != nil {
		return err
	}
	var in CreditNoteInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	note, err := loadCreditNote(db, no)
	if err != nil {
		return err
	}
	if err := saveRevision(db, "creditnote", note.CreditNoteNumber, "update", note); err != nil {
		return err
	}

	if in.Date != "" {
		d, err := in.date()
		if err != nil {
			return err
		}
		note.DocDate = datatypes.Date(d)
	}
	if in.Reason != "" {
		note.Reason = in.Reason
	}
	if personID, err := resolveBuyerID(db, in); err != nil {
		return err
	} else if personID != "" {
		note.PersonID = personID
	}

	if err := db.Where("credit_note_id = ?", note.ID).Delete(&models.CreditNoteItem{}).Error; err != nil {
		return err
	}
	items := buildCreditNoteItems(note.ID, in.Items)
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}
	note.Items = nil
	if err := db.Omit("Items").Save(&note).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "creditnote_number": note.CreditNoteNumber})
}

func DeleteCreditNote(c *fiber.Ctx) error {
	no, err := creditNoteNumberParam(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	note, err := loadCreditNote(db, no)
	if err != nil {
		return err
	}
	if err := saveRevision(db, "creditnote", note.CreditNoteNumber, "delete", note); err != nil {
		return err
	}
	if err := db.Where("credit_note_id = ?", note.ID).Delete(&models.CreditNoteItem{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.CreditNote{}, note.ID).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

func creditNoteFromPayload(c *fiber.Ctx) (documents.CreditNoteView, CreditNoteInput, error) {
	var in CreditNoteInput
	if err := c.BodyParser(&in); err != nil {
		return documents.CreditNoteView{}, in, badRequest("invalid request body")
	}
	utils.Normalize(&in)
	date, err := in.date()
	if err != nil {
		return documents.CreditNoteView{}, in, err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return documents.CreditNoteView{}, in, err
	}
	view, err := creditNoteView(db, in.Number, date, in)
	return view, in, err
}

func storedCreditNoteView(c *fiber.Ctx) (documents.CreditNoteView, error) {
	no, err := creditNoteNumberParam(c)
	if err != nil {
		return documents.CreditNoteView{}, err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return documents.CreditNoteView{}, err
	}
	note, err := loadCreditNote(db, no)
	if err != nil {
		return documents.CreditNoteView{}, err
	}
	in := CreditNoteInput{PersonID: note.PersonID, Reason: note.Reason, Items: creditInputsOf(note.Items)}
	return creditNoteView(db, note.CreditNoteNumber, dateOf(note.DocDate), in)
}

func PreviewCreditNote(c *fiber.Ctx) error {
	view, in, err := creditNoteFromPayload(c)
	if err != nil {
		return err
	}
	return renderHTML(c, "creditnote", view.WithVariant(documents.FindVariant(documents.CreditNoteVariants, in.Variant)))
}

func PreviewStoredCreditNote(c *fiber.Ctx) error {
	view, err := storedCreditNoteView(c)
	if err != nil {
		return err
	}
	return renderHTML(c, "creditnote", view.WithVariant(documents.FindVariant(documents.CreditNoteVariants, c.Query("variant"))))
}

func creditNotePages(view documents.CreditNoteView) []any {
	pages := make([]any, len(documents.CreditNoteVariants))
	for i, v := range documents.CreditNoteVariants {
		pages[i] = view.WithVariant(v)
	}
	return pages
}

// ExportCreditNotePDF prints the original and the copy into one file.
func ExportCreditNotePDF(c *fiber.Ctx) error {
	view, _, err := creditNoteFromPayload(c)
	if err != nil {
		return err
	}
	name := view.Number
	if name == "-" {
		name = "document"
	}
	return sendPDF(c, "credit_note_"+name+".pdf", "creditnote", creditNotePages(view)...)
}

func ExportStoredCreditNotePDF(c *fiber.Ctx) error {
	view, err := storedCreditNoteView(c)
	if err != nil {
		return err
	}
	return sendPDF(c, "credit_note_"+view.Number+".pdf", "creditnote", creditNotePages(view)...)
}

func SuggestGRN(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	limit := utils.ClampInt(utils.ParseIntDefault(c.Query("limit"), 10), 1, 50)
	var values []string
	err = whereContains(db.Model(&models.Invoice{}), c.Query("q"), "grn_number").
		Where("grn_number <> ''").
		Distinct("grn_number").
		Order("grn_number ASC").
		Limit(limit).
		Pluck("grn_number", &values).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": values})
}

// GRNSummary collects what a goods-received note delivered: the first invoice, its customer,
// the distinct products and the total quantity.
func GRNSummary(c *fiber.Ctx) error {
	grn := strings.TrimSpace(c.Query("grn"))
	if grn == "" {
		return badRequest("grn is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var invoices []models.Invoice
	if err := db.Preload("Items").Where("grn_number = ?", grn).Order("invoice_number ASC").Find(&invoices).Error; err != nil {
		return err
	}

	codes := map[string]struct{}{}
	names := map[string]struct{}{}
	quantities := []float64{}
	for _, inv := range invoices {
		for _, it := range inv.Items {
			if it.ItemCode != "" {
				codes[it.ItemCode] = struct{}{}
			}
			if it.ItemName != "" {
				names[it.ItemName] = struct{}{}
			}
			quantities = append(quantities, it.Quantity)
		}
	}

	var invoiceNumber, personID *string
	var buyer *CreditNoteBuyer
	if len(invoices) > 0 {
		invoiceNumber = &invoices[0].InvoiceNumber
		personID = &invoices[0].PersonID
		if buyer, err = lookupBuyer(db, invoices[0].PersonID); err != nil {
			return err
		}
	}
	return c.JSON(fiber.Map{
		"invoice_number": invoiceNumber,
		"personid":       personID,
		"product_codes":  sortedKeys(codes),
		"descriptions":   sortedKeys(names),
		"quantity_sum":   utils.Sum(quantities...),
		"buyer":          buyer,
	})
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ProductPrice returns the last invoiced unit price of a product, preferring invoices of the given GRN.
func ProductPrice(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return badRequest("code is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	latest := func(grn string) (float64, bool, error) {
		q := db.Table("invoice_items").
			Joins("JOIN invoices ON invoices.id = invoice_items.invoice_id").
			Where("invoice_items.item_code = ?", code)
		if grn != "" {
			q = q.Where("invoices.grn_number = ?", grn)
		}
		var prices []float64
		err := q.Order("invoices.invoice_date DESC, invoices.invoice_number DESC").
			Limit(1).
			Pluck("invoice_items.unit_price", &prices).Error
		if err != nil || len(prices) == 0 {
			return 0, false, err
		}
		return prices[0], true, nil
	}

	if grn := strings.TrimSpace(c.Query("grn")); grn != "" {
		price, ok, err := latest(grn)
		if err != nil {
			return err
		}
		if ok {
			return c.JSON(fiber.Map{"code": code, "price": price})
		}
	}
	price, _, err := latest("")
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"code": code, "price": price})
}
