package controllers

import (
	"errors"
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
	"ssincom-backend/report"
	"ssincom-backend/utils"
)

// InvoiceItemInput accepts both the stored keys (cf_itemid/cf_itemname) and the form keys
// (product_code/description).
type InvoiceItemInput struct {
	ItemCode    string  `json:"cf_itemid" validate:"max=20"`
	ProductCode string  `json:"product_code" validate:"max=20"`
	ItemName    string  `json:"cf_itemname" validate:"max=1000"`
	Description string  `json:"description" validate:"max=1000"`
	UnitName    string  `json:"cf_unitname" validate:"max=20"`
	Quantity    float64 `json:"quantity" norm:"qty" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

func (in InvoiceItemInput) code() string { return firstNonEmpty(in.ItemCode, in.ProductCode) }

func (in InvoiceItemInput) name() string { return firstNonEmpty(in.ItemName, in.Description) }

type InvoiceInput struct {
	InvoiceNumber string `json:"invoice_number" validate:"max=64"`
	InvoiceDate   string `json:"invoice_date"`
	GRNNumber     string `json:"grn_number" validate:"max=64"`
	DNNumber      string `json:"dn_number" validate:"max=64"`
	PONumber      string `json:"po_number" validate:"max=64"`

	CustomerName    string `json:"fname" validate:"max=255"`
	CustomerNameAlt string `json:"customer_name" validate:"max=255"`
	PersonID        string `json:"personid" validate:"max=32"`
	Tel             string `json:"tel" validate:"max=64"`
	Mobile          string `json:"mobile" validate:"max=64"`
	Address         string `json:"cf_personaddress"`
	AddressAlt      string `json:"customer_address"`
	Zipcode         string `json:"cf_personzipcode" validate:"max=10"`
	Province        string `json:"cf_provincename" validate:"max=128"`
	TaxID           string `json:"cf_taxid" validate:"max=13"`
	TaxIDAlt        string `json:"customer_taxid" validate:"max=13"`
	Branch          string `json:"cf_branch" validate:"max=64"`

	CreditDays     int    `json:"fmlpaymentcreditday" validate:"gte=0,lte=365"`
	DueDate        string `json:"due_date"`
	CarNumberPlate string `json:"car_numberplate" validate:"max=20"`
	DriverID       string `json:"driver_id" validate:"max=8"`
	Variant        string `json:"variant"`

	Items []InvoiceItemInput `json:"items" validate:"dive"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func buildInvoiceItems(inv *models.Invoice, in []InvoiceItemInput) []models.InvoiceItem {
	items := make([]models.InvoiceItem, 0, len(in))
	for i, it := range in {
		if it.code() == "" && it.name() == "" && it.Quantity == 0 && it.UnitPrice == 0 {
			continue
		}
		items = append(items, models.InvoiceItem{
			InvoiceID:     inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			PersonID:      inv.PersonID,
			ItemCode:      it.code(),
			ItemName:      it.name(),
			UnitName:      it.UnitName,
			UnitPrice:     it.UnitPrice,
			Ordinal:       i + 1,
			Quantity:      it.Quantity,
			Amount:        utils.LineAmount(it.Quantity, it.UnitPrice),
		})
	}
	return items
}

// toModel builds an unsaved invoice. Without a due date the due date is invoice date + credit days.
func (in InvoiceInput) toModel(defaultDate time.Time) (models.Invoice, error) {
	date := defaultDate
	if strings.TrimSpace(in.InvoiceDate) != "" {
		d, err := parseDate("invoice_date", in.InvoiceDate)
		if err != nil {
			return models.Invoice{}, err
		}
		date = d
	}
	due, err := parseOptionalDate("due_date", in.DueDate)
	if err != nil {
		return models.Invoice{}, err
	}
	if due == nil && in.CreditDays > 0 {
		d := datatypes.Date(date.AddDate(0, 0, in.CreditDays))
		due = &d
	}

	inv := models.Invoice{
		InvoiceNumber:  in.InvoiceNumber,
		InvoiceDate:    datatypes.Date(date),
		GRNNumber:      in.GRNNumber,
		DNNumber:       in.DNNumber,
		PONumber:       in.PONumber,
		CustomerName:   firstNonEmpty(in.CustomerName, in.CustomerNameAlt),
		PersonID:       in.PersonID,
		Tel:            in.Tel,
		Mobile:         in.Mobile,
		Address:        firstNonEmpty(in.Address, in.AddressAlt),
		Zipcode:        in.Zipcode,
		Province:       in.Province,
		TaxID:          firstNonEmpty(in.TaxID, in.TaxIDAlt),
		Branch:         in.Branch,
		CreditDays:     in.CreditDays,
		DueDate:        due,
		CarNumberPlate: in.CarNumberPlate,
		DriverID:       in.DriverID,
	}
	inv.Items = buildInvoiceItems(&inv, in.Items)
	return inv, nil
}

func invoiceAmount(items []models.InvoiceItem) float64 {
	amounts := make([]float64, len(items))
	for i, it := range items {
		amounts[i] = it.Amount
	}
	return utils.Sum(amounts...)
}

func buyerOfInvoice(inv models.Invoice) documents.Party {
	addr := strings.TrimSpace(strings.Join([]string{inv.Address, inv.Province, inv.Zipcode}, " "))
	return documents.Party{
		Code:    inv.PersonID,
		Name:    inv.CustomerName,
		Address: addr,
		Branch:  inv.Branch,
		TaxID:   inv.TaxID,
		Phone:   firstNonEmpty(inv.Tel, inv.Mobile),
	}
}

func invoiceView(inv models.Invoice, driverName string) documents.InvoiceView {
	lines := make([]documents.InvoiceLine, len(inv.Items))
	for i, it := range inv.Items {
		lines[i] = documents.InvoiceLine{
			Code:        it.ItemCode,
			Description: it.ItemName,
			Unit:        it.UnitName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		}
	}
	return documents.NewInvoiceView(documents.InvoiceView{
		Variant:    documents.InvoiceVariants[0],
		Seller:     documents.SellerParty(company),
		Buyer:      buyerOfInvoice(inv),
		Number:     inv.InvoiceNumber,
		Date:       dateOf(inv.InvoiceDate),
		DueDate:    datePtrOf(inv.DueDate),
		CreditDays: inv.CreditDays,
		GRNNumber:  inv.GRNNumber,
		DNNumber:   inv.DNNumber,
		PONumber:   inv.PONumber,
		CarPlate:   inv.CarNumberPlate,
		DriverName: driverName,
		Lines:      lines,
	})
}

func driverName(db *gorm.DB, id string) (string, error) {
	if id == "" {
		return "", nil
	}
	var d models.Driver
	err := db.Where("driver_id = ?", id).Take(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return d.FullName(), nil
}

func loadInvoice(db *gorm.DB, id int) (models.Invoice, error) {
	var inv models.Invoice
	err := db.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("ordinal ASC, id ASC") }).
		First(&inv, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return inv, apperr.NotFound("ใบกำกับภาษี")
	}
	return inv, err
}

func invoiceID(c *fiber.Ctx) (int, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, badRequest("invalid invoice id")
	}
	return id, nil
}

// billNoteOf returns the bill note number that references invoiceNumber, or "".
func billNoteOf(db *gorm.DB, invoiceNumber string) (string, error) {
	var numbers []string
	err := db.Table("bill_note_items").
		Joins("JOIN bill_notes ON bill_notes.id = bill_note_items.bill_note_id").
		Where("bill_note_items.invoice_number = ?", invoiceNumber).
		Limit(1).
		Pluck("bill_notes.bill_note_number", &numbers).Error
	if err != nil || len(numbers) == 0 {
		return "", err
	}
	return numbers[0], nil
}

func CheckInvoiceNumber(c *fiber.Ctx) error {
	number := strings.TrimSpace(c.Query("number"))
	if number == "" {
		return badRequest("number is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var n int64
	if err := db.Model(&models.Invoice{}).Where("invoice_number = ?", number).Count(&n).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"exists": n > 0})
}

func CreateInvoice(c *fiber.Ctx) error {
	var in InvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid request body")
	}
	utils.Normalize(&in)
	if err := middlewares.ValidateStruct(in); err != nil {
		return err
	}
	if in.InvoiceNumber == "" {
		return badRequest("invoice_number is required")
	}
	if len(in.Items) == 0 {
		return badRequest("at least one item is required")
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var n int64
	if err := db.Model(&models.Invoice{}).Where("invoice_number = ?", in.InvoiceNumber).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return apperr.NewConflict("เลขที่ใบกำกับซ้ำ", in.InvoiceNumber)
	}

	inv, err := in.toModel(today())
	if err != nil {
		return err
	}
	items := inv.Items
	inv.Items = nil
	if err := db.Create(&inv).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].InvoiceID = inv.ID
	}
	if len(items) > 0 {
		if err := db.Create(&items).Error; err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":        "saved",
		"invoice_idx":    inv.ID,
		"invoice_number": inv.InvoiceNumber,
	})
}

type invoiceItemOut struct {
	ItemCode  string  `json:"cf_itemid"`
	ItemName  string  `json:"cf_itemname"`
	UnitName  string  `json:"cf_unitname"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Amount    float64 `json:"amount"`
}

func toItemsOut(items []models.InvoiceItem) []invoiceItemOut {
	out := make([]invoiceItemOut, len(items))
	for i, it := range items {
		out[i] = invoiceItemOut{
			ItemCode:  it.ItemCode,
			ItemName:  it.ItemName,
			UnitName:  it.UnitName,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Amount:    it.Amount,
		}
	}
	return out
}

type invoiceListRow struct {
	ID             uint             `json:"idx"`
	InvoiceDate    string           `json:"invoice_date"`
	InvoiceNumber  string           `json:"invoice_number"`
	CustomerName   string           `json:"fname"`
	PONumber       string           `json:"po_number"`
	CarNumberPlate string           `json:"car_numberplate"`
	Amount         float64          `json:"amount"`
	VAT            float64          `json:"vat"`
	Grand          float64          `json:"grand"`
	DriverName     *string          `json:"driver_name"`
	Items          []invoiceItemOut `json:"items"`
}

// ListInvoices returns invoice headers with totals, newest first.
func ListInvoices(c *fiber.Ctx) error {
	rng, err := report.DateRange(c.Query("start"), c.Query("end"))
	if err != nil {
		return badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}

	q := whereDateRange(db.Model(&models.Invoice{}), "invoice_date", rng.From, rng.To)
	q = whereContains(q, c.Query("q"), "invoice_number", "customer_name", "po_number")
	var invoices []models.Invoice
	err = q.Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("ordinal ASC, id ASC") }).
		Order("invoice_date DESC, id DESC").
		Find(&invoices).Error
	if err != nil {
		return err
	}

	names, err := driverNames(db, invoices)
	if err != nil {
		return err
	}

	out := make([]invoiceListRow, len(invoices))
	for i, inv := range invoices {
		amount := invoiceAmount(inv.Items)
		vat, grand := utils.VAT(amount)
		row := invoiceListRow{
			ID:             inv.ID,
			InvoiceDate:    isoDate(inv.InvoiceDate),
			InvoiceNumber:  inv.InvoiceNumber,
			CustomerName:   inv.CustomerName,
			PONumber:       inv.PONumber,
			CarNumberPlate: inv.CarNumberPlate,
			Amount:         amount,
			VAT:            vat,
			Grand:          grand,
			Items:          toItemsOut(inv.Items),
		}
		if name, ok := names[inv.DriverID]; ok {
			row.DriverName = &name
		}
		out[i] = row
	}
	return c.JSON(out)
}

func driverNames(db *gorm.DB, invoices []models.Invoice) (map[string]string, error) {
	ids := make([]string, 0, len(invoices))
	for _, inv := range invoices {
		if inv.DriverID != "" {
			ids = append(ids, inv.DriverID)
		}
	}
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var drivers []models.Driver
	if err := db.Where("driver_id IN ?", ids).Find(&drivers).Error; err != nil {
		return nil, err
	}
	for _, d := range drivers {
		names[d.DriverID] = d.FullName()
	}
	return names, nil
}

// invoiceEntries loads the invoices in rng as report entries.
func invoiceEntries(db *gorm.DB, rng report.Range, scope func(*gorm.DB) *gorm.DB) ([]report.Entry, error) {
	q := whereDateRange(db.Model(&models.Invoice{}), "invoice_date", rng.From, rng.To)
	if scope != nil {
		q = scope(q)
	}
	var invoices []models.Invoice
	if err := q.Preload("Items").Find(&invoices).Error; err != nil {
		return nil, err
	}
	entries := make([]report.Entry, len(invoices))
	for i, inv := range invoices {
		entries[i] = report.Entry{
			InvoiceID: inv.ID,
			Date:      dateOf(inv.InvoiceDate),
			Company:   inv.CustomerName,
			CarPlate:  inv.CarNumberPlate,
			Amount:    invoiceAmount(inv.Items),
		}
	}
	return entries, nil
}

// InvoiceSummary totals invoices per day, month or year.
func InvoiceSummary(c *fiber.Ctx) error {
	g, err := report.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return badRequest("%s", err.Error())
	}
	var pq report.Query
	if err := c.QueryParser(&pq); err != nil {
		return badRequest("invalid query")
	}
	rng, err := pq.ForGranularity(g)
	if err != nil {
		return badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	entries, err := invoiceEntries(db, rng, nil)
	if err != nil {
		return err
	}
	return c.JSON(report.Summarize(entries, g, false))
}

func GetInvoiceItems(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	inv, err := loadInvoice(db, id)
	if err != nil {
		return err
	}
	return c.JSON(toItemsOut(inv.Items))
}

type invoiceHead struct {
	ID             uint    `json:"idx"`
	InvoiceNumber  string  `json:"invoice_number"`
	InvoiceDate    string  `json:"invoice_date"`
	GRNNumber      string  `json:"grn_number"`
	DNNumber       string  `json:"dn_number"`
	PONumber       string  `json:"po_number"`
	CustomerName   string  `json:"fname"`
	PersonID       string  `json:"personid"`
	Tel            string  `json:"tel"`
	Mobile         string  `json:"mobile"`
	Address        string  `json:"cf_personaddress"`
	Zipcode        string  `json:"cf_personzipcode"`
	Province       string  `json:"cf_provincename"`
	TaxID          string  `json:"cf_taxid"`
	Branch         string  `json:"cf_branch"`
	CreditDays     int     `json:"fmlpaymentcreditday"`
	DueDate        *string `json:"due_date"`
	CarNumberPlate string  `json:"car_numberplate"`
	DriverID       string  `json:"driver_id"`
	BillNote       string  `json:"billnote_number,omitempty"`
}

func GetInvoice(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	inv, err := loadInvoice(db, id)
	if err != nil {
		return err
	}
	billed, err := billNoteOf(db, inv.InvoiceNumber)
	if err != nil {
		return err
	}
	amount := invoiceAmount(inv.Items)
	vat, grand := utils.VAT(amount)
	return c.JSON(fiber.Map{
		"invoice": invoiceHead{
			ID:             inv.ID,
			InvoiceNumber:  inv.InvoiceNumber,
			InvoiceDate:    isoDate(inv.InvoiceDate),
			GRNNumber:      inv.GRNNumber,
			DNNumber:       inv.DNNumber,
			PONumber:       inv.PONumber,
			CustomerName:   inv.CustomerName,
			PersonID:       inv.PersonID,
			Tel:            inv.Tel,
			Mobile:         inv.Mobile,
			Address:        inv.Address,
			Zipcode:        inv.Zipcode,
			Province:       inv.Province,
			TaxID:          inv.TaxID,
			Branch:         inv.Branch,
			CreditDays:     inv.CreditDays,
			DueDate:        isoDatePtr(inv.DueDate),
			CarNumberPlate: inv.CarNumberPlate,
			DriverID:       inv.DriverID,
			BillNote:       billed,
		},
		"items":  toItemsOut(inv.Items),
		"amount": amount,
		"vat":    vat,
		"grand":  grand,
	})
}

// InvoiceUpdate is a partial update; nil fields are left unchanged.
type InvoiceUpdate struct {
	InvoiceNumber  *string `json:"invoice_number" validate:"omitempty,min=1,max=64"`
	InvoiceDate    *string `json:"invoice_date" col:"-"`
	GRNNumber      *string `json:"grn_number" validate:"omitempty,max=64"`
	DNNumber       *string `json:"dn_number" validate:"omitempty,max=64"`
	PONumber       *string `json:"po_number" validate:"omitempty,max=64"`
	CustomerName   *string `json:"fname" col:"customer_name" validate:"omitempty,max=255"`
	PersonID       *string `json:"personid" col:"person_id" validate:"omitempty,max=32"`
	Tel            *string `json:"tel" validate:"omitempty,max=64"`
	Mobile         *string `json:"mobile" validate:"omitempty,max=64"`
	Address        *string `json:"cf_personaddress" col:"address"`
	Zipcode        *string `json:"cf_personzipcode" col:"zipcode" validate:"omitempty,max=10"`
	Province       *string `json:"cf_provincename" col:"province" validate:"omitempty,max=128"`
	TaxID          *string `json:"cf_taxid" col:"tax_id" validate:"omitempty,max=13"`
	Branch         *string `json:"cf_branch" col:"branch" validate:"omitempty,max=64"`
	CreditDays     *int    `json:"fmlpaymentcreditday" col:"credit_days" validate:"omitempty,gte=0,lte=365"`
	DueDate        *string `json:"due_date" col:"-"`
	CarNumberPlate *string `json:"car_numberplate" col:"car_number_plate" validate:"omitempty,max=20"`
	DriverID       *string `json:"driver_id" validate:"omitempty,max=8"`

	Items *[]InvoiceItemInput `json:"items" col:"-" validate:"omitempty,dive"`
}

func UpdateInvoice(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	var in InvoiceUpdate
	if err := c.BodyParser(&in); err != nil {
		return badRequest("invalid request body")
	}
	utils.Normalize(&in)
	if err := middlewares.ValidateStruct(in); err != nil {
		return err
	}

	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	inv, err := loadInvoice(db, id)
	if err != nil {
		return err
	}
	if err := saveRevision(db, "invoice", inv.InvoiceNumber, "update", inv); err != nil {
		return err
	}

	oldNumber := inv.InvoiceNumber
	renamed := in.InvoiceNumber != nil && *in.InvoiceNumber != oldNumber
	if renamed {
		var n int64
		if err := db.Model(&models.Invoice{}).Where("invoice_number = ? AND id <> ?", *in.InvoiceNumber, inv.ID).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return apperr.NewConflict("เลขที่ใบกำกับซ้ำ", *in.InvoiceNumber)
		}
		billed, err := billNoteOf(db, oldNumber)
		if err != nil {
			return err
		}
		if billed != "" {
			return apperr.NewConflict("ใบกำกับถูกวางบิลแล้ว เปลี่ยนเลขที่ไม่ได้", billed)
		}
	}

	updates := utils.ColumnUpdates(&in)
	if in.InvoiceDate != nil {
		d, err := parseDate("invoice_date", *in.InvoiceDate)
		if err != nil {
			return err
		}
		updates["invoice_date"] = datatypes.Date(d)
	}
	if in.DueDate != nil {
		due, err := parseOptionalDate("due_date", *in.DueDate)
		if err != nil {
			return err
		}
		updates["due_date"] = due
	}
	if len(updates) > 0 {
		if err := db.Model(&inv).Omit("Items").Updates(updates).Error; err != nil {
			return err
		}
	}

	if err := db.First(&inv, inv.ID).Error; err != nil {
		return err
	}
	if in.Items != nil {
		if err := db.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		items := buildInvoiceItems(&inv, *in.Items)
		if len(items) > 0 {
			if err := db.Create(&items).Error; err != nil {
				return err
			}
		}
	} else if renamed || in.PersonID != nil {
		err := db.Model(&models.InvoiceItem{}).Where("invoice_id = ?", inv.ID).
			Updates(map[string]any{"invoice_number": inv.InvoiceNumber, "person_id": inv.PersonID}).Error
		if err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"ok": true, "idx": inv.ID})
}

// DeleteInvoice refuses to delete an invoice that a bill note still references.
func DeleteInvoice(c *fiber.Ctx) error {
	id, err := invoiceID(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	inv, err := loadInvoice(db, id)
	if err != nil {
		return err
	}
	billed, err := billNoteOf(db, inv.InvoiceNumber)
	if err != nil {
		return err
	}
	if billed != "" {
		return apperr.NewConflict("ใบกำกับถูกวางบิลแล้ว ลบไม่ได้", billed)
	}
	if err := saveRevision(db, "invoice", inv.InvoiceNumber, "delete", inv); err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", inv.ID).Delete(&models.InvoiceItem{}).Error; err != nil {
		return err
	}
	if err := db.Delete(&models.Invoice{}, inv.ID).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}

// invoiceFromPayload builds a document view from an unsaved form.
func invoiceFromPayload(c *fiber.Ctx) (documents.InvoiceView, string, error) {
	var in InvoiceInput
	if err := c.BodyParser(&in); err != nil {
		return documents.InvoiceView{}, "", badRequest("invalid request body")
	}
	utils.Normalize(&in)
	inv, err := in.toModel(today())
	if err != nil {
		return documents.InvoiceView{}, "", err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return documents.InvoiceView{}, "", err
	}
	name, err := driverName(db, inv.DriverID)
	if err != nil {
		return documents.InvoiceView{}, "", err
	}
	return invoiceView(inv, name), in.Variant, nil
}

func storedInvoiceView(c *fiber.Ctx) (documents.InvoiceView, error) {
	id, err := invoiceID(c)
	if err != nil {
		return documents.InvoiceView{}, err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return documents.InvoiceView{}, err
	}
	inv, err := loadInvoice(db, id)
	if err != nil {
		return documents.InvoiceView{}, err
	}
	name, err := driverName(db, inv.DriverID)
	if err != nil {
		return documents.InvoiceView{}, err
	}
	return invoiceView(inv, name), nil
}

func PreviewInvoice(c *fiber.Ctx) error {
	view, variant, err := invoiceFromPayload(c)
	if err != nil {
		return err
	}
	if v := c.Query("variant"); v != "" {
		variant = v
	}
	return renderHTML(c, "invoice", view.WithVariant(documents.FindVariant(documents.InvoiceVariants, variant)))
}

func PreviewStoredInvoice(c *fiber.Ctx) error {
	view, err := storedInvoiceView(c)
	if err != nil {
		return err
	}
	return renderHTML(c, "invoice", view.WithVariant(documents.FindVariant(documents.InvoiceVariants, c.Query("variant"))))
}

func invoicePages(view documents.InvoiceView) []any {
	pages := make([]any, len(documents.InvoiceVariants))
	for i, v := range documents.InvoiceVariants {
		pages[i] = view.WithVariant(v)
	}
	return pages
}

// ExportInvoicePDF merges the four printed variants of an unsaved invoice into one PDF.
func ExportInvoicePDF(c *fiber.Ctx) error {
	view, _, err := invoiceFromPayload(c)
	if err != nil {
		return err
	}
	return sendPDF(c, "invoice_merged_"+firstNonEmpty(view.Number, "doc")+".pdf", "invoice", invoicePages(view)...)
}

func ExportStoredInvoicePDF(c *fiber.Ctx) error {
	view, err := storedInvoiceView(c)
	if err != nil {
		return err
	}
	return sendPDF(c, "invoice_merged_"+view.Number+".pdf", "invoice", invoicePages(view)...)
}
