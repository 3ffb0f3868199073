package controllers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"ssincom-backend/database"
	"ssincom-backend/models"
	"ssincom-backend/report"
	"ssincom-backend/utils"
)

// saleTaxLines lists every invoice in the requested range (month, then year, then start/end).
func saleTaxLines(c *fiber.Ctx) ([]report.TaxLine, report.Range, error) {
	var pq report.Query
	if err := c.QueryParser(&pq); err != nil {
		return nil, report.Range{}, badRequest("invalid query")
	}
	rng, err := pq.Resolve()
	if err != nil {
		return nil, rng, badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return nil, rng, err
	}
	var invoices []models.Invoice
	q := whereDateRange(db.Model(&models.Invoice{}), "invoice_date", rng.From, rng.To)
	if err := q.Preload("Items").Order("invoice_date ASC, invoice_number ASC").Find(&invoices).Error; err != nil {
		return nil, rng, err
	}
	lines := make([]report.TaxLine, len(invoices))
	for i, inv := range invoices {
		before := invoiceAmount(inv.Items)
		vat, grand := utils.VAT(before)
		lines[i] = report.TaxLine{
			ID:            inv.ID,
			InvoiceNumber: inv.InvoiceNumber,
			InvoiceDate:   isoDate(inv.InvoiceDate),
			Company:       inv.CustomerName,
			TaxID:         inv.TaxID,
			Branch:        inv.Branch,
			BeforeVAT:     before,
			VAT:           vat,
			Grand:         grand,
		}
	}
	return lines, rng, nil
}

func SaleTaxList(c *fiber.Ctx) error {
	lines, _, err := saleTaxLines(c)
	if err != nil {
		return err
	}
	return c.JSON(lines)
}

func saleTaxSummary(c *fiber.Ctx, rng report.Range) ([]report.Row, error) {
	g, err := report.ParseGranularity(c.Query("granularity"))
	if err != nil {
		return nil, badRequest("%s", err.Error())
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return nil, err
	}
	entries, err := invoiceEntries(db, rng, nil)
	if err != nil {
		return nil, err
	}
	return report.Summarize(entries, g, c.QueryBool("split_by_company")), nil
}

func SaleTaxSummary(c *fiber.Ctx) error {
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
	rows, err := saleTaxSummary(c, rng)
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

// ExportSaleTax downloads the list and its summary as an xlsx workbook.
func ExportSaleTax(c *fiber.Ctx) error {
	lines, rng, err := saleTaxLines(c)
	if err != nil {
		return err
	}
	summary, err := saleTaxSummary(c, rng)
	if err != nil {
		return err
	}

	title := "รายงานภาษีขาย"
	switch {
	case !rng.From.IsZero() && !rng.To.IsZero():
		title = fmt.Sprintf("%s %s - %s", title, utils.ShortBEDate(rng.From), utils.ShortBEDate(rng.To))
	case !rng.From.IsZero():
		title = fmt.Sprintf("%s ตั้งแต่ %s", title, utils.ShortBEDate(rng.From))
	}

	var buf bytes.Buffer
	if err := report.WriteSalesTaxXLSX(&buf, title, lines, summary); err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="saletax.xlsx"`)
	return c.Send(buf.Bytes())
}
