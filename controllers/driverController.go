package controllers

import (
	"strings"
	"unicode"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ssincom-backend/apperr"
	"ssincom-backend/database"
	"ssincom-backend/middlewares"
	"ssincom-backend/models"
	"ssincom-backend/numbering"
	"ssincom-backend/report"
	"ssincom-backend/utils"
)

type DriverInput struct {
	CitizenID string `json:"citizen_id" validate:"required,citizenid"`
	Prefix    string `json:"prefix" validate:"max=16"`
	FirstName string `json:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" validate:"required,max=64"`
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// bindDriver accepts citizen ids typed with dashes or spaces.
func bindDriver(c *fiber.Ctx) (DriverInput, error) {
	var in DriverInput
	if err := c.BodyParser(&in); err != nil {
		return in, badRequest("invalid request body")
	}
	utils.Normalize(&in)
	in.CitizenID = digitsOnly(in.CitizenID)
	return in, middlewares.ValidateStruct(in)
}

func citizenTaken(db *gorm.DB, citizenID, excludeDriverID string) (bool, error) {
	var n int64
	q := db.Model(&models.Driver{}).Where("citizen_id = ?", citizenID)
	if excludeDriverID != "" {
		q = q.Where("driver_id <> ?", excludeDriverID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func ListDrivers(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	page, size := pageParams(c, "page_size", 50, 200)
	search := firstNonEmpty(c.Query("search"), c.Query("q"))
	q := whereContains(db.Model(&models.Driver{}), search, "driver_id", "first_name", "last_name", "citizen_id", "prefix")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}
	var drivers []models.Driver
	if err := q.Order("driver_id ASC, first_name ASC").Offset((page - 1) * size).Limit(size).Find(&drivers).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"total":     total,
		"page":      page,
		"page_size": size,
		"items":     drivers,
	})
}

func CreateDriver(c *fiber.Ctx) error {
	in, err := bindDriver(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	if taken, err := citizenTaken(db, in.CitizenID, ""); err != nil {
		return err
	} else if taken {
		return apperr.NewConflict("เลขบัตรประชาชนซ้ำ", in.CitizenID)
	}

	id, err := numbering.NextDriverID(db)
	if err != nil {
		return err
	}
	d := models.Driver{
		DriverID:  id,
		CitizenID: in.CitizenID,
		Prefix:    in.Prefix,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	}
	if err := db.Create(&d).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(d)
}

func UpdateDriver(c *fiber.Ctx) error {
	in, err := bindDriver(c)
	if err != nil {
		return err
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var d models.Driver
	if err := db.Where("driver_id = ?", c.Params("id")).First(&d).Error; err != nil {
		return err
	}
	if taken, err := citizenTaken(db, in.CitizenID, d.DriverID); err != nil {
		return err
	} else if taken {
		return apperr.NewConflict("เลขบัตรประชาชนซ้ำ", in.CitizenID)
	}
	d.CitizenID, d.Prefix, d.FirstName, d.LastName = in.CitizenID, in.Prefix, in.FirstName, in.LastName
	if err := db.Save(&d).Error; err != nil {
		return err
	}
	return c.JSON(d)
}

func DeleteDriver(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	res := db.Where("driver_id = ?", c.Params("id")).Delete(&models.Driver{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("พนักงานขับรถ")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func requireDriverID(c *fiber.Ctx) (string, error) {
	id := strings.TrimSpace(c.Query("driver_id"))
	if len(id) < 2 {
		return "", badRequest("driver_id is required")
	}
	return id, nil
}

// DriverSummary totals a driver's invoices per period with the plates driven.
func DriverSummary(c *fiber.Ctx) error {
	driverID, err := requireDriverID(c)
	if err != nil {
		return err
	}
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
	entries, err := invoiceEntries(db, rng, func(q *gorm.DB) *gorm.DB {
		return q.Where("driver_id = ?", driverID)
	})
	if err != nil {
		return err
	}
	return c.JSON(report.Summarize(entries, g, false))
}

type driverInvoiceRow struct {
	ID             uint    `json:"idx"`
	InvoiceDate    string  `json:"invoice_date"`
	InvoiceNumber  string  `json:"invoice_number"`
	CustomerName   string  `json:"fname"`
	PONumber       string  `json:"po_number"`
	GRNNumber      string  `json:"grn_number"`
	DNNumber       string  `json:"dn_number"`
	CarNumberPlate string  `json:"car_numberplate"`
	Amount         float64 `json:"amount"`
}

func DriverInvoices(c *fiber.Ctx) error {
	driverID, err := requireDriverID(c)
	if err != nil {
		return err
	}
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
	if err := q.Where("driver_id = ?", driverID).Preload("Items").Order("invoice_date DESC, id DESC").Find(&invoices).Error; err != nil {
		return err
	}
	out := make([]driverInvoiceRow, len(invoices))
	for i, inv := range invoices {
		out[i] = driverInvoiceRow{
			ID:             inv.ID,
			InvoiceDate:    isoDate(inv.InvoiceDate),
			InvoiceNumber:  inv.InvoiceNumber,
			CustomerName:   inv.CustomerName,
			PONumber:       inv.PONumber,
			GRNNumber:      inv.GRNNumber,
			DNNumber:       inv.DNNumber,
			CarNumberPlate: inv.CarNumberPlate,
			Amount:         invoiceAmount(inv.Items),
		}
	}
	return c.JSON(out)
}
