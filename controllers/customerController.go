package controllers

import (
	"errors"
	"math"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ssincom-backend/apperr"
	"ssincom-backend/database"
	"ssincom-backend/middlewares"
	"ssincom-backend/models"
	"ssincom-backend/utils"
)

var customerSearchCols = []string{"name", "person_id", "tax_id", "province", "tel", "mobile"}

type CustomerInput struct {
	Prename    string `json:"prename" validate:"max=64"`
	Name       string `json:"customer_name" validate:"required,max=255"`
	PersonID   string `json:"personid" validate:"required,max=32"`
	Tel        string `json:"tel" validate:"max=64"`
	Mobile     string `json:"mobile" validate:"max=64"`
	Address    string `json:"address"`
	Zipcode    string `json:"zipcode" validate:"max=10"`
	Province   string `json:"province" validate:"max=128"`
	TaxID      string `json:"taxid" validate:"omitempty,numeric,len=13"`
	HQ         bool   `json:"hq"`
	Branch     string `json:"branch" validate:"max=64"`
	CreditDays int    `json:"fmlpaymentcreditday" validate:"gte=0,lte=365"`
}

func (in CustomerInput) apply(m *models.Customer) {
	m.Prename = in.Prename
	m.Name = in.Name
	m.PersonID = in.PersonID
	m.Tel = in.Tel
	m.Mobile = in.Mobile
	m.Address = in.Address
	m.Zipcode = in.Zipcode
	m.Province = in.Province
	m.TaxID = in.TaxID
	m.HQ = in.HQ
	m.Branch = in.Branch
	m.CreditDays = in.CreditDays
}

// customerFill is the shape the document forms use to prefill buyer fields.
type customerFill struct {
	PersonID   string `json:"personid"`
	Name       string `json:"fname"`
	Tel        string `json:"tel"`
	Mobile     string `json:"mobile"`
	Address    string `json:"cf_personaddress"`
	Zipcode    string `json:"cf_personzipcode"`
	Province   string `json:"cf_provincename"`
	TaxID      string `json:"cf_taxid"`
	Branch     string `json:"cf_branch"`
	CreditDays int    `json:"fmlpaymentcreditday"`
}

func toCustomerFill(m models.Customer) customerFill {
	return customerFill{
		PersonID:   m.PersonID,
		Name:       m.Name,
		Tel:        m.Tel,
		Mobile:     m.Mobile,
		Address:    m.Address,
		Zipcode:    m.Zipcode,
		Province:   m.Province,
		TaxID:      m.TaxID,
		Branch:     m.BranchLabel(),
		CreditDays: m.CreditDays,
	}
}

func AllCustomers(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var rows []models.Customer
	if err := db.Order("id DESC").Find(&rows).Error; err != nil {
		return err
	}
	return c.JSON(rows)
}

// SuggestCustomers is the autocomplete over name, code, tax id, province and phones (max 20).
func SuggestCustomers(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return badRequest("q is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var rows []models.Customer
	if err := whereContains(db, q, customerSearchCols...).Order("name ASC").Limit(20).Find(&rows).Error; err != nil {
		return err
	}
	return c.JSON(rows)
}

func CustomerDetail(c *fiber.Ctx) error {
	personID := strings.TrimSpace(c.Query("personid"))
	name := strings.TrimSpace(c.Query("name"))
	if personID == "" && name == "" {
		return badRequest("personid or name is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	q := db
	if personID != "" {
		q = q.Where("person_id = ?", personID)
	} else {
		q = q.Where("name = ?", name)
	}
	var m models.Customer
	if err := q.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ลูกค้า")
		}
		return err
	}
	return c.JSON(m)
}

// ListCustomers pages the customer table; page is clamped to the last page.
func ListCustomers(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	page, limit := pageParams(c, "limit", 20, 200)
	base := whereContains(db.Model(&models.Customer{}), c.Query("q"), customerSearchCols...)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return err
	}
	pages := max(1, int(math.Ceil(float64(total)/float64(limit))))
	page = min(page, pages)

	var rows []models.Customer
	if err := base.Order("name ASC").Offset((page - 1) * limit).Limit(limit).Find(&rows).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"items": rows,
		"total": total,
		"page":  page,
		"pages": pages,
		"limit": limit,
	})
}

func suggestCustomerColumn(c *fiber.Ctx, col string) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	limit := utils.ClampInt(utils.ParseIntDefault(c.Query("limit"), 10), 1, 50)
	var values []string
	err = whereContains(db.Model(&models.Customer{}), c.Query("q"), col).
		Where(col+" <> ''").
		Order(col+" ASC").
		Limit(limit).
		Pluck(col, &values).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": values})
}

func SuggestCustomerPersonIDs(c *fiber.Ctx) error { return suggestCustomerColumn(c, "person_id") }

func SuggestCustomerNames(c *fiber.Ctx) error { return suggestCustomerColumn(c, "name") }

func customerBy(c *fiber.Ctx, col, value string) error {
	if strings.TrimSpace(value) == "" {
		return badRequest("%s is required", col)
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var m models.Customer
	if err := db.Where(col+" = ?", strings.TrimSpace(value)).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("ลูกค้า")
		}
		return err
	}
	return c.JSON(toCustomerFill(m))
}

func CustomerByPersonID(c *fiber.Ctx) error { return customerBy(c, "person_id", c.Query("personid")) }

func CustomerByName(c *fiber.Ctx) error { return customerBy(c, "name", c.Query("name")) }

// customerConflict reports which business key of in is already used by another customer.
func customerConflict(db *gorm.DB, in CustomerInput, excludeID uint) (string, error) {
	var n int64
	q := db.Model(&models.Customer{}).Where("person_id = ?", in.PersonID)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "personid", nil
	}

	if in.TaxID == "" {
		return "", nil
	}
	q = db.Model(&models.Customer{}).Where("tax_id = ? AND hq = ?", in.TaxID, in.HQ)
	if !in.HQ {
		q = q.Where("branch = ?", in.Branch)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return "", err
	}
	if n > 0 {
		return "taxid", nil
	}
	return "", nil
}

// CheckCustomerDuplicate lets the form warn before saving.
func CheckCustomerDuplicate(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	in := CustomerInput{
		PersonID: strings.TrimSpace(c.Query("personid")),
		TaxID:    strings.TrimSpace(c.Query("taxid")),
		HQ:       c.QueryBool("hq"),
		Branch:   strings.TrimSpace(c.Query("branch")),
	}
	field, err := customerConflict(db, in, uint(c.QueryInt("exclude")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"exists": field != "", "field": field})
}

func CreateCustomer(c *fiber.Ctx) error {
	var in CustomerInput
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
	if field, err := customerConflict(db, in, 0); err != nil {
		return err
	} else if field != "" {
		return apperr.NewConflict("ลูกค้าซ้ำ", field)
	}

	var m models.Customer
	in.apply(&m)
	if err := db.Create(&m).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(m)
}

func UpdateCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest("invalid id")
	}
	var in CustomerInput
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
	var m models.Customer
	if err := db.First(&m, id).Error; err != nil {
		return err
	}
	if field, err := customerConflict(db, in, m.ID); err != nil {
		return err
	} else if field != "" {
		return apperr.NewConflict("ลูกค้าซ้ำ", field)
	}
	in.apply(&m)
	if err := db.Save(&m).Error; err != nil {
		return err
	}
	return c.JSON(m)
}

func DeleteCustomer(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest("invalid id")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	res := db.Delete(&models.Customer{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("ลูกค้า")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
