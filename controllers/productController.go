package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ssincom-backend/apperr"
	"ssincom-backend/database"
	"ssincom-backend/middlewares"
	"ssincom-backend/models"
	"ssincom-backend/utils"
)

type ProductInput struct {
	ItemCode string  `json:"cf_itemid" validate:"required,max=20"`
	ItemName string  `json:"cf_itemname" validate:"required,max=1000"`
	UnitName string  `json:"cf_unitname" validate:"max=20"`
	Price    float64 `json:"cf_itempricelevel_price" validate:"gte=0"`
	Ordinal  int     `json:"cf_items_ordinary" validate:"gte=0"`
}

func (in ProductInput) apply(p *models.Product) {
	p.ItemCode = in.ItemCode
	p.ItemName = in.ItemName
	p.UnitName = in.UnitName
	p.Price = in.Price
	p.Ordinal = in.Ordinal
}

type productSuggestion struct {
	ProductCode  string  `json:"product_code"`
	Description  string  `json:"description"`
	UnitName     string  `json:"cf_unitname"`
	AvgUnitPrice float64 `json:"avg_unit_price"`
	Used         int     `json:"used"`
}

func AllProducts(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var rows []models.Product
	if err := whereContains(db, c.Query("q"), "item_code", "item_name").Order("ordinal ASC, item_code ASC").Find(&rows).Error; err != nil {
		return err
	}
	return c.JSON(rows)
}

// SuggestProducts ranks products by how often they were invoiced, then fills up from the product list.
func SuggestProducts(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	q := c.Query("q")
	limit := utils.ClampInt(utils.ParseIntDefault(c.Query("limit"), 20), 1, 100)

	var used []struct {
		Code     string
		Name     string
		AvgPrice float64
		Used     int
	}
	err = whereContains(db.Model(&models.InvoiceItem{}), q, "item_code", "item_name").
		Select("item_code AS code, item_name AS name, AVG(unit_price) AS avg_price, COUNT(*) AS used").
		Group("item_code, item_name").
		Order("used DESC, item_code ASC").
		Limit(limit).
		Scan(&used).Error
	if err != nil {
		return err
	}

	out := make([]productSuggestion, 0, limit)
	seen := map[string]struct{}{}
	for _, r := range used {
		out = append(out, productSuggestion{
			ProductCode:  r.Code,
			Description:  r.Name,
			AvgUnitPrice: utils.Round2(r.AvgPrice),
			Used:         r.Used,
		})
		seen[r.Code] = struct{}{}
	}

	if len(out) < limit {
		var products []models.Product
		err := whereContains(db, q, "item_code", "item_name").
			Order("ordinal ASC, item_code ASC").
			Limit(limit).
			Find(&products).Error
		if err != nil {
			return err
		}
		for _, p := range products {
			if len(out) == limit {
				break
			}
			if _, ok := seen[p.ItemCode]; ok {
				continue
			}
			out = append(out, productSuggestion{
				ProductCode:  p.ItemCode,
				Description:  p.ItemName,
				UnitName:     p.UnitName,
				AvgUnitPrice: p.Price,
			})
		}
	}
	return c.JSON(out)
}

func productCodeTaken(db *gorm.DB, code string, excludeID uint) (bool, error) {
	var n int64
	q := db.Model(&models.Product{}).Where("item_code = ?", code)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func CheckProductDuplicate(c *fiber.Ctx) error {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		return badRequest("code is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	taken, err := productCodeTaken(db, code, uint(c.QueryInt("exclude")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"exists": taken})
}

func CreateProduct(c *fiber.Ctx) error {
	var in ProductInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	if taken, err := productCodeTaken(db, in.ItemCode, 0); err != nil {
		return err
	} else if taken {
		return apperr.NewConflict("รหัสสินค้าซ้ำ", in.ItemCode)
	}
	var p models.Product
	in.apply(&p)
	if err := db.Create(&p).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(p)
}

func UpdateProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest("invalid id")
	}
	var in ProductInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var p models.Product
	if err := db.First(&p, id).Error; err != nil {
		return err
	}
	if taken, err := productCodeTaken(db, in.ItemCode, p.ID); err != nil {
		return err
	} else if taken {
		return apperr.NewConflict("รหัสสินค้าซ้ำ", in.ItemCode)
	}
	in.apply(&p)
	if err := db.Save(&p).Error; err != nil {
		return err
	}
	return c.JSON(p)
}

func DeleteProduct(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest("invalid id")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	res := db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("สินค้า")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
