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

type CarInput struct {
	NumberPlate string `json:"number_plate" validate:"required,max=20"`
	Brand       string `json:"car_brand" validate:"max=64"`
	Province    string `json:"province" validate:"max=128"`
}

func SuggestNumberPlates(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return badRequest("q is required")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	limit := utils.ClampInt(utils.ParseIntDefault(c.Query("limit"), 15), 1, 50)
	var plates []string
	err = whereContains(db.Model(&models.Car{}), q, "number_plate").
		Order("number_plate ASC").
		Limit(limit).
		Pluck("number_plate", &plates).Error
	if err != nil {
		return err
	}
	out := make([]fiber.Map, len(plates))
	for i, p := range plates {
		out[i] = fiber.Map{"number_plate": p}
	}
	return c.JSON(out)
}

func SuggestCarBrands(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var brands []string
	err = whereContains(db.Model(&models.CarBrand{}), c.Query("q"), "brand_name").
		Order("brand_name ASC").
		Limit(50).
		Pluck("brand_name", &brands).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": brands})
}

func SuggestProvinces(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var names []string
	err = whereContains(db.Model(&models.Province{}), c.Query("q"), "name").
		Order("name ASC").
		Limit(100).
		Pluck("name", &names).Error
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"items": names})
}

func ListCars(c *fiber.Ctx) error {
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	page, size := pageParams(c, "page_size", 50, 200)
	q := whereContains(db.Model(&models.Car{}), c.Query("search"), "number_plate", "brand", "province")

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return err
	}
	var cars []models.Car
	if err := q.Order("id ASC").Offset((page - 1) * size).Limit(size).Find(&cars).Error; err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"total":     total,
		"page":      page,
		"page_size": size,
		"items":     cars,
	})
}

func plateTaken(db *gorm.DB, plate string, excludeID uint) (bool, error) {
	var n int64
	q := db.Model(&models.Car{}).Where("number_plate = ?", plate)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	err := q.Count(&n).Error
	return n > 0, err
}

func CreateCar(c *fiber.Ctx) error {
	var in CarInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	if taken, err := plateTaken(db, in.NumberPlate, 0); err != nil {
		return err
	} else if taken {
		return apperr.NewConflict("ทะเบียนรถซ้ำ", in.NumberPlate)
	}
	car := models.Car{NumberPlate: in.NumberPlate, Brand: in.Brand, Province: in.Province}
	if err := db.Create(&car).Error; err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(car)
}

func UpdateCar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest("invalid id")
	}
	var in CarInput
	if err := middlewares.BindAndValidate(c, &in); err != nil {
		return err
	}
	utils.Normalize(&in)
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	var car models.Car
	if err := db.First(&car, id).Error; err != nil {
		return err
	}
	if taken, err := plateTaken(db, in.NumberPlate, car.ID); err != nil {
		return err
	} else if taken {
		return apperr.NewConflict("ทะเบียนรถซ้ำ", in.NumberPlate)
	}
	car.NumberPlate, car.Brand, car.Province = in.NumberPlate, in.Brand, in.Province
	if err := db.Save(&car).Error; err != nil {
		return err
	}
	return c.JSON(car)
}

func DeleteCar(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return badRequest("invalid id")
	}
	db, err := database.FromCtx(c)
	if err != nil {
		return err
	}
	res := db.Delete(&models.Car{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("ข้อมูลรถ")
	}
	return c.SendStatus(fiber.StatusNoContent)
}
