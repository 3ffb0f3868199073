package models

type Car struct {
	ID          uint   `json:"idx" gorm:"primaryKey"`
	NumberPlate string `json:"number_plate" gorm:"size:20;not null;uniqueIndex"`
	Brand       string `json:"car_brand" gorm:"size:64"`
	Province    string `json:"province" gorm:"size:128"`
}

type Driver struct {
	DriverID  string `json:"driver_id" gorm:"primaryKey;size:8"` // D0001
	CitizenID string `json:"citizen_id" gorm:"size:13;not null;uniqueIndex"`
	Prefix    string `json:"prefix" gorm:"size:16"`
	FirstName string `json:"first_name" gorm:"size:64;not null"`
	LastName  string `json:"last_name" gorm:"size:64;not null"`
}

// FullName joins prefix, first and last name the way documents print it.
func (d Driver) FullName() string {
	return d.Prefix + d.FirstName + " " + d.LastName
}

// Dictionaries used by the car form.
type CarBrand struct {
	BrandName string `json:"brand_name" gorm:"primaryKey;size:64"`
}

type Province struct {
	Name string `json:"prov_nam_t" gorm:"primaryKey;size:128"`
}
