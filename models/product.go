package models

type Product struct {
	ID       uint    `json:"idx" gorm:"primaryKey"`
	ItemCode string  `json:"cf_itemid" gorm:"size:20;not null;uniqueIndex"`
	ItemName string  `json:"cf_itemname" gorm:"size:1000;not null"`
	UnitName string  `json:"cf_unitname" gorm:"size:20"`
	Price    float64 `json:"cf_itempricelevel_price" gorm:"type:numeric(12,2)"`
	Ordinal  int     `json:"cf_items_ordinary"`
}

func (Product) TableName() string { return "product_list" }
