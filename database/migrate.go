package database

import (
	"fmt"

	"gorm.io/gorm"

	"ssincom-backend/models"
)

// Migrate applies (idempotent) schema migrations:
// - AutoMigrate (tables/columns/index tags)
// - Postgres only: CHECK constraints on money and quantity columns
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Customer{},
		&models.Product{},
		&models.Car{},
		&models.CarBrand{},
		&models.Province{},
		&models.Driver{},
		&models.Invoice{},
		&models.InvoiceItem{},
		&models.BillNote{},
		&models.BillNoteItem{},
		&models.CreditNote{},
		&models.CreditNoteItem{},
		&models.DocumentCounter{},
		&models.DocumentRevision{},
		&models.IdempotencyKey{},
	); err != nil {
		return fmt.Errorf("automigrate failed: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		checks := []struct{ table, name, expr string }{
			{"product_list", "chk_product_list_price_nonneg", "price >= 0"},
			{"invoice_items", "chk_invoice_items_quantity_nonneg", "quantity >= 0"},
			{"invoice_items", "chk_invoice_items_unit_price_nonneg", "unit_price >= 0"},
			{"bill_note_items", "chk_bill_note_items_amount_nonneg", "amount >= 0"},
			{"credit_note_items", "chk_credit_note_items_fine_nonneg", "fine >= 0"},
			{"drivers", "chk_drivers_citizen_id_len", "char_length(citizen_id) = 13"},
		}
		for _, c := range checks {
			stmt := fmt.Sprintf(`DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM pg_constraint
		WHERE conrelid = '%[1]s'::regclass
		  AND conname  = '%[2]s'
	) THEN
		ALTER TABLE %[1]s ADD CONSTRAINT %[2]s CHECK (%[3]s);
	END IF;
END $$;`, c.table, c.name, c.expr)
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("check constraint migration failed on %s: %w", c.name, err)
			}
		}
		return nil
	})
}
