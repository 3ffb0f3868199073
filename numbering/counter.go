package numbering

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ssincom-backend/models"
)

// Next issues the next run of series within period inside tx.
// The counter row is locked for the rest of the transaction, so concurrent requests queue behind it.
// floor is the highest run already present in the documents table; numbers never go below it.
func Next(tx *gorm.DB, series, period string, floor int) (int, error) {
	seed := models.DocumentCounter{Series: series, Period: period}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, fmt.Errorf("seed counter %s/%s: %w", series, period, err)
	}

	var row models.DocumentCounter
	q := tx.Where("series = ? AND period = ?", series, period)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&row).Error; err != nil {
		return 0, fmt.Errorf("lock counter %s/%s: %w", series, period, err)
	}

	next := max(row.Value, floor) + 1
	if err := tx.Model(&models.DocumentCounter{}).
		Where("series = ? AND period = ?", series, period).
		Updates(map[string]any{"value": next, "updated_at": time.Now().UTC()}).Error; err != nil {
		return 0, fmt.Errorf("advance counter %s/%s: %w", series, period, err)
	}
	return next, nil
}

// Peek returns the run Next would issue, without reserving it.
func Peek(db *gorm.DB, series, period string, floor int) (int, error) {
	var row models.DocumentCounter
	err := db.Where("series = ? AND period = ?", series, period).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	return max(row.Value, floor) + 1, nil
}

func maxRun(db *gorm.DB, model any, column, pattern string, parse func(string) (int, bool)) (int, error) {
	var numbers []string
	if err := db.Model(model).Where(column+" LIKE ?", pattern).Pluck(column, &numbers).Error; err != nil {
		return 0, err
	}
	best := 0
	for _, n := range numbers {
		if run, ok := parse(n); ok && run > best {
			best = run
		}
	}
	return best, nil
}

func billNoteFloor(db *gorm.DB, prefix string) (int, error) {
	return maxRun(db, &models.BillNote{}, "bill_note_number", prefix+"%", func(s string) (int, bool) {
		return ParseBillNoteRun(s, prefix)
	})
}

func creditNoteFloor(db *gorm.DB, period string) (int, error) {
	return maxRun(db, &models.CreditNote{}, "credit_note_number", CreditNoteSeries+"%/"+period, ParseCreditNoteRun)
}

func driverFloor(db *gorm.DB) (int, error) {
	return maxRun(db, &models.Driver{}, "driver_id", DriverSeries+"%", ParseDriverRun)
}

// NextBillNoteNumber reserves the next bill note number for the month of date.
func NextBillNoteNumber(tx *gorm.DB, date time.Time) (string, error) {
	prefix := BillNotePrefix(date)
	floor, err := billNoteFloor(tx, prefix)
	if err != nil {
		return "", err
	}
	run, err := Next(tx, BillNoteSeries, prefix, floor)
	if err != nil {
		return "", err
	}
	return FormatBillNote(prefix, run), nil
}

func PeekBillNoteNumber(db *gorm.DB, date time.Time) (string, error) {
	prefix := BillNotePrefix(date)
	floor, err := billNoteFloor(db, prefix)
	if err != nil {
		return "", err
	}
	run, err := Peek(db, BillNoteSeries, prefix, floor)
	if err != nil {
		return "", err
	}
	return FormatBillNote(prefix, run), nil
}

// NextCreditNoteNumber reserves the next credit note number; runs restart every BE year.
func NextCreditNoteNumber(tx *gorm.DB, date time.Time) (string, error) {
	period := CreditNotePeriod(date)
	floor, err := creditNoteFloor(tx, period)
	if err != nil {
		return "", err
	}
	run, err := Next(tx, CreditNoteSeries, period, floor)
	if err != nil {
		return "", err
	}
	return CreditNoteNumber(run, date), nil
}

func PeekCreditNoteNumber(db *gorm.DB, date time.Time) (string, error) {
	period := CreditNotePeriod(date)
	floor, err := creditNoteFloor(db, period)
	if err != nil {
		return "", err
	}
	run, err := Peek(db, CreditNoteSeries, period, floor)
	if err != nil {
		return "", err
	}
	return CreditNoteNumber(run, date), nil
}

func NextDriverID(tx *gorm.DB) (string, error) {
	floor, err := driverFloor(tx)
	if err != nil {
		return "", err
	}
	run, err := Next(tx, DriverSeries, "all", floor)
	if err != nil {
		return "", err
	}
	return DriverID(run), nil
}
