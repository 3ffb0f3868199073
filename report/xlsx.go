package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"ssincom-backend/utils"
)

// TaxLine is one invoice on the sales-tax list.
type TaxLine struct {
	ID            uint    `json:"idx"`
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"`
	Company       string  `json:"company"`
	TaxID         string  `json:"taxid"`
	Branch        string  `json:"branch"`
	BeforeVAT     float64 `json:"before_vat"`
	VAT           float64 `json:"vat"`
	Grand         float64 `json:"grand"`
}

const (
	listSheet    = "ภาษีขาย"
	summarySheet = "สรุป"
)

// WriteSalesTaxXLSX writes the sales-tax list and its period summary as a two-sheet workbook.
func WriteSalesTaxXLSX(w io.Writer, title string, lines []TaxLine, summary []Row) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", listSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}

	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	headStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	// list sheet
	if err := f.SetCellValue(listSheet, "A1", title); err != nil {
		return err
	}
	head := []any{"ลำดับ", "วันที่", "เลขที่ใบกำกับภาษี", "ชื่อผู้ซื้อ", "เลขประจำตัวผู้เสียภาษี", "สาขา", "มูลค่าสินค้า", "ภาษีมูลค่าเพิ่ม", "รวม"}
	if err := f.SetSheetRow(listSheet, "A3", &head); err != nil {
		return err
	}
	_ = f.SetCellStyle(listSheet, "A3", "I3", headStyle)
	var sumBefore, sumVAT, sumGrand []float64
	for i, l := range lines {
		row := []any{i + 1, l.InvoiceDate, l.InvoiceNumber, l.Company, l.TaxID, l.Branch, l.BeforeVAT, l.VAT, l.Grand}
		if err := f.SetSheetRow(listSheet, fmt.Sprintf("A%d", i+4), &row); err != nil {
			return err
		}
		sumBefore = append(sumBefore, l.BeforeVAT)
		sumVAT = append(sumVAT, l.VAT)
		sumGrand = append(sumGrand, l.Grand)
	}
	last := len(lines) + 4
	totals := []any{"รวม", "", "", "", "", "", total(sumBefore), total(sumVAT), total(sumGrand)}
	if err := f.SetSheetRow(listSheet, fmt.Sprintf("A%d", last), &totals); err != nil {
		return err
	}
	_ = f.SetCellStyle(listSheet, "G4", fmt.Sprintf("I%d", last), moneyStyle)
	_ = f.SetColWidth(listSheet, "B", "F", 20)
	_ = f.SetColWidth(listSheet, "G", "I", 16)

	// summary sheet
	sHead := []any{"ช่วงเวลา", "บริษัท", "จำนวนใบ", "มูลค่าก่อนภาษี", "ภาษีมูลค่าเพิ่ม", "รวม"}
	if err := f.SetSheetRow(summarySheet, "A1", &sHead); err != nil {
		return err
	}
	_ = f.SetCellStyle(summarySheet, "A1", "F1", headStyle)
	for i, r := range summary {
		company := ""
		if r.Company != nil {
			company = *r.Company
		}
		row := []any{r.Period, company, r.Count, r.BeforeVAT, r.VAT, r.Grand}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}
	if len(summary) > 0 {
		_ = f.SetCellStyle(summarySheet, "D2", fmt.Sprintf("F%d", len(summary)+1), moneyStyle)
	}
	_ = f.SetColWidth(summarySheet, "A", "F", 18)

	return f.Write(w)
}

func total(xs []float64) float64 {
	return utils.Round2(utils.Sum(xs...))
}
