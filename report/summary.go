package report

import (
	"sort"
	"strings"
	"time"

	"ssincom-backend/utils"
)

// Entry is one invoice's contribution: its date, buyer and amount before VAT.
type Entry struct {
	InvoiceID uint
	Date      time.Time
	Company   string
	CarPlate  string
	Amount    float64
}

type Row struct {
	Period    string  `json:"period"`
	Company   *string `json:"company,omitempty"`
	Count     int     `json:"count"`
	Amount    float64 `json:"amount"`
	Discount  float64 `json:"discount"`
	BeforeVAT float64 `json:"before_vat"`
	VAT       float64 `json:"vat"`
	Grand     float64 `json:"grand"`
	CarPlates string  `json:"car_plates,omitempty"`
}

type bucket struct {
	period   string
	company  string
	invoices map[uint]struct{}
	plates   map[string]struct{}
	amounts  []float64
}

// Summarize groups entries by period (and company when split), counting distinct invoices.
// VAT is computed on each group's total, not summed per invoice.
func Summarize(entries []Entry, g Granularity, splitByCompany bool) []Row {
	buckets := map[string]*bucket{}
	for _, e := range entries {
		period := g.Label(e.Date)
		key := period
		if splitByCompany {
			key += "\x00" + e.Company
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{period: period, company: e.Company, invoices: map[uint]struct{}{}, plates: map[string]struct{}{}}
			buckets[key] = b
		}
		b.invoices[e.InvoiceID] = struct{}{}
		if p := strings.TrimSpace(e.CarPlate); p != "" {
			b.plates[p] = struct{}{}
		}
		b.amounts = append(b.amounts, e.Amount)
	}

	rows := make([]Row, 0, len(buckets))
	for _, b := range buckets {
		amount := utils.Sum(b.amounts...)
		vat, grand := utils.VAT(amount)
		row := Row{
			Period:    b.period,
			Count:     len(b.invoices),
			Amount:    amount,
			BeforeVAT: amount,
			VAT:       vat,
			Grand:     grand,
			CarPlates: joinSorted(b.plates),
		}
		if splitByCompany {
			company := b.company
			row.Company = &company
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Period != rows[j].Period {
			return rows[i].Period < rows[j].Period
		}
		if rows[i].Company == nil || rows[j].Company == nil {
			return false
		}
		return *rows[i].Company < *rows[j].Company
	})
	return rows
}

func joinSorted(set map[string]struct{}) string {
	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}
	sort.Strings(out)
	return strings.Join(out, ", ")
}
