package utils

import (
	"testing"
	"time"
)

func TestVAT(t *testing.T) {
	tests := []struct {
		before    float64
		wantVAT   float64
		wantGrand float64
	}{
		{1000, 70, 1070},
		{0, 0, 0},
		{0.5, 0.04, 0.54},
		{99.99, 7, 106.99},
		{1234.56, 86.42, 1320.98},
	}
	for _, tt := range tests {
		vat, grand := VAT(tt.before)
		if vat != tt.wantVAT || grand != tt.wantGrand {
			t.Errorf("VAT(%v) = (%v, %v), want (%v, %v)", tt.before, vat, grand, tt.wantVAT, tt.wantGrand)
		}
	}
}

func TestLineAmountAndSum(t *testing.T) {
	if got := LineAmount(3, 33.335); got != 100.01 {
		t.Errorf("LineAmount(3, 33.335) = %v, want 100.01", got)
	}
	if got := Sum(0.1, 0.2); got != 0.3 {
		t.Errorf("Sum(0.1, 0.2) = %v, want 0.3", got)
	}
	if got := Round2(2.675); got != 2.68 {
		t.Errorf("Round2(2.675) = %v, want 2.68", got)
	}
}

func TestFormatMoney(t *testing.T) {
	tests := map[float64]string{
		0:           "0.00",
		1234.5:      "1,234.50",
		1234567.891: "1,234,567.89",
		-1000:       "-1,000.00",
		999:         "999.00",
	}
	for in, want := range tests {
		if got := FormatMoney(in); got != want {
			t.Errorf("FormatMoney(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestBahtText(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1, "หนึ่งบาทถ้วน"},
		{11, "สิบเอ็ดบาทถ้วน"},
		{21.5, "ยี่สิบเอ็ดบาทห้าสิบสตางค์"},
		{100, "หนึ่งร้อยบาทถ้วน"},
		{1070, "หนึ่งพันเจ็ดสิบบาทถ้วน"},
		{0.25, "ศูนย์บาทยี่สิบห้าสตางค์"},
		{1000000, "หนึ่งล้านบาทถ้วน"},
		{2500001, "สองล้านห้าแสนหนึ่งบาทถ้วน"},
		{-15, "ลบสิบห้าบาทถ้วน"},
	}
	for _, tt := range tests {
		if got := BahtText(tt.in); got != tt.want {
			t.Errorf("BahtText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestThaiDates(t *testing.T) {
	d := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	if got := ThaiDate(d); got != "2 มกราคม 2568" {
		t.Errorf("ThaiDate = %q", got)
	}
	if got := ShortBEDate(d); got != "02/01/2568" {
		t.Errorf("ShortBEDate = %q", got)
	}
	if ThaiDate(time.Time{}) != "" || ShortBEDate(time.Time{}) != "" || ISODate(time.Time{}) != "" {
		t.Error("zero time should format as empty")
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2025-03-05", "2025-03-05", true},
		{"05/03/2025", "2025-03-05", true},
		{"12/25/2025", "2025-12-25", true},
		{"5 มีนาคม 2568", "2025-03-05", true},
		{"5 มีนาคม 2025", "2025-03-05", true},
		{"31 กุมภาพันธ์ 2568", "", false},
		{"5 March 2025", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDate(tt.in)
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && ISODate(got) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, ISODate(got), tt.want)
		}
	}
}

func TestColumnUpdates(t *testing.T) {
	name := "ACME"
	days := 30
	date := "2025-01-01"
	dto := struct {
		Name  *string `json:"fname" col:"customer_name"`
		Days  *int    `json:"fmlpaymentcreditday" col:"credit_days"`
		Date  *string `json:"invoice_date" col:"-"`
		PO    *string `json:"po_number"`
		Plain string  `json:"plain"`
	}{Name: &name, Days: &days, Date: &date}

	got := ColumnUpdates(&dto)
	if len(got) != 2 || got["customer_name"] != "ACME" || got["credit_days"] != 30 {
		t.Errorf("ColumnUpdates = %v", got)
	}
}

func TestNormalize(t *testing.T) {
	type item struct {
		Code  string
		Qty   float64 `norm:"qty"`
		Price float64
	}
	note := " memo "
	dto := struct {
		Name    string
		Note    *string
		Items   []item
		Patched *[]item
	}{
		Name:    "  ACME ",
		Note:    &note,
		Items:   []item{{Code: " P1 ", Qty: 2.345, Price: 10.005}},
		Patched: &[]item{{Code: " P2 ", Qty: 1.23456, Price: 99.999}},
	}

	Normalize(&dto)
	if dto.Name != "ACME" || *dto.Note != "memo" {
		t.Errorf("strings not trimmed: %+v", dto)
	}
	tests := []struct {
		name string
		got  item
		want item
	}{
		{"slice", dto.Items[0], item{Code: "P1", Qty: 2.345, Price: 10.01}},
		{"pointer to slice", (*dto.Patched)[0], item{Code: "P2", Qty: 1.235, Price: 100}},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, tt.got, tt.want)
		}
	}
}
