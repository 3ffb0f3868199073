package numbering

import (
	"testing"
	"time"

	"gorm.io/datatypes"

	"ssincom-backend/database"
	"ssincom-backend/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBillNotePrefix(t *testing.T) {
	tests := []struct {
		in   time.Time
		want string
	}{
		{date(2025, time.January, 15), "BNTS6801"},
		{date(2025, time.December, 31), "BNTS6812"},
		{date(2024, time.February, 29), "BNTS6702"},
	}
	for _, tt := range tests {
		if got := BillNotePrefix(tt.in); got != tt.want {
			t.Errorf("BillNotePrefix(%s) = %q, want %q", tt.in.Format(time.DateOnly), got, tt.want)
		}
	}
}

func TestFormatAndParseBillNote(t *testing.T) {
	n := FormatBillNote("BNTS6801", 42)
	if n != "BNTS6801000042" {
		t.Fatalf("FormatBillNote = %q", n)
	}
	if run, ok := ParseBillNoteRun(n, "BNTS6801"); !ok || run != 42 {
		t.Fatalf("ParseBillNoteRun = %d, %v", run, ok)
	}
	if _, ok := ParseBillNoteRun("BNTS6802000001", "BNTS6801"); ok {
		t.Fatal("other month must not parse")
	}
	if _, ok := ParseBillNoteRun("BNTS6801ABC", "BNTS6801"); ok {
		t.Fatal("garbage run must not parse")
	}
}

func TestCreditNoteNumber(t *testing.T) {
	got := CreditNoteNumber(7, date(2025, time.March, 5))
	if got != "SSCR7-0503/2568" {
		t.Fatalf("CreditNoteNumber = %q", got)
	}

	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"SSCR7-0503/2568", 7, true},
		{"SSCR123-3112/2567", 123, true},
		{"SSCR-0101/2568", 0, false},
		{"BNTS6801000001", 0, false},
	}
	for _, tt := range tests {
		run, ok := ParseCreditNoteRun(tt.in)
		if run != tt.want || ok != tt.ok {
			t.Errorf("ParseCreditNoteRun(%q) = %d, %v; want %d, %v", tt.in, run, ok, tt.want, tt.ok)
		}
	}
}

func TestDriverID(t *testing.T) {
	if got := DriverID(1); got != "D0001" {
		t.Fatalf("DriverID(1) = %q", got)
	}
	if run, ok := ParseDriverRun("D0123"); !ok || run != 123 {
		t.Fatalf("ParseDriverRun = %d, %v", run, ok)
	}
}

func TestCounterNextAndPeek(t *testing.T) {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}

	peek, err := Peek(db, "X", "p", 0)
	if err != nil || peek != 1 {
		t.Fatalf("Peek on empty = %d, %v", peek, err)
	}

	for want := 1; want <= 3; want++ {
		got, err := Next(db, "X", "p", 0)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("Next = %d, want %d", got, want)
		}
	}

	// existing documents above the counter win
	got, err := Next(db, "X", "p", 10)
	if err != nil || got != 11 {
		t.Fatalf("Next with floor = %d, %v", got, err)
	}

	// peeking twice returns the same number
	a, _ := Peek(db, "X", "p", 0)
	b, _ := Peek(db, "X", "p", 0)
	if a != 12 || b != 12 {
		t.Fatalf("Peek = %d, %d; want 12", a, b)
	}

	// periods are independent
	if got, _ := Next(db, "X", "q", 0); got != 1 {
		t.Fatalf("Next in new period = %d", got)
	}
}

func TestNextBillNoteNumberFollowsExisting(t *testing.T) {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	d := date(2025, time.January, 20)
	legacy := models.BillNote{BillNoteNumber: "BNTS6801000009", BillDate: datatypes.Date(d)}
	if err := db.Create(&legacy).Error; err != nil {
		t.Fatal(err)
	}

	peek, err := PeekBillNoteNumber(db, d)
	if err != nil || peek != "BNTS6801000010" {
		t.Fatalf("PeekBillNoteNumber = %q, %v", peek, err)
	}

	var issued []string
	for i := 0; i < 2; i++ {
		n, err := NextBillNoteNumber(db, d)
		if err != nil {
			t.Fatal(err)
		}
		issued = append(issued, n)
	}
	if issued[0] != "BNTS6801000010" || issued[1] != "BNTS6801000011" {
		t.Fatalf("issued %v", issued)
	}

	// next month restarts
	if n, _ := NextBillNoteNumber(db, date(2025, time.February, 1)); n != "BNTS6802000001" {
		t.Fatalf("February = %q", n)
	}
}

func TestNextCreditNoteNumberPerYear(t *testing.T) {
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	existing := models.CreditNote{CreditNoteNumber: "SSCR4-1012/2567", DocDate: datatypes.Date(date(2024, time.December, 10))}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatal(err)
	}

	n, err := NextCreditNoteNumber(db, date(2024, time.December, 20))
	if err != nil || n != "SSCR5-2012/2567" {
		t.Fatalf("same year = %q, %v", n, err)
	}
	n, err = NextCreditNoteNumber(db, date(2025, time.January, 2))
	if err != nil || n != "SSCR1-0201/2568" {
		t.Fatalf("new year = %q, %v", n, err)
	}
}
