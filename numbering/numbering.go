// Package numbering issues the business document numbers:
// bill notes BNTS<YY><MM><NNNNNN>, credit notes SSCR<run>-<DD><MM>/<BE year> and driver ids D0001.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"ssincom-backend/utils"
)

const (
	BillNoteSeries   = "BNTS"
	CreditNoteSeries = "SSCR"
	DriverSeries     = "D"

	billNoteDigits = 6
)

// BillNotePrefix is "BNTS" + last two digits of the BE year + two-digit month, e.g. BNTS6801.
func BillNotePrefix(t time.Time) string {
	return fmt.Sprintf("%s%02d%02d", BillNoteSeries, utils.BEYear(t)%100, int(t.Month()))
}

func FormatBillNote(prefix string, run int) string {
	return fmt.Sprintf("%s%0*d", prefix, billNoteDigits, run)
}

// ParseBillNoteRun extracts the run number of a bill note number within prefix.
func ParseBillNoteRun(number, prefix string) (int, bool) {
	if !strings.HasPrefix(number, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(number[len(prefix):])
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// CreditNotePeriod is the BE year a credit note run belongs to.
func CreditNotePeriod(t time.Time) string {
	return strconv.Itoa(utils.BEYear(t))
}

// CreditNoteNumber formats SSCR<run>-<DD><MM>/<BE year>. The run is not padded.
func CreditNoteNumber(run int, t time.Time) string {
	return fmt.Sprintf("%s%d-%02d%02d/%d", CreditNoteSeries, run, t.Day(), int(t.Month()), utils.BEYear(t))
}

// ParseCreditNoteRun returns the run of a SSCR number ("SSCR12-0501/2568" -> 12).
func ParseCreditNoteRun(number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, CreditNoteSeries)
	if !ok {
		return 0, false
	}
	head, _, _ := strings.Cut(rest, "-")
	n, err := strconv.Atoi(head)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func DriverID(run int) string {
	return fmt.Sprintf("%s%04d", DriverSeries, run)
}

func ParseDriverRun(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, DriverSeries)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
