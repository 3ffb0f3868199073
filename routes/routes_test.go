package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"ssincom-backend/config"
	"ssincom-backend/controllers"
	"ssincom-backend/database"
	"ssincom-backend/documents"
	"ssincom-backend/middlewares"
)

type fakeConverter struct {
	pages int
}

func (f *fakeConverter) Convert(_ context.Context, pages ...[]byte) ([]byte, error) {
	f.pages = len(pages)
	return []byte("%PDF-1.4 fake"), nil
}

type testServer struct {
	app   *fiber.App
	token string
	pdf   *fakeConverter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db, err := database.OpenMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	database.DB = db
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	engine, err := documents.NewEngine()
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	pdf := &fakeConverter{}
	controllers.Setup(engine, pdf, config.DefaultCompany())
	middlewares.ConfigureSession("test-secret", time.Hour, false)
	if err := controllers.ConfigureAccount("admin", "s3cret"); err != nil {
		t.Fatalf("account: %v", err)
	}
	token, _, err := middlewares.GenerateToken("admin")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return &testServer{app: NewApp(Options{}), token: token, pdf: pdf}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (s *testServer) mustStatus(t *testing.T, want int, method, path string, body any) []byte {
	t.Helper()
	resp, out := s.do(t, method, path, body)
	if resp.StatusCode != want {
		t.Fatalf("%s %s: status %d, want %d; body %s", method, path, resp.StatusCode, want, out)
	}
	return out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return v
}

func invoicePayload(number, date, personID string, qty, price float64) fiber.Map {
	return fiber.Map{
		"invoice_number":      number,
		"invoice_date":        date,
		"personid":            personID,
		"fname":               "บริษัท ทดสอบ จำกัด",
		"fmlpaymentcreditday": 30,
		"items": []fiber.Map{
			{"cf_itemid": "P001", "cf_itemname": "หินคลุก", "cf_unitname": "ตัน", "quantity": qty, "unit_price": price},
		},
	}
}

func seedCustomer(t *testing.T, s *testServer, personID string) uint {
	t.Helper()
	out := s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/customers", fiber.Map{
		"customer_name": "บริษัท ทดสอบ จำกัด",
		"personid":      personID,
		"taxid":         "0105551234567",
		"hq":            true,
	})
	cust := decode[struct {
		ID uint `json:"idx"`
	}](t, out)
	if cust.ID == 0 {
		t.Fatalf("customer id missing in %s", out)
	}
	return cust.ID
}

func TestSessionRequired(t *testing.T) {
	s := newTestServer(t)

	s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/healthz", nil)

	s.token = ""
	s.mustStatus(t, fiber.StatusUnauthorized, http.MethodGet, "/api/customers/all", nil)
	s.mustStatus(t, fiber.StatusUnauthorized, http.MethodPost, "/login", fiber.Map{"username": "admin", "password": "wrong"})

	resp, out := s.do(t, http.MethodPost, "/login", fiber.Map{"username": "admin", "password": "s3cret"})
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("login: %d %s", resp.StatusCode, out)
	}
	var cookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == middlewares.SessionCookie {
			cookie = ck
		}
	}
	if cookie == nil || cookie.Value == "" || !cookie.HttpOnly {
		t.Fatalf("session cookie not set: %+v", resp.Cookies())
	}

	req := httptest.NewRequest(http.MethodGet, "/api/customers/all", nil)
	req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	resp, err := s.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("cookie session rejected: %d", resp.StatusCode)
	}
}

func TestInvoiceLifecycle(t *testing.T) {
	s := newTestServer(t)

	out := s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/invoices", invoicePayload("INV001", "2025-01-10", "C001", 10, 100))
	created := decode[struct {
		ID     uint   `json:"invoice_idx"`
		Number string `json:"invoice_number"`
	}](t, out)
	if created.Number != "INV001" || created.ID == 0 {
		t.Fatalf("unexpected create response %s", out)
	}

	s.mustStatus(t, fiber.StatusConflict, http.MethodPost, "/api/invoices", invoicePayload("INV001", "2025-01-11", "C001", 1, 1))
	s.mustStatus(t, fiber.StatusBadRequest, http.MethodPost, "/api/invoices", fiber.Map{"invoice_number": "INV009", "items": []fiber.Map{}})

	check := decode[struct {
		Exists bool `json:"exists"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/invoices/check-number?number=INV001", nil))
	if !check.Exists {
		t.Error("check-number: INV001 should exist")
	}

	list := decode[[]struct {
		Number string  `json:"invoice_number"`
		Amount float64 `json:"amount"`
		VAT    float64 `json:"vat"`
		Grand  float64 `json:"grand"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/invoices?start=2025-01-01&end=2025-01-31", nil))
	if len(list) != 1 {
		t.Fatalf("list: got %d rows", len(list))
	}
	if list[0].Amount != 1000 || list[0].VAT != 70 || list[0].Grand != 1070 {
		t.Errorf("totals: %+v", list[0])
	}

	detail := decode[struct {
		Invoice struct {
			DueDate string `json:"due_date"`
		} `json:"invoice"`
		Grand float64 `json:"grand"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/invoices/1/detail", nil))
	if !strings.HasPrefix(detail.Invoice.DueDate, "2025-02-09") {
		t.Errorf("due date: got %q, want 2025-02-09", detail.Invoice.DueDate)
	}
	if detail.Grand != 1070 {
		t.Errorf("detail grand: %v", detail.Grand)
	}

	s.mustStatus(t, fiber.StatusNotFound, http.MethodGet, "/api/invoices/99/detail", nil)

	s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/invoices/1/pdf", nil)
	if s.pdf.pages != 4 {
		t.Errorf("pdf pages: got %d, want 4", s.pdf.pages)
	}

	s.mustStatus(t, fiber.StatusOK, http.MethodDelete, "/api/invoices/1", nil)
	s.mustStatus(t, fiber.StatusNotFound, http.MethodGet, "/api/invoices/1/detail", nil)
}

func TestBillNoteRejectsInvoiceAlreadyBilled(t *testing.T) {
	s := newTestServer(t)
	customerID := seedCustomer(t, s, "C001")
	s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/invoices", invoicePayload("INV001", "2025-01-10", "C001", 10, 100))
	s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/invoices", invoicePayload("INV002", "2025-01-12", "C001", 5, 200))

	type created struct {
		Number string  `json:"billnote_number"`
		Total  float64 `json:"total_amount"`
	}
	first := decode[created](t, s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/billing-notes", fiber.Map{
		"customer_id": customerID,
		"bill_date":   "2025-01-15",
		"items":       []fiber.Map{{"invoice_number": "INV001"}},
	}))
	if first.Number != "BNTS6801000001" {
		t.Errorf("first number: got %q", first.Number)
	}
	if first.Total != 1070 {
		t.Errorf("first total: got %v", first.Total)
	}

	out := s.mustStatus(t, fiber.StatusConflict, http.MethodPost, "/api/billing-notes", fiber.Map{
		"customer_id": customerID,
		"bill_date":   "2025-01-20",
		"items":       []fiber.Map{{"invoice_number": "INV001"}, {"invoice_number": "INV002"}},
	})
	conflict := decode[struct {
		Duplicates []string `json:"duplicates"`
	}](t, out)
	if len(conflict.Duplicates) != 1 || conflict.Duplicates[0] != "INV001" {
		t.Errorf("duplicates: got %v, want [INV001]", conflict.Duplicates)
	}

	second := decode[created](t, s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/billing-notes", fiber.Map{
		"customer_id": customerID,
		"bill_date":   "2025-01-20",
		"items":       []fiber.Map{{"invoice_number": "INV002"}},
	}))
	if second.Number != "BNTS6801000002" {
		t.Errorf("second number: got %q", second.Number)
	}

	candidates := decode[struct {
		Invoices []struct {
			Number string  `json:"invoice_number"`
			UsedIn *string `json:"used_in"`
		} `json:"invoices"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/billing-note-invoices?customer_id=1&start=2025-01-01&end=2025-01-31", nil))
	if len(candidates.Invoices) != 2 {
		t.Fatalf("candidates: got %d", len(candidates.Invoices))
	}
	for _, inv := range candidates.Invoices {
		if inv.UsedIn == nil {
			t.Errorf("%s should be marked as billed", inv.Number)
		}
	}

	// billed invoices stay put
	s.mustStatus(t, fiber.StatusConflict, http.MethodDelete, "/api/invoices/1", nil)

	s.mustStatus(t, fiber.StatusOK, http.MethodDelete, "/api/billing-notes/BNTS6801000001", nil)
	s.mustStatus(t, fiber.StatusNotFound, http.MethodGet, "/api/billing-notes/BNTS6801000001", nil)
	s.mustStatus(t, fiber.StatusOK, http.MethodDelete, "/api/invoices/1", nil)
}

func TestCreditNoteNumbering(t *testing.T) {
	s := newTestServer(t)
	note := func(number string) fiber.Map {
		return fiber.Map{
			"creditnote_number": number,
			"creditnote_date":   "2025-03-05",
			"reason":            "สินค้าไม่ได้คุณภาพ",
			"items": []fiber.Map{
				{"invoice_number": "INV001", "cf_itemid": "P001", "quantity": 10, "fine": 5, "price_after_fine": 95},
			},
		}
	}
	type created struct {
		Number string `json:"creditnote_number"`
	}

	preview := decode[struct {
		Number string `json:"number"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/credit-notes/generate-number?date=2025-03-05", nil))
	if preview.Number != "SSCR1-0503/2568" {
		t.Errorf("preview number: got %q", preview.Number)
	}

	first := decode[created](t, s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/credit-notes", note("")))
	if first.Number != "SSCR1-0503/2568" {
		t.Errorf("first: got %q", first.Number)
	}
	second := decode[created](t, s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/credit-notes", note("")))
	if second.Number != "SSCR2-0503/2568" {
		t.Errorf("second: got %q", second.Number)
	}
	s.mustStatus(t, fiber.StatusConflict, http.MethodPost, "/api/credit-notes", note(first.Number))

	rows := decode[[]struct {
		Number string  `json:"creditnote_number"`
		Total  float64 `json:"total_amount"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/search-credit-notes?start=2025-03-01&end=2025-03-31", nil))
	if len(rows) != 2 {
		t.Fatalf("search: got %d rows", len(rows))
	}
	if rows[0].Total != 950 {
		t.Errorf("search total: got %v, want 950", rows[0].Total)
	}

	s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/credit-notes/detail?no="+url.QueryEscape(first.Number), nil)
	s.mustStatus(t, fiber.StatusNotFound, http.MethodGet, "/api/credit-notes/detail?no="+url.QueryEscape("SSCR9-0101/2568"), nil)
}

func TestMasterDataConflicts(t *testing.T) {
	s := newTestServer(t)

	car := fiber.Map{"number_plate": "70-1234", "car_brand": "ISUZU", "province": "ชลบุรี"}
	s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/cars", car)
	s.mustStatus(t, fiber.StatusConflict, http.MethodPost, "/api/cars", car)

	type driver struct {
		DriverID string `json:"driver_id"`
	}
	d1 := decode[driver](t, s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/drivers", fiber.Map{
		"citizen_id": "1-1014-00123-45-6", "prefix": "นาย", "first_name": "สมชาย", "last_name": "ใจดี",
	}))
	if d1.DriverID != "D0001" {
		t.Errorf("first driver id: got %q", d1.DriverID)
	}
	d2 := decode[driver](t, s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/drivers", fiber.Map{
		"citizen_id": "3100500123457", "first_name": "สมศักดิ์", "last_name": "ขยัน",
	}))
	if d2.DriverID != "D0002" {
		t.Errorf("second driver id: got %q", d2.DriverID)
	}
	s.mustStatus(t, fiber.StatusConflict, http.MethodPost, "/api/drivers", fiber.Map{
		"citizen_id": "1101400123456", "first_name": "ซ้ำ", "last_name": "ซ้ำ",
	})
	s.mustStatus(t, fiber.StatusUnprocessableEntity, http.MethodPost, "/api/drivers", fiber.Map{
		"citizen_id": "12345", "first_name": "สั้น", "last_name": "ไป",
	})

	seedCustomer(t, s, "C001")
	s.mustStatus(t, fiber.StatusConflict, http.MethodPost, "/api/customers", fiber.Map{
		"customer_name": "อีกราย", "personid": "C001",
	})
	dup := decode[struct {
		Exists bool   `json:"exists"`
		Field  string `json:"field"`
	}](t, s.mustStatus(t, fiber.StatusOK, http.MethodGet, "/api/customers/check-duplicate?personid=C001", nil))
	if !dup.Exists || dup.Field != "personid" {
		t.Errorf("check-duplicate: %+v", dup)
	}
}

func TestSaleTaxExport(t *testing.T) {
	s := newTestServer(t)
	s.mustStatus(t, fiber.StatusCreated, http.MethodPost, "/api/invoices", invoicePayload("INV001", "2025-01-10", "C001", 10, 100))

	resp, out := s.do(t, http.MethodGet, "/api/saletax/export?start=2025-01-01&end=2025-01-31", nil)
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("export: %d %s", resp.StatusCode, out)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Errorf("content type: %q", ct)
	}
	// xlsx is a zip archive
	if !bytes.HasPrefix(out, []byte("PK")) {
		t.Error("export body is not an xlsx archive")
	}
}

func TestIdempotentCreateReplays(t *testing.T) {
	s := newTestServer(t)
	body, _ := json.Marshal(invoicePayload("INV100", "2025-02-01", "C001", 1, 500))

	send := func(payload []byte) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Idempotency-Key", "create-inv100")
		resp, err := s.app.Test(req, -1)
		if err != nil {
			t.Fatal(err)
		}
		return resp
	}

	if resp := send(body); resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("first: %d", resp.StatusCode)
	}
	resp := send(body)
	if resp.StatusCode != fiber.StatusCreated || resp.Header.Get("Idempotent-Replayed") != "true" {
		t.Fatalf("replay: %d replayed=%q", resp.StatusCode, resp.Header.Get("Idempotent-Replayed"))
	}

	other, _ := json.Marshal(invoicePayload("INV101", "2025-02-01", "C001", 1, 500))
	if resp := send(other); resp.StatusCode != fiber.StatusConflict {
		t.Errorf("key reuse with another body: %d", resp.StatusCode)
	}
}
