package middlewares

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"ssincom-backend/apperr"
)

type plateInput struct {
	NumberPlate string `json:"number_plate" validate:"required,max=20"`
	CitizenID   string `json:"citizen_id" validate:"required,citizenid"`
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad input") })
	app.Get("/validation", func(c *fiber.Ctx) error { return ValidateStruct(plateInput{CitizenID: "123"}) })
	app.Get("/conflict", func(c *fiber.Ctx) error { return apperr.NewConflict("ซ้ำ", "INV001") })
	app.Get("/notfound", func(c *fiber.Ctx) error { return apperr.NotFound("ใบกำกับภาษี") })
	app.Get("/record", func(c *fiber.Ctx) error { return gorm.ErrRecordNotFound })
	app.Get("/dupkey", func(c *fiber.Ctx) error { return gorm.ErrDuplicatedKey })
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("db on fire") })

	tests := []struct {
		path    string
		status  int
		message string
	}{
		{"/fiber", 400, "bad input"},
		{"/validation", 422, "validation failed"},
		{"/conflict", 409, "ซ้ำ"},
		{"/notfound", 404, "ไม่พบใบกำกับภาษี"},
		{"/record", 404, "ไม่พบข้อมูล"},
		{"/dupkey", 409, "ข้อมูลซ้ำ"},
		{"/boom", 500, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			var body struct {
				Message    string            `json:"message"`
				Errors     map[string]string `json:"errors"`
				Duplicates []string          `json:"duplicates"`
			}
			raw, _ := io.ReadAll(resp.Body)
			if err := json.Unmarshal(raw, &body); err != nil {
				t.Fatalf("decode %s: %v", raw, err)
			}
			if body.Message != tt.message {
				t.Errorf("message = %q, want %q", body.Message, tt.message)
			}
			switch tt.path {
			case "/validation":
				if body.Errors["number_plate"] != "required" || body.Errors["citizen_id"] != "citizenid" {
					t.Errorf("field errors = %v", body.Errors)
				}
			case "/conflict":
				if len(body.Duplicates) != 1 || body.Duplicates[0] != "INV001" {
					t.Errorf("duplicates = %v", body.Duplicates)
				}
			}
		})
	}
}

func TestRequireSession(t *testing.T) {
	ConfigureSession("unit-secret", time.Hour, false)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/me", RequireSession(), func(c *fiber.Ctx) error {
		return c.SendString(c.Locals("userID").(string))
	})

	valid, _, err := GenerateToken("admin")
	if err != nil {
		t.Fatal(err)
	}
	ConfigureSession("unit-secret", -time.Minute, false)
	expired, _, err := GenerateToken("admin")
	if err != nil {
		t.Fatal(err)
	}
	ConfigureSession("other-secret", time.Hour, false)
	foreign, _, _ := GenerateToken("admin")
	ConfigureSession("unit-secret", time.Hour, false)

	tests := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"no credentials", "", "", 401},
		{"bearer", "Bearer " + valid, "", 200},
		{"lowercase scheme", "bearer " + valid, "", 200},
		{"cookie", "", valid, 200},
		{"expired", "Bearer " + expired, "", 401},
		{"wrong signature", "Bearer " + foreign, "", 401},
		{"garbage", "Bearer abc.def.ghi", "", 401},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: SessionCookie, Value: tt.cookie})
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if tt.status == 200 {
				body, _ := io.ReadAll(resp.Body)
				if string(body) != "admin" {
					t.Errorf("userID = %q", body)
				}
			}
		})
	}
}
