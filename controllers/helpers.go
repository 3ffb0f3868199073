package controllers

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/template/html/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"ssincom-backend/config"
	"ssincom-backend/documents"
	"ssincom-backend/models"
	"ssincom-backend/utils"
)

var (
	views     *html.Engine
	converter documents.Converter
	company   = config.DefaultCompany()

	// now is swapped in tests to pin document dates.
	now = time.Now
)

// Setup hands the document renderer, PDF converter and seller profile to the handlers.
func Setup(engine *html.Engine, pdf documents.Converter, seller config.Company) {
	views = engine
	converter = pdf
	company = seller
}

func today() time.Time {
	return utils.DateOnly(now().In(bangkok))
}

var bangkok = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		return time.FixedZone("ICT", 7*60*60)
	}
	return loc
}()

func badRequest(format string, args ...any) error {
	return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf(format, args...))
}

// parseDate parses a required date field.
func parseDate(field, s string) (time.Time, error) {
	t, ok := utils.ParseDate(s)
	if !ok {
		return time.Time{}, badRequest("invalid %s: %q", field, s)
	}
	return t, nil
}

// parseOptionalDate returns nil for an empty value.
func parseOptionalDate(field, s string) (*datatypes.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(field, s)
	if err != nil {
		return nil, err
	}
	d := datatypes.Date(t)
	return &d, nil
}

func dateOf(d datatypes.Date) time.Time {
	return utils.DateOnly(time.Time(d))
}

func datePtrOf(d *datatypes.Date) time.Time {
	if d == nil {
		return time.Time{}
	}
	return dateOf(*d)
}

func isoDate(d datatypes.Date) string {
	return utils.ISODate(time.Time(d))
}

// isoDatePtr renders a nullable date as "YYYY-MM-DD" or JSON null.
func isoDatePtr(d *datatypes.Date) *string {
	if d == nil || time.Time(*d).IsZero() {
		return nil
	}
	s := isoDate(*d)
	return &s
}

// whereContains adds "LOWER(a) LIKE ? OR LOWER(b) LIKE ? ..." for free-text search.
func whereContains(q *gorm.DB, text string, cols ...string) *gorm.DB {
	if strings.TrimSpace(text) == "" || len(cols) == 0 {
		return q
	}
	pat := utils.ContainsPattern(text)
	parts := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		parts[i] = "LOWER(" + col + ") LIKE ?"
		args[i] = pat
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// whereDateRange filters col to [from, to]; zero bounds are open.
func whereDateRange(q *gorm.DB, col string, from, to time.Time) *gorm.DB {
	if !from.IsZero() {
		q = q.Where(col+" >= ?", datatypes.Date(from))
	}
	if !to.IsZero() {
		q = q.Where(col+" <= ?", datatypes.Date(to))
	}
	return q
}

func pageParams(c *fiber.Ctx, sizeKey string, defSize, maxSize int) (page, size int) {
	page = max(1, utils.ParseIntDefault(c.Query("page"), 1))
	size = utils.ClampInt(utils.ParseIntDefault(c.Query(sizeKey), defSize), 1, maxSize)
	return page, size
}

// saveRevision keeps the current state of a document before it changes.
func saveRevision(tx *gorm.DB, kind, number, action string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return tx.Create(&models.DocumentRevision{
		Kind:     kind,
		Number:   number,
		Action:   action,
		Snapshot: datatypes.JSON(raw),
	}).Error
}

// renderHTML renders a document template for the response.
func renderHTML(c *fiber.Ctx, name string, view any) error {
	if views == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "document templates not loaded")
	}
	out, err := documents.Render(views, name, view)
	if err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(out)
}

// sendPDF renders every view with template name and returns them as one PDF download.
func sendPDF(c *fiber.Ctx, filename, name string, pages ...any) error {
	if views == nil || converter == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "pdf export not configured")
	}
	rendered := make([][]byte, 0, len(pages))
	for _, p := range pages {
		out, err := documents.Render(views, name, p)
		if err != nil {
			return err
		}
		rendered = append(rendered, out)
	}
	pdf, err := converter.Convert(c.UserContext(), rendered...)
	if err != nil {
		return fmt.Errorf("convert %s: %w", filename, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, safeFilename(filename)))
	return c.Send(pdf)
}

var filenameReplacer = strings.NewReplacer("/", "-", "\\", "-", " ", "_", `"`, "")

func safeFilename(s string) string {
	return filenameReplacer.Replace(strings.TrimSpace(s))
}
