// Package documents renders the printable tax documents (invoice, bill note, credit note)
// as HTML and converts them to PDF.
package documents

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"

	"ssincom-backend/utils"
)

//go:embed templates
var templateFS embed.FS

// NewEngine loads the embedded templates with the Thai formatting helpers.
// Previews and PDFs both render through Render below.
func NewEngine() (*html.Engine, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("thaidate", func(t time.Time) string { return utils.ThaiDate(t) })
	engine.AddFunc("bedate", func(t time.Time) string { return utils.ShortBEDate(t) })
	engine.AddFunc("thbaht", utils.BahtText)
	engine.AddFunc("money", utils.FormatMoney)
	engine.AddFunc("qty", func(x float64) string { return decimal.NewFromFloat(x).String() })
	engine.AddFunc("inc", func(i int) int { return i + 1 })
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load document templates: %w", err)
	}
	return engine, nil
}

// Render executes template name with data and returns the HTML.
func Render(engine *html.Engine, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Render(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
