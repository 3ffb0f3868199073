package documents

import (
	"bytes"
	"context"
	"fmt"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// Converter turns rendered HTML pages into one PDF, pages in order.
type Converter interface {
	Convert(ctx context.Context, pages ...[]byte) ([]byte, error)
}

// Wkhtmltopdf converts with the wkhtmltopdf binary.
type Wkhtmltopdf struct {
	BinPath string // empty: look up wkhtmltopdf in PATH / WKHTMLTOPDF_PATH
}

func NewWkhtmltopdf(binPath string) *Wkhtmltopdf {
	if binPath != "" {
		wkhtmltopdf.SetPath(binPath)
	}
	return &Wkhtmltopdf{BinPath: binPath}
}

func (w *Wkhtmltopdf) Convert(ctx context.Context, pages ...[]byte) ([]byte, error) {
	if len(pages) == 0 {
		return nil, fmt.Errorf("no pages to convert")
	}
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("wkhtmltopdf: %w", err)
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Dpi.Set(300)
	pdfg.MarginTop.Set(8)
	pdfg.MarginBottom.Set(8)
	pdfg.MarginLeft.Set(8)
	pdfg.MarginRight.Set(8)

	for _, p := range pages {
		pdfg.AddPage(wkhtmltopdf.NewPageReader(bytes.NewReader(p)))
	}
	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
