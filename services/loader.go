package services

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"policy-chatbot/models"

	"github.com/ledongthuc/pdf"
)

// PolicyLoader reads a source policy document into page-level text
// records. PDFs yield one record per page; plain text and markdown
// files load as a single page.
type PolicyLoader struct{}

func NewPolicyLoader() *PolicyLoader {
	return &PolicyLoader{}
}

func (l *PolicyLoader) Load(path string) ([]models.Page, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrLoad, path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return l.loadPDF(path, content)
	default:
		text := strings.TrimSpace(string(content))
		if text == "" {
			return nil, fmt.Errorf("%w: %s is empty", ErrLoad, path)
		}
		return []models.Page{{Number: 1, Text: text}}, nil
	}
}

func (l *PolicyLoader) loadPDF(path string, content []byte) ([]models.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrLoad, path, err)
	}

	var pages []models.Page
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page should not sink the document.
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		pages = append(pages, models.Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: no text extracted from %s", ErrLoad, path)
	}
	return pages, nil
}
