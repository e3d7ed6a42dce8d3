package content

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/hyperjump/kensaku/internal/models"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
)

// Office and PDF files become articles whose body is the extracted text.
// Document properties fill title, author, tags, and category when present.

func pdfArticle(data []byte) (*models.Article, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open PDF: %w", err)
	}

	var body strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extract page %d: %w", i, err)
		}
		body.WriteString("<p>")
		body.WriteString(text)
		body.WriteString("</p>\n")
	}

	a := &models.Article{Content: body.String()}
	if info := r.Trailer().Key("Info"); !info.IsNull() {
		a.Title = strings.TrimSpace(info.Key("Title").Text())
		a.Author = strings.TrimSpace(info.Key("Author").Text())
		a.Tags = splitKeywords(info.Key("Keywords").Text())
	}
	return a, nil
}

func xlsxArticle(data []byte) (*models.Article, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var body strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			body.WriteString("<p>")
			body.WriteString(strings.Join(row, " "))
			body.WriteString("</p>\n")
		}
	}

	a := &models.Article{Content: body.String()}
	if props, err := f.GetDocProps(); err == nil && props != nil {
		a.Title = strings.TrimSpace(props.Title)
		a.Author = strings.TrimSpace(props.Creator)
		a.Category = strings.TrimSpace(props.Category)
		a.Tags = splitKeywords(props.Keywords)
		a.CreatedAt = parseOfficeTime(props.Created)
	}
	return a, nil
}

const (
	docxBody = "word/document.xml"
	docxCore = "docProps/core.xml"
)

var docxParagraph = regexp.MustCompile(`(?s)<w:p[ >].*?</w:p>|<w:p/>`)
var docxText = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// coreProperties is the subset of OPC core properties mapped onto articles.
type coreProperties struct {
	Title    string `xml:"title"`
	Creator  string `xml:"creator"`
	Keywords string `xml:"keywords"`
	Category string `xml:"category"`
	Created  string `xml:"created"`
}

func docxArticle(data []byte) (*models.Article, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open DOCX: %w", err)
	}

	a := &models.Article{}
	found := false
	for _, f := range zr.File {
		switch f.Name {
		case docxBody:
			raw, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			a.Content = docxParagraphs(raw)
			found = true
		case docxCore:
			raw, err := readZipFile(f)
			if err != nil {
				return nil, err
			}
			var props coreProperties
			if err := xml.Unmarshal(raw, &props); err == nil {
				a.Title = strings.TrimSpace(props.Title)
				a.Author = strings.TrimSpace(props.Creator)
				a.Category = strings.TrimSpace(props.Category)
				a.Tags = splitKeywords(props.Keywords)
				a.CreatedAt = parseOfficeTime(props.Created)
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("open DOCX: missing %s", docxBody)
	}
	return a, nil
}

// docxParagraphs keeps paragraph boundaries as <p> elements so word counts
// do not run text from adjacent paragraphs together.
func docxParagraphs(raw []byte) string {
	var body strings.Builder
	for _, para := range docxParagraph.FindAll(raw, -1) {
		body.WriteString("<p>")
		for _, m := range docxText.FindAllSubmatch(para, -1) {
			body.Write(m[1])
		}
		body.WriteString("</p>\n")
	}
	return body.String()
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func parseOfficeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
