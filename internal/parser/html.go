package parser

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/datamind-cli/internal/dataset"
	"github.com/PuerkitoBio/goquery"
)

// htmlParser reads the first <table> of an HTML export. Several reporting
// tools save "Excel" downloads as HTML tables.
type htmlParser struct{}

func (htmlParser) CanParse(filename string) bool {
	name := strings.ToLower(filename)
	return strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".htm")
}

func (htmlParser) Parse(r io.Reader) (*dataset.Table, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, errors.New("no <table> element found")
	}

	var header []string
	var rows [][]any
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var texts []string
		tr.ChildrenFiltered("th,td").Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(cell.Text()))
		})
		if len(texts) == 0 {
			return
		}
		if header == nil {
			header = texts
			return
		}
		rows = append(rows, stringCells(texts))
	})
	if header == nil {
		return &dataset.Table{}, nil
	}
	return newTable(header, rows), nil
}
