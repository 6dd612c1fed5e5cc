package parser_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/datamind-cli/internal/parser"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("cell name: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("set %s: %v", cell, err)
			}
		}
	}
	// A second sheet must be ignored.
	if _, err := f.NewSheet("Outra"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}
	_ = f.SetCellValue("Outra", "A1", "ignored")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestParseXLSX_TypedCells(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	data := workbook(t, [][]any{
		{"Cidade", "VALOR", "Ativo", "Data"},
		{"SP", 100.5, true, day},
		{"RJ", 200, false, nil},
		{nil, nil, nil, nil},
		{"BH"},
	})

	tbl, err := parser.Parse("vendas.xlsx", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if strings.Join(tbl.Headers, ",") != "Cidade,VALOR,Ativo,Data" {
		t.Fatalf("unexpected headers: %q", tbl.Headers)
	}
	if len(tbl.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(tbl.Records))
	}
	first := tbl.Records[0]
	if first["Cidade"] != "SP" {
		t.Fatalf("Cidade = %#v", first["Cidade"])
	}
	if first["VALOR"] != 100.5 {
		t.Fatalf("VALOR = %#v", first["VALOR"])
	}
	if first["Ativo"] != true {
		t.Fatalf("Ativo = %#v", first["Ativo"])
	}
	got, ok := first["Data"].(time.Time)
	if !ok {
		t.Fatalf("Data = %#v, want time.Time", first["Data"])
	}
	if got.Year() != 2024 || got.Month() != time.January || got.Day() != 15 {
		t.Fatalf("Data = %v", got)
	}
	if tbl.Records[1]["Ativo"] != false || tbl.Records[1]["Data"] != nil {
		t.Fatalf("unexpected second record: %#v", tbl.Records[1])
	}
	if tbl.Records[2]["VALOR"] != nil {
		t.Fatalf("missing cell should be nil: %#v", tbl.Records[2])
	}
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	if _, err := parser.Parse("broken.xlsx", strings.NewReader("not a zip")); err == nil {
		t.Fatalf("expected error for invalid workbook")
	}
}
