package validator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gabe/rcbt/internal/config"
	"github.com/gabe/rcbt/internal/models"
	"github.com/tealeg/xlsx/v3"
)

type logRecorder struct {
	successes []string
	errors    []string
}

func (l *logRecorder) Success(format string, args ...any) {
	l.successes = append(l.successes, fmt.Sprintf(format, args...))
}

func (l *logRecorder) Error(format string, args ...any) {
	l.errors = append(l.errors, fmt.Sprintf(format, args...))
}


const mib = 1024 * 1024

func newValidator(log Logger) *Validator {
	return New(config.DefaultConfig().Upload, log)
}

func TestSizeBoundary(t *testing.T) {
	v := newValidator(&logRecorder{})

	atLimit := models.LocalFile{Name: "enq.xlsx", MediaType: config.MediaTypeXLSX, Size: 50 * mib}
	if err := v.Check(models.SlotEnq, atLimit); err != nil {
		t.Fatalf("file of exactly 50 MiB should be accepted: %v", err)
	}

	overLimit := atLimit
	overLimit.Size = 50*mib + 1
	err := v.Check(models.SlotEnq, overLimit)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestMediaTypes(t *testing.T) {
	v := newValidator(&logRecorder{})

	for _, mt := range []string{config.MediaTypeXLSX, config.MediaTypeXLS} {
		if err := v.Check(models.SlotRef, models.LocalFile{Name: "f", MediaType: mt, Size: 10}); err != nil {
			t.Errorf("expected %s to be accepted: %v", mt, err)
		}
	}
	for _, mt := range []string{"text/csv", "application/pdf", ""} {
		if err := v.Check(models.SlotRef, models.LocalFile{Name: "f", MediaType: mt, Size: 10}); !errors.Is(err, ErrMediaType) {
			t.Errorf("expected %q to be rejected, got %v", mt, err)
		}
	}
}

func TestValidateClearsRejectedSlot(t *testing.T) {
	log := &logRecorder{}
	v := newValidator(log)
	sel := models.Selection{
		models.SlotEnq:  {Name: "enq.csv", MediaType: "text/csv", Size: 10},
		models.SlotCase: {Name: "case.xlsx", MediaType: config.MediaTypeXLSX, Size: 60 * mib},
		models.SlotRef:  {Name: "ref.xls", MediaType: config.MediaTypeXLS, Size: 2048},
	}

	if v.Validate(sel, models.SlotEnq) {
		t.Error("csv should be rejected")
	}
	if v.Validate(sel, models.SlotCase) {
		t.Error("oversize file should be rejected")
	}
	if !v.Validate(sel, models.SlotRef) {
		t.Error("xls should be accepted")
	}

	if _, ok := sel[models.SlotEnq]; ok {
		t.Error("rejected enq slot should be cleared")
	}
	if _, ok := sel[models.SlotCase]; ok {
		t.Error("rejected case slot should be cleared")
	}
	if _, ok := sel[models.SlotRef]; !ok {
		t.Error("accepted slot should stay selected")
	}

	if len(log.errors) != 2 || len(log.successes) != 1 {
		t.Fatalf("expected 2 errors and 1 success, got %v / %v", log.errors, log.successes)
	}
	if !strings.Contains(log.errors[0], "enq.csv") {
		t.Errorf("error should name the file: %q", log.errors[0])
	}
	if !strings.Contains(log.errors[1], "60 MB") {
		t.Errorf("oversize error should carry the human size: %q", log.errors[1])
	}
}

func TestValidateEmptySlot(t *testing.T) {
	v := newValidator(&logRecorder{})
	if v.Validate(models.Selection{}, models.SlotAcct) {
		t.Error("empty slot cannot validate")
	}
}

func TestFormatSize(t *testing.T) {
	cases := map[int64]string{
		0:              "0 Bytes",
		512:            "512 Bytes",
		1024:           "1 KB",
		1536:           "1.5 KB",
		50 * mib:       "50 MB",
		3 * 1024 * mib: "3 GB",
	}
	for in, want := range cases {
		if got := FormatSize(in); got != want {
			t.Errorf("FormatSize(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Enquetes.XLSX")
	if err := os.WriteFile(path, []byte("payload"), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := Describe(path)
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	if f.MediaType != config.MediaTypeXLSX {
		t.Errorf("expected xlsx media type, got %s", f.MediaType)
	}
	if f.Size != 7 || f.Name != "Enquetes.XLSX" {
		t.Errorf("unexpected description: %+v", f)
	}

	if _, err := Describe(dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tickets.xlsx")

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet("Tickets")
	if err != nil {
		t.Fatal(err)
	}
	row := sheet.AddRow()
	row.AddCell().SetString("id")
	row.AddCell().SetString("site")
	sheet.AddRow().AddCell().SetString("T-1")
	if err := wb.Save(path); err != nil {
		t.Fatal(err)
	}

	sheets, err := Inspect(path)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if len(sheets) != 1 || sheets[0].Name != "Tickets" {
		t.Fatalf("unexpected sheets: %+v", sheets)
	}
	if sheets[0].Rows != 2 || sheets[0].Cols != 2 {
		t.Errorf("expected 2x2, got %dx%d", sheets[0].Rows, sheets[0].Cols)
	}
}

func TestInspectRejectsLegacyFormat(t *testing.T) {
	if _, err := Inspect("legacy.xls"); err == nil {
		t.Fatal("expected error for .xls")
	}
}
