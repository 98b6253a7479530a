package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"tasklist/internal/models"
)

func tasks() []models.Task {
	b := models.NewTask("B", "second, with comma", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	b.IsCompleted = true
	return []models.Task{
		models.NewTask("A", "first", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
		b,
	}
}

func TestExportJSON(t *testing.T) {
	data, err := Export(tasks(), "JSON")
	if err != nil {
		t.Fatal(err)
	}
	var got []models.Task
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(got) != 2 || got[1].Name != "B" || !got[1].IsCompleted {
		t.Errorf("unexpected tasks: %+v", got)
	}

	empty, err := Export(nil, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if string(empty) != "[]" {
		t.Errorf("empty export = %q", empty)
	}
}

func TestExportCSV(t *testing.T) {
	data, err := Export(tasks(), FormatCSV)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	want := []string{"2", "B", "second, with comma", "2024-01-05", "true"}
	for i, v := range want {
		if records[2][i] != v {
			t.Errorf("column %d = %q, want %q", i, records[2][i], v)
		}
	}
}

func TestExportPDF(t *testing.T) {
	data, err := Export(tasks(), FormatPDF)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Errorf("output is not a PDF: %q", data[:8])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	if _, err := Export(tasks(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestContentType(t *testing.T) {
	if ContentType("pdf") != "application/pdf" || ContentType("csv") != "text/csv" || ContentType("json") != "application/json" {
		t.Error("unexpected content types")
	}
}
