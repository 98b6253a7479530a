// Package export выгружает список задач в JSON, CSV или PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"tasklist/internal/models"
)

const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// ContentType - MIME-тип для формата выгрузки
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case FormatCSV:
		return "text/csv"
	case FormatPDF:
		return "application/pdf"
	default:
		return "application/json"
	}
}

// Export выгружает задачи в формате format. Номера в CSV и PDF начинаются с 1.
func Export(tasks []models.Task, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		if tasks == nil {
			tasks = []models.Task{}
		}
		return json.MarshalIndent(tasks, "", "  ")
	case FormatCSV:
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"id", "name", "description", "due_date", "completed"})
		for i, task := range tasks {
			_ = w.Write([]string{
				strconv.Itoa(i + 1),
				task.Name,
				task.Description,
				task.DueDate.Format(models.DateLayout),
				strconv.FormatBool(task.IsCompleted),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case FormatPDF:
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "Task List")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		if len(tasks) == 0 {
			pdf.MultiCell(0, 6, "No tasks found.", "0", "L", false)
		}
		// встроенные шрифты gofpdf понимают только cp1252
		tr := pdf.UnicodeTranslatorFromDescriptor("")
		for i, task := range tasks {
			line := fmt.Sprintf("%d. [%s] %s - due %s", i+1, task.Status(), task.Name, task.DueDate.Format(models.DateLayout))
			pdf.MultiCell(0, 6, tr(line), "0", "L", false)
			if task.Description != "" {
				pdf.MultiCell(0, 5, tr("    "+task.Description), "0", "L", false)
			}
		}
		var buf bytes.Buffer
		if err := pdf.Output(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}
