// package formatter provides functions to export task lists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/mkhault/calsync/internal/models"
)

// ExportToCSV converts tasks to CSV with columns: ID, Title, DueDate, Completed, FromCalendar, Description
func ExportToCSV(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "DueDate", "Completed", "FromCalendar", "Description"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, task := range tasks {
		record := []string{
			task.ID,
			task.Title,
			task.DueDate,
			strconv.FormatBool(task.Completed),
			strconv.FormatBool(task.FromCalendar),
			task.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts tasks to a Markdown checklist grouped under a title.
func ExportToMarkdown(title string, tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Tasks**: %d\n\n", len(tasks)))

	for _, task := range tasks {
		box := " "
		if task.Completed {
			box = "x"
		}
		duePart := ""
		if task.DueDate != "" {
			duePart = fmt.Sprintf(" (due %s)", task.DueDate)
		}
		buf.WriteString(fmt.Sprintf("- [%s] %s%s\n", box, task.Title, duePart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts tasks to plain numbered text.
func ExportToText(tasks []models.Task) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Tasks: %d\n\n", len(tasks)))
	for i, task := range tasks {
		status := "open"
		if task.Completed {
			status = "done"
		}
		line := fmt.Sprintf("%d. [%s] %s", i+1, status, task.Title)
		if task.DueDate != "" {
			line += fmt.Sprintf(" (due %s)", task.DueDate)
		}
		buf.WriteString(line + "\n")
	}

	return buf.Bytes(), nil
}
