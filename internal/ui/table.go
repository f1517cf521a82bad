// Package ui provides table output and an optional terminal interface.
package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/nibzard/tasktracker/internal/task"
)

// DefaultDateFormat matches "%d/%m/%Y %H:%M:%S".
const DefaultDateFormat = "02/01/2006 15:04:05"

// Headers are the table column titles.
var Headers = []string{"Id", "Description", "Status", "Created At", "Updated At"}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// RenderTable formats tasks as a bordered table. Timestamps are shown in
// local time using dateFormat; an empty dateFormat uses DefaultDateFormat.
func RenderTable(tasks []task.Task, dateFormat string) string {
	if dateFormat == "" {
		dateFormat = DefaultDateFormat
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID(),
			t.Description(),
			t.Status().String(),
			t.CreatedAt().Local().Format(dateFormat),
			t.UpdatedAt().Local().Format(dateFormat),
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderRow(true).
		Headers(Headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return tbl.String()
}
