// Package style decorates CLI output for terminals.
package style

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	apifiles "github.com/designsafe-ci/dapi/api-types/files"
	"github.com/designsafe-ci/dapi/pkg/jobs"
)

var (
	succeeded  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2A9D8F"))
	failed     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EE4266"))
	unfinished = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA113"))
	header     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell       = lipgloss.NewStyle().Padding(0, 1)
)

// Status interprets the status of the job, colored by its outcome.
func Status(status jobs.Status, uuid string) string {
	message := jobs.InterpretStatus(status, uuid)
	switch status {
	case jobs.StatusFinished:
		return succeeded.Render(message)
	case jobs.StatusFailed, jobs.StatusCancelled, jobs.StatusStopped, jobs.StatusArchivingFailed:
		return failed.Render(message)
	default:
		return unfinished.Render(message)
	}
}

// Table renders rows as a bordered table.
func Table(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// Listing renders file listings as a table.
func Listing(found []apifiles.FileInfo) string {
	rows := make([][]string, 0, len(found))
	for _, f := range found {
		rows = append(rows, []string{f.Name, f.Type, strconv.FormatInt(f.Size, 10), f.LastModified.String()})
	}
	return Table([]string{"NAME", "TYPE", "SIZE", "LAST MODIFIED"}, rows)
}
