package result

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// FormatAsTable renders results as a fixed-column ASCII table, grounded on
// the pack's tablewriter usage for CLI result rendering.
func FormatAsTable(w io.Writer, b BatchCommandResults) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Device", "Type", "Command", "Status", "Duration (ms)", "Error"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	table.SetNoWhiteSpace(true)

	for _, r := range b.Results {
		table.Append([]string{
			r.DeviceID,
			string(r.DeviceType),
			r.Command,
			string(r.Status),
			fmt.Sprintf("%d", r.DurationMS()),
			r.Error,
		})
	}
	table.Render()
}
