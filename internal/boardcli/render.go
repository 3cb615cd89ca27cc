package boardcli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/internxp/internal/domain/types"
)

// podium is the number of rows highlighted at the top of the table.
const podium = 3

var podiumColors = [podium]int{tablewriter.FgHiYellowColor, tablewriter.FgHiWhiteColor, tablewriter.FgYellowColor}

// Render writes entries as a table. The top rows are highlighted.
func Render(w io.Writer, title string, entries []types.Entry) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, title)
	if len(entries) == 0 {
		color.New(color.FgYellow).Fprintln(w, "No ranked interns yet.")
		return
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Name", "Department", "XP", "Level", "Badges", "Status"})
	table.SetAutoWrapText(false)

	for i, e := range entries {
		row := []string{
			strconv.Itoa(e.Rank),
			e.Name,
			e.Department,
			xpCell(e),
			fmt.Sprintf("%d (%d/100)", e.Level, e.Progress),
			strconv.Itoa(e.BadgeCount),
			e.Status,
		}
		if i < podium && !color.NoColor {
			c := tablewriter.Colors{tablewriter.Bold, podiumColors[i]}
			table.Rich(row, []tablewriter.Colors{c, c, c, c, c, c, c})
			continue
		}
		table.Append(row)
	}
	table.Render()
}

func xpCell(e types.Entry) string {
	if e.PeriodXP == nil {
		return strconv.Itoa(e.XP)
	}
	return fmt.Sprintf("%d (+%d)", e.XP, *e.PeriodXP)
}
