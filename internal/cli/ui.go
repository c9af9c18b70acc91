package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/planner"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

// =============================================================================
// Styles
// =============================================================================

var (
	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconError   = "✗"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", styleSuccess.Render(iconSuccess), fmt.Sprintf(format, args...))
}

// printConfirmation lists what an unconfirmed operation would unseat.
func printConfirmation(w io.Writer, ce *planner.ConfirmationRequiredError, guests []domain.Guest) {
	names := make(map[string]string, len(guests))
	for _, g := range guests {
		names[g.ID] = g.Name
	}

	fmt.Fprintf(w, "%s %s would unseat %d guest(s)\n",
		styleWarning.Render(iconWarning), ce.Action, len(ce.GuestIDs))
	if len(ce.TableIDs) > 0 {
		fmt.Fprintf(w, "  tables: %s\n", strings.Join(ce.TableIDs, ", "))
	}
	for _, id := range ce.GuestIDs {
		fmt.Fprintf(w, "  %s %s\n", styleDim.Render("·"), names[id])
	}
	fmt.Fprintf(w, "  %s\n", styleDim.Render("repeat with --yes to apply"))
}

func printPlacement(w io.Writer, pe planner.PlacementError) {
	fmt.Fprintf(w, "%s table %s cannot go there: %s\n",
		styleError.Render(iconError), pe.TableID, pe.Reason)
}

// renderPlan draws the table list, the guest list and the counters.
func renderPlan(w io.Writer, mode domain.Mode, tables []domain.Table, guests []domain.Guest, sum domain.Summary) {
	fmt.Fprintln(w, styleTitle.Render("Tables"))

	rows := make([][]string, 0, len(tables))
	for _, tb := range tables {
		kind := ""
		if tb.IsHead {
			kind = "head"
		}
		rows = append(rows, []string{
			tb.ID,
			tb.Label(),
			fmt.Sprintf("%.2f, %.2f", tb.X, tb.Y),
			fmt.Sprintf("%.0f°", tb.Rotation),
			kind,
			fmt.Sprintf("%d/%d", tb.GuestCount(), len(tb.Chairs)),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Table", "Position", "Rot", "", "Seated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(w, t.Render())

	if len(guests) > 0 {
		fmt.Fprintln(w, styleTitle.Render("Guests"))
		for _, g := range guests {
			seat := styleDim.Render("unseated")
			if g.Assigned() {
				seat = g.AssignedTo
			}
			fmt.Fprintf(w, "  %-4s %-28s %s  %s\n", g.Initials(), g.Name, seat, styleDim.Render(g.ID))
		}
	}

	fmt.Fprintf(w, "\nmode %s · tables %s · seats %s · seated %s · free %s · unseated %s\n",
		styleNumber.Render(string(mode)),
		styleNumber.Render(fmt.Sprint(sum.Tables)),
		styleNumber.Render(fmt.Sprint(sum.TotalSeats)),
		styleNumber.Render(fmt.Sprint(sum.AssignedGuests)),
		styleNumber.Render(fmt.Sprint(sum.FreeSeats)),
		styleNumber.Render(fmt.Sprint(sum.UnassignedGuests)),
	)
}
