package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/slok/w3task/internal/model"
)

// TablePrinter prints engine information in a table format.
type TablePrinter struct {
	writer io.Writer
	now    func() time.Time
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w, now: time.Now}
}

// PrintTasks prints tasks in a table format.
func (t *TablePrinter) PrintTasks(tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tTITLE\tSTATUS\tREWARD\tCREATOR\tASSIGNEE\tEND")

	for _, tk := range tasks {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			tk.ID,
			tk.Title,
			tk.Status,
			FormatReward(tk.Reward),
			tk.Creator,
			orDash(string(tk.Assignee)),
			TimeLeft(tk.EndDate, t.now()),
		)
	}

	return nil
}

// PrintTask prints the details of a task.
func (t *TablePrinter) PrintTask(tk model.Task) error {
	fmt.Fprintf(t.writer, "ID:           %d\n", tk.ID)
	fmt.Fprintf(t.writer, "Title:        %s\n", tk.Title)
	fmt.Fprintf(t.writer, "Status:       %s\n", tk.Status)
	fmt.Fprintf(t.writer, "Description:  %s\n", orDash(tk.Description))
	fmt.Fprintf(t.writer, "Reward:       %s\n", FormatReward(tk.Reward))
	fmt.Fprintf(t.writer, "End date:     %s\n", FormatTimestamp(tk.EndDate))
	fmt.Fprintf(t.writer, "Creator:      %d\n", tk.Creator)
	fmt.Fprintf(t.writer, "Authorized:   %s\n", orDash(joinRoles(tk.Authorized)))
	fmt.Fprintf(t.writer, "Assignee:     %s\n", orDash(string(tk.Assignee)))
	fmt.Fprintf(t.writer, "Metadata:     %s\n", orDash(tk.Metadata))

	if len(tk.Confirmers) > 0 {
		confirmers := make([]string, 0, len(tk.Confirmers))
		for _, c := range tk.Confirmers {
			confirmers = append(confirmers, string(c))
		}
		fmt.Fprintf(t.writer, "Confirmed by: %s\n", strings.Join(confirmers, ", "))
	}

	return nil
}

// PrintEvents prints one event per line.
func (t *TablePrinter) PrintEvents(evs []model.Event) error {
	for _, ev := range evs {
		fmt.Fprintln(t.writer, ev.String())
	}
	return nil
}

// PrintMembers prints the members of a role.
func (t *TablePrinter) PrintMembers(roleID model.RoleID, members []model.Address) error {
	if len(members) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ROLE\tADDRESS")
	for _, m := range members {
		fmt.Fprintf(tw, "%d\t%s\n", roleID, m)
	}

	return nil
}

// PrintOperators prints operator grants in a table format.
func (t *TablePrinter) PrintOperators(grants []model.OperatorGrant) error {
	if len(grants) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "OPERATION\tID\tROLE\tALLOWED")
	for _, g := range grants {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", model.OperationName(g.OperationID), g.OperationID, g.RoleID, yesNo(g.Allowed))
	}

	return nil
}

// PrintOperations prints the known operations and their IDs.
func (t *TablePrinter) PrintOperations(ops []model.Operation) error {
	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "OPERATION\tID\tSIGNATURE")
	for _, op := range ops {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", op.Name, op.ID(), op.Signature)
	}

	return nil
}

// PrintCheck prints the result of a check.
func (t *TablePrinter) PrintCheck(ok bool) error {
	fmt.Fprintln(t.writer, yesNo(ok))
	return nil
}

// PrintMessage prints a simple text message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func joinRoles(roles []model.RoleID) string {
	s := make([]string, 0, len(roles))
	for _, r := range roles {
		s = append(s, strconv.FormatUint(uint64(r), 10))
	}
	return strings.Join(s, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
