package printer

import (
	"encoding/json"
	"io"
	"time"

	"github.com/slok/w3task/internal/model"
)

// JSONPrinter prints engine information in JSON format.
type JSONPrinter struct {
	writer io.Writer
}

// NewJSONPrinter creates a new JSON printer.
func NewJSONPrinter(w io.Writer) *JSONPrinter {
	return &JSONPrinter{writer: w}
}

// taskOutput represents a task.
type taskOutput struct {
	ID          uint64     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Reward      string     `json:"reward"`
	EndDate     *time.Time `json:"end_date"`
	Authorized  []uint64   `json:"authorized"`
	Creator     uint64     `json:"creator"`
	Assignee    string     `json:"assignee"`
	Metadata    string     `json:"metadata"`
	Confirmers  []string   `json:"confirmers"`
}

// eventOutput represents an emitted event.
type eventOutput struct {
	Type        string `json:"type"`
	TaskID      uint64 `json:"task_id,omitempty"`
	RoleID      uint64 `json:"role_id,omitempty"`
	Address     string `json:"address,omitempty"`
	OperationID string `json:"operation_id,omitempty"`
	Allowed     bool   `json:"allowed"`
	Status      string `json:"status,omitempty"`
}

// operatorOutput represents an operator grant.
type operatorOutput struct {
	Operation   string `json:"operation"`
	OperationID string `json:"operation_id"`
	RoleID      uint64 `json:"role_id"`
	Allowed     bool   `json:"allowed"`
}

// operationOutput represents a known operation.
type operationOutput struct {
	Name      string `json:"name"`
	ID        string `json:"id"`
	Signature string `json:"signature"`
}

// membersOutput represents the members of a role.
type membersOutput struct {
	RoleID  uint64   `json:"role_id"`
	Members []string `json:"members"`
}

// checkOutput represents the result of a check.
type checkOutput struct {
	OK bool `json:"ok"`
}

// messageOutput represents a simple message output.
type messageOutput struct {
	Message string `json:"message"`
}

// PrintTasks prints tasks in JSON format.
func (j *JSONPrinter) PrintTasks(tasks []model.Task) error {
	items := make([]taskOutput, 0, len(tasks))
	for _, t := range tasks {
		items = append(items, mapTask(t))
	}
	return j.encode(items)
}

// PrintTask prints a task in JSON format.
func (j *JSONPrinter) PrintTask(t model.Task) error {
	return j.encode(mapTask(t))
}

// PrintEvents prints events in JSON format.
func (j *JSONPrinter) PrintEvents(evs []model.Event) error {
	items := make([]eventOutput, 0, len(evs))
	for _, ev := range evs {
		e := eventOutput{
			Type:    string(ev.Type),
			TaskID:  uint64(ev.TaskID),
			RoleID:  uint64(ev.RoleID),
			Address: string(ev.Address),
			Allowed: ev.Allowed,
		}
		switch ev.Type {
		case model.EventAuthorizedOperator:
			e.OperationID = ev.OperationID.String()
		case model.EventTaskUpdated:
			e.Status = ev.Status.String()
		}
		items = append(items, e)
	}
	return j.encode(items)
}

// PrintMembers prints the members of a role in JSON format.
func (j *JSONPrinter) PrintMembers(roleID model.RoleID, members []model.Address) error {
	output := membersOutput{RoleID: uint64(roleID), Members: make([]string, 0, len(members))}
	for _, m := range members {
		output.Members = append(output.Members, string(m))
	}
	return j.encode(output)
}

// PrintOperators prints operator grants in JSON format.
func (j *JSONPrinter) PrintOperators(grants []model.OperatorGrant) error {
	items := make([]operatorOutput, 0, len(grants))
	for _, g := range grants {
		items = append(items, operatorOutput{
			Operation:   model.OperationName(g.OperationID),
			OperationID: g.OperationID.String(),
			RoleID:      uint64(g.RoleID),
			Allowed:     g.Allowed,
		})
	}
	return j.encode(items)
}

// PrintOperations prints the known operations in JSON format.
func (j *JSONPrinter) PrintOperations(ops []model.Operation) error {
	items := make([]operationOutput, 0, len(ops))
	for _, op := range ops {
		items = append(items, operationOutput{Name: op.Name, ID: op.ID().String(), Signature: op.Signature})
	}
	return j.encode(items)
}

// PrintCheck prints the result of a check in JSON format.
func (j *JSONPrinter) PrintCheck(ok bool) error {
	return j.encode(checkOutput{OK: ok})
}

// PrintMessage prints a simple message in JSON format.
func (j *JSONPrinter) PrintMessage(msg string) error {
	return j.encode(messageOutput{Message: msg})
}

func (j *JSONPrinter) encode(v any) error {
	enc := json.NewEncoder(j.writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func mapTask(t model.Task) taskOutput {
	output := taskOutput{
		ID:          uint64(t.ID),
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		Reward:      "0",
		Authorized:  make([]uint64, 0, len(t.Authorized)),
		Creator:     uint64(t.Creator),
		Assignee:    string(t.Assignee),
		Metadata:    t.Metadata,
		Confirmers:  make([]string, 0, len(t.Confirmers)),
	}

	if t.Reward != nil {
		output.Reward = t.Reward.String()
	}

	if !t.EndDate.IsZero() {
		utcTime := t.EndDate.UTC()
		output.EndDate = &utcTime
	}

	for _, r := range t.Authorized {
		output.Authorized = append(output.Authorized, uint64(r))
	}
	for _, c := range t.Confirmers {
		output.Confirmers = append(output.Confirmers, string(c))
	}

	return output
}
