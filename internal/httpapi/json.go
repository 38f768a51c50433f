package httpapi

import (
	"time"

	"github.com/slok/w3task/internal/app/task"
	"github.com/slok/w3task/internal/model"
)

type taskJSON struct {
	ID          uint64     `json:"id"`
	Status      string     `json:"status"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Reward      string     `json:"reward"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Authorized  []uint64   `json:"authorized"`
	Creator     uint64     `json:"creator"`
	Assignee    string     `json:"assignee"`
	Metadata    string     `json:"metadata"`
	Confirmers  []string   `json:"confirmers"`
	Revision    int        `json:"revision"`
}

type eventJSON struct {
	Type        string `json:"type"`
	TaskID      uint64 `json:"taskId,omitempty"`
	Role        uint64 `json:"role,omitempty"`
	Address     string `json:"address,omitempty"`
	OperationID string `json:"operationId,omitempty"`
	Allowed     *bool  `json:"allowed,omitempty"`
	Status      string `json:"status,omitempty"`
}

type eventsResponse struct {
	Events []eventJSON `json:"events"`
}

type taskResponse struct {
	Task   taskJSON    `json:"task"`
	Events []eventJSON `json:"events"`
}

func mapTask(t model.Task) taskJSON {
	out := taskJSON{
		ID:          uint64(t.ID),
		Status:      t.Status.String(),
		Title:       t.Title,
		Description: t.Description,
		Reward:      "0",
		Creator:     uint64(t.Creator),
		Assignee:    string(t.Assignee),
		Metadata:    t.Metadata,
		Authorized:  make([]uint64, 0, len(t.Authorized)),
		Confirmers:  make([]string, 0, len(t.Confirmers)),
		Revision:    t.Revision,
	}

	if t.Reward != nil {
		out.Reward = t.Reward.String()
	}

	if !t.EndDate.IsZero() {
		endDate := t.EndDate.UTC()
		out.EndDate = &endDate
	}

	for _, r := range t.Authorized {
		out.Authorized = append(out.Authorized, uint64(r))
	}
	for _, c := range t.Confirmers {
		out.Confirmers = append(out.Confirmers, string(c))
	}

	return out
}

func mapEvents(evs []model.Event) []eventJSON {
	out := make([]eventJSON, 0, len(evs))
	for _, ev := range evs {
		e := eventJSON{
			Type:   string(ev.Type),
			TaskID: uint64(ev.TaskID),
		}

		switch ev.Type {
		case model.EventAuthorizedPersonnel:
			allowed := ev.Allowed
			e.Role = uint64(ev.RoleID)
			e.Address = string(ev.Address)
			e.Allowed = &allowed
		case model.EventAuthorizedOperator:
			allowed := ev.Allowed
			e.Role = uint64(ev.RoleID)
			e.OperationID = ev.OperationID.String()
			e.Allowed = &allowed
		case model.EventTaskStarted:
			e.Address = string(ev.Address)
		case model.EventTaskUpdated:
			e.Status = ev.Status.String()
		}

		out = append(out, e)
	}
	return out
}

func mapTaskResponse(resp *task.TaskResponse) taskResponse {
	return taskResponse{
		Task:   mapTask(resp.Task),
		Events: mapEvents(resp.Events),
	}
}
