package printer

import "github.com/slok/w3task/internal/model"

// Printer knows how to print engine information in different formats.
type Printer interface {
	PrintTasks(tasks []model.Task) error
	PrintTask(t model.Task) error
	PrintEvents(evs []model.Event) error
	PrintMembers(roleID model.RoleID, members []model.Address) error
	PrintOperators(grants []model.OperatorGrant) error
	PrintOperations(ops []model.Operation) error
	PrintCheck(ok bool) error
	PrintMessage(msg string) error
}
