package model

import "fmt"

// EventType is the kind of an emitted event.
type EventType string

const (
	EventAuthorizedPersonnel EventType = "AuthorizedPersonnel"
	EventAuthorizedOperator  EventType = "AuthorizedOperator"
	EventTaskCreated         EventType = "TaskCreated"
	EventTitleUpdated        EventType = "TitleUpdated"
	EventDescriptionUpdated  EventType = "DescriptionUpdated"
	EventEndDateUpdated      EventType = "EndDateUpdated"
	EventMetadataUpdated     EventType = "MetadataUpdated"
	EventTaskStarted         EventType = "TaskStarted"
	EventTaskUpdated         EventType = "TaskUpdated"
)

// Event is the observable record of a successful operation. Only the fields
// that belong to the event type are set.
type Event struct {
	Type        EventType
	TaskID      TaskID
	RoleID      RoleID
	Address     Address
	OperationID OperationID
	Allowed     bool
	Status      TaskStatus
}

func (e Event) String() string {
	switch e.Type {
	case EventAuthorizedPersonnel:
		return fmt.Sprintf("%s(%d, %s, %t)", e.Type, e.RoleID, e.Address, e.Allowed)
	case EventAuthorizedOperator:
		return fmt.Sprintf("%s(%s, %d, %t)", e.Type, e.OperationID, e.RoleID, e.Allowed)
	case EventTaskStarted:
		return fmt.Sprintf("%s(%d, %s)", e.Type, e.TaskID, e.Address)
	case EventTaskUpdated:
		return fmt.Sprintf("%s(%d, %s)", e.Type, e.TaskID, e.Status)
	default:
		return fmt.Sprintf("%s(%d)", e.Type, e.TaskID)
	}
}
