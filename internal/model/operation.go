package model

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// OperationID identifies an operation for operator grants, it's a 4 byte selector
// derived from the operation signature.
type OperationID [4]byte

// SelectorOf returns the first 4 bytes of the Keccak-256 hash of a signature.
func SelectorOf(signature string) OperationID {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(signature))
	sum := h.Sum(nil)

	var id OperationID
	copy(id[:], sum[:4])
	return id
}

func (o OperationID) String() string { return "0x" + hex.EncodeToString(o[:]) }

// ParseOperationID parses a `0x` prefixed hex selector.
func ParseOperationID(s string) (OperationID, error) {
	raw := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	b, err := hex.DecodeString(raw)
	if err != nil || len(b) != 4 {
		return OperationID{}, fmt.Errorf("invalid operation id %q: %w", s, ErrNotValid)
	}

	var id OperationID
	copy(id[:], b)
	return id, nil
}

// Operation is an engine operation that can be granted to roles.
type Operation struct {
	Name      string
	Signature string
}

// ID returns the operation selector.
func (o Operation) ID() OperationID { return SelectorOf(o.Signature) }

// Operations gated (or grantable) by operator grants.
var (
	OpCreateTask     = Operation{Name: "createTask", Signature: "createTask((uint8,string,string,uint256,uint256,uint256[],uint256,address,string))"}
	OpStartTask      = Operation{Name: "startTask", Signature: "startTask(uint256,uint256)"}
	OpReviewTask     = Operation{Name: "reviewTask", Signature: "reviewTask(uint256,uint256)"}
	OpCompleteTask   = Operation{Name: "completeTask", Signature: "completeTask(uint256,uint256)"}
	OpCancelTask     = Operation{Name: "cancelTask", Signature: "cancelTask(uint256,uint256)"}
	OpSetTitle       = Operation{Name: "setTitle", Signature: "setTitle(uint256,uint256,string)"}
	OpSetDescription = Operation{Name: "setDescription", Signature: "setDescription(uint256,uint256,string)"}
	OpSetEndDate     = Operation{Name: "setEndDate", Signature: "setEndDate(uint256,uint256,uint256)"}
	OpSetMetadata    = Operation{Name: "setMetadata", Signature: "setMetadata(uint256,uint256,string)"}
)

// Operations is the catalog of all known operations.
var Operations = []Operation{
	OpCreateTask,
	OpStartTask,
	OpReviewTask,
	OpCompleteTask,
	OpCancelTask,
	OpSetTitle,
	OpSetDescription,
	OpSetEndDate,
	OpSetMetadata,
}

// ResolveOperationID resolves an operation ID from an operation name
// (e.g. `setTitle`) or from its hex selector (e.g. `0x1a2b3c4d`).
func ResolveOperationID(nameOrID string) (OperationID, error) {
	for _, op := range Operations {
		if op.Name == nameOrID {
			return op.ID(), nil
		}
	}

	id, err := ParseOperationID(nameOrID)
	if err != nil {
		return OperationID{}, fmt.Errorf("unknown operation %q: %w", nameOrID, ErrNotValid)
	}
	return id, nil
}

// OperationName returns the catalog name of an operation ID, or its hex form when unknown.
func OperationName(id OperationID) string {
	for _, op := range Operations {
		if op.ID() == id {
			return op.Name
		}
	}
	return id.String()
}
