package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
)

// RepositoryConfig is the configuration for the memory repository.
type RepositoryConfig struct {
	Logger log.Logger
}

func (c *RepositoryConfig) defaults() error {
	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "storage.Memory"})
	return nil
}

type operatorKey struct {
	op   model.OperationID
	role model.RoleID
}

// Repository is an in-memory implementation of storage.Repository.
// Roles, operators and tasks are guarded by their own locks.
type Repository struct {
	roles   map[model.RoleID]map[model.Address]struct{}
	rolesMu sync.RWMutex

	operators   map[operatorKey]bool
	operatorsMu sync.RWMutex

	tasks      map[model.TaskID]model.Task
	lastTaskID model.TaskID
	tasksMu    sync.RWMutex

	logger log.Logger
}

// NewRepository creates a new memory repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Repository{
		roles:     make(map[model.RoleID]map[model.Address]struct{}),
		operators: make(map[operatorKey]bool),
		tasks:     make(map[model.TaskID]model.Task),
		logger:    cfg.Logger,
	}, nil
}

// SetMember adds or removes an address from a role.
func (r *Repository) SetMember(ctx context.Context, role model.RoleID, addr model.Address, isMember bool) error {
	r.rolesMu.Lock()
	defer r.rolesMu.Unlock()

	members, ok := r.roles[role]
	if !ok {
		members = make(map[model.Address]struct{})
		r.roles[role] = members
	}

	if isMember {
		members[addr] = struct{}{}
	} else {
		delete(members, addr)
	}

	r.logger.Debugf("Set role %d member %s: %t", role, addr, isMember)
	return nil
}

// IsMember checks if an address belongs to a role.
func (r *Repository) IsMember(ctx context.Context, role model.RoleID, addr model.Address) (bool, error) {
	r.rolesMu.RLock()
	defer r.rolesMu.RUnlock()

	_, ok := r.roles[role][addr]
	return ok, nil
}

// ListMembers returns the members of a role sorted.
func (r *Repository) ListMembers(ctx context.Context, role model.RoleID) ([]model.Address, error) {
	r.rolesMu.RLock()
	defer r.rolesMu.RUnlock()

	members := make([]model.Address, 0, len(r.roles[role]))
	for addr := range r.roles[role] {
		members = append(members, addr)
	}
	slices.Sort(members)

	return members, nil
}

// SetOperator sets the grant of an operation for a role.
func (r *Repository) SetOperator(ctx context.Context, op model.OperationID, role model.RoleID, allowed bool) error {
	r.operatorsMu.Lock()
	defer r.operatorsMu.Unlock()

	r.operators[operatorKey{op: op, role: role}] = allowed
	r.logger.Debugf("Set operator %s role %d: %t", op, role, allowed)

	return nil
}

// IsOperator checks if a role is allowed to invoke an operation.
func (r *Repository) IsOperator(ctx context.Context, op model.OperationID, role model.RoleID) (bool, error) {
	r.operatorsMu.RLock()
	defer r.operatorsMu.RUnlock()

	return r.operators[operatorKey{op: op, role: role}], nil
}

// ListOperators returns all the stored grants (including revoked ones).
func (r *Repository) ListOperators(ctx context.Context) ([]model.OperatorGrant, error) {
	r.operatorsMu.RLock()
	defer r.operatorsMu.RUnlock()

	grants := make([]model.OperatorGrant, 0, len(r.operators))
	for k, allowed := range r.operators {
		grants = append(grants, model.OperatorGrant{OperationID: k.op, RoleID: k.role, Allowed: allowed})
	}
	sort.Slice(grants, func(i, j int) bool {
		if grants[i].OperationID != grants[j].OperationID {
			return grants[i].OperationID.String() < grants[j].OperationID.String()
		}
		return grants[i].RoleID < grants[j].RoleID
	})

	return grants, nil
}

// CreateTask stores a new task with the next sequential ID.
func (r *Repository) CreateTask(ctx context.Context, t model.Task) (*model.Task, error) {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()

	r.lastTaskID++
	t = t.Clone()
	t.ID = r.lastTaskID
	t.EndDate = model.NormalizeEndDate(t.EndDate)
	t.Revision = 1
	r.tasks[t.ID] = t
	r.logger.Debugf("Created task in repository: %d", t.ID)

	// Return a copy.
	taskCopy := t.Clone()
	return &taskCopy, nil
}

// GetTask retrieves a task by ID.
func (r *Repository) GetTask(ctx context.Context, id model.TaskID) (*model.Task, error) {
	r.tasksMu.RLock()
	defer r.tasksMu.RUnlock()

	t, ok := r.tasks[id]
	if !ok {
		return nil, model.TaskNotFoundError{TaskID: id}
	}

	taskCopy := t.Clone()
	return &taskCopy, nil
}

// ListTasks returns the tasks ordered by ID.
func (r *Repository) ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error) {
	r.tasksMu.RLock()
	defer r.tasksMu.RUnlock()

	tasks := make([]model.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		tasks = append(tasks, t.Clone())
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })

	return tasks, nil
}

// UpdateTask replaces an existing task when the revision matches.
func (r *Repository) UpdateTask(ctx context.Context, t model.Task) error {
	r.tasksMu.Lock()
	defer r.tasksMu.Unlock()

	stored, ok := r.tasks[t.ID]
	if !ok {
		return model.TaskNotFoundError{TaskID: t.ID}
	}
	if stored.Revision != t.Revision {
		return fmt.Errorf("task %d revision %d, stored %d: %w", t.ID, t.Revision, stored.Revision, model.ErrConflict)
	}

	t = t.Clone()
	t.EndDate = model.NormalizeEndDate(t.EndDate)
	t.Revision++
	r.tasks[t.ID] = t
	r.logger.Debugf("Updated task in repository: %d", t.ID)

	return nil
}
