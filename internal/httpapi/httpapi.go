package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/slok/w3task/internal/app/operator"
	"github.com/slok/w3task/internal/app/role"
	"github.com/slok/w3task/internal/app/task"
	"github.com/slok/w3task/internal/log"
	"github.com/slok/w3task/internal/model"
)

// CallerHeader is the header carrying the verified address of the caller.
const CallerHeader = "X-Caller-Address"

// RoleService is the role registry used by the API.
type RoleService interface {
	SetAuthorization(ctx context.Context, req role.SetAuthorizationRequest) (*role.SetAuthorizationResponse, error)
	IsMember(ctx context.Context, roleID model.RoleID, addr model.Address) (bool, error)
	ListMembers(ctx context.Context, roleID model.RoleID) ([]model.Address, error)
}

// OperatorService is the operator registry used by the API.
type OperatorService interface {
	SetOperator(ctx context.Context, req operator.SetOperatorRequest) (*operator.SetOperatorResponse, error)
	IsOperator(ctx context.Context, op model.OperationID, roleID model.RoleID) (bool, error)
	ListOperators(ctx context.Context) ([]model.OperatorGrant, error)
}

// TaskService is the task store and lifecycle used by the API.
type TaskService interface {
	CreateTask(ctx context.Context, req task.CreateTaskRequest) (*task.TaskResponse, error)
	GetTask(ctx context.Context, id model.TaskID) (*model.Task, error)
	ListTasks(ctx context.Context, filter model.TaskFilter) ([]model.Task, error)
	SetTitle(ctx context.Context, req task.TaskRequest, title string) (*task.TaskResponse, error)
	SetDescription(ctx context.Context, req task.TaskRequest, description string) (*task.TaskResponse, error)
	SetEndDate(ctx context.Context, req task.TaskRequest, endDate time.Time) (*task.TaskResponse, error)
	SetMetadata(ctx context.Context, req task.TaskRequest, metadata string) (*task.TaskResponse, error)
	StartTask(ctx context.Context, req task.TaskRequest) (*task.TaskResponse, error)
	ReviewTask(ctx context.Context, req task.TaskRequest) (*task.TaskResponse, error)
	CompleteTask(ctx context.Context, req task.TaskRequest) (*task.TaskResponse, error)
	CancelTask(ctx context.Context, req task.TaskRequest) (*task.TaskResponse, error)
}

// HandlerConfig is the configuration for the HTTP API handler.
type HandlerConfig struct {
	Roles     RoleService
	Operators OperatorService
	Tasks     TaskService
	Logger    log.Logger
}

func (c *HandlerConfig) defaults() error {
	if c.Roles == nil {
		return fmt.Errorf("role service is required")
	}

	if c.Operators == nil {
		return fmt.Errorf("operator service is required")
	}

	if c.Tasks == nil {
		return fmt.Errorf("task service is required")
	}

	if c.Logger == nil {
		c.Logger = log.Noop
	}
	c.Logger = c.Logger.WithValues(log.Kv{"svc": "httpapi.Handler"})

	return nil
}

type handler struct {
	roles     RoleService
	operators OperatorService
	tasks     TaskService
	logger    log.Logger
}

// NewHandler returns the HTTP API handler.
func NewHandler(cfg HandlerConfig) (http.Handler, error) {
	if err := cfg.defaults(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	h := handler{
		roles:     cfg.Roles,
		operators: cfg.Operators,
		tasks:     cfg.Tasks,
		logger:    cfg.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/roles/{roleID}/members", func(r chi.Router) {
		r.Get("/", h.listMembers)
		r.Get("/{address}", h.isMember)
		r.Put("/{address}", h.setMember)
	})

	r.Route("/operators", func(r chi.Router) {
		r.Get("/", h.listOperators)
		r.Get("/{operation}/roles/{roleID}", h.isOperator)
		r.Put("/{operation}/roles/{roleID}", h.setOperator)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.listTasks)
		r.Post("/", h.createTask)
		r.Get("/{taskID}", h.getTask)
		r.Put("/{taskID}/{op}", h.setTaskField)
		r.Post("/{taskID}/{op}", h.taskAction)
	})

	return r, nil
}

func (h handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debugf("%s %s %d (%s)", r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}

// Roles.

type setAllowedRequest struct {
	Allowed bool `json:"allowed"`
}

func (h handler) setMember(w http.ResponseWriter, r *http.Request) {
	roleID, err := model.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req setAllowedRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.roles.SetAuthorization(r.Context(), role.SetAuthorizationRequest{
		Caller:   callerFrom(r),
		RoleID:   roleID,
		Address:  model.NormalizeAddress(chi.URLParam(r, "address")),
		IsMember: req.Allowed,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: mapEvents(resp.Events)})
}

func (h handler) isMember(w http.ResponseWriter, r *http.Request) {
	roleID, err := model.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	ok, err := h.roles.IsMember(r.Context(), roleID, model.NormalizeAddress(chi.URLParam(r, "address")))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"member": ok})
}

func (h handler) listMembers(w http.ResponseWriter, r *http.Request) {
	roleID, err := model.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	members, err := h.roles.ListMembers(r.Context(), roleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]string, 0, len(members))
	for _, m := range members {
		out = append(out, string(m))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"members": out})
}

// Operators.

func (h handler) setOperator(w http.ResponseWriter, r *http.Request) {
	op, roleID, err := operatorParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req setAllowedRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.operators.SetOperator(r.Context(), operator.SetOperatorRequest{
		Caller:      callerFrom(r),
		OperationID: op,
		RoleID:      roleID,
		Allowed:     req.Allowed,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, eventsResponse{Events: mapEvents(resp.Events)})
}

func (h handler) isOperator(w http.ResponseWriter, r *http.Request) {
	op, roleID, err := operatorParams(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ok, err := h.operators.IsOperator(r.Context(), op, roleID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"operator": ok})
}

type operatorJSON struct {
	Operation   string `json:"operation"`
	OperationID string `json:"operationId"`
	Role        uint64 `json:"role"`
	Allowed     bool   `json:"allowed"`
}

func (h handler) listOperators(w http.ResponseWriter, r *http.Request) {
	grants, err := h.operators.ListOperators(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]operatorJSON, 0, len(grants))
	for _, g := range grants {
		out = append(out, operatorJSON{
			Operation:   model.OperationName(g.OperationID),
			OperationID: g.OperationID.String(),
			Role:        uint64(g.RoleID),
			Allowed:     g.Allowed,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]operatorJSON{"operators": out})
}

func operatorParams(r *http.Request) (model.OperationID, model.RoleID, error) {
	op, err := model.ResolveOperationID(chi.URLParam(r, "operation"))
	if err != nil {
		return model.OperationID{}, 0, err
	}

	roleID, err := model.ParseRoleID(chi.URLParam(r, "roleID"))
	if err != nil {
		return model.OperationID{}, 0, err
	}

	return op, roleID, nil
}

// Tasks.

type createTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Reward      string   `json:"reward"`
	EndDate     string   `json:"endDate"`
	Authorized  []uint64 `json:"authorized"`
	Creator     uint64   `json:"creator"`
	Assignee    string   `json:"assignee"`
	Metadata    string   `json:"metadata"`
}

func (h handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	reward := new(big.Int)
	if req.Reward != "" {
		if _, ok := reward.SetString(req.Reward, 10); !ok {
			h.writeError(w, fmt.Errorf("invalid reward %q: %w", req.Reward, model.ErrNotValid))
			return
		}
	}

	endDate, err := model.ParseEndDate(req.EndDate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	authorized := make([]model.RoleID, 0, len(req.Authorized))
	for _, a := range req.Authorized {
		authorized = append(authorized, model.RoleID(a))
	}

	resp, err := h.tasks.CreateTask(r.Context(), task.CreateTaskRequest{
		Caller:      callerFrom(r),
		Title:       req.Title,
		Description: req.Description,
		Reward:      reward,
		EndDate:     endDate,
		Authorized:  authorized,
		Creator:     model.RoleID(req.Creator),
		Assignee:    model.NormalizeAddress(req.Assignee),
		Metadata:    req.Metadata,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapTaskResponse(resp))
}

func (h handler) getTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	t, err := h.tasks.GetTask(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapTask(*t))
}

func (h handler) listTasks(w http.ResponseWriter, r *http.Request) {
	var filter model.TaskFilter
	if s := r.URL.Query().Get("status"); s != "" {
		status, err := model.ParseTaskStatus(s)
		if err != nil {
			h.writeError(w, err)
			return
		}
		filter.Status = &status
	}

	ts, err := h.tasks.ListTasks(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]taskJSON, 0, len(ts))
	for _, t := range ts {
		out = append(out, mapTask(t))
	}
	writeJSON(w, http.StatusOK, map[string][]taskJSON{"tasks": out})
}

type taskOpRequest struct {
	Role  uint64 `json:"role"`
	Value string `json:"value"`
}

func (h handler) setTaskField(w http.ResponseWriter, r *http.Request) {
	req, body, err := taskRequestFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	var resp *task.TaskResponse
	switch chi.URLParam(r, "op") {
	case "title":
		resp, err = h.tasks.SetTitle(ctx, req, body.Value)
	case "description":
		resp, err = h.tasks.SetDescription(ctx, req, body.Value)
	case "metadata":
		resp, err = h.tasks.SetMetadata(ctx, req, body.Value)
	case "end-date":
		endDate, perr := model.ParseEndDate(body.Value)
		if perr != nil {
			h.writeError(w, perr)
			return
		}
		resp, err = h.tasks.SetEndDate(ctx, req, endDate)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapTaskResponse(resp))
}

func (h handler) taskAction(w http.ResponseWriter, r *http.Request) {
	req, _, err := taskRequestFrom(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx := r.Context()
	var resp *task.TaskResponse
	switch chi.URLParam(r, "op") {
	case "start":
		resp, err = h.tasks.StartTask(ctx, req)
	case "review":
		resp, err = h.tasks.ReviewTask(ctx, req)
	case "complete":
		resp, err = h.tasks.CompleteTask(ctx, req)
	case "cancel":
		resp, err = h.tasks.CancelTask(ctx, req)
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapTaskResponse(resp))
}

func taskRequestFrom(r *http.Request) (task.TaskRequest, taskOpRequest, error) {
	id, err := parseTaskID(chi.URLParam(r, "taskID"))
	if err != nil {
		return task.TaskRequest{}, taskOpRequest{}, err
	}

	var body taskOpRequest
	if err := decodeBody(r, &body); err != nil {
		return task.TaskRequest{}, taskOpRequest{}, err
	}

	return task.TaskRequest{
		Caller: callerFrom(r),
		TaskID: id,
		RoleID: model.RoleID(body.Role),
	}, body, nil
}

func parseTaskID(s string) (model.TaskID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid task id %q: %w", s, model.ErrNotValid)
	}
	return model.TaskID(id), nil
}

// Helpers.

func callerFrom(r *http.Request) model.Address {
	return model.NormalizeAddress(r.Header.Get(CallerHeader))
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}

	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("invalid body: %w", model.ErrNotValid)
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Errorf("request failed: %s", err)
	}

	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidAuthID), errors.Is(err, model.ErrNotValid):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrNotConcluded), errors.Is(err, model.ErrInvalidTransition), errors.Is(err, model.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
