package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"openkanban/internal/model"

	"github.com/google/uuid"
)

// ErrorBody is the JSON error envelope returned by the REST API.
type ErrorBody struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
	Hint    string `json:"hint,omitempty"`
}

// HTTP is the Gateway backed by the REST API served by cmd/server.
type HTTP struct {
	baseURL string
	client  *http.Client
}

func NewHTTP(baseURL string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (g *HTTP) GetBoard(ctx context.Context, slug string) (*model.Board, error) {
	var board model.Board
	status, err := g.do(ctx, "get board", http.MethodGet, "/api/slugs/"+url.PathEscape(slug)+"/board", nil, &board)
	if status == http.StatusNotFound && IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &board, nil
}

func (g *HTTP) CreateBoard(ctx context.Context, slug string) (*model.Board, error) {
	var board model.Board
	if _, err := g.do(ctx, "create board", http.MethodPost, "/api/boards", model.CreateBoardInput{Slug: slug}, &board); err != nil {
		return nil, err
	}
	return &board, nil
}

func (g *HTTP) DeleteBoard(ctx context.Context, id uuid.UUID) error {
	_, err := g.do(ctx, "delete board", http.MethodDelete, "/api/boards/"+id.String(), nil, nil)
	return err
}

func (g *HTTP) CreateColumn(ctx context.Context, in model.CreateColumnInput) (*model.Column, error) {
	var column model.Column
	if _, err := g.do(ctx, "create column", http.MethodPost, "/api/columns", in, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (g *HTTP) UpdateColumn(ctx context.Context, in model.UpdateColumnInput) (*model.Column, error) {
	var column model.Column
	if _, err := g.do(ctx, "update column", http.MethodPatch, "/api/columns/"+in.ID.String(), in, &column); err != nil {
		return nil, err
	}
	return &column, nil
}

func (g *HTTP) DeleteColumn(ctx context.Context, id uuid.UUID) error {
	_, err := g.do(ctx, "delete column", http.MethodDelete, "/api/columns/"+id.String(), nil, nil)
	return err
}

func (g *HTTP) BatchUpdateColumns(ctx context.Context, columns []model.Column) error {
	if len(columns) == 0 {
		return nil
	}
	_, err := g.do(ctx, "update column positions", http.MethodPut, "/api/columns/positions", DedupColumns(columns), nil)
	return err
}

func (g *HTTP) CreateTask(ctx context.Context, in model.CreateTaskInput) (*model.Task, error) {
	var task model.Task
	if _, err := g.do(ctx, "create task", http.MethodPost, "/api/tasks", in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (g *HTTP) UpdateTask(ctx context.Context, in model.UpdateTaskInput) (*model.Task, error) {
	var task model.Task
	if _, err := g.do(ctx, "update task", http.MethodPatch, "/api/tasks/"+in.ID.String(), in, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (g *HTTP) DeleteTask(ctx context.Context, id uuid.UUID) error {
	_, err := g.do(ctx, "delete task", http.MethodDelete, "/api/tasks/"+id.String(), nil, nil)
	return err
}

func (g *HTTP) BatchUpdateTasks(ctx context.Context, tasks []model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	_, err := g.do(ctx, "update task positions", http.MethodPut, "/api/tasks/positions", DedupTasks(tasks), nil)
	return err
}

func (g *HTTP) GetFullBoard(ctx context.Context, slug string) (*model.FullBoard, error) {
	var full model.FullBoard
	status, err := g.do(ctx, "get full board", http.MethodGet, "/api/slugs/"+url.PathEscape(slug)+"/full", nil, &full)
	if status == http.StatusNotFound && IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &full, nil
}

// do sends one request and decodes the response into out. The status code is
// returned even when err is non-nil so callers can treat 404 as absence.
func (g *HTTP) do(ctx context.Context, op, method, path string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return 0, wrapError(op, fmt.Errorf("failed to encode request: %w", err))
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, body)
	if err != nil {
		return 0, wrapError(op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, wrapError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return resp.StatusCode, decodeErrorBody(op, resp)
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, wrapError(op, fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return resp.StatusCode, nil
}

func decodeErrorBody(op string, resp *http.Response) error {
	se := &StoreError{Op: op}
	var eb ErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		se.Message, se.Code, se.Details, se.Hint = eb.Error, eb.Code, eb.Details, eb.Hint
	} else {
		se.Message = strings.TrimSpace(string(raw))
		if se.Message == "" {
			se.Message = resp.Status
		}
	}
	// A 404 means a missing row only when the API says so; a bare 404 is a
	// wrong base URL or route.
	if se.Code == "" && resp.StatusCode == http.StatusConflict {
		se.Code = CodeUniqueViolation
	}
	return se
}
