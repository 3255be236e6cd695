package todoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harrisonrobin/duewatch/pkg/model"
	"github.com/harrisonrobin/duewatch/pkg/validate"
	"github.com/sirupsen/logrus"
)

const (
	todosPath       = "/api/todos"
	userIDHeader    = "X-User-ID"
	requestIDHeader = "X-Request-ID"
)

var ErrUserRequired = errors.New("user id required")

// StatusError is returned when the backend answers with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// Client talks to the task backend. Every call is a single attempt.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewClient(baseURL string, httpClient *http.Client, timeout time.Duration, log logrus.FieldLogger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		timeout: timeout,
		log:     log.WithField("component", "todoapi"),
	}
}

// List fetches userID's tasks. It never fails: errors are logged and an
// empty slice is returned.
func (c *Client) List(ctx context.Context, userID string) []model.Task {
	var tasks []model.Task
	if err := c.do(ctx, http.MethodGet, todosPath, userID, nil, &tasks); err != nil {
		c.log.WithError(err).WithField("user_id", userID).Error("error fetching todos")
		return []model.Task{}
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return tasks
}

func (c *Client) Create(ctx context.Context, userID string, req model.CreateRequest) (*model.Task, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid task: %w", err)
	}
	req.DueDate = req.DueDate.UTC()

	var task model.Task
	if err := c.do(ctx, http.MethodPost, todosPath, userID, req, &task); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	return &task, nil
}

func (c *Client) Update(ctx context.Context, userID, id string, req model.UpdateRequest) (*model.Task, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("invalid update: %w", err)
	}
	if req.DueDate != nil {
		due := req.DueDate.UTC()
		req.DueDate = &due
	}

	var task model.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), userID, req, &task); err != nil {
		return nil, fmt.Errorf("failed to update todo %s: %w", id, err)
	}
	return &task, nil
}

func (c *Client) Delete(ctx context.Context, userID, id string) error {
	if err := c.do(ctx, http.MethodDelete, taskPath(id), userID, nil, nil); err != nil {
		return fmt.Errorf("failed to delete todo %s: %w", id, err)
	}
	return nil
}

func taskPath(id string) string {
	return todosPath + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path, userID string, body, out interface{}) error {
	if userID == "" {
		return ErrUserRequired
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(userIDHeader, userID)
	req.Header.Set(requestIDHeader, requestID)

	logEntry := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})
	logEntry.Debug("calling task backend")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	logEntry.WithField("status", resp.StatusCode).Debug("task backend responded")

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
