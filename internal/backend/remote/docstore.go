package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"taskflow/internal/errors"
	"taskflow/internal/task"
)

// listResponse is the wire shape of a task collection, shared by the
// one-shot fetch and the watch channel frames.
type listResponse struct {
	Tasks []task.Task `json:"tasks"`
}

// LoadTasks fetches the owner's tasks in one shot. The adapter re-sorts
// so ordering holds regardless of server behavior.
func (c *Client) LoadTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	var out listResponse
	err := c.doJSON(ctx, http.MethodGet, c.ownerTasksURL(ownerID), nil, &out, http.StatusOK)
	if err != nil {
		return nil, err
	}
	task.SortByCreatedAtDesc(out.Tasks)
	return out.Tasks, nil
}

// CreateTask persists a new task. The server assigns id and createdAt and
// echoes the full document back.
func (c *Client) CreateTask(ctx context.Context, ownerID string, draft task.Draft) (task.Task, error) {
	body := map[string]any{
		"title":       draft.Title,
		"description": draft.Description,
		"completed":   false,
	}
	var created task.Task
	err := c.doJSON(ctx, http.MethodPost, c.ownerTasksURL(ownerID), body, &created, http.StatusCreated)
	if err != nil {
		return task.Task{}, err
	}
	return created, nil
}

// UpdateTask sends only the supplied patch fields; the server leaves the
// rest untouched.
func (c *Client) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	if patch.IsEmpty() {
		return nil
	}
	body := map[string]any{}
	if patch.Title != nil {
		body["title"] = *patch.Title
	}
	if patch.Description != nil {
		body["description"] = *patch.Description
	}
	if patch.Completed != nil {
		body["completed"] = *patch.Completed
	}
	return c.doJSON(ctx, http.MethodPatch, c.taskURL(id), body, nil, http.StatusOK)
}

// DeleteTask removes a task. A 404 from the server means the task is
// already gone, which callers treat as success.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	err := c.doJSON(ctx, http.MethodDelete, c.taskURL(id), nil, nil, http.StatusNoContent)
	if errors.IsErrorType(err, errors.ErrorTypeNotFound) {
		return nil
	}
	return err
}

// createUserProfile writes the user document the provider keeps alongside
// auth accounts.
func (c *Client) createUserProfile(ctx context.Context, user task.User) error {
	body := map[string]any{
		"id":    user.ID,
		"name":  user.DisplayName,
		"email": user.Email,
	}
	return c.doJSON(ctx, http.MethodPost, c.baseURL+"/v1/users", body, nil, http.StatusCreated)
}

func (c *Client) ownerTasksURL(ownerID string) string {
	return c.baseURL + "/v1/owners/" + url.PathEscape(ownerID) + "/tasks"
}

func (c *Client) taskURL(id string) string {
	return c.baseURL + "/v1/tasks/" + url.PathEscape(id)
}

// doJSON runs one authorized document store call with the standard
// timeout, decoding the response into out when non-nil.
func (c *Client) doJSON(ctx context.Context, method, rawurl string, body, out any, wantStatus int) error {
	httpc, err := c.authorizedClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.NewBackendError(method+" "+rawurl, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawurl, reader)
	if err != nil {
		return errors.NewBackendError(method+" "+rawurl, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpc.Do(req)
	if err != nil {
		return errors.NewBackendError(method+" "+rawurl, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return statusError(resp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.NewBackendError("decode response", err)
		}
	}
	return nil
}

// statusError maps document store status codes to the error taxonomy.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.NewAuthError("session expired (run: taskflow login)", nil)
	case http.StatusNotFound:
		return errors.NewNotFoundError("document", resp.Request.URL.Path)
	default:
		return errors.NewBackendError(
			fmt.Sprintf("%s %s", resp.Request.Method, resp.Request.URL.Path),
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
