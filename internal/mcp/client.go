package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"appdna/internal/model"
)

const defaultTimeout = 10 * time.Second

// Config locates the two bridges and carries the optional bearer token
// the command bridge may require.
type Config struct {
	DataBridgeURL    string
	CommandBridgeURL string
	Token            string
	Timeout          time.Duration
}

// Client is a thin HTTP client over the data and command bridges. It
// holds no bridge state; every tool call is a fresh request.
type Client struct {
	dataURL    string
	commandURL string
	token      string
	httpClient *http.Client
}

// NewClient builds a Client from cfg. Trailing slashes on the base URLs
// are trimmed so endpoint paths can be appended verbatim.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		dataURL:    strings.TrimRight(cfg.DataBridgeURL, "/"),
		commandURL: strings.TrimRight(cfg.CommandBridgeURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BridgeError is a non-2xx bridge response, decoded from the
// {"success":false,"error":...} envelope.
type BridgeError struct {
	StatusCode int
	Message    string
}

func (e *BridgeError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bridge returned status %d", e.StatusCode)
	}
	return e.Message
}

// HealthStatus is a bridge health body. ModelLoaded is only reported by
// the data bridge; the command bridge leaves it false.
type HealthStatus struct {
	Status      string `json:"status"`
	Bridge      string `json:"bridge"`
	Port        int    `json:"port"`
	ModelLoaded bool   `json:"modelLoaded"`
}

// DataObjectSummary mirrors the data bridge's object projection.
type DataObjectSummary struct {
	Name             string `json:"name"`
	IsLookup         bool   `json:"isLookup"`
	ParentObjectName string `json:"parentObjectName"`
	CodeDescription  string `json:"codeDescription"`
}

// CreateDataObjectRequest is the POST /api/data-objects payload.
type CreateDataObjectRequest struct {
	Name             string `json:"name"`
	ParentObjectName string `json:"parentObjectName,omitempty"`
	CodeDescription  string `json:"codeDescription,omitempty"`
	IsLookup         bool   `json:"isLookup"`
}

// RoleRequest is the POST /api/roles payload.
type RoleRequest struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName,omitempty"`
	Description string      `json:"description,omitempty"`
	IsActive    *model.Flag `json:"isActive,omitempty"`
}

// RoleUpdateRequest is the POST /api/roles/update payload. Nil fields
// are omitted so the bridge leaves them untouched.
type RoleUpdateRequest struct {
	Name        string      `json:"name"`
	DisplayName *string     `json:"displayName,omitempty"`
	Description *string     `json:"description,omitempty"`
	IsActive    *model.Flag `json:"isActive,omitempty"`
}

// LookupValueRequest is the POST /api/lookup-values payload.
type LookupValueRequest struct {
	LookupObjectName string      `json:"lookupObjectName"`
	Name             string      `json:"name"`
	DisplayName      string      `json:"displayName,omitempty"`
	Description      string      `json:"description,omitempty"`
	IsActive         *model.Flag `json:"isActive,omitempty"`
}

// LookupValueUpdateRequest is the POST /api/lookup-values/update
// payload. Nil fields are left untouched.
type LookupValueUpdateRequest struct {
	LookupObjectName string      `json:"lookupObjectName"`
	Name             string      `json:"name"`
	DisplayName      *string     `json:"displayName,omitempty"`
	Description      *string     `json:"description,omitempty"`
	IsActive         *model.Flag `json:"isActive,omitempty"`
}

// CommandResult is the command bridge's success envelope.
type CommandResult struct {
	Success bool            `json:"success"`
	Command string          `json:"command"`
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// DataHealth reports the data bridge's health endpoint.
func (c *Client) DataHealth(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, c.dataURL+"/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CommandHealth reports the command bridge's health endpoint.
func (c *Client) CommandHealth(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.do(ctx, http.MethodGet, c.commandURL+"/api/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDataObjects fetches the flat object projection across all
// namespaces.
func (c *Client) ListDataObjects(ctx context.Context) ([]DataObjectSummary, error) {
	var out []DataObjectSummary
	if err := c.do(ctx, http.MethodGet, c.dataURL+"/api/data-objects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateDataObject adds a data object and returns the created object,
// including any auto-generated foreign-key property.
func (c *Client) CreateDataObject(ctx context.Context, req CreateDataObjectRequest) (*model.DataObject, error) {
	var out struct {
		Object *model.DataObject `json:"object"`
	}
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/api/data-objects", req, &out); err != nil {
		return nil, err
	}
	return out.Object, nil
}

// ListRoles fetches the sorted role names inferred from the Role lookup
// object.
func (c *Client) ListRoles(ctx context.Context) ([]string, error) {
	var out []string
	if err := c.do(ctx, http.MethodGet, c.dataURL+"/api/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddRole adds a lookup item to the Role data object.
func (c *Client) AddRole(ctx context.Context, req RoleRequest) (*model.LookupItem, error) {
	var out struct {
		Role *model.LookupItem `json:"role"`
	}
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/api/roles", req, &out); err != nil {
		return nil, err
	}
	return out.Role, nil
}

// UpdateRole updates fields of an existing role lookup item.
func (c *Client) UpdateRole(ctx context.Context, req RoleUpdateRequest) (*model.LookupItem, error) {
	var out struct {
		Role *model.LookupItem `json:"role"`
	}
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/api/roles/update", req, &out); err != nil {
		return nil, err
	}
	return out.Role, nil
}

// ListLookupValues fetches the sorted lookup items of a lookup object.
func (c *Client) ListLookupValues(ctx context.Context, lookupObjectName string) ([]model.LookupItem, error) {
	endpoint := c.dataURL + "/api/lookup-values?lookupObjectName=" + url.QueryEscape(lookupObjectName)
	var out []model.LookupItem
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddLookupValue adds an item to a lookup object.
func (c *Client) AddLookupValue(ctx context.Context, req LookupValueRequest) (*model.LookupItem, error) {
	var out struct {
		Item *model.LookupItem `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/api/lookup-values", req, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

// UpdateLookupValue updates fields of an existing lookup item.
func (c *Client) UpdateLookupValue(ctx context.Context, req LookupValueUpdateRequest) (*model.LookupItem, error) {
	var out struct {
		Item *model.LookupItem `json:"item"`
	}
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/api/lookup-values/update", req, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

// ListUserStories fetches all user stories across namespaces.
func (c *Client) ListUserStories(ctx context.Context) ([]model.UserStory, error) {
	var out []model.UserStory
	if err := c.do(ctx, http.MethodGet, c.dataURL+"/api/user-stories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUserStory validates and adds a user story. Duplicate story text
// comes back as a BridgeError with status 409.
func (c *Client) CreateUserStory(ctx context.Context, storyText string) (*model.UserStory, error) {
	payload := map[string]string{"storyText": storyText}
	var out struct {
		Story *model.UserStory `json:"story"`
	}
	if err := c.do(ctx, http.MethodPost, c.dataURL+"/api/user-stories", payload, &out); err != nil {
		return nil, err
	}
	return out.Story, nil
}

// ExecuteCommand dispatches a named command through the command bridge.
func (c *Client) ExecuteCommand(ctx context.Context, command string, args []interface{}) (*CommandResult, error) {
	payload := map[string]interface{}{"command": command}
	if len(args) > 0 {
		payload["args"] = args
	}
	var out CommandResult
	if err := c.do(ctx, http.MethodPost, c.commandURL+"/api/execute-command", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// do runs one bridge request. Non-2xx responses are decoded into
// BridgeError; 2xx bodies are unmarshalled into out when out is
// non-nil.
func (c *Client) do(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &BridgeError{StatusCode: resp.StatusCode, Message: envelopeError(data)}
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// envelopeError pulls the message out of an error envelope, falling
// back to the raw body when the envelope shape is missing.
func envelopeError(data []byte) string {
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(data))
}
