package mcp

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	mcpgo "github.com/mark3labs/mcp-go/mcp"

	"appdna/internal/bridge"
	"appdna/internal/command"
	"appdna/internal/config"
	"appdna/internal/logging"
	"appdna/internal/service"
	"appdna/internal/storage"
)

const toolFixtureJSON = `{
  "root": {
    "name": "DemoApp",
    "namespace": [
      {
        "name": "Default",
        "object": [
          {
            "name": "Role",
            "isLookup": "true",
            "lookupItem": [
              {"name": "User", "displayName": "User"},
              {"name": "Admin", "displayName": "Admin"}
            ]
          },
          {
            "name": "Customer",
            "codeDescription": "A customer record",
            "prop": [{"name": "FirstName", "sqlServerDBDataType": "nvarchar"}]
          }
        ],
        "userStory": [
          {"name": "story-1", "storyText": "As a User, I want to view all Customer records"}
        ]
      },
      {
        "name": "Sales",
        "object": [
          {"name": "Order", "parentObjectName": "Customer"}
        ]
      }
    ]
  }
}`

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.JSONFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

// newBridgeHarness stands up real data and command bridges on httptest
// servers and returns a client pointed at them, plus the backing
// service and the loaded model path.
func newBridgeHarness(t *testing.T) (*Client, *service.ModelService, string) {
	t.Helper()

	logger := testLogger()
	cfg := config.DefaultConfig()
	cfg.Backup.Enabled = false

	svc, err := service.New(storage.NewProvider(logger), nil, cfg, logger)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "app-dna.json")
	if err := os.WriteFile(path, []byte(toolFixtureJSON), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := svc.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	registry := command.NewRegistry(logger)
	hub := command.NewRefreshHub()
	command.RegisterBuiltins(registry, svc, hub)

	dataSrv := httptest.NewServer(bridge.NewDataBridge(svc, nil, 3001, logger).Handler())
	t.Cleanup(dataSrv.Close)

	cmdSrv := httptest.NewServer(bridge.NewCommandBridge(registry, nil, "", 3002, logger).Handler())
	t.Cleanup(cmdSrv.Close)

	client := NewClient(Config{DataBridgeURL: dataSrv.URL, CommandBridgeURL: cmdSrv.URL})
	return client, svc, path
}

func newRequest(args map[string]interface{}) mcpgo.CallToolRequest {
	req := mcpgo.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// isErrorResult checks if the result is a tool error.
func isErrorResult(result *mcpgo.CallToolResult) bool {
	return result != nil && result.IsError
}

// getResultText extracts the text content from a CallToolResult.
func getResultText(result *mcpgo.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}
	for _, c := range result.Content {
		if tc, ok := c.(mcpgo.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// trailingJSON returns the JSON document after a mutation tool's
// confirmation line.
func trailingJSON(t *testing.T, text string) string {
	t.Helper()
	_, payload, found := strings.Cut(text, "\n\n")
	if !found {
		t.Fatalf("result has no JSON payload: %q", text)
	}
	return payload
}

// --- ListDataObjectsTool ---

func TestListDataObjectsTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewListDataObjectsTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	var objects []DataObjectSummary
	if err := json.Unmarshal([]byte(getResultText(result)), &objects); err != nil {
		t.Fatalf("result is not a JSON array: %v", err)
	}
	if len(objects) != 3 {
		t.Fatalf("got %d objects, want 3", len(objects))
	}

	byName := map[string]DataObjectSummary{}
	for _, o := range objects {
		byName[o.Name] = o
	}
	if !byName["Role"].IsLookup {
		t.Error("Role should be a lookup object")
	}
	if byName["Order"].ParentObjectName != "Customer" {
		t.Errorf("Order parent = %q, want Customer", byName["Order"].ParentObjectName)
	}
}

// --- CreateDataObjectTool ---

func TestCreateDataObjectTool(t *testing.T) {
	client, svc, _ := newBridgeHarness(t)
	tool := NewCreateDataObjectTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name":               "Invoice",
		"parent_object_name": "Customer",
		"code_description":   "An issued invoice",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, `Created data object "Invoice".`) {
		t.Errorf("missing confirmation line: %s", text)
	}
	if !strings.Contains(text, "CustomerID") {
		t.Error("created object should carry the auto-generated foreign-key property")
	}

	if svc.GetObject("Invoice") == nil {
		t.Error("Invoice should be queryable through the service")
	}
	if !svc.HasUnsavedChangesInMemory() {
		t.Error("mutation should mark the model dirty")
	}
}

func TestCreateDataObjectToolMissingName(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewCreateDataObjectTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("should return error when name is missing")
	}
	if !strings.Contains(getResultText(result), "'name' is required") {
		t.Errorf("error text = %s", getResultText(result))
	}
}

func TestCreateDataObjectToolDuplicate(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewCreateDataObjectTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name": "customer",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("duplicate name should surface as a tool error")
	}
	if !strings.Contains(getResultText(result), "already exists") {
		t.Errorf("error should mention the duplicate: %s", getResultText(result))
	}
}

func TestCreateDataObjectToolLookupSeeding(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewCreateDataObjectTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name":      "OrderStatus",
		"is_lookup": true,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "Unknown") {
		t.Error("new lookup object should be seeded with an Unknown item")
	}
}

// --- ListRolesTool ---

func TestListRolesTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewListRolesTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	var roles []string
	if err := json.Unmarshal([]byte(getResultText(result)), &roles); err != nil {
		t.Fatalf("result is not a JSON array: %v", err)
	}
	want := []string{"Admin", "User"}
	if len(roles) != len(want) || roles[0] != want[0] || roles[1] != want[1] {
		t.Errorf("roles = %v, want %v", roles, want)
	}
}

// --- AddRoleTool ---

func TestAddRoleTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewAddRoleTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name": "Manager",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, `Added role "Manager".`) {
		t.Errorf("missing confirmation line: %s", text)
	}
	if !strings.Contains(text, `"isActive": "true"`) {
		t.Error("role should default to active")
	}

	roles, err := client.ListRoles(context.Background())
	if err != nil {
		t.Fatalf("ListRoles: %v", err)
	}
	if len(roles) != 3 {
		t.Errorf("got %d roles, want 3", len(roles))
	}
}

func TestAddRoleToolDuplicate(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewAddRoleTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name": "ADMIN",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("case-insensitive duplicate should surface as a tool error")
	}
}

// --- UpdateRoleTool ---

func TestUpdateRoleTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewUpdateRoleTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name":         "Admin",
		"display_name": "Administrator",
		"is_active":    false,
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	payload := trailingJSON(t, getResultText(result))
	var role struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
		IsActive    string `json:"isActive"`
	}
	if err := json.Unmarshal([]byte(payload), &role); err != nil {
		t.Fatalf("decode role: %v", err)
	}
	if role.DisplayName != "Administrator" {
		t.Errorf("displayName = %q, want Administrator", role.DisplayName)
	}
	if role.IsActive != "false" {
		t.Errorf("isActive = %q, want false", role.IsActive)
	}
}

func TestUpdateRoleToolNotFound(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewUpdateRoleTool(client)

	// Role names match exactly on update; "admin" is not "Admin".
	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"name":         "admin",
		"display_name": "Administrator",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("unknown role should surface as a tool error")
	}
	if !strings.Contains(getResultText(result), "not found") {
		t.Errorf("error text = %s", getResultText(result))
	}
}

// --- ListLookupValuesTool ---

func TestListLookupValuesTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewListLookupValuesTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"lookup_object_name": "role",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	var items []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal([]byte(getResultText(result)), &items); err != nil {
		t.Fatalf("result is not a JSON array: %v", err)
	}
	if len(items) != 2 || items[0].Name != "Admin" || items[1].Name != "User" {
		t.Errorf("items = %v, want sorted Admin, User", items)
	}
}

func TestListLookupValuesToolMissingArg(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewListLookupValuesTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("should return error when lookup_object_name is missing")
	}
}

func TestListLookupValuesToolNotLookup(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewListLookupValuesTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"lookup_object_name": "Customer",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("non-lookup object should surface as a tool error")
	}
}

// --- AddLookupValueTool ---

func TestAddLookupValueTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewAddLookupValueTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"lookup_object_name": "Role",
		"name":               "Auditor",
		"description":        "Read-only reviewer",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), `Added lookup item "Auditor" to "Role".`) {
		t.Errorf("missing confirmation line: %s", getResultText(result))
	}

	items, err := client.ListLookupValues(context.Background(), "Role")
	if err != nil {
		t.Fatalf("ListLookupValues: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("got %d items, want 3", len(items))
	}
}

func TestAddLookupValueToolMissingObject(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewAddLookupValueTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"lookup_object_name": "Ghost",
		"name":               "Anything",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("missing object should surface as a tool error")
	}
}

// --- UpdateLookupValueTool ---

func TestUpdateLookupValueTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewUpdateLookupValueTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"lookup_object_name": "Role",
		"name":               "User",
		"display_name":       "Standard User",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	payload := trailingJSON(t, getResultText(result))
	var item struct {
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		t.Fatalf("decode item: %v", err)
	}
	if item.DisplayName != "Standard User" {
		t.Errorf("displayName = %q, want Standard User", item.DisplayName)
	}
}

func TestUpdateLookupValueToolItemNotFound(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewUpdateLookupValueTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"lookup_object_name": "Role",
		"name":               "Ghost",
		"display_name":       "Nope",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("missing item should surface as a tool error")
	}
}

// --- ListUserStoriesTool ---

func TestListUserStoriesTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewListUserStoriesTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	var stories []struct {
		Name      string `json:"name"`
		StoryText string `json:"storyText"`
	}
	if err := json.Unmarshal([]byte(getResultText(result)), &stories); err != nil {
		t.Fatalf("result is not a JSON array: %v", err)
	}
	if len(stories) != 1 || stories[0].Name != "story-1" {
		t.Errorf("stories = %v", stories)
	}
}

// --- CreateUserStoryTool ---

func TestCreateUserStoryTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewCreateUserStoryTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"story_text": "As a Admin, I want to update all Order records",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}
	if !strings.Contains(getResultText(result), "Created user story") {
		t.Errorf("missing confirmation line: %s", getResultText(result))
	}

	stories, err := client.ListUserStories(context.Background())
	if err != nil {
		t.Fatalf("ListUserStories: %v", err)
	}
	if len(stories) != 2 {
		t.Errorf("got %d stories, want 2", len(stories))
	}
}

func TestCreateUserStoryToolDuplicate(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewCreateUserStoryTool(client)

	args := map[string]interface{}{
		"story_text": "As a Admin, I want to update all Order records",
	}
	if result, err := tool.Handle(context.Background(), newRequest(args)); err != nil || isErrorResult(result) {
		t.Fatalf("first create failed: err=%v result=%s", err, getResultText(result))
	}

	result, err := tool.Handle(context.Background(), newRequest(args))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("duplicate story should surface as a tool error")
	}
	if !strings.Contains(getResultText(result), "already exists") {
		t.Errorf("error text = %s", getResultText(result))
	}
}

func TestCreateUserStoryToolInvalidFormat(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewCreateUserStoryTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"story_text": "Please add reporting",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("malformed story text should surface as a tool error")
	}
}

// --- ModelStatusTool ---

func TestModelStatusTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewModelStatusTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, "**Data bridge:** healthy (port 3001)") {
		t.Errorf("missing data bridge line: %s", text)
	}
	if !strings.Contains(text, "**Model loaded:** true") {
		t.Errorf("missing model loaded line: %s", text)
	}
	if !strings.Contains(text, "**Command bridge:** healthy (port 3002)") {
		t.Errorf("missing command bridge line: %s", text)
	}
}

func TestModelStatusToolBridgesDown(t *testing.T) {
	client := NewClient(Config{
		DataBridgeURL:    "http://127.0.0.1:1",
		CommandBridgeURL: "http://127.0.0.1:1",
		Timeout:          time.Second,
	})
	tool := NewModelStatusTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatal("status tool should report outages as text, not fail")
	}

	text := getResultText(result)
	if !strings.Contains(text, "**Data bridge:** unreachable") {
		t.Errorf("missing data bridge outage: %s", text)
	}
	if !strings.Contains(text, "**Command bridge:** unreachable") {
		t.Errorf("missing command bridge outage: %s", text)
	}
}

// --- ExecuteCommandTool ---

func TestExecuteCommandTool(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewExecuteCommandTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"command": "appdna.modelLoaded",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	text := getResultText(result)
	if !strings.Contains(text, `command "appdna.modelLoaded" executed`) {
		t.Errorf("missing message: %s", text)
	}
	if !strings.Contains(text, "true") {
		t.Errorf("missing result payload: %s", text)
	}
}

func TestExecuteCommandToolSaveModelWithArgs(t *testing.T) {
	client, svc, path := newBridgeHarness(t)
	tool := NewExecuteCommandTool(client)

	target := filepath.Join(filepath.Dir(path), "copy.json")
	argsJSON, err := json.Marshal([]string{target})
	if err != nil {
		t.Fatalf("marshal args: %v", err)
	}

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"command": "appdna.saveModel",
		"args":    string(argsJSON),
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if isErrorResult(result) {
		t.Fatalf("expected success, got error: %s", getResultText(result))
	}

	if _, err := os.Stat(target); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	if svc.HasUnsavedChangesInMemory() {
		t.Error("save should clear the dirty flag")
	}
}

func TestExecuteCommandToolBadArgsJSON(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewExecuteCommandTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"command": "appdna.refresh",
		"args":    "not json",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("malformed args should surface as a tool error")
	}
	if !strings.Contains(getResultText(result), "'args' must be a JSON array") {
		t.Errorf("error text = %s", getResultText(result))
	}
}

func TestExecuteCommandToolUnknownCommand(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewExecuteCommandTool(client)

	result, err := tool.Handle(context.Background(), newRequest(map[string]interface{}{
		"command": "appdna.doesNotExist",
	}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("unknown command should surface as a tool error")
	}
	if !strings.Contains(getResultText(result), "appdna.doesNotExist") {
		t.Errorf("error should name the command: %s", getResultText(result))
	}
}

func TestExecuteCommandToolMissingCommand(t *testing.T) {
	client, _, _ := newBridgeHarness(t)
	tool := NewExecuteCommandTool(client)

	result, err := tool.Handle(context.Background(), newRequest(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if !isErrorResult(result) {
		t.Fatal("should return error when command is missing")
	}
}
