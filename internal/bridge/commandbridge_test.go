package bridge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"appdna/internal/auth"
	"appdna/internal/command"
	"appdna/internal/config"
	"appdna/internal/service"
)

func newCommandHarness(t *testing.T) (*CommandBridge, *service.ModelService, *command.Registry) {
	t.Helper()

	svc := newTestService(t, bridgeFixtureJSON)
	registry := command.NewRegistry(testLogger())
	hub := command.NewRefreshHub()
	command.RegisterBuiltins(registry, svc, hub)

	b := NewCommandBridge(registry, nil, "", 3002, testLogger())
	return b, svc, registry
}

func TestCommandHealth(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	w := doRequest(b.Handler(), http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	resp := decodeMap(t, w)
	if resp["status"] != "healthy" {
		t.Errorf("status = %v, want healthy", resp["status"])
	}
	if resp["bridge"] != "command" {
		t.Errorf("bridge = %v, want command", resp["bridge"])
	}
	if resp["port"] != float64(3002) {
		t.Errorf("port = %v, want 3002", resp["port"])
	}
	if _, ok := resp["modelLoaded"]; ok {
		t.Error("command bridge health should not report modelLoaded")
	}
}

func TestExecuteCommand(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"appdna.modelLoaded"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := decodeMap(t, w)
	if resp["success"] != true {
		t.Errorf("success = %v, want true", resp["success"])
	}
	if resp["command"] != "appdna.modelLoaded" {
		t.Errorf("command = %v, want appdna.modelLoaded", resp["command"])
	}
	if resp["result"] != true {
		t.Errorf("result = %v, want true", resp["result"])
	}
	if resp["message"] == "" || resp["message"] == nil {
		t.Error("message missing")
	}
}

func TestExecuteCommandWithArgs(t *testing.T) {
	b, _, registry := newCommandHarness(t)

	registry.Register("test.join", func(ctx context.Context, args []interface{}) (interface{}, error) {
		parts := make([]string, 0, len(args))
		for _, a := range args {
			parts = append(parts, a.(string))
		}
		return strings.Join(parts, "-"), nil
	})

	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"test.join","args":["a","b","c"]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp := decodeMap(t, w); resp["result"] != "a-b-c" {
		t.Errorf("result = %v, want a-b-c", resp["result"])
	}
}

func TestExecuteCommandSaveModel(t *testing.T) {
	b, svc, _ := newCommandHarness(t)
	svc.MarkUnsavedChanges()

	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"appdna.saveModel"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	result := decodeMap(t, w)["result"].(map[string]interface{})
	savedPath, _ := result["filePath"].(string)
	if savedPath != svc.GetCurrentFilePath() {
		t.Errorf("filePath = %q, want %q", savedPath, svc.GetCurrentFilePath())
	}
	if _, err := os.Stat(savedPath); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
	if svc.HasUnsavedChangesInMemory() {
		t.Error("unsaved changes flag still set after save command")
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"appdna.doesNotExist"}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	resp := decodeMap(t, w)
	if resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
	if msg, _ := resp["error"].(string); !strings.Contains(msg, "appdna.doesNotExist") {
		t.Errorf("error = %q, want mention of the command name", msg)
	}
}

func TestExecuteCommandMalformedBody(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	// The execute endpoint has a single failure contract: parse errors
	// surface like dispatch errors.
	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command", `{broken`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
	if resp := decodeMap(t, w); resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}
}

func TestExecuteCommandFailurePropagates(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	// saveModel with a bad argument type fails inside the handler; the
	// bridge reports 500 regardless of the underlying code.
	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"appdna.saveModel","args":[42]}`)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500, got %d", w.Code)
	}
}

func TestCommandPolicy(t *testing.T) {
	svc := newTestService(t, bridgeFixtureJSON)
	registry := command.NewRegistry(testLogger())
	command.RegisterBuiltins(registry, svc, command.NewRefreshHub())

	policy := &config.CommandPolicy{Allow: []string{command.CmdModelLoaded}}
	b := NewCommandBridge(registry, policy, "", 3002, testLogger())

	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"appdna.saveModel"}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403 for disallowed command, got %d", w.Code)
	}
	if resp := decodeMap(t, w); resp["success"] != false {
		t.Errorf("success = %v, want false", resp["success"])
	}

	w = doRequest(b.Handler(), http.MethodPost, "/api/execute-command",
		`{"command":"appdna.modelLoaded"}`)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for allowed command, got %d", w.Code)
	}
}

func TestCommandBridgeAuth(t *testing.T) {
	token, err := auth.GenerateToken()
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		t.Fatalf("HashToken failed: %v", err)
	}

	svc := newTestService(t, bridgeFixtureJSON)
	registry := command.NewRegistry(testLogger())
	command.RegisterBuiltins(registry, svc, command.NewRefreshHub())
	b := NewCommandBridge(registry, nil, hash, 3002, testLogger())

	body := `{"command":"appdna.modelLoaded"}`

	w := doRequest(b.Handler(), http.MethodPost, "/api/execute-command", body)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 without token, got %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/execute-command", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer appdna_tok_wrong")
	w = httptest.NewRecorder()
	b.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 with wrong token, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/execute-command", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	b.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 with valid token, got %d: %s", w.Code, w.Body.String())
	}

	// Health stays reachable without a token.
	w = doRequest(b.Handler(), http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 for unauthenticated health, got %d", w.Code)
	}
}

func TestCommandBridge404Contract(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	w := doRequest(b.Handler(), http.MethodGet, "/api/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
	resp := decodeMap(t, w)
	endpoints, ok := resp["availableEndpoints"].([]interface{})
	if !ok || len(endpoints) != 2 {
		t.Errorf("availableEndpoints = %v, want the two known endpoints", resp["availableEndpoints"])
	}

	w = doRequest(b.Handler(), http.MethodGet, "/api/execute-command", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for GET on execute-command, got %d", w.Code)
	}
}

func TestCommandBridgeOptions(t *testing.T) {
	b, _, _ := newCommandHarness(t)

	w := doRequest(b.Handler(), http.MethodOptions, "/api/execute-command", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("OPTIONS body = %q, want empty", w.Body.String())
	}
}
