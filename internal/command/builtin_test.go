package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"appdna/internal/config"
	"appdna/internal/errors"
	"appdna/internal/service"
	"appdna/internal/storage"
)

const builtinFixtureJSON = `{
  "root": {
    "name": "CmdApp",
    "namespace": [
      {
        "name": "Default",
        "object": [
          {"name": "Role", "isLookup": "true", "lookupItem": [{"name": "User"}]}
        ]
      }
    ]
  }
}`

func newBuiltinHarness(t *testing.T) (*Registry, *service.ModelService, *RefreshHub, string) {
	t.Helper()

	logger := testLogger()
	path := filepath.Join(t.TempDir(), "app-dna.json")
	if err := os.WriteFile(path, []byte(builtinFixtureJSON), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Backup.Enabled = false
	svc, err := service.New(storage.NewProvider(logger), nil, cfg, logger)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}

	registry := NewRegistry(logger)
	hub := NewRefreshHub()
	RegisterBuiltins(registry, svc, hub)
	return registry, svc, hub, path
}

func TestBuiltinNames(t *testing.T) {
	registry, _, _, _ := newBuiltinHarness(t)

	for _, name := range []string{CmdRefresh, CmdSaveModel, CmdModelLoaded, CmdHasUnsavedChanges} {
		if !registry.Has(name) {
			t.Errorf("built-in %s not registered", name)
		}
	}
}

func TestBuiltinRefresh(t *testing.T) {
	registry, _, hub, _ := newBuiltinHarness(t)

	var calls int
	hub.OnRefresh(func() { calls++ })

	result, err := registry.Execute(context.Background(), CmdRefresh)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("listener calls = %d, want 1", calls)
	}
	payload, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type = %T, want map", result)
	}
	if payload["listeners"] != 1 {
		t.Errorf("listeners = %v, want 1", payload["listeners"])
	}
}

func TestBuiltinModelLoaded(t *testing.T) {
	registry, svc, _, path := newBuiltinHarness(t)

	result, err := registry.Execute(context.Background(), CmdModelLoaded)
	if err != nil {
		t.Fatalf("modelLoaded failed: %v", err)
	}
	if result != false {
		t.Errorf("modelLoaded before load = %v, want false", result)
	}

	if _, err := svc.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	result, err = registry.Execute(context.Background(), CmdModelLoaded)
	if err != nil {
		t.Fatalf("modelLoaded failed: %v", err)
	}
	if result != true {
		t.Errorf("modelLoaded after load = %v, want true", result)
	}
}

func TestBuiltinHasUnsavedChanges(t *testing.T) {
	registry, svc, _, path := newBuiltinHarness(t)
	if _, err := svc.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	result, err := registry.Execute(context.Background(), CmdHasUnsavedChanges)
	if err != nil {
		t.Fatalf("hasUnsavedChanges failed: %v", err)
	}
	if result != false {
		t.Errorf("hasUnsavedChanges after load = %v, want false", result)
	}

	svc.MarkUnsavedChanges()

	result, err = registry.Execute(context.Background(), CmdHasUnsavedChanges)
	if err != nil {
		t.Fatalf("hasUnsavedChanges failed: %v", err)
	}
	if result != true {
		t.Errorf("hasUnsavedChanges after mark = %v, want true", result)
	}
}

func TestBuiltinSaveModel(t *testing.T) {
	registry, svc, _, path := newBuiltinHarness(t)
	if _, err := svc.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	svc.MarkUnsavedChanges()

	result, err := registry.Execute(context.Background(), CmdSaveModel)
	if err != nil {
		t.Fatalf("saveModel failed: %v", err)
	}
	payload, ok := result.(map[string]interface{})
	if !ok {
		t.Fatalf("result type = %T, want map", result)
	}
	if payload["filePath"] != path {
		t.Errorf("filePath = %v, want %s", payload["filePath"], path)
	}
	if svc.HasUnsavedChangesInMemory() {
		t.Error("unsaved changes flag still set after save")
	}
}

func TestBuiltinSaveModelExplicitPath(t *testing.T) {
	registry, svc, _, path := newBuiltinHarness(t)
	if _, err := svc.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	target := filepath.Join(t.TempDir(), "copy.json")
	result, err := registry.Execute(context.Background(), CmdSaveModel, target)
	if err != nil {
		t.Fatalf("saveModel failed: %v", err)
	}
	if result.(map[string]interface{})["filePath"] != target {
		t.Errorf("filePath = %v, want %s", result, target)
	}
	if _, err := os.Stat(target); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestBuiltinSaveModelBadArg(t *testing.T) {
	registry, svc, _, path := newBuiltinHarness(t)
	if _, err := svc.LoadFile(path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	_, err := registry.Execute(context.Background(), CmdSaveModel, 42)
	if !errors.Is(err, errors.InvalidRequest) {
		t.Errorf("code = %s, want INVALID_REQUEST", errors.CodeOf(err))
	}
}

func TestBuiltinSaveModelWithoutModel(t *testing.T) {
	registry, _, _, _ := newBuiltinHarness(t)

	_, err := registry.Execute(context.Background(), CmdSaveModel)
	if !errors.Is(err, errors.InvalidRequest) {
		t.Errorf("code = %s, want INVALID_REQUEST", errors.CodeOf(err))
	}
}
