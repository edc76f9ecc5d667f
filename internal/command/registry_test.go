package command

import (
	"context"
	"io"
	"reflect"
	"testing"

	"appdna/internal/errors"
	"appdna/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
		Output: io.Discard,
	})
}

func TestRegisterAndExecute(t *testing.T) {
	registry := NewRegistry(testLogger())

	registry.Register("test.echo", func(ctx context.Context, args []interface{}) (interface{}, error) {
		return args, nil
	})

	result, err := registry.Execute(context.Background(), "test.echo", "one", 2)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	want := []interface{}{"one", 2}
	if !reflect.DeepEqual(result, want) {
		t.Errorf("result = %#v, want %#v", result, want)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	registry := NewRegistry(testLogger())

	_, err := registry.Execute(context.Background(), "appdna.doesNotExist")
	if err == nil {
		t.Fatal("expected error for unregistered command")
	}
	if !errors.Is(err, errors.UnknownCommand) {
		t.Errorf("code = %s, want UNKNOWN_COMMAND", errors.CodeOf(err))
	}
}

func TestRegisterReplacesHandler(t *testing.T) {
	registry := NewRegistry(testLogger())

	registry.Register("test.cmd", func(ctx context.Context, args []interface{}) (interface{}, error) {
		return "first", nil
	})
	registry.Register("test.cmd", func(ctx context.Context, args []interface{}) (interface{}, error) {
		return "second", nil
	})

	result, err := registry.Execute(context.Background(), "test.cmd")
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "second" {
		t.Errorf("result = %v, want second", result)
	}
}

func TestHas(t *testing.T) {
	registry := NewRegistry(testLogger())
	if registry.Has("test.cmd") {
		t.Error("Has reported an unregistered command")
	}

	registry.Register("test.cmd", func(ctx context.Context, args []interface{}) (interface{}, error) {
		return nil, nil
	})
	if !registry.Has("test.cmd") {
		t.Error("Has missed a registered command")
	}
}

func TestNamesSorted(t *testing.T) {
	registry := NewRegistry(testLogger())
	noop := func(ctx context.Context, args []interface{}) (interface{}, error) { return nil, nil }

	registry.Register("zeta.cmd", noop)
	registry.Register("alpha.cmd", noop)
	registry.Register("mid.cmd", noop)

	want := []string{"alpha.cmd", "mid.cmd", "zeta.cmd"}
	if got := registry.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRefreshHubFanOut(t *testing.T) {
	hub := NewRefreshHub()

	var first, second int
	hub.OnRefresh(func() { first++ })
	hub.OnRefresh(func() { second++ })

	if notified := hub.Fire(); notified != 2 {
		t.Errorf("Fire() = %d, want 2", notified)
	}
	if first != 1 || second != 1 {
		t.Errorf("listener calls = %d, %d, want 1, 1", first, second)
	}

	hub.Fire()
	if first != 2 || second != 2 {
		t.Errorf("listener calls after second fire = %d, %d, want 2, 2", first, second)
	}
}

func TestRefreshHubEmpty(t *testing.T) {
	hub := NewRefreshHub()
	if notified := hub.Fire(); notified != 0 {
		t.Errorf("Fire() on empty hub = %d, want 0", notified)
	}
}

func TestRefreshHubListenerMaySubscribe(t *testing.T) {
	hub := NewRefreshHub()

	var late int
	hub.OnRefresh(func() {
		hub.OnRefresh(func() { late++ })
	})

	hub.Fire()
	if late != 0 {
		t.Fatal("late listener ran during the fire that subscribed it")
	}

	hub.Fire()
	if late != 1 {
		t.Errorf("late listener calls = %d, want 1", late)
	}
}
