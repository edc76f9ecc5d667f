package command

import (
	"context"

	"appdna/internal/errors"
	"appdna/internal/service"
)

// Built-in command names. Every deployment registers these at wiring time;
// extensions add their own alongside.
const (
	CmdRefresh           = "appdna.refresh"
	CmdSaveModel         = "appdna.saveModel"
	CmdModelLoaded       = "appdna.modelLoaded"
	CmdHasUnsavedChanges = "appdna.hasUnsavedChanges"
)

// RegisterBuiltins wires the model-facing commands onto the registry.
func RegisterBuiltins(registry *Registry, svc *service.ModelService, hub *RefreshHub) {
	registry.Register(CmdRefresh, func(ctx context.Context, args []interface{}) (interface{}, error) {
		notified := hub.Fire()
		return map[string]interface{}{"listeners": notified}, nil
	})

	registry.Register(CmdSaveModel, func(ctx context.Context, args []interface{}) (interface{}, error) {
		path, err := optionalStringArg(args, 0, "filePath")
		if err != nil {
			return nil, err
		}
		saved, err := svc.SaveToFile(path)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"filePath": saved}, nil
	})

	registry.Register(CmdModelLoaded, func(ctx context.Context, args []interface{}) (interface{}, error) {
		return svc.IsModelLoaded(), nil
	})

	registry.Register(CmdHasUnsavedChanges, func(ctx context.Context, args []interface{}) (interface{}, error) {
		return svc.HasUnsavedChangesInMemory(), nil
	})
}

// optionalStringArg reads args[i] as a string when present. Missing and nil
// arguments yield the empty string.
func optionalStringArg(args []interface{}, i int, name string) (string, error) {
	if i >= len(args) || args[i] == nil {
		return "", nil
	}
	s, ok := args[i].(string)
	if !ok {
		return "", errors.Newf(errors.InvalidRequest, "argument %q must be a string", name)
	}
	return s, nil
}
