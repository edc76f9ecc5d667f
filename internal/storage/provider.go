// Package storage owns the on-disk representation of an AppDNA model: the
// data provider that loads, validates, saves, and holds the singleton
// in-memory model, timestamped backups of the model file, and the SQLite
// journal of model mutations.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"appdna/internal/errors"
	"appdna/internal/logging"
	"appdna/internal/model"
)

// SchemaErrorMarker appears in every schema validation failure message so
// callers can recognize validation errors and offer a "show details" path.
const SchemaErrorMarker = "does not match the AppDNA model schema"

// Provider loads and saves the root model and holds the parsed graph as the
// single in-memory instance. Query and mutation layers above it share that
// instance by reference; the provider never copies it.
type Provider struct {
	mu     sync.RWMutex
	root   *model.RootModel
	logger *logging.Logger
}

// NewProvider creates a data provider with no model loaded.
func NewProvider(logger *logging.Logger) *Provider {
	return &Provider{logger: logger}
}

// LoadRootModel reads and validates the model file at path, keeps the parsed
// graph as the held instance, and returns it. Fails with FILE_NOT_FOUND when
// the path does not exist and VALIDATION_FAILED when the document does not
// match the expected shape.
func (p *Provider) LoadRootModel(path string) (*model.RootModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.FileNotFound, "model file not found: "+path, err)
		}
		return nil, errors.Wrap(errors.InternalError, "could not read model file: "+path, err)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ValidationFailed,
			"file "+filepath.Base(path)+" "+SchemaErrorMarker+": invalid JSON", err)
	}

	if problems := ValidateRootModel(doc.Root); len(problems) > 0 {
		return nil, errors.New(errors.ValidationFailed,
			"file "+filepath.Base(path)+" "+SchemaErrorMarker).WithDetails(problems)
	}

	p.mu.Lock()
	p.root = doc.Root
	p.mu.Unlock()

	p.logger.Info("Model loaded", map[string]interface{}{
		"path":       path,
		"namespaces": len(doc.Root.Namespace),
	})

	return doc.Root, nil
}

// SaveRootModel serializes root to path with two-space indentation, writing
// through a temp file in the same directory so a failed write never leaves a
// half-serialized model file behind. The saved root becomes the held
// instance.
func (p *Provider) SaveRootModel(path string, root *model.RootModel) error {
	if root == nil {
		return errors.New(errors.ModelNotLoaded, "no model to save")
	}

	data, err := json.MarshalIndent(model.Document{Root: root}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.SerializeFailed, "could not serialize model", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(errors.SerializeFailed, "could not create model directory: "+dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".appdna-save-*")
	if err != nil {
		return errors.Wrap(errors.SerializeFailed, "could not create temp file", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(errors.SerializeFailed, "could not write model file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.SerializeFailed, "could not write model file", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(errors.SerializeFailed, "could not replace model file: "+path, err)
	}

	p.mu.Lock()
	p.root = root
	p.mu.Unlock()

	p.logger.Info("Model saved", map[string]interface{}{
		"path":  path,
		"bytes": len(data),
	})

	return nil
}

// GetRootModel returns the held in-memory model, or nil when none is loaded.
// The returned graph is the live instance, not a copy.
func (p *Provider) GetRootModel() *model.RootModel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.root
}

// ClearCache drops the held model, returning the provider to the unloaded
// state.
func (p *Provider) ClearCache() {
	p.mu.Lock()
	p.root = nil
	p.mu.Unlock()
}
