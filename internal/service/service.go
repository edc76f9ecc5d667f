// Package service is the model facade shared by the HTTP bridges, the MCP
// tools, and the CLI: typed query access over the loaded model graph, the
// unsaved-changes flag, and the load/save lifecycle with backups.
//
// The service is explicitly constructed and injected into its callers. All
// reads take a read lock; mutations run under Mutate, which holds the write
// lock for the whole read-modify-write sequence, so ensure-namespace-then-
// append sequences are atomic. Mutations stay in memory until SaveToFile.
package service

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"appdna/internal/config"
	"appdna/internal/errors"
	"appdna/internal/logging"
	"appdna/internal/model"
	"appdna/internal/storage"
)

// ModelService mediates every read and write of the loaded model.
type ModelService struct {
	provider *storage.Provider
	journal  *storage.Journal
	logger   *logging.Logger
	backup   storage.BackupSettings

	mu              sync.RWMutex
	currentFilePath string
	unsavedChanges  bool

	// Case-folded object name -> live node. Purged on load, mutation, and
	// ClearCache; the cache itself is thread-safe.
	objectCache *lru.Cache[string, *model.DataObject]
}

// New constructs the service. journal may be nil when journaling is
// disabled; every journal write is best-effort.
func New(provider *storage.Provider, journal *storage.Journal, cfg *config.Config, logger *logging.Logger) (*ModelService, error) {
	size := cfg.Cache.ObjectLookupSize
	if size <= 0 {
		size = 512
	}
	cache, err := lru.New[string, *model.DataObject](size)
	if err != nil {
		return nil, err
	}

	return &ModelService{
		provider: provider,
		journal:  journal,
		logger:   logger,
		backup: storage.BackupSettings{
			Enabled:  cfg.Backup.Enabled,
			Keep:     cfg.Backup.Keep,
			Compress: cfg.Backup.Compress,
		},
		objectCache: cache,
	}, nil
}

// LoadFile loads the model file at path and makes it the current model.
// The dirty flag resets; unsaved in-memory changes to a previously loaded
// model are discarded.
func (s *ModelService) LoadFile(path string) (*model.RootModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	root, err := s.provider.LoadRootModel(path)
	if err != nil {
		return nil, err
	}

	s.currentFilePath = path
	s.unsavedChanges = false
	s.objectCache.Purge()
	return root, nil
}

// SaveToFile persists the in-memory model and returns the path written. An
// empty path means the current file. The previous file contents are
// snapshotted first per the backup settings.
func (s *ModelService) SaveToFile(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := strings.TrimSpace(path)
	if target == "" {
		target = s.currentFilePath
	}
	if target == "" {
		return "", errors.New(errors.InvalidRequest, "no file path given and no model file is open")
	}

	root := s.provider.GetRootModel()
	if root == nil {
		return "", errors.New(errors.ModelNotLoaded, "no model is loaded")
	}

	if _, err := s.provider.CreateBackup(target, s.backup); err != nil {
		return "", err
	}
	if err := s.provider.SaveRootModel(target, root); err != nil {
		return "", err
	}

	s.currentFilePath = target
	s.unsavedChanges = false
	return target, nil
}

// GetCurrentModel returns the live model graph, or nil when none is loaded.
func (s *ModelService) GetCurrentModel() *model.RootModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provider.GetRootModel()
}

// GetCurrentFilePath returns the path of the currently open model file, or
// "" when no file is open.
func (s *ModelService) GetCurrentFilePath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentFilePath
}

// IsModelLoaded reports whether a model is held in memory.
func (s *ModelService) IsModelLoaded() bool {
	return s.GetCurrentModel() != nil
}

// MarkUnsavedChanges flags the in-memory model as dirty. Idempotent.
func (s *ModelService) MarkUnsavedChanges() {
	s.mu.Lock()
	s.unsavedChanges = true
	s.mu.Unlock()
}

// HasUnsavedChangesInMemory reports whether the model has mutations that
// have not been saved to disk.
func (s *ModelService) HasUnsavedChangesInMemory() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unsavedChanges
}

// ClearCache drops the held model and resets the service to the unloaded
// state: no current file, no unsaved changes, empty lookup cache.
func (s *ModelService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.provider.ClearCache()
	s.currentFilePath = ""
	s.unsavedChanges = false
	s.objectCache.Purge()
}

// Mutate runs fn against the live model under the write lock. On success
// the model is marked dirty and the lookup cache purged. Returns
// MODEL_NOT_LOADED when no model is held.
func (s *ModelService) Mutate(fn func(*model.RootModel) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	root := s.provider.GetRootModel()
	if root == nil {
		return errors.New(errors.ModelNotLoaded, "no model is loaded")
	}
	if err := fn(root); err != nil {
		return err
	}

	s.unsavedChanges = true
	s.objectCache.Purge()
	return nil
}

// RecordChange appends a journal entry, best-effort. A nil or failing
// journal never affects the mutation that triggered the entry.
func (s *ModelService) RecordChange(entry storage.ChangeEntry) {
	if s.journal == nil {
		return
	}
	_ = s.journal.Record(entry)
}

// GetAllObjects returns every data object across all namespaces.
func (s *ModelService) GetAllObjects() []*model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Objects(s.provider.GetRootModel())
}

// GetAllReports returns every report of every object.
func (s *ModelService) GetAllReports() []*model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Reports(s.provider.GetRootModel())
}

// GetAllForms returns the workflows classified as page forms.
func (s *ModelService) GetAllForms() []*model.ObjectWorkflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Forms(s.provider.GetRootModel())
}

// GetAllGeneralFlows returns the workflows classified as general flows.
func (s *ModelService) GetAllGeneralFlows() []*model.ObjectWorkflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.GeneralFlows(s.provider.GetRootModel())
}

// GetAllPageObjectWorkflows returns the workflows participating in page
// navigation.
func (s *ModelService) GetAllPageObjectWorkflows() []*model.ObjectWorkflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.PageWorkflows(s.provider.GetRootModel())
}

// GetAllPages returns every navigable page: form workflows plus page reports.
func (s *ModelService) GetAllPages() []*model.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.Pages(s.provider.GetRootModel())
}

// GetAllUserStories returns every user story across all namespaces.
func (s *ModelService) GetAllUserStories() []*model.UserStory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.UserStories(s.provider.GetRootModel())
}

// GetObject returns the data object with the given name, case-insensitive
// and whitespace-trimmed, or nil. Hits are served from the lookup cache.
func (s *ModelService) GetObject(name string) *model.DataObject {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if obj, ok := s.objectCache.Get(key); ok {
		return obj
	}
	obj := model.FindObject(s.provider.GetRootModel(), name)
	if obj != nil {
		s.objectCache.Add(key, obj)
	}
	return obj
}

// GetReport returns the named report, case-insensitive, or nil.
func (s *ModelService) GetReport(name string) *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FindReport(s.provider.GetRootModel(), name)
}

// GetForm returns the named form workflow, case-insensitive, or nil.
func (s *ModelService) GetForm(name string) *model.ObjectWorkflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FindForm(s.provider.GetRootModel(), name)
}

// GetPage returns the named page, case-insensitive, or nil.
func (s *ModelService) GetPage(name string) *model.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.FindPage(s.provider.GetRootModel(), name)
}

// GetReportOwnerObject returns the object owning the named report, or nil.
func (s *ModelService) GetReportOwnerObject(name string) *model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.OwnerOfReport(s.provider.GetRootModel(), name)
}

// GetFormOwnerObject returns the object owning the named form, or nil.
func (s *ModelService) GetFormOwnerObject(name string) *model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.OwnerOfForm(s.provider.GetRootModel(), name)
}

// GetFlowOwnerObject returns the object owning the named workflow of any
// classification, or nil.
func (s *ModelService) GetFlowOwnerObject(name string) *model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.OwnerOfFlow(s.provider.GetRootModel(), name)
}

// GetPageOwnerObject returns the object owning the named page, or nil.
func (s *ModelService) GetPageOwnerObject(name string) *model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.OwnerOfPage(s.provider.GetRootModel(), name)
}

// GetReportTargetChildObject resolves the named report's targetChildObject
// reference, or nil.
func (s *ModelService) GetReportTargetChildObject(reportName string) *model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.ReportTargetChildObject(s.provider.GetRootModel(), reportName)
}

// GetRoleObject returns the data object named "Role" (any case), or nil.
func (s *ModelService) GetRoleObject() *model.DataObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.RoleObject(s.provider.GetRootModel())
}

// GetRoleNames returns the distinct role names sorted lexicographically.
// Empty when the model has no Role object or none is loaded.
func (s *ModelService) GetRoleNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.RoleNames(s.provider.GetRootModel())
}

// GetLookupValues returns the lookup items of the named lookup object,
// sorted by name. Fails with OBJECT_NOT_FOUND or OBJECT_NOT_LOOKUP.
func (s *ModelService) GetLookupValues(objectName string) ([]*model.LookupItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj := model.FindObject(s.provider.GetRootModel(), objectName)
	if obj == nil {
		return nil, errors.Newf(errors.ObjectNotFound, "data object %q not found", objectName)
	}
	if !obj.IsLookupObject() {
		return nil, errors.Newf(errors.ObjectNotLookup, "data object %q is not a lookup object", objectName)
	}

	items := make([]*model.LookupItem, len(obj.LookupItem))
	copy(items, obj.LookupItem)
	sortLookupItems(items)
	return items, nil
}
