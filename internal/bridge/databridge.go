// Package bridge hosts the two localhost HTTP listeners of an AppDNA
// process: the data bridge (model reads and in-memory mutations, port 3001
// by default) and the command bridge (named-command dispatch, port 3002).
// Mutations stay in memory; no endpoint writes the model file.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"appdna/internal/command"
	"appdna/internal/errors"
	"appdna/internal/logging"
	"appdna/internal/model"
	"appdna/internal/service"
	"appdna/internal/storage"
)

// refreshDelay is how long a mutation waits before firing the UI refresh
// command. The delay lets a burst of mutations coalesce on the client side.
const refreshDelay = 100 * time.Millisecond

// dataBridgeEndpoints is the discoverability contract served with every
// unmatched route on the data bridge.
var dataBridgeEndpoints = []string{
	"GET /api/health",
	"GET /api/model",
	"GET /api/objects",
	"GET /api/data-objects",
	"GET /api/user-stories",
	"GET /api/roles",
	"GET /api/lookup-values?lookupObjectName={name}",
	"POST /api/data-objects",
	"POST /api/roles",
	"POST /api/roles/update",
	"POST /api/lookup-values",
	"POST /api/lookup-values/update",
	"POST /api/user-stories",
}

// DataBridge serves the model read and mutation endpoints. Routing is by
// exact method and path; anything else gets the 404 contract.
type DataBridge struct {
	svc      *service.ModelService
	registry *command.Registry
	logger   *logging.Logger
	port     int
	router   *http.ServeMux

	// refreshAfter is swapped out by tests to observe refresh scheduling.
	refreshAfter time.Duration
}

// NewDataBridge creates the data bridge. The registry may be nil; then
// mutations skip the delayed refresh command.
func NewDataBridge(svc *service.ModelService, registry *command.Registry, port int, logger *logging.Logger) *DataBridge {
	b := &DataBridge{
		svc:          svc,
		registry:     registry,
		logger:       logger,
		port:         port,
		router:       http.NewServeMux(),
		refreshAfter: refreshDelay,
	}
	b.registerRoutes()
	return b
}

// Handler returns the bridge's handler wrapped in the middleware chain.
func (b *DataBridge) Handler() http.Handler {
	return applyMiddleware(b.router, b.logger)
}

func (b *DataBridge) registerRoutes() {
	b.router.HandleFunc("/api/health", b.handleHealth)
	b.router.HandleFunc("/api/model", b.handleModel)
	b.router.HandleFunc("/api/objects", b.handleObjects)
	b.router.HandleFunc("/api/data-objects", b.handleDataObjects)
	b.router.HandleFunc("/api/user-stories", b.handleUserStories)
	b.router.HandleFunc("/api/roles", b.handleRoles)
	b.router.HandleFunc("/api/roles/update", b.handleRolesUpdate)
	b.router.HandleFunc("/api/lookup-values", b.handleLookupValues)
	b.router.HandleFunc("/api/lookup-values/update", b.handleLookupValuesUpdate)
	b.router.HandleFunc("/", b.handleUnmatched)
}

// handleUnmatched serves the 404 discoverability contract for every route
// (or method) outside the endpoint table.
func (b *DataBridge) handleUnmatched(w http.ResponseWriter, r *http.Request) {
	writeNotFound(w, dataBridgeEndpoints)
}

// handleHealth reports liveness and whether a model is loaded. Always 200.
func (b *DataBridge) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.handleUnmatched(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"bridge":      "data",
		"port":        b.port,
		"modelLoaded": b.svc.IsModelLoaded(),
	})
}

// handleModel returns the full current model, or {} when none is loaded.
func (b *DataBridge) handleModel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.handleUnmatched(w, r)
		return
	}
	root := b.svc.GetCurrentModel()
	if root == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{})
		return
	}
	writeJSON(w, http.StatusOK, root)
}

func (b *DataBridge) handleObjects(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.handleUnmatched(w, r)
		return
	}
	writeJSON(w, http.StatusOK, b.svc.GetAllObjects())
}

// dataObjectSummary is the flattened projection served by
// GET /api/data-objects. IsLookup is a plain JSON boolean here even though
// the persisted format stores flag strings.
type dataObjectSummary struct {
	Name             string `json:"name"`
	IsLookup         bool   `json:"isLookup"`
	ParentObjectName string `json:"parentObjectName"`
	CodeDescription  string `json:"codeDescription"`
}

type createDataObjectRequest struct {
	Name             string      `json:"name"`
	ParentObjectName string      `json:"parentObjectName"`
	IsLookup         *model.Flag `json:"isLookup"`
	CodeDescription  string      `json:"codeDescription"`
}

func (b *DataBridge) handleDataObjects(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		objects := b.svc.GetAllObjects()
		summaries := make([]dataObjectSummary, 0, len(objects))
		for _, obj := range objects {
			summaries = append(summaries, dataObjectSummary{
				Name:             obj.Name,
				IsLookup:         obj.IsLookupObject(),
				ParentObjectName: obj.ParentObjectName,
				CodeDescription:  obj.CodeDescription,
			})
		}
		writeJSON(w, http.StatusOK, summaries)

	case http.MethodPost:
		var req createDataObjectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		obj, err := b.svc.AddDataObject(req.Name, req.ParentObjectName, req.CodeDescription, req.IsLookup.IsTrue())
		if err != nil {
			writeServiceError(w, err)
			return
		}

		namespace := ""
		if ns := model.NamespaceOfObject(b.svc.GetCurrentModel(), obj.Name); ns != nil {
			namespace = ns.Name
		}
		b.recordChange("create", "dataObject", obj.Name, namespace,
			fmt.Sprintf("parent=%s isLookup=%t", req.ParentObjectName, req.IsLookup.IsTrue()))
		b.scheduleRefresh()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"object":  obj,
		})

	default:
		b.handleUnmatched(w, r)
	}
}

func (b *DataBridge) handleUserStories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, b.svc.GetAllUserStories())

	case http.MethodPost:
		var req struct {
			StoryText string `json:"storyText"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		created, err := b.svc.AddUserStory(req.StoryText)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		b.recordChange("create", "userStory", created.Name, "", created.StoryText)
		b.scheduleRefresh()

		writeJSON(w, http.StatusCreated, map[string]interface{}{
			"success": true,
			"story":   created,
		})

	default:
		b.handleUnmatched(w, r)
	}
}

type roleRequest struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Description string      `json:"description"`
	IsActive    *model.Flag `json:"isActive"`
}

type roleUpdateRequest struct {
	Name        string      `json:"name"`
	DisplayName *string     `json:"displayName"`
	Description *string     `json:"description"`
	IsActive    *model.Flag `json:"isActive"`
}

func (b *DataBridge) handleRoles(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, b.svc.GetRoleNames())

	case http.MethodPost:
		var req roleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		created, err := b.svc.AddRole(req.Name, req.DisplayName, req.Description, req.IsActive)
		if err != nil {
			writeServiceError(w, err)
			return
		}

		b.recordChange("create", "role", created.Name, "", "")
		b.scheduleRefresh()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"role":    created,
		})

	default:
		b.handleUnmatched(w, r)
	}
}

func (b *DataBridge) handleRolesUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.handleUnmatched(w, r)
		return
	}

	var req roleUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := b.svc.UpdateRole(req.Name, req.DisplayName, req.Description, req.IsActive)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	b.recordChange("update", "role", updated.Name, "", "")
	b.scheduleRefresh()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"role":    updated,
	})
}

type lookupValueRequest struct {
	LookupObjectName string      `json:"lookupObjectName"`
	Name             string      `json:"name"`
	DisplayName      string      `json:"displayName"`
	Description      string      `json:"description"`
	IsActive         *model.Flag `json:"isActive"`
}

type lookupValueUpdateRequest struct {
	LookupObjectName string      `json:"lookupObjectName"`
	Name             string      `json:"name"`
	DisplayName      *string     `json:"displayName"`
	Description      *string     `json:"description"`
	IsActive         *model.Flag `json:"isActive"`
}

func (b *DataBridge) handleLookupValues(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		objectName := r.URL.Query().Get("lookupObjectName")
		if objectName == "" {
			writeError(w, http.StatusBadRequest, "lookupObjectName query parameter is required")
			return
		}
		items, err := b.svc.GetLookupValues(objectName)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, items)

	case http.MethodPost:
		var req lookupValueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}

		created, err := b.svc.AddLookupValue(req.LookupObjectName, req.Name, req.DisplayName, req.Description, req.IsActive)
		if err != nil {
			// The create contract reports a missing object as a client
			// error, unlike the query above which 404s.
			if errors.Is(err, errors.ObjectNotFound) {
				writeError(w, http.StatusBadRequest, errors.MessageOf(err))
				return
			}
			writeServiceError(w, err)
			return
		}

		b.recordChange("create", "lookupItem", created.Name, "", "object="+req.LookupObjectName)
		b.scheduleRefresh()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"item":    created,
		})

	default:
		b.handleUnmatched(w, r)
	}
}

func (b *DataBridge) handleLookupValuesUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.handleUnmatched(w, r)
		return
	}

	var req lookupValueUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	updated, err := b.svc.UpdateLookupValue(req.LookupObjectName, req.Name, req.DisplayName, req.Description, req.IsActive)
	if err != nil {
		// Missing object is a client error here; 404 is reserved for a
		// missing item within a found object.
		if errors.Is(err, errors.ObjectNotFound) {
			writeError(w, http.StatusBadRequest, errors.MessageOf(err))
			return
		}
		writeServiceError(w, err)
		return
	}

	b.recordChange("update", "lookupItem", updated.Name, "", "object="+req.LookupObjectName)
	b.scheduleRefresh()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"item":    updated,
	})
}

// recordChange journals one mutation, best-effort.
func (b *DataBridge) recordChange(action, entity, name, namespace, detail string) {
	b.svc.RecordChange(storage.ChangeEntry{
		Actor:     "data-bridge",
		Action:    action,
		Entity:    entity,
		Name:      name,
		Namespace: namespace,
		Detail:    detail,
	})
}

// scheduleRefresh fires the UI refresh command after a short delay,
// fire-and-forget. Failures are logged and dropped.
func (b *DataBridge) scheduleRefresh() {
	if b.registry == nil {
		return
	}
	time.AfterFunc(b.refreshAfter, func() {
		if _, err := b.registry.Execute(context.Background(), command.CmdRefresh); err != nil {
			b.logger.Debug("Refresh command failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	})
}
