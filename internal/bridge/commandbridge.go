package bridge

import (
	"encoding/json"
	"fmt"
	"net/http"

	"appdna/internal/command"
	"appdna/internal/config"
	"appdna/internal/errors"
	"appdna/internal/logging"
)

var commandBridgeEndpoints = []string{
	"GET /api/health",
	"POST /api/execute-command",
}

// CommandBridge is the narrow RPC gateway into the command registry. It has
// no model knowledge of its own; every effect goes through a registered
// command.
type CommandBridge struct {
	registry  *command.Registry
	policy    *config.CommandPolicy
	tokenHash string
	logger    *logging.Logger
	port      int
	router    *http.ServeMux
}

// NewCommandBridge creates the command bridge. A nil policy allows every
// command; an empty tokenHash disables bearer auth.
func NewCommandBridge(registry *command.Registry, policy *config.CommandPolicy, tokenHash string, port int, logger *logging.Logger) *CommandBridge {
	b := &CommandBridge{
		registry:  registry,
		policy:    policy,
		tokenHash: tokenHash,
		logger:    logger,
		port:      port,
		router:    http.NewServeMux(),
	}
	b.router.HandleFunc("/api/health", b.handleHealth)
	b.router.HandleFunc("/api/execute-command", b.handleExecuteCommand)
	b.router.HandleFunc("/", b.handleUnmatched)
	return b
}

// Handler returns the bridge's handler wrapped in the middleware chain,
// with bearer auth innermost when configured.
func (b *CommandBridge) Handler() http.Handler {
	var handler http.Handler = b.router
	if b.tokenHash != "" {
		handler = BearerAuthMiddleware(b.tokenHash, b.logger)(handler)
	}
	return applyMiddleware(handler, b.logger)
}

func (b *CommandBridge) handleUnmatched(w http.ResponseWriter, r *http.Request) {
	writeNotFound(w, commandBridgeEndpoints)
}

// handleHealth always returns 200, with or without a loaded model.
func (b *CommandBridge) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		b.handleUnmatched(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"bridge": "command",
		"port":   b.port,
	})
}

type executeCommandRequest struct {
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// handleExecuteCommand dispatches a named command with positional arguments.
// Parse and dispatch failures share the 500 contract; only the allow-list
// rejects with 403.
func (b *CommandBridge) handleExecuteCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		b.handleUnmatched(w, r)
		return
	}

	var req executeCommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, "invalid request body: "+err.Error())
		return
	}

	if !b.policy.Allows(req.Command) {
		b.logger.Warn("Command rejected by policy", map[string]interface{}{
			"command":   req.Command,
			"requestID": GetRequestID(r.Context()),
		})
		writeError(w, http.StatusForbidden, fmt.Sprintf("command %q is not allowed", req.Command))
		return
	}

	result, err := b.registry.Execute(r.Context(), req.Command, req.Args...)
	if err != nil {
		b.logger.Warn("Command failed", map[string]interface{}{
			"command":   req.Command,
			"error":     err.Error(),
			"requestID": GetRequestID(r.Context()),
		})
		writeError(w, http.StatusInternalServerError, errors.MessageOf(err))
		return
	}

	b.logger.Info("Command executed", map[string]interface{}{
		"command":   req.Command,
		"requestID": GetRequestID(r.Context()),
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"command": req.Command,
		"result":  result,
		"message": fmt.Sprintf("command %q executed", req.Command),
	})
}
