// Package story validates free-text user stories against the loaded model's
// vocabulary. Validate is a pure function: no I/O, no model mutation.
package story

import (
	"fmt"
	"regexp"
	"strings"
)

// ModelContext is the model-derived vocabulary a story is checked against.
// An empty Roles slice skips the role check so stories can be written into a
// fresh model before any roles exist.
type ModelContext struct {
	Roles       []string
	ObjectNames []string
}

// Result is the outcome of validating one story. A failed validation is a
// Result with Valid false and a human-readable Error, never a Go error.
type Result struct {
	Valid       bool     `json:"valid"`
	Role        string   `json:"role,omitempty"`
	DataObjects []string `json:"dataObjects,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Two accepted sentence shapes: role-first ("As a Manager, I want to ...")
// and subject-first ("A Manager wants to ..."). The leading article is
// optional in both.
var (
	roleFirstPattern    = regexp.MustCompile(`(?i)^as\s+(?:(?:a|an|the)\s+)?(.+?)\s*,\s*i\s+want\s+to\s+(.+)$`)
	subjectFirstPattern = regexp.MustCompile(`(?i)^(?:(?:a|an|the)\s+)?(.+?)\s+wants?\s+to\s+(.+)$`)
)

// Validate checks storyText against the two accepted sentence shapes,
// resolves the role against ctx.Roles (case-insensitive), and extracts the
// known data-object names mentioned in the action clause by substring match.
// Unknown object references do not fail validation; a story may describe
// objects that will be modeled later.
func Validate(storyText string, ctx ModelContext) Result {
	text := strings.TrimSpace(storyText)
	if text == "" {
		return Result{Error: "Story text is required"}
	}

	var roleToken, action string
	if m := roleFirstPattern.FindStringSubmatch(text); m != nil {
		roleToken, action = strings.TrimSpace(m[1]), m[2]
	} else if m := subjectFirstPattern.FindStringSubmatch(text); m != nil {
		roleToken, action = strings.TrimSpace(m[1]), m[2]
	} else {
		return Result{Error: "Story must match 'As a [Role], I want to [action]' or '[Role] wants to [action]'"}
	}

	role, ok := resolveRole(roleToken, ctx.Roles)
	if !ok {
		return Result{Error: fmt.Sprintf("Role %q was not found in the model's Role lookup values", roleToken)}
	}

	return Result{
		Valid:       true,
		Role:        role,
		DataObjects: extractObjects(action, ctx.ObjectNames),
	}
}

// resolveRole maps the captured role token to its canonical model spelling.
// With no roles defined yet the token passes through unchecked.
func resolveRole(token string, roles []string) (string, bool) {
	if len(roles) == 0 {
		return token, true
	}
	folded := strings.ToLower(token)
	for _, role := range roles {
		if strings.ToLower(role) == folded {
			return role, true
		}
	}
	return "", false
}

// extractObjects returns the known object names mentioned in the action
// clause, in model order, each at most once. Matching is a case-insensitive
// substring check.
func extractObjects(action string, objectNames []string) []string {
	folded := strings.ToLower(action)
	var found []string
	for _, name := range objectNames {
		if name == "" {
			continue
		}
		if strings.Contains(folded, strings.ToLower(name)) {
			found = append(found, name)
		}
	}
	return found
}
