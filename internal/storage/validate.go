package storage

import (
	"fmt"
	"strings"

	"appdna/internal/model"
)

// ValidateRootModel checks the structural invariants the service layer
// depends on and returns the full list of problems found, empty when the
// model is valid. It deliberately validates structure only: the legacy
// schema's hundreds of optional presentation properties pass through
// untouched, and lookup items on non-lookup objects are tolerated because
// legacy files contain them.
func ValidateRootModel(root *model.RootModel) []string {
	var problems []string

	if root == nil {
		return []string{"model has no root object"}
	}
	if root.Namespace == nil {
		problems = append(problems, "model root has no namespace array")
		return problems
	}

	objectNames := make(map[string]string) // folded name -> first namespace seen
	for i, ns := range root.Namespace {
		if ns == nil {
			problems = append(problems, fmt.Sprintf("namespace %d is null", i))
			continue
		}
		if strings.TrimSpace(ns.Name) == "" {
			problems = append(problems, fmt.Sprintf("namespace %d has no name", i))
		}

		for j, obj := range ns.Object {
			if obj == nil {
				problems = append(problems, fmt.Sprintf("object %d in namespace %q is null", j, ns.Name))
				continue
			}
			if strings.TrimSpace(obj.Name) == "" {
				problems = append(problems, fmt.Sprintf("object %d in namespace %q has no name", j, ns.Name))
				continue
			}

			// Object names are unique across all namespaces.
			folded := strings.ToLower(strings.TrimSpace(obj.Name))
			if first, seen := objectNames[folded]; seen {
				problems = append(problems, fmt.Sprintf(
					"duplicate data object name %q (first defined in namespace %q)", obj.Name, first))
			} else {
				objectNames[folded] = ns.Name
			}

			problems = append(problems, validateLookupItems(obj)...)
		}
	}

	return problems
}

// validateLookupItems checks that lookup item names are present and unique
// within their parent object, case-insensitively.
func validateLookupItems(obj *model.DataObject) []string {
	var problems []string

	itemNames := make(map[string]struct{}, len(obj.LookupItem))
	for k, item := range obj.LookupItem {
		if item == nil {
			problems = append(problems, fmt.Sprintf("lookup item %d of object %q is null", k, obj.Name))
			continue
		}
		if strings.TrimSpace(item.Name) == "" {
			problems = append(problems, fmt.Sprintf("lookup item %d of object %q has no name", k, obj.Name))
			continue
		}
		folded := strings.ToLower(strings.TrimSpace(item.Name))
		if _, seen := itemNames[folded]; seen {
			problems = append(problems, fmt.Sprintf(
				"duplicate lookup item name %q in object %q", item.Name, obj.Name))
			continue
		}
		itemNames[folded] = struct{}{}
	}

	return problems
}
