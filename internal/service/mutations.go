package service

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"appdna/internal/errors"
	"appdna/internal/model"
	"appdna/internal/story"
)

// AddDataObject creates a data object. Non-lookup objects with a known
// parent go into the parent's namespace; everything else goes into the
// first namespace, created as "Default" when the model has none. A parent
// relation generates the "<Parent>ID" foreign-key property; lookup objects
// are seeded with one "Unknown" item.
func (s *ModelService) AddDataObject(name, parentObjectName, codeDescription string, isLookup bool) (*model.DataObject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.InvalidRequest, "object name is required")
	}
	parentObjectName = strings.TrimSpace(parentObjectName)

	var created *model.DataObject
	err := s.Mutate(func(root *model.RootModel) error {
		if existing := model.FindObject(root, name); existing != nil {
			return errors.Newf(errors.DuplicateName, "data object %q already exists", existing.Name)
		}

		target := model.EnsureNamespace(root)
		if !isLookup && parentObjectName != "" {
			if parentNS := model.NamespaceOfObject(root, parentObjectName); parentNS != nil {
				target = parentNS
			}
		}

		obj := &model.DataObject{
			Name:            name,
			CodeDescription: codeDescription,
		}
		if isLookup {
			obj.IsLookup = model.NewFlag(true)
			obj.LookupItem = []*model.LookupItem{{
				Name:        "Unknown",
				DisplayName: "Unknown",
				IsActive:    model.NewFlag(true),
			}}
		}
		if parentObjectName != "" {
			obj.ParentObjectName = parentObjectName
			prop := &model.Property{
				Name:                parentObjectName + "ID",
				SQLServerDBDataType: "int",
				IsFK:                model.NewFlag(true),
			}
			if parent := model.FindObject(root, parentObjectName); parent != nil && parent.IsLookupObject() {
				prop.IsFKLookup = model.NewFlag(true)
			}
			obj.Prop = append(obj.Prop, prop)
		}

		target.Object = append(target.Object, obj)
		created = obj
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// AddRole appends a lookup item to the Role object. Names that differ only
// in case from an existing role are rejected. DisplayName defaults to the
// name and IsActive to true when omitted.
func (s *ModelService) AddRole(name, displayName, description string, isActive *model.Flag) (*model.LookupItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.InvalidRequest, "role name is required")
	}

	var created *model.LookupItem
	err := s.Mutate(func(root *model.RootModel) error {
		roleObj := model.RoleObject(root)
		if roleObj == nil {
			return errors.New(errors.RoleObjectMissing, "no Role data object exists in the model")
		}
		if roleObj.HasLookupItemFold(name) {
			return errors.Newf(errors.DuplicateName, "role %q already exists", name)
		}

		created = newLookupItem(name, displayName, description, isActive)
		roleObj.LookupItem = append(roleObj.LookupItem, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateRole mutates an existing role's display fields by exact name match.
// Nil fields are left unchanged.
func (s *ModelService) UpdateRole(name string, displayName, description *string, isActive *model.Flag) (*model.LookupItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.InvalidRequest, "role name is required")
	}

	var updated *model.LookupItem
	err := s.Mutate(func(root *model.RootModel) error {
		roleObj := model.RoleObject(root)
		if roleObj == nil {
			return errors.New(errors.RoleObjectMissing, "no Role data object exists in the model")
		}
		item := roleObj.FindLookupItem(name)
		if item == nil {
			return errors.Newf(errors.ItemNotFound, "role %q not found", name)
		}

		applyLookupItemUpdate(item, displayName, description, isActive)
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddLookupValue appends a lookup item to the named lookup object. Names
// that differ only in case from an existing item are rejected.
func (s *ModelService) AddLookupValue(objectName, name, displayName, description string, isActive *model.Flag) (*model.LookupItem, error) {
	objectName = strings.TrimSpace(objectName)
	if objectName == "" {
		return nil, errors.New(errors.InvalidRequest, "lookupObjectName is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New(errors.InvalidRequest, "lookup value name is required")
	}

	var created *model.LookupItem
	err := s.Mutate(func(root *model.RootModel) error {
		obj := model.FindObject(root, objectName)
		if obj == nil {
			return errors.Newf(errors.ObjectNotFound, "data object %q not found", objectName)
		}
		if !obj.IsLookupObject() {
			return errors.Newf(errors.ObjectNotLookup, "data object %q is not a lookup object", objectName)
		}
		if obj.HasLookupItemFold(name) {
			return errors.Newf(errors.DuplicateName, "lookup value %q already exists in %q", name, obj.Name)
		}

		created = newLookupItem(name, displayName, description, isActive)
		obj.LookupItem = append(obj.LookupItem, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateLookupValue mutates an existing lookup item's display fields by
// exact name match within the named object. Nil fields are left unchanged.
func (s *ModelService) UpdateLookupValue(objectName, name string, displayName, description *string, isActive *model.Flag) (*model.LookupItem, error) {
	objectName = strings.TrimSpace(objectName)
	if objectName == "" {
		return nil, errors.New(errors.InvalidRequest, "lookupObjectName is required")
	}
	if strings.TrimSpace(name) == "" {
		return nil, errors.New(errors.InvalidRequest, "lookup value name is required")
	}

	var updated *model.LookupItem
	err := s.Mutate(func(root *model.RootModel) error {
		obj := model.FindObject(root, objectName)
		if obj == nil {
			return errors.Newf(errors.ObjectNotFound, "data object %q not found", objectName)
		}
		if !obj.IsLookupObject() {
			return errors.Newf(errors.ObjectNotLookup, "data object %q is not a lookup object", objectName)
		}
		item := obj.FindLookupItem(name)
		if item == nil {
			return errors.Newf(errors.ItemNotFound, "lookup value %q not found in %q", name, obj.Name)
		}

		applyLookupItemUpdate(item, displayName, description, isActive)
		updated = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddUserStory validates storyText, rejects exact-text duplicates across
// all namespaces, and appends a story with a generated GUID name to the
// first namespace.
func (s *ModelService) AddUserStory(storyText string) (*model.UserStory, error) {
	storyText = strings.TrimSpace(storyText)
	if storyText == "" {
		return nil, errors.New(errors.InvalidRequest, "storyText is required")
	}

	var created *model.UserStory
	err := s.Mutate(func(root *model.RootModel) error {
		result := story.Validate(storyText, story.ModelContext{
			Roles:       model.RoleNames(root),
			ObjectNames: model.ObjectNames(root),
		})
		if !result.Valid {
			return errors.New(errors.InvalidStory, result.Error)
		}

		for _, existing := range model.UserStories(root) {
			if existing.StoryText == storyText {
				return errors.New(errors.DuplicateStory, "a user story with this text already exists")
			}
		}

		if len(root.Namespace) == 0 {
			return errors.New(errors.InvalidRequest, "model has no namespace to hold user stories")
		}

		created = &model.UserStory{
			Name:      uuid.NewString(),
			StoryText: storyText,
		}
		first := root.Namespace[0]
		first.UserStory = append(first.UserStory, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ValidateUserStory runs story validation against the current model without
// mutating anything.
func (s *ModelService) ValidateUserStory(storyText string) story.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root := s.provider.GetRootModel()
	return story.Validate(storyText, story.ModelContext{
		Roles:       model.RoleNames(root),
		ObjectNames: model.ObjectNames(root),
	})
}

func newLookupItem(name, displayName, description string, isActive *model.Flag) *model.LookupItem {
	item := &model.LookupItem{
		Name:        name,
		DisplayName: displayName,
		Description: description,
		IsActive:    isActive,
	}
	if item.DisplayName == "" {
		item.DisplayName = name
	}
	if item.IsActive == nil {
		item.IsActive = model.NewFlag(true)
	}
	return item
}

func applyLookupItemUpdate(item *model.LookupItem, displayName, description *string, isActive *model.Flag) {
	if displayName != nil {
		item.DisplayName = *displayName
	}
	if description != nil {
		item.Description = *description
	}
	if isActive != nil {
		item.IsActive = isActive
	}
}

func sortLookupItems(items []*model.LookupItem) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].Name < items[j].Name
	})
}
