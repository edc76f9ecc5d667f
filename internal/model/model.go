// Package model defines the typed AppDNA application model: a tree of
// namespaces holding data objects, workflows, reports, and user stories,
// loaded from a single JSON document. The full legacy schema carries
// hundreds of optional presentation properties; only the structural fields
// the service layer queries and mutates are modeled here.
//
// The loaded tree is a single mutable graph. Query helpers return
// references into it, never copies; callers that mutate a returned node
// mutate the model.
package model

// Document is the persisted file shape: the root model wrapped in a
// top-level "root" key.
type Document struct {
	Root *RootModel `json:"root"`
}

// RootModel is the top-level model node holding all namespaces.
type RootModel struct {
	Name             string       `json:"name,omitempty"`
	AppName          string       `json:"appName,omitempty"`
	CompanyLegalName string       `json:"companyLegalName,omitempty"`
	Namespace        []*Namespace `json:"namespace"`
}

// Namespace is a named grouping of model entities. The first namespace is
// the default target for new user stories and, when no parent-object match
// is found, for new data objects.
type Namespace struct {
	Name      string         `json:"name"`
	Object    []*DataObject  `json:"object,omitempty"`
	UserStory []*UserStory   `json:"userStory,omitempty"`
	Lexicon   []*LexiconItem `json:"lexicon,omitempty"`
	ApiSite   []*ApiSite     `json:"apiSite,omitempty"`
}

// DataObject is a domain entity. Names are unique across all namespaces,
// enforced at creation time. Lookup objects (IsLookup set) carry lookup
// items; a ParentObjectName establishes the parent/child relation that
// drives foreign-key property generation.
type DataObject struct {
	Name             string            `json:"name"`
	CodeDescription  string            `json:"codeDescription,omitempty"`
	IsLookup         *Flag             `json:"isLookup,omitempty"`
	ParentObjectName string            `json:"parentObjectName,omitempty"`
	Prop             []*Property       `json:"prop,omitempty"`
	LookupItem       []*LookupItem     `json:"lookupItem,omitempty"`
	ObjectWorkflow   []*ObjectWorkflow `json:"objectWorkflow,omitempty"`
	Report           []*Report         `json:"report,omitempty"`
}

// IsLookupObject reports whether the object is a lookup table.
func (o *DataObject) IsLookupObject() bool {
	return o.IsLookup.IsTrue()
}

// FindLookupItem returns the lookup item with the given name, or nil.
// Matching is exact.
func (o *DataObject) FindLookupItem(name string) *LookupItem {
	for _, item := range o.LookupItem {
		if item.Name == name {
			return item
		}
	}
	return nil
}

// HasLookupItemFold reports whether a lookup item with the given name
// exists, compared case-insensitively. Lookup item names are unique within
// their parent under this comparison.
func (o *DataObject) HasLookupItemFold(name string) bool {
	key := normalizeName(name)
	for _, item := range o.LookupItem {
		if normalizeName(item.Name) == key {
			return true
		}
	}
	return false
}

// LookupItem is one value of a lookup DataObject.
type LookupItem struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Description string `json:"description,omitempty"`
	IsActive    *Flag  `json:"isActive,omitempty"`
}

// Property is a column-level attribute of a DataObject. Auto-generated
// foreign-key properties are named "<ParentName>ID" and typed int.
type Property struct {
	Name                string `json:"name"`
	SQLServerDBDataType string `json:"sqlServerDBDataType,omitempty"`
	IsFK                *Flag  `json:"isFK,omitempty"`
	IsFKLookup          *Flag  `json:"isFKLookup,omitempty"`
}

// ObjectWorkflow is either a form (IsPage set) or a flow. Flows subdivide
// into DynaFlows, DynaFlow tasks, page-init flows (name suffix
// "initobjwf" or "initreport"), and general flows.
type ObjectWorkflow struct {
	Name           string `json:"name"`
	TitleText      string `json:"titleText,omitempty"`
	IsPage         *Flag  `json:"isPage,omitempty"`
	IsDynaFlow     *Flag  `json:"isDynaFlow,omitempty"`
	IsDynaFlowTask *Flag  `json:"isDynaFlowTask,omitempty"`
}

// IsForm reports whether the workflow is a page form.
func (w *ObjectWorkflow) IsForm() bool {
	return w.IsPage.IsTrue()
}

// IsGeneralFlow reports whether the workflow is a general-purpose flow:
// not a page, not a DynaFlow or DynaFlow task, and not a page-init flow
// by name suffix.
func (w *ObjectWorkflow) IsGeneralFlow() bool {
	if w.IsPage.IsTrue() || w.IsDynaFlow.IsTrue() || w.IsDynaFlowTask.IsTrue() {
		return false
	}
	return !hasPageInitSuffix(w.Name)
}

// Report is a page-like read view. Page membership defaults to true when
// IsPage is absent. TargetChildObject optionally names a related DataObject.
type Report struct {
	Name              string `json:"name"`
	TitleText         string `json:"titleText,omitempty"`
	IsPage            *Flag  `json:"isPage,omitempty"`
	TargetChildObject string `json:"targetChildObject,omitempty"`
}

// IsPageView reports whether the report participates in page navigation.
// Absent IsPage counts as a page.
func (r *Report) IsPageView() bool {
	return r.IsPage == nil || r.IsPage.IsTrue()
}

// UserStory is a free-text requirement sentence. Name is an opaque
// generated GUID, never user-chosen.
type UserStory struct {
	Name        string `json:"name"`
	StoryNumber string `json:"storyNumber,omitempty"`
	StoryText   string `json:"storyText"`
}

// LexiconItem is a translation entry for UI text.
type LexiconItem struct {
	Name              string `json:"name"`
	InternalTextValue string `json:"internalTextValue,omitempty"`
	DisplayTextValue  string `json:"displayTextValue,omitempty"`
}

// ApiSite describes an exposed API surface of the generated application.
type ApiSite struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

// PageKind distinguishes the two page sources.
type PageKind string

const (
	// PageKindForm marks a page backed by a form workflow.
	PageKindForm PageKind = "form"
	// PageKindReport marks a page backed by a report.
	PageKindReport PageKind = "report"
)

// Page is a navigable page: either a form workflow or a page report. The
// Workflow/Report pointers reference the live graph node.
type Page struct {
	Name     string
	Kind     PageKind
	Workflow *ObjectWorkflow
	Report   *Report
}
