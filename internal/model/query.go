package model

import (
	"sort"
	"strings"
)

// RoleObjectName is the data object whose lookup items define the set of
// roles. Matching is case-insensitive.
const RoleObjectName = "Role"

// DefaultNamespaceName is used when a model has no namespace yet.
const DefaultNamespaceName = "Default"

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func hasPageInitSuffix(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, "initobjwf") || strings.HasSuffix(lower, "initreport")
}

// Objects returns every DataObject across all namespaces, in document order.
// The returned slice is fresh; the elements reference the live graph.
func Objects(root *RootModel) []*DataObject {
	objects := make([]*DataObject, 0)
	if root == nil {
		return objects
	}
	for _, ns := range root.Namespace {
		objects = append(objects, ns.Object...)
	}
	return objects
}

// Reports returns every report of every object, in document order.
func Reports(root *RootModel) []*Report {
	reports := make([]*Report, 0)
	for _, obj := range Objects(root) {
		reports = append(reports, obj.Report...)
	}
	return reports
}

// Workflows returns every object workflow, in document order.
func Workflows(root *RootModel) []*ObjectWorkflow {
	flows := make([]*ObjectWorkflow, 0)
	for _, obj := range Objects(root) {
		flows = append(flows, obj.ObjectWorkflow...)
	}
	return flows
}

// Forms returns the workflows classified as page forms.
func Forms(root *RootModel) []*ObjectWorkflow {
	forms := make([]*ObjectWorkflow, 0)
	for _, wf := range Workflows(root) {
		if wf.IsForm() {
			forms = append(forms, wf)
		}
	}
	return forms
}

// GeneralFlows returns the workflows classified as general flows: not
// pages, not DynaFlows or DynaFlow tasks, and not page-init flows.
func GeneralFlows(root *RootModel) []*ObjectWorkflow {
	flows := make([]*ObjectWorkflow, 0)
	for _, wf := range Workflows(root) {
		if wf.IsGeneralFlow() {
			flows = append(flows, wf)
		}
	}
	return flows
}

// PageWorkflows returns the workflows that participate in page navigation.
// Identical membership to Forms; kept separate because callers distinguish
// the two concepts.
func PageWorkflows(root *RootModel) []*ObjectWorkflow {
	return Forms(root)
}

// Pages returns every navigable page: page workflows plus reports whose
// IsPage is absent or set.
func Pages(root *RootModel) []*Page {
	pages := make([]*Page, 0)
	for _, wf := range PageWorkflows(root) {
		pages = append(pages, &Page{Name: wf.Name, Kind: PageKindForm, Workflow: wf})
	}
	for _, rep := range Reports(root) {
		if rep.IsPageView() {
			pages = append(pages, &Page{Name: rep.Name, Kind: PageKindReport, Report: rep})
		}
	}
	return pages
}

// UserStories returns every user story across all namespaces.
func UserStories(root *RootModel) []*UserStory {
	stories := make([]*UserStory, 0)
	if root == nil {
		return stories
	}
	for _, ns := range root.Namespace {
		stories = append(stories, ns.UserStory...)
	}
	return stories
}

// FindObject returns the first DataObject matching name, compared
// case-insensitively with surrounding whitespace ignored. Returns nil when
// absent; missing is not an error.
func FindObject(root *RootModel, name string) *DataObject {
	key := normalizeName(name)
	if key == "" {
		return nil
	}
	for _, obj := range Objects(root) {
		if normalizeName(obj.Name) == key {
			return obj
		}
	}
	return nil
}

// FindReport returns the first report matching name, case-insensitive.
func FindReport(root *RootModel, name string) *Report {
	key := normalizeName(name)
	if key == "" {
		return nil
	}
	for _, rep := range Reports(root) {
		if normalizeName(rep.Name) == key {
			return rep
		}
	}
	return nil
}

// FindForm returns the first form workflow matching name, case-insensitive.
func FindForm(root *RootModel, name string) *ObjectWorkflow {
	key := normalizeName(name)
	if key == "" {
		return nil
	}
	for _, wf := range Forms(root) {
		if normalizeName(wf.Name) == key {
			return wf
		}
	}
	return nil
}

// FindPage returns the first page matching name, case-insensitive.
func FindPage(root *RootModel, name string) *Page {
	key := normalizeName(name)
	if key == "" {
		return nil
	}
	for _, page := range Pages(root) {
		if normalizeName(page.Name) == key {
			return page
		}
	}
	return nil
}

// OwnerOfReport returns the DataObject whose report array contains the
// named report, or nil.
func OwnerOfReport(root *RootModel, name string) *DataObject {
	key := normalizeName(name)
	for _, obj := range Objects(root) {
		for _, rep := range obj.Report {
			if normalizeName(rep.Name) == key {
				return obj
			}
		}
	}
	return nil
}

// OwnerOfForm returns the DataObject owning the named form workflow, or nil.
func OwnerOfForm(root *RootModel, name string) *DataObject {
	key := normalizeName(name)
	for _, obj := range Objects(root) {
		for _, wf := range obj.ObjectWorkflow {
			if wf.IsForm() && normalizeName(wf.Name) == key {
				return obj
			}
		}
	}
	return nil
}

// OwnerOfFlow returns the DataObject owning the named workflow of any
// classification, or nil.
func OwnerOfFlow(root *RootModel, name string) *DataObject {
	key := normalizeName(name)
	for _, obj := range Objects(root) {
		for _, wf := range obj.ObjectWorkflow {
			if normalizeName(wf.Name) == key {
				return obj
			}
		}
	}
	return nil
}

// OwnerOfPage returns the DataObject owning the named page, checking form
// workflows first, then page reports.
func OwnerOfPage(root *RootModel, name string) *DataObject {
	if owner := OwnerOfForm(root, name); owner != nil {
		return owner
	}
	key := normalizeName(name)
	for _, obj := range Objects(root) {
		for _, rep := range obj.Report {
			if rep.IsPageView() && normalizeName(rep.Name) == key {
				return obj
			}
		}
	}
	return nil
}

// ReportTargetChildObject resolves the named report's targetChildObject
// reference to a DataObject, or nil when the report or target is absent.
func ReportTargetChildObject(root *RootModel, reportName string) *DataObject {
	rep := FindReport(root, reportName)
	if rep == nil || rep.TargetChildObject == "" {
		return nil
	}
	return FindObject(root, rep.TargetChildObject)
}

// RoleObject returns the DataObject named "Role" (any case), or nil.
// Roles are not first-class entities; they are the lookup items of this
// object.
func RoleObject(root *RootModel) *DataObject {
	return FindObject(root, RoleObjectName)
}

// RoleNames returns the distinct role names sorted lexicographically, or
// an empty slice when the model has no Role object.
func RoleNames(root *RootModel) []string {
	names := make([]string, 0)
	roleObj := RoleObject(root)
	if roleObj == nil {
		return names
	}
	seen := make(map[string]struct{}, len(roleObj.LookupItem))
	for _, item := range roleObj.LookupItem {
		if item.Name == "" {
			continue
		}
		if _, ok := seen[item.Name]; ok {
			continue
		}
		seen[item.Name] = struct{}{}
		names = append(names, item.Name)
	}
	sort.Strings(names)
	return names
}

// ObjectNames returns the names of all data objects, in document order.
func ObjectNames(root *RootModel) []string {
	objects := Objects(root)
	names := make([]string, 0, len(objects))
	for _, obj := range objects {
		names = append(names, obj.Name)
	}
	return names
}

// NamespaceOfObject returns the namespace containing the named object,
// case-insensitive, or nil.
func NamespaceOfObject(root *RootModel, name string) *Namespace {
	if root == nil {
		return nil
	}
	key := normalizeName(name)
	for _, ns := range root.Namespace {
		for _, obj := range ns.Object {
			if normalizeName(obj.Name) == key {
				return ns
			}
		}
	}
	return nil
}

// EnsureNamespace returns the first namespace, creating a default one when
// the model has none.
func EnsureNamespace(root *RootModel) *Namespace {
	if len(root.Namespace) == 0 {
		root.Namespace = append(root.Namespace, &Namespace{Name: DefaultNamespaceName})
	}
	return root.Namespace[0]
}
