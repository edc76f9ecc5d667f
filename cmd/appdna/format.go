package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatYAML:
		return formatYAML(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// formatJSON formats the response as JSON
func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// formatYAML formats the response as YAML
func formatYAML(resp interface{}) (string, error) {
	data, err := yaml.Marshal(resp)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return strings.TrimRight(string(data), "\n"), nil
}

// formatHuman formats the response in human-readable format
func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *objectsResponseCLI:
		return formatObjectsHuman(v)
	case *historyResponseCLI:
		return formatHistoryHuman(v)
	default:
		// For unknown types, fall back to JSON
		return formatJSON(resp)
	}
}

// formatObjectsHuman formats an objectsResponseCLI in human-readable format
func formatObjectsHuman(resp *objectsResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Data Objects - %s\n", resp.ModelFile))
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(fmt.Sprintf("Found %d objects\n\n", len(resp.Objects)))

	for i, obj := range resp.Objects {
		kind := "object"
		if obj.IsLookup {
			kind = "lookup"
		}
		b.WriteString(fmt.Sprintf("%d. %s (%s)\n", i+1, obj.Name, kind))
		b.WriteString(fmt.Sprintf("   Namespace: %s\n", obj.Namespace))
		if obj.ParentObjectName != "" {
			b.WriteString(fmt.Sprintf("   Parent: %s\n", obj.ParentObjectName))
		}
		if obj.CodeDescription != "" {
			b.WriteString(fmt.Sprintf("   Description: %s\n", obj.CodeDescription))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}

// formatHistoryHuman formats a historyResponseCLI in human-readable format
func formatHistoryHuman(resp *historyResponseCLI) (string, error) {
	var b strings.Builder

	b.WriteString("Model Change History\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")

	if len(resp.Entries) == 0 {
		b.WriteString("No changes recorded.\n")
		return b.String(), nil
	}

	for _, e := range resp.Entries {
		b.WriteString(fmt.Sprintf("%s  %s %s %q",
			e.OccurredAt.Format("2006-01-02 15:04:05"), e.Action, e.Entity, e.Name))
		if e.Namespace != "" {
			b.WriteString(fmt.Sprintf(" in %s", e.Namespace))
		}
		if e.Actor != "" {
			b.WriteString(fmt.Sprintf(" [%s]", e.Actor))
		}
		b.WriteString("\n")
		if e.Detail != "" {
			b.WriteString(fmt.Sprintf("    %s\n", e.Detail))
		}
	}

	return b.String(), nil
}
