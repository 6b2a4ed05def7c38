// Package extractor walks a compiled deployment template and flattens its
// resource tree into ResourceMetadata records. Its output is untrusted for
// privacy and must go through the sanitizer before leaving the process.
package extractor

import (
	"encoding/json"
	"sort"

	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/pkg/types"
)

// typeUnknown is the default for resources without an explicit type.
const typeUnknown = "unknown"

// Extract parses a compiled template and produces flat resource records.
// Returns a Parse error when the text is not valid JSON and a Schema error
// when the top-level resources field is absent or not an array. Individual
// malformed resources are skipped, never errored: the template comes from a
// compiler, so its structure is semi-trusted even though its content is not.
func Extract(compiledTemplate []byte) (*types.ExtractionResult, error) {
	var doc map[string]any
	if err := json.Unmarshal(compiledTemplate, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrorTypeParse, "compiled template is not valid JSON", err)
	}

	raw, ok := doc["resources"]
	if !ok {
		return nil, errors.NewSchemaError("compiled template has no top-level resources field")
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, errors.NewSchemaError("compiled template resources field is not an array")
	}

	var resources []types.ResourceMetadata
	for _, entry := range list {
		resources = collectResource(entry, resources)
	}

	return &types.ExtractionResult{
		Resources:     resources,
		ResourceCount: len(resources),
		KindsDetected: distinctKinds(resources),
	}, nil
}

// collectResource appends the metadata for one resource and, depth-first in
// document order, for each of its nested child resources. Non-object entries
// are skipped.
func collectResource(entry any, acc []types.ResourceMetadata) []types.ResourceMetadata {
	resource, ok := entry.(map[string]any)
	if !ok {
		return acc
	}

	meta := types.ResourceMetadata{
		Type:       stringField(resource, "type", typeUnknown),
		SKU:        extractSKU(resource),
		APIVersion: stringField(resource, "apiVersion", ""),
	}
	meta.Kind = kindForType(meta.Type)
	if location, ok := resource["location"].(string); ok {
		meta.Region = location
	}
	if props, ok := resource["properties"].(map[string]any); ok {
		meta.Properties = shallowCopy(props)
	}
	acc = append(acc, meta)

	if children, ok := resource["resources"].([]any); ok {
		for _, child := range children {
			acc = collectResource(child, acc)
		}
	}
	return acc
}

// extractSKU resolves the resource SKU. Precedence is fixed: sku.name, then
// sku.tier, then properties.sku as a plain string, then properties.sku.name.
func extractSKU(resource map[string]any) string {
	if sku, ok := resource["sku"].(map[string]any); ok {
		if name, ok := sku["name"].(string); ok && name != "" {
			return name
		}
		if tier, ok := sku["tier"].(string); ok && tier != "" {
			return tier
		}
	}
	props, ok := resource["properties"].(map[string]any)
	if !ok {
		return ""
	}
	switch sku := props["sku"].(type) {
	case string:
		return sku
	case map[string]any:
		if name, ok := sku["name"].(string); ok {
			return name
		}
	}
	return ""
}

func stringField(m map[string]any, key, fallback string) string {
	if s, ok := m[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func shallowCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func distinctKinds(resources []types.ResourceMetadata) []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, r := range resources {
		if !seen[r.Kind] {
			seen[r.Kind] = true
			kinds = append(kinds, r.Kind)
		}
	}
	sort.Strings(kinds)
	return kinds
}
