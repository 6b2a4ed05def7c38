package types

import "strings"

// ResourceMetadata is a flat record extracted from a compiled deployment
// template. Its Properties bag is untrusted: it may carry resource names,
// credentials, GUIDs, or anything else the template author wrote. It must
// never cross the process boundary without going through the sanitizer.
type ResourceMetadata struct {
	Type       string         `json:"type"`
	Kind       string         `json:"kind"`
	SKU        string         `json:"sku,omitempty"`
	Region     string         `json:"region,omitempty"`
	APIVersion string         `json:"apiVersion,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// SanitizedResource is the only resource representation allowed to leave the
// local process, either to a remote analysis service or into the review
// comment. SafeProperties contains only values that passed the safety
// predicate; it is omitted entirely when nothing survived.
type SanitizedResource struct {
	Type           string         `json:"type"`
	Kind           string         `json:"kind"`
	SKU            string         `json:"sku,omitempty"`
	Region         string         `json:"region,omitempty"`
	APIVersion     string         `json:"apiVersion,omitempty"`
	SafeProperties map[string]any `json:"safeProperties,omitempty"`
	Count          int            `json:"count,omitempty"`
	Change         string         `json:"change,omitempty"`
}

// Change values used when sanitized resources are aggregated or diffed.
const (
	ChangeAdded    = "added"
	ChangeModified = "modified"
	ChangeRemoved  = "removed"
)

// ExtractionResult holds everything the extractor learned from one compiled
// template.
type ExtractionResult struct {
	Resources     []ResourceMetadata `json:"resources"`
	ResourceCount int                `json:"resourceCount"`
	KindsDetected []string           `json:"kindsDetected"`
}

// SanitizationResult is the sanitizer's output. RemovedFields is a sorted,
// deduplicated list of property keys that were dropped across all resources;
// it exists purely for audit logging and never influences the contract.
type SanitizationResult struct {
	Resources     []SanitizedResource `json:"resources"`
	ResourceCount int                 `json:"resourceCount"`
	RemovedFields []string            `json:"removedFields"`
}

// Violation describes a single residual piece of sensitive data found by the
// validator.
type Violation struct {
	Path   string `json:"path"`
	Rule   string `json:"rule"`
	Detail string `json:"detail"`
}

// ValidationResult is the validator's verdict over an arbitrary payload.
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// Kinds returns the distinct kinds present in the sanitized set, in first
// occurrence order.
func Kinds(resources []SanitizedResource) []string {
	seen := make(map[string]bool)
	var kinds []string
	for _, r := range resources {
		if r.Kind == "" || seen[r.Kind] {
			continue
		}
		seen[r.Kind] = true
		kinds = append(kinds, r.Kind)
	}
	return kinds
}

// String returns a short display form of the sanitized resource.
func (r *SanitizedResource) String() string {
	var sb strings.Builder
	sb.WriteString(r.Kind)
	sb.WriteString(":")
	sb.WriteString(r.Type)
	if r.SKU != "" {
		sb.WriteString(" (")
		sb.WriteString(r.SKU)
		sb.WriteString(")")
	}
	return sb.String()
}
