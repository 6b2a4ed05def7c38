// Package sanitizer enforces the privacy contract: no resource name,
// identifier, credential, GUID, connection string, or other re-identifying
// value leaves the local process boundary. It is a layered heuristic
// classifier, not a provably complete PII detector; the redaction pass in
// Sanitize and the whole-structure scanner in Validate are two independent
// layers of the same contract.
package sanitizer

import (
	"sort"
	"strings"

	"github.com/veldtec/iacscan/pkg/types"
)

// Sanitize converts untrusted resource metadata into transmit-safe records.
// It is pure and total: same input yields same output, the input is never
// mutated, and no input shape causes an error.
func Sanitize(resources []types.ResourceMetadata) *types.SanitizationResult {
	removed := make(map[string]bool)
	sanitized := make([]types.SanitizedResource, 0, len(resources))

	for _, r := range resources {
		out := types.SanitizedResource{
			// Type and kind are classification labels, not instance data.
			Type: r.Type,
			Kind: r.Kind,
			// SKU, region and API version are display metadata shared by
			// every deployment of the same shape.
			SKU:        r.SKU,
			Region:     r.Region,
			APIVersion: r.APIVersion,
		}
		if len(r.Properties) > 0 {
			if safe := sanitizeMap(r.Properties, removed); len(safe) > 0 {
				out.SafeProperties = safe
			}
		}
		sanitized = append(sanitized, out)
	}

	return &types.SanitizationResult{
		Resources:     sanitized,
		ResourceCount: len(sanitized),
		RemovedFields: sortedKeys(removed),
	}
}

// sanitizeMap rebuilds a property bag field by field, keeping only values
// that pass the safety predicate. Dropped keys are recorded in removed, which
// is threaded through the whole call rather than held in package state.
func sanitizeMap(props map[string]any, removed map[string]bool) map[string]any {
	safe := make(map[string]any)

	for key, value := range props {
		// Tag values are explicitly out of trust, whatever they hold.
		if strings.EqualFold(key, "tags") {
			removed[key] = true
			continue
		}
		if isForbiddenField(key) {
			removed[key] = true
			continue
		}

		switch v := value.(type) {
		case map[string]any:
			if nested := sanitizeMap(v, removed); len(nested) > 0 {
				safe[key] = nested
			}
		case []any:
			// A single unsafe element drops the whole array. Partially
			// redacted arrays would be ambiguous, so ambiguity resolves
			// toward safety.
			if arrayIsSafe(v) {
				safe[key] = copyArray(v)
			} else {
				removed[key] = true
			}
		default:
			if isSafeScalar(v) || scalarAllowedByKey(key, v) {
				safe[key] = v
			} else {
				removed[key] = true
			}
		}
	}

	return safe
}

// scalarAllowedByKey applies the known-safe key whitelist. A whitelisted key
// keeps its value past the generic string heuristic, but never past the hard
// limits: over-long strings and sensitive patterns are dropped regardless.
func scalarAllowedByKey(key string, v any) bool {
	if !isSafeKey(key) {
		return false
	}
	if s, ok := v.(string); ok {
		return isCleanString(s)
	}
	return isSafeScalar(v)
}

// arrayIsSafe reports whether every element of an array is independently
// safe. Nested objects inside arrays qualify only when nothing in them would
// require redaction.
func arrayIsSafe(arr []any) bool {
	for _, elem := range arr {
		switch e := elem.(type) {
		case map[string]any:
			if !mapIsFullySafe(e) {
				return false
			}
		case []any:
			if !arrayIsSafe(e) {
				return false
			}
		default:
			if !isSafeScalar(e) {
				return false
			}
		}
	}
	return true
}

// mapIsFullySafe reports whether sanitizing a map would keep every entry.
func mapIsFullySafe(m map[string]any) bool {
	for key, value := range m {
		if strings.EqualFold(key, "tags") || isForbiddenField(key) {
			return false
		}
		switch v := value.(type) {
		case map[string]any:
			if !mapIsFullySafe(v) {
				return false
			}
		case []any:
			if !arrayIsSafe(v) {
				return false
			}
		default:
			if !isSafeScalar(v) && !scalarAllowedByKey(key, v) {
				return false
			}
		}
	}
	return true
}

// copyArray returns a fresh slice so sanitizer output never aliases the
// untrusted input. Elements are copied recursively for the same reason.
func copyArray(arr []any) []any {
	out := make([]any, len(arr))
	for i, elem := range arr {
		switch e := elem.(type) {
		case map[string]any:
			out[i] = copyMap(e)
		case []any:
			out[i] = copyArray(e)
		default:
			out[i] = elem
		}
	}
	return out
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		switch vv := v.(type) {
		case map[string]any:
			out[k] = copyMap(vv)
		case []any:
			out[k] = copyArray(vv)
		default:
			out[k] = v
		}
	}
	return out
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
