package sanitizer

import (
	"encoding/json"
	"fmt"

	"github.com/veldtec/iacscan/pkg/types"
)

// Validate re-scans an arbitrary structure for residual sensitive data. It
// does not assume the data went through Sanitize; it walks every key and
// every string value on its own. Callers about to transmit a payload must
// run it and hard-fail on any violation.
//
// Violations name the rule and the path, never the offending value, so the
// result itself stays safe to log.
func Validate(data any) *types.ValidationResult {
	var violations []types.Violation
	generic, ok := normalize(data)
	if !ok {
		// A payload that cannot be serialized cannot be proven safe.
		violations = append(violations, types.Violation{
			Path:   "$",
			Rule:   "unserializable",
			Detail: "payload could not be serialized for scanning",
		})
	} else {
		walk(generic, "$", &violations)
	}
	return &types.ValidationResult{
		Valid:      len(violations) == 0,
		Violations: violations,
	}
}

// normalize round-trips the payload through JSON so that typed structs and
// non-JSON values buried inside maps are scanned the same way their wire form
// would be.
func normalize(data any) (any, bool) {
	switch data.(type) {
	case nil, string, bool, float64:
		return data, true
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, false
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, false
	}
	return generic, true
}

func walk(data any, path string, violations *[]types.Violation) {
	switch v := data.(type) {
	case map[string]any:
		for key, value := range v {
			childPath := path + "." + key
			if isForbiddenField(key) {
				*violations = append(*violations, types.Violation{
					Path:   childPath,
					Rule:   "forbidden_field",
					Detail: fmt.Sprintf("field name %q is blacklisted", key),
				})
			}
			walk(value, childPath, violations)
		}
	case []any:
		for i, elem := range v {
			walk(elem, fmt.Sprintf("%s[%d]", path, i), violations)
		}
	case string:
		checkString(v, path, violations)
	}
}

func checkString(s, path string, violations *[]types.Violation) {
	if guidPattern.MatchString(s) {
		*violations = append(*violations, types.Violation{
			Path:   path,
			Rule:   "guid",
			Detail: "string value contains a GUID-shaped token",
		})
	}
	if resourceIDPattern.MatchString(s) {
		*violations = append(*violations, types.Violation{
			Path:   path,
			Rule:   "resource_id",
			Detail: "string value contains a resource ID path fragment",
		})
	}
	if connectionStringPattern.MatchString(s) {
		*violations = append(*violations, types.Violation{
			Path:   path,
			Rule:   "connection_string",
			Detail: "string value contains a connection string keyword",
		})
	}
}
