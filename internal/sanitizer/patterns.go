package sanitizer

import (
	"regexp"
	"strings"
)

// Pattern constants shared by the redaction pass (Sanitize) and the
// independent post-hoc scanner (Validate). The two passes stay separate on
// purpose; only these constants are common.
var (
	guidPattern = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)

	// Azure resource ID fragments such as
	// /subscriptions/<guid>/resourceGroups/<name>/...
	resourceIDPattern = regexp.MustCompile(`(?i)/resourcegroups/`)

	connectionStringPattern = regexp.MustCompile(`(?i)(accountkey=|defaultendpointsprotocol=|sharedaccesssignature=|sharedaccesskey=|accountname=|password=|pwd=|user id=|server=tcp:|data source=)`)

	base64BlobPattern = regexp.MustCompile(`[A-Za-z0-9+/]{40,}={0,2}`)
)

// maxSafeStringLen is the cutoff above which a string is treated as a
// probable free-text identifier.
const maxSafeStringLen = 50

// forbiddenFields are property key names dropped regardless of value.
// Matching is case-insensitive, exact or substring.
var forbiddenFields = []string{
	"name",
	"id",
	"password",
	"secret",
	"key",
	"token",
	"credential",
	"principalid",
	"tenantid",
	"clientid",
	"subscriptionid",
	"ipaddress",
	"dependson",
	"connectionstring",
	"thumbprint",
	"certificate",
	"signature",
	"sas",
	"fqdn",
	"hostname",
	"uri",
	"url",
	"email",
	"username",
	"login",
}

// safeKeys are property keys whose scalar values are kept even when the
// generic string heuristic would reject them, as long as the value carries no
// sensitive pattern and is not over-long. Structural sizing and toggle fields.
var safeKeys = map[string]bool{
	"tier":      true,
	"capacity":  true,
	"size":      true,
	"count":     true,
	"enabled":   true,
	"replicas":  true,
	"cores":     true,
	"memory":    true,
	"version":   true,
	"protocol":  true,
	"port":      true,
	"family":    true,
	"mode":      true,
	"state":     true,
	"status":    true,
	"priority":  true,
	"weight":    true,
	"interval":  true,
	"frequency": true,
}

// safeEnums are short configuration words that carry no instance data.
var safeEnums = map[string]bool{
	"enabled":  true,
	"disabled": true,
	"true":     true,
	"false":    true,
	"on":       true,
	"off":      true,
	"allow":    true,
	"deny":     true,
	"accept":   true,
	"reject":   true,
}

// noLettersPattern matches numeric and network literals: versions, CIDRs,
// ports, ratios. Strings without letters cannot spell out a name or secret
// keyword, so they are treated as non-identifying.
var noLettersPattern = regexp.MustCompile(`^[0-9.:/\-*%]+$`)

// isForbiddenField reports whether a property key is blacklisted, by exact
// match or substring containment, case-insensitive.
func isForbiddenField(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range forbiddenFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}

// isSafeKey reports whether a key is on the known-safe whitelist.
func isSafeKey(key string) bool {
	return safeKeys[strings.ToLower(key)]
}

// sensitiveRule returns the name of the first value pattern a string matches,
// or "" when it matches none.
func sensitiveRule(s string) string {
	switch {
	case guidPattern.MatchString(s):
		return "guid"
	case resourceIDPattern.MatchString(s):
		return "resource_id"
	case connectionStringPattern.MatchString(s):
		return "connection_string"
	case base64BlobPattern.MatchString(s):
		return "base64_blob"
	default:
		return ""
	}
}

// isSafeString is the safety predicate for string values. Short strings and
// recognized enum words are always safe; over-long strings, strings carrying
// a sensitive pattern, and free-text strings (anything spelling out words)
// are not.
func isSafeString(s string) bool {
	if len(s) <= 3 {
		return true
	}
	if safeEnums[strings.ToLower(s)] {
		return true
	}
	if len(s) > maxSafeStringLen {
		return false
	}
	if sensitiveRule(s) != "" {
		return false
	}
	return noLettersPattern.MatchString(s)
}

// isSafeScalar is the safety predicate over a single JSON scalar. Numbers,
// booleans and null are always safe; strings go through isSafeString.
func isSafeScalar(v any) bool {
	switch s := v.(type) {
	case nil, bool, float64, int, int64, float32:
		return true
	case string:
		return isSafeString(s)
	default:
		return false
	}
}

// isCleanString reports whether a string is free of sensitive patterns and
// short enough to keep. Weaker than isSafeString; only valid for values whose
// key is whitelisted.
func isCleanString(s string) bool {
	return len(s) <= maxSafeStringLen && sensitiveRule(s) == ""
}
