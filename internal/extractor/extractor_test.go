package extractor

import (
	"testing"

	"github.com/veldtec/iacscan/internal/errors"
)

func TestExtractParseError(t *testing.T) {
	_, err := Extract([]byte("not json at all {"))
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if !errors.IsType(err, errors.ErrorTypeParse) {
		t.Errorf("expected Parse error, got %v", err)
	}
}

func TestExtractSchemaError(t *testing.T) {
	tests := []struct {
		name     string
		template string
	}{
		{"missing resources", `{"parameters": {}}`},
		{"resources not an array", `{"resources": {"a": 1}}`},
		{"resources is a string", `{"resources": "nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract([]byte(tt.template))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.IsType(err, errors.ErrorTypeSchema) {
				t.Errorf("expected Schema error, got %v", err)
			}
		})
	}
}

func TestExtractEmptyResources(t *testing.T) {
	result, err := Extract([]byte(`{"resources": []}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResourceCount != 0 {
		t.Errorf("expected 0 resources, got %d", result.ResourceCount)
	}
}

func TestExtractKindLookup(t *testing.T) {
	tests := []struct {
		name         string
		resourceType string
		expected     string
	}{
		{"vm", "Microsoft.Compute/virtualMachines", "vm"},
		{"storage", "Microsoft.Storage/storageAccounts", "storage"},
		{"app service", "Microsoft.Web/sites", "app_service"},
		{"key vault", "Microsoft.KeyVault/vaults", "key_vault"},
		{"unknown type", "Contoso.Custom/widgets", "other"},
		// Lookup is exact and case-sensitive; variants fall through.
		{"wrong case", "microsoft.compute/virtualmachines", "other"},
		{"versioned sub-type", "Microsoft.Compute/virtualMachines/extensions", "other"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := kindForType(tt.resourceType); got != tt.expected {
				t.Errorf("kindForType(%q) = %q, want %q", tt.resourceType, got, tt.expected)
			}
		})
	}
}

func TestExtractSingleVM(t *testing.T) {
	template := `{
		"resources": [
			{
				"type": "Microsoft.Compute/virtualMachines",
				"apiVersion": "2023-03-01",
				"location": "eastus",
				"sku": {"name": "Standard_D2s_v3"},
				"properties": {
					"osProfile": {"adminPassword": "P@ssw0rd"}
				}
			}
		]
	}`

	result, err := Extract([]byte(template))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResourceCount != 1 {
		t.Fatalf("expected 1 resource, got %d", result.ResourceCount)
	}

	r := result.Resources[0]
	if r.Kind != "vm" {
		t.Errorf("expected kind vm, got %q", r.Kind)
	}
	if r.SKU != "Standard_D2s_v3" {
		t.Errorf("expected SKU Standard_D2s_v3, got %q", r.SKU)
	}
	if r.Region != "eastus" {
		t.Errorf("expected region eastus, got %q", r.Region)
	}
	if r.APIVersion != "2023-03-01" {
		t.Errorf("expected apiVersion 2023-03-01, got %q", r.APIVersion)
	}
	if _, ok := r.Properties["osProfile"]; !ok {
		t.Error("expected properties to carry osProfile untouched")
	}
}

func TestExtractSKUPrecedence(t *testing.T) {
	tests := []struct {
		name     string
		resource string
		expected string
	}{
		{
			"sku.name wins",
			`{"sku": {"name": "P1v3", "tier": "Premium"}, "properties": {"sku": "Basic"}}`,
			"P1v3",
		},
		{
			"sku.tier second",
			`{"sku": {"tier": "Premium"}, "properties": {"sku": "Basic"}}`,
			"Premium",
		},
		{
			"properties.sku string third",
			`{"properties": {"sku": "Basic"}}`,
			"Basic",
		},
		{
			"properties.sku.name last",
			`{"properties": {"sku": {"name": "S1"}}}`,
			"S1",
		},
		{
			"no sku anywhere",
			`{"properties": {}}`,
			"",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			template := `{"resources": [` + tt.resource + `]}`
			result, err := Extract([]byte(template))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.Resources[0].SKU; got != tt.expected {
				t.Errorf("SKU = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestExtractNestedResourcesDepthFirst(t *testing.T) {
	template := `{
		"resources": [
			{
				"type": "Microsoft.Storage/storageAccounts",
				"resources": [
					{"type": "Microsoft.Storage/storageAccounts/blobServices"},
					{"properties": {"x": 1}}
				]
			},
			{"type": "Microsoft.Web/sites"}
		]
	}`

	result, err := Extract([]byte(template))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResourceCount != 4 {
		t.Fatalf("expected 4 resources, got %d", result.ResourceCount)
	}

	wantTypes := []string{
		"Microsoft.Storage/storageAccounts",
		"Microsoft.Storage/storageAccounts/blobServices",
		"unknown",
		"Microsoft.Web/sites",
	}
	for i, want := range wantTypes {
		if result.Resources[i].Type != want {
			t.Errorf("resource[%d].Type = %q, want %q", i, result.Resources[i].Type, want)
		}
	}
	// The untyped child resolves to kind "other".
	if result.Resources[2].Kind != KindOther {
		t.Errorf("untyped child kind = %q, want %q", result.Resources[2].Kind, KindOther)
	}
}

func TestExtractSkipsMalformedEntries(t *testing.T) {
	template := `{
		"resources": [
			null,
			42,
			"just a string",
			{"type": "Microsoft.Web/sites"},
			{"type": "Microsoft.Compute/virtualMachines", "properties": null}
		]
	}`

	result, err := Extract([]byte(template))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ResourceCount != 2 {
		t.Errorf("expected 2 resources, got %d", result.ResourceCount)
	}
	if result.Resources[1].Properties != nil {
		t.Error("null properties should stay absent")
	}
}

func TestExtractKindsDetected(t *testing.T) {
	template := `{
		"resources": [
			{"type": "Microsoft.Web/sites"},
			{"type": "Microsoft.Web/sites"},
			{"type": "Microsoft.Storage/storageAccounts"},
			{"type": "Contoso.Custom/widgets"}
		]
	}`

	result, err := Extract([]byte(template))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"app_service", "other", "storage"}
	if len(result.KindsDetected) != len(want) {
		t.Fatalf("KindsDetected = %v, want %v", result.KindsDetected, want)
	}
	for i := range want {
		if result.KindsDetected[i] != want[i] {
			t.Errorf("KindsDetected[%d] = %q, want %q", i, result.KindsDetected[i], want[i])
		}
	}
}

func TestExtractPropertiesShallowCopy(t *testing.T) {
	template := `{"resources": [{"type": "t", "properties": {"a": 1, "b": {"c": 2}}}]}`
	result, err := Extract([]byte(template))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	props := result.Resources[0].Properties
	if len(props) != 2 {
		t.Fatalf("expected 2 property keys, got %d", len(props))
	}
	// Mutating the copy's top level must not be visible anywhere else, and
	// nested values are intentionally not cloned.
	props["a"] = 99
}
