package extractor

// KindOther is assigned to any resource type not present in the lookup
// table, including nested resources with no explicit type.
const KindOther = "other"

// kindByType maps fully qualified resource types to coarse display kinds.
// Lookup is exact and case-sensitive on purpose: versioned or unknown
// sub-types fall through to "other" instead of being miscategorized.
var kindByType = map[string]string{
	// Compute
	"Microsoft.Compute/virtualMachines":           "vm",
	"Microsoft.Compute/virtualMachineScaleSets":   "vmss",
	"Microsoft.Compute/disks":                     "disk",
	"Microsoft.Compute/availabilitySets":          "availability_set",
	"Microsoft.ContainerService/managedClusters":  "aks",
	"Microsoft.ContainerInstance/containerGroups": "container_instance",
	"Microsoft.ContainerRegistry/registries":      "container_registry",

	// Storage and data
	"Microsoft.Storage/storageAccounts":         "storage",
	"Microsoft.Sql/servers":                     "sql_server",
	"Microsoft.Sql/servers/databases":           "sql_database",
	"Microsoft.DocumentDB/databaseAccounts":     "cosmos_db",
	"Microsoft.Cache/redis":                     "redis",
	"Microsoft.DBforPostgreSQL/flexibleServers": "postgresql",
	"Microsoft.DBforMySQL/flexibleServers":      "mysql",
	"Microsoft.EventHub/namespaces":             "event_hub",
	"Microsoft.ServiceBus/namespaces":           "service_bus",

	// App hosting
	"Microsoft.Web/sites":           "app_service",
	"Microsoft.Web/serverfarms":     "app_service_plan",
	"Microsoft.Web/staticSites":     "static_site",
	"Microsoft.App/containerApps":   "container_app",
	"Microsoft.Logic/workflows":     "logic_app",
	"Microsoft.Functions/functions": "function_app",

	// Networking
	"Microsoft.Network/virtualNetworks":       "vnet",
	"Microsoft.Network/networkSecurityGroups": "nsg",
	"Microsoft.Network/publicIPAddresses":     "public_ip",
	"Microsoft.Network/loadBalancers":         "load_balancer",
	"Microsoft.Network/applicationGateways":   "app_gateway",
	"Microsoft.Network/networkInterfaces":     "nic",
	"Microsoft.Network/privateEndpoints":      "private_endpoint",
	"Microsoft.Network/dnsZones":              "dns_zone",
	"Microsoft.Cdn/profiles":                  "cdn",

	// Security and identity
	"Microsoft.KeyVault/vaults":                        "key_vault",
	"Microsoft.ManagedIdentity/userAssignedIdentities": "managed_identity",
	"Microsoft.Authorization/roleAssignments":          "role_assignment",

	// Observability
	"Microsoft.Insights/components":            "app_insights",
	"Microsoft.OperationalInsights/workspaces": "log_analytics",
	"Microsoft.Insights/actionGroups":          "action_group",

	// AI and integration
	"Microsoft.CognitiveServices/accounts": "cognitive_services",
	"Microsoft.ApiManagement/service":      "api_management",
	"Microsoft.SignalRService/signalR":     "signalr",
}

// kindForType resolves a resource type to its display kind.
func kindForType(resourceType string) string {
	if kind, ok := kindByType[resourceType]; ok {
		return kind
	}
	return KindOther
}
