package configserver

// Config-server endpoints, relative to the configured base URL. Every call is a POST.
const (
	EndpointNamespaceList   = "/namespace/list"
	EndpointNamespaceCreate = "/namespace/create"
	EndpointNamespaceDelete = "/namespace/delete"
	EndpointNamespaceFiles  = "/namespace/files"

	EndpointConfigFetch   = "/config/fetch"
	EndpointConfigCreate  = "/config/create"
	EndpointConfigUpdate  = "/config/update"
	EndpointConfigDelete  = "/config/delete"
	EndpointConfigHistory = "/config/history"
	EndpointConfigChanges = "/config/changes"

	EndpointVaultGet     = "/vault/get"
	EndpointVaultUpdate  = "/vault/update"
	EndpointVaultHistory = "/vault/history"
	EndpointVaultChanges = "/vault/changes"

	EndpointNotifyList = "/notify/list"
	EndpointEventsList = "/events/list"

	EndpointAuthLogin  = "/auth/login"
	EndpointAuthLogout = "/auth/logout"
	EndpointAuthVerify = "/auth/verify"
)

// Actions carried in the action field of config file requests
const (
	ActionFetch  = "fetch"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)
