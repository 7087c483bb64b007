package api

// Backend route paths, relative to API_BASE_URL.
const (
	// Auth routes
	RouteRegister       = "/auth/register"
	RouteLogin          = "/auth/login"
	RouteRefresh        = "/auth/refresh"
	RouteMe             = "/auth/me"
	RouteForgotPassword = "/auth/forgot-password"
	RouteResetPassword  = "/auth/reset-password"

	// API key routes
	RouteListAPIKeys    = "/apiKey/getAllApiKey"
	RouteGenerateAPIKey = "/apiKey/generateApiKey"
	RouteDeleteAPIKey   = "/apiKey/deleteApiKey/"

	// Schema routes
	RouteCreateSchema = "/userApi/createApiSchema"
	RouteListSchemas  = "/userApi/gettAllCreatedSchema"
	RouteDeleteSchema = "/userApi/deleteSchema/"
)
