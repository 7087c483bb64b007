package server

// Route path constants
// All host routes are defined here to ensure consistency and prevent typos
const (
	RouteIndex   = "/{$}"
	RouteSession = "/session"

	// Account routes, only for signed-out users
	RouteLogin          = "/login"
	RouteSignup         = "/signup"
	RouteForgotPassword = "/forgot-password"
	RouteResetPassword  = "/reset-password"

	// Dashboard routes, only for signed-in users
	RouteDashboard     = "/dashboard"
	RouteAPIKeys       = "/dashboard/api-keys"
	RouteAPIKey        = "/dashboard/api-keys/{id}"
	RouteCustomSchemas = "/dashboard/custom-schemas"
	RouteCustomSchema  = "/dashboard/custom-schemas/{id}"
	RouteLogout        = "/logout"

	// API Routes
	RouteAPIPasswordStrength = "/api/password-strength"
)
