package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteIndex, ChainMiddleware(s.IndexHandler(), s.PageMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteSession, ChainMiddleware(s.SessionHandler(), s.PageMiddleware()...))

	// Signed-out pages
	signedOut := s.PageMiddleware(s.redirectIfSession.Middleware(s.session.State(), s.LoadingHandler()))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), signedOut...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), signedOut...))
	s.RegisterRouteHandler("GET "+RouteSignup, ChainMiddleware(s.SignupPageHandler(), signedOut...))
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupHandler(), signedOut...))
	s.RegisterRouteHandler("GET "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordPageHandler(), signedOut...))
	s.RegisterRouteHandler("POST "+RouteForgotPassword, ChainMiddleware(s.ForgotPasswordHandler(), signedOut...))
	s.RegisterRouteHandler("GET "+RouteResetPassword, ChainMiddleware(s.ResetPasswordPageHandler(), signedOut...))
	s.RegisterRouteHandler("POST "+RouteResetPassword, ChainMiddleware(s.ResetPasswordHandler(), signedOut...))

	// Signed-in pages
	signedIn := s.PageMiddleware(s.requireSession.Middleware(s.session.State(), s.LoadingHandler()))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), signedIn...))
	s.RegisterRouteHandler("POST "+RouteAPIKeys, ChainMiddleware(s.GenerateAPIKeyHandler(), signedIn...))
	s.RegisterRouteHandler("DELETE "+RouteAPIKey, ChainMiddleware(s.DeleteAPIKeyHandler(), signedIn...))
	s.RegisterRouteHandler("GET "+RouteCustomSchemas, ChainMiddleware(s.CustomSchemasHandler(), signedIn...))
	s.RegisterRouteHandler("POST "+RouteCustomSchemas, ChainMiddleware(s.CreateSchemaHandler(), signedIn...))
	s.RegisterRouteHandler("DELETE "+RouteCustomSchema, ChainMiddleware(s.DeleteSchemaHandler(), signedIn...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), signedIn...))

	// API routes
	s.RegisterRouteHandler("POST "+RouteAPIPasswordStrength, ChainMiddleware(s.PasswordStrengthHandler(), s.PageMiddleware()...))
}
