package config

import "time"

const (
	signInRouteVar        = "SIGN_IN_ROUTE"
	dashboardRouteVar     = "DASHBOARD_ROUTE"
	tokenLeewayVar        = "TOKEN_LEEWAY"
	revalidateIntervalVar = "REVALIDATE_INTERVAL"
)

type SessionConfig interface {
	GetSignInRoute() string
	GetDashboardRoute() string
	GetTokenLeeway() time.Duration
	GetRevalidateInterval() time.Duration
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSignInRoute() string {
	return GetEnv(signInRouteVar, "/login")
}

func (Session) GetDashboardRoute() string {
	return GetEnv(dashboardRouteVar, "/dashboard")
}

// GetTokenLeeway is the clock-skew tolerance applied to token expiry checks. Zero unless configured.
func (Session) GetTokenLeeway() time.Duration {
	return GetDuration(tokenLeewayVar, 0)
}

func (Session) GetRevalidateInterval() time.Duration {
	return GetDuration(revalidateIntervalVar, 5*time.Minute)
}
