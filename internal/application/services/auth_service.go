package services

import (
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/DriftwoodCreative/pulsetrack-go/internal/infrastructure/security"
	"github.com/DriftwoodCreative/pulsetrack-go/pkg/config"
)

// AuthService handles dashboard authentication and JWT operations
type AuthService struct {
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new authentication service
func NewAuthService(logger *logging.ChanneledLogger) *AuthService {
	return &AuthService{logger: logger}
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token   string `json:"token"`
	Role    string `json:"role"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// AuthenticateAdmin validates admin credentials and generates a JWT
func (a *AuthService) AuthenticateAdmin(password string) *AuthResult {
	if config.AdminPasswordHash == "" || config.JWTSecret == "" {
		a.logger.Auth().Error("Dashboard auth is not configured")
		return &AuthResult{Success: false, Error: "authentication not configured"}
	}

	if !security.CheckPassword(config.AdminPasswordHash, password) {
		a.logger.LogAuthOperation("login", security.RoleAdmin, false)
		return &AuthResult{Success: false, Error: "invalid credentials"}
	}

	token, err := security.GenerateDashboardToken(security.RoleAdmin, security.RoleAdmin, config.JWTSecret, config.TokenLifetime)
	if err != nil {
		a.logger.Auth().Error("Failed to generate dashboard token", "error", err.Error())
		return &AuthResult{Success: false, Error: "token generation failed"}
	}

	a.logger.LogAuthOperation("login", security.RoleAdmin, true)
	return &AuthResult{Token: token, Role: security.RoleAdmin, Success: true}
}

// ValidateToken checks a dashboard token and returns its role.
func (a *AuthService) ValidateToken(token string) (string, bool) {
	claims, err := security.ValidateJWT(token, config.JWTSecret)
	if err != nil {
		return "", false
	}
	role := security.RoleFromClaims(claims)
	return role, role != ""
}
