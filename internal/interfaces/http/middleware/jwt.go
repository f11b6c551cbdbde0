package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/botforce/unity/internal/domain/shared"
	"github.com/botforce/unity/internal/infrastructure/auth"
	"github.com/botforce/unity/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService validates bearer tokens
	JWTService *auth.JWTService
	// DevHeaders accepts X-Tenant-ID and X-User-ID when no bearer token is
	// sent. Development only.
	DevHeaders bool
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// DefaultJWTConfig returns default JWT middleware configuration
func DefaultJWTConfig(jwtService *auth.JWTService) JWTMiddlewareConfig {
	return JWTMiddlewareConfig{
		JWTService:       jwtService,
		SkipPaths:        []string{"/health", "/ready", "/api/v1/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}
}

// JWTAuthMiddleware creates JWT authentication middleware
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(DefaultJWTConfig(jwtService))
}

// JWTAuthMiddlewareWithConfig authenticates the caller and stores tenant and
// user in the gin and request contexts
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		authHeader := c.GetHeader(AuthHeaderKey)
		if authHeader == "" && cfg.DevHeaders {
			tenantID, userID, err := identityFromHeaders(c)
			if err != nil {
				abortUnauthorized(c, dto.ErrCodeTokenInvalid, err.Error())
				return
			}
			setIdentity(c, tenantID, userID)
			c.Next()
			return
		}

		if authHeader == "" {
			abortUnauthorized(c, shared.CodeUnauthorized, "Authentication required")
			return
		}
		tokenString, ok := strings.CutPrefix(authHeader, BearerPrefix)
		if !ok || tokenString == "" {
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid authorization header format")
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			log.Warn("JWT authentication failed",
				zap.String("path", path),
				zap.Error(err),
			)
			if errors.Is(err, auth.ErrExpiredToken) {
				abortUnauthorized(c, dto.ErrCodeTokenExpired, "Token has expired")
				return
			}
			abortUnauthorized(c, dto.ErrCodeTokenInvalid, "Invalid token")
			return
		}

		c.Set(JWTClaimsKey, claims)
		setIdentity(c, claims.TenantUUID(), claims.UserUUID())
		c.Next()
	}
}

func identityFromHeaders(c *gin.Context) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(c.GetHeader(TenantIDHeader))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("X-Tenant-ID must be a UUID")
	}
	userID, err := uuid.Parse(c.GetHeader(UserIDHeader))
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.New("X-User-ID must be a UUID")
	}
	return tenantID, userID, nil
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, c.GetString(RequestIDKey)))
}

// GetJWTClaims retrieves JWT claims from gin.Context. Nil for dev header auth.
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}
