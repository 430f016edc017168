package middleware

import (
	"fmt"
	"net/http"
	"strings"

	problem "github.com/developer-overheid-nl/don-image-register/pkg/api_client/helpers/problem"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/repositories"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

const actorKey = "actor"

// Authenticator checks the bearer token scope and resolves the acting actor.
// Without a secret the token is trusted as already verified by the gateway.
type Authenticator struct {
	secret []byte
	actors repositories.ActorRepository
}

func NewAuthenticator(secret string, actors repositories.ActorRepository) *Authenticator {
	a := &Authenticator{actors: actors}
	if secret != "" {
		a.secret = []byte(secret)
	}
	return a
}

// CurrentActor returns the actor resolved by RequireAccess, or nil for
// x-api-key requests.
func CurrentActor(c *gin.Context) *models.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(*models.Actor); ok {
			return actor
		}
	}
	return nil
}

func (a *Authenticator) RequireAccess(requiredScope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Als er een geldige x-api-key was (door APISIX gevalideerd)
		if c.GetHeader("x-api-key") != "" {
			if c.Request.Method != http.MethodGet {
				abort(c, problem.NewForbidden("x-api-key only grants read access"))
				return
			}

			c.Set("auth_method", "api_key")
			c.Next()
			return
		}

		// Anders: JWT token check
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			abort(c, problem.NewUnauthorized("Missing or invalid Authorization header"))
			return
		}

		claims, err := a.parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			abort(c, problem.NewUnauthorized("Invalid access token"))
			return
		}
		if !hasScope(claims, requiredScope) {
			abort(c, problem.NewForbidden("Access token missing required scope"))
			return
		}

		username := usernameFrom(claims)
		if username == "" {
			abort(c, problem.NewUnauthorized("Access token does not identify a user"))
			return
		}
		actor, err := a.actors.FindOrCreate(c.Request.Context(), username)
		if err != nil {
			logging.Log.Error().Err(err).Str("username", username).Msg("resolving actor failed")
			abort(c, problem.NewInternalServerError("could not resolve actor"))
			return
		}
		if actor.System {
			abort(c, problem.NewForbidden(fmt.Sprintf("%q is reserved", username)))
			return
		}

		c.Set("auth_method", "jwt_token")
		c.Set(actorKey, actor)
		c.Next()
	}
}

func (a *Authenticator) parse(tokenStr string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if a.secret == nil {
		if _, _, err := new(jwt.Parser).ParseUnverified(tokenStr, claims); err != nil {
			return nil, err
		}
		return claims, nil
	}

	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func hasScope(claims jwt.MapClaims, requiredScope string) bool {
	scopeStr, ok := claims["scope"].(string)
	if !ok {
		return false
	}

	for _, scope := range strings.Split(scopeStr, " ") {
		if scope == requiredScope {
			return true
		}
	}

	return false
}

func usernameFrom(claims jwt.MapClaims) string {
	for _, key := range []string{"preferred_username", "sub"} {
		if v, ok := claims[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func abort(c *gin.Context, apiErr problem.APIError) {
	c.Header("Content-Type", "application/problem+json")
	c.AbortWithStatusJSON(apiErr.Status, apiErr)
}
