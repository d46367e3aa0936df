package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"firebase.google.com/go/v4/auth"

	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/internal/response"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

// RoleClaim is the Firebase custom claim carrying the caller's role.
const RoleClaim = "role"

type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type Middleware struct {
	AuthClient      tokenVerifier
	ResponseHandler response.ResponseHandler
}

func NewMiddleware(client tokenVerifier, resp response.ResponseHandler) *Middleware {
	return &Middleware{AuthClient: client, ResponseHandler: resp}
}

// context key
type contextKey string

const (
	UIDKey   contextKey = "uid"
	EmailKey contextKey = "email"
	RoleKey  contextKey = "role"
)

// FirebaseAuth verifies the bearer ID token and puts uid, email and role into the context.
func (m *Middleware) FirebaseAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		header := r.Header.Get("Authorization")
		if header == "" {
			m.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "missing Authorization header")
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "invalid Authorization header")
			return
		}

		// Verify ID Token
		token, err := m.AuthClient.VerifyIDToken(r.Context(), parts[1])
		if err != nil {
			logger.FromContext(r.Context()).Warn("token verification failed", "error", err)
			m.ResponseHandler.WriteError(w, r, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
			return
		}

		email, _ := token.Claims["email"].(string)
		role := models.RoleUser
		if claim, ok := token.Claims[RoleClaim].(string); ok && models.Role(claim).Valid() {
			role = models.Role(claim)
		}

		ctx := context.WithValue(r.Context(), UIDKey, token.UID)
		ctx = context.WithValue(ctx, EmailKey, email)
		ctx = context.WithValue(ctx, RoleKey, role)
		_, ctx = logger.With(ctx, "uid", token.UID, "role", string(role))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole refuses callers whose role is not one of roles.
func (m *Middleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, Role(r.Context())) {
				m.ResponseHandler.WriteError(w, r, http.StatusForbidden, "forbidden", "insufficient role for this operation")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Helper to extract UID
func UID(ctx context.Context) string {
	uid, _ := ctx.Value(UIDKey).(string)
	return uid
}

func Email(ctx context.Context) string {
	email, _ := ctx.Value(EmailKey).(string)
	return email
}

func Role(ctx context.Context) models.Role {
	role, _ := ctx.Value(RoleKey).(models.Role)
	return role
}

type claimsSetter interface {
	SetCustomUserClaims(ctx context.Context, uid string, customClaims map[string]interface{}) error
}

// RoleClaims writes the role claim read by FirebaseAuth. It takes effect on the next token refresh.
type RoleClaims struct {
	client claimsSetter
}

func NewRoleClaims(client claimsSetter) *RoleClaims {
	return &RoleClaims{client: client}
}

func (c *RoleClaims) SetRole(ctx context.Context, uid string, role models.Role) error {
	return c.client.SetCustomUserClaims(ctx, uid, map[string]interface{}{RoleClaim: string(role)})
}
