package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"coin-arena/config"
)

// Roles in ascending privilege order.
const (
	RoleViewer   = "viewer"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

var roleRank = map[string]int{
	RoleViewer:   0,
	RoleOperator: 1,
	RoleAdmin:    2,
}

// TokenTTL is the lifetime of tokens issued by the login endpoint.
const TokenTTL = 24 * time.Hour

// Claims holds JWT claims including role.
type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed HS256 JWT.
func GenerateToken(secret, issuer, subject, role string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  subject,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// ParseToken validates a JWT and returns its Claims. An empty issuer skips the issuer check.
func ParseToken(secret, issuer, tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	claims := &Claims{}
	_, err := jwt.NewParser(opts...).ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

type ctxKey string

const ctxClaims ctxKey = "claims"

// AuthMiddleware authenticates JWT tokens in the Authorization: Bearer header.
func AuthMiddleware(secret, issuer string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				errorJSON(w, http.StatusUnauthorized, "missing Authorization header")
				return
			}
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				errorJSON(w, http.StatusUnauthorized, "invalid Authorization header format")
				return
			}
			claims, err := ParseToken(secret, issuer, parts[1])
			if err != nil {
				errorJSON(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getClaims(r *http.Request) (*Claims, error) {
	c, ok := r.Context().Value(ctxClaims).(*Claims)
	if !ok || c == nil {
		return nil, errors.New("no claims in context")
	}
	return c, nil
}

// RequireRole ensures the caller has at least the required role.
// Unknown roles rank below viewer.
func RequireRole(minRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := getClaims(r)
			if err != nil {
				errorJSON(w, http.StatusUnauthorized, "unauthenticated")
				return
			}
			rank, known := roleRank[claims.Role]
			if !known || rank < roleRank[minRole] {
				errorJSON(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AuthHandler issues operator tokens against the configured admin credentials.
type AuthHandler struct {
	cfg config.Config
	log *logrus.Entry
}

func NewAuthHandler(cfg config.Config, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{cfg: cfg, log: log}
}

// Routes registers the login and identity routes.
func (h *AuthHandler) Routes(r chi.Router) {
	r.Post("/auth/login", h.Login)
	r.With(AuthMiddleware(h.cfg.JWTSecret, h.cfg.JWTIssuer)).Get("/auth/me", h.Me)
}

// Login POST /auth/login {"username","password"}
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.cfg.AdminPasswordHash == "" {
		errorJSON(w, http.StatusServiceUnavailable, "login disabled")
		return
	}
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&in); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid json")
		return
	}
	in.Username = strings.TrimSpace(in.Username)
	userOK := subtle.ConstantTimeCompare([]byte(in.Username), []byte(h.cfg.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.cfg.AdminPasswordHash), []byte(in.Password))
	if !userOK || passErr != nil {
		h.log.WithField("username", in.Username).Warn("failed operator login")
		errorJSON(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := GenerateToken(h.cfg.JWTSecret, h.cfg.JWTIssuer, in.Username, RoleAdmin, TokenTTL)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "could not generate token")
		return
	}
	h.log.WithField("username", in.Username).Info("operator logged in")
	writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_in": int64(TokenTTL.Seconds()),
	})
}

// Me returns the caller's claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, err := getClaims(r)
	if err != nil {
		errorJSON(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	out := map[string]any{
		"subject": claims.Sub,
		"role":    claims.Role,
	}
	if claims.ExpiresAt != nil {
		out["expires_at"] = claims.ExpiresAt.Time
	}
	writeJSON(w, http.StatusOK, out)
}
