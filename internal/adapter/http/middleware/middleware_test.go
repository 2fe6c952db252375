package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"campus-pay/internal/adapter/http/middleware"
	"campus-pay/internal/core/domain"
	"campus-pay/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupAuthRouter(tokenSvc *service.JWTTokenService, roles ...domain.Role) *gin.Engine {
	r := gin.New()
	group := r.Group("/", middleware.JWTAuth(tokenSvc, zerolog.Nop()))
	if len(roles) > 0 {
		group.Use(middleware.RequireRole(roles...))
	}
	group.GET("/protected", func(c *gin.Context) {
		id, _ := middleware.AccountID(c)
		c.JSON(200, gin.H{"account_id": id.String()})
	})
	return r
}

func TestJWTAuth_ValidToken(t *testing.T) {
	tokenSvc := service.NewJWTTokenService("test-secret", time.Hour, "campus-pay")
	router := setupAuthRouter(tokenSvc)

	token, _, err := tokenSvc.Generate(uuid.New(), domain.RoleConsumer)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_TokenViaQueryParam(t *testing.T) {
	tokenSvc := service.NewJWTTokenService("test-secret", time.Hour, "campus-pay")
	router := setupAuthRouter(tokenSvc)

	token, _, err := tokenSvc.Generate(uuid.New(), domain.RoleConsumer)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected?token="+token, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_MissingToken(t *testing.T) {
	tokenSvc := service.NewJWTTokenService("test-secret", time.Hour, "campus-pay")
	router := setupAuthRouter(tokenSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_BadToken(t *testing.T) {
	tokenSvc := service.NewJWTTokenService("test-secret", time.Hour, "campus-pay")
	router := setupAuthRouter(tokenSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not.a.real.token")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole_Allowed(t *testing.T) {
	tokenSvc := service.NewJWTTokenService("test-secret", time.Hour, "campus-pay")
	router := setupAuthRouter(tokenSvc, domain.RoleAdmin)

	token, _, err := tokenSvc.Generate(uuid.New(), domain.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_Forbidden(t *testing.T) {
	tokenSvc := service.NewJWTTokenService("test-secret", time.Hour, "campus-pay")
	router := setupAuthRouter(tokenSvc, domain.RoleAdmin)

	token, _, err := tokenSvc.Generate(uuid.New(), domain.RoleConsumer)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequestID_GeneratedAndEchoed(t *testing.T) {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.GET("/", func(c *gin.Context) { c.Status(200) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-abc-123", w.Header().Get("X-Request-ID"))
}

func TestRecovery_CatchesPanic(t *testing.T) {
	r := gin.New()
	r.Use(middleware.Recovery(zerolog.Nop()))
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_002")
}
