package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpHandler "campus-pay/internal/adapter/http/handler"
	redisStorage "campus-pay/internal/adapter/storage/redis"
	"campus-pay/internal/core/domain"
	"campus-pay/internal/core/ports"
	"campus-pay/internal/notify"
	"campus-pay/internal/service"
	"campus-pay/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testApp builds a full application stack: real HTTP layer, middleware,
// services, session registry and publisher, over in-memory storage and
// miniredis. Only the process boundary is faked.

type testApp struct {
	server       *httptest.Server
	redis        *miniredis.Miniredis
	store        *memStore
	txRepo       *memTransactionRepo
	registry     *notify.Registry
	provisionSvc ports.ProvisionService
	tokenSvc     ports.TokenService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	store := newMemStore()
	accountRepo := newMemAccountRepo(store)
	txRepo := newMemTransactionRepo(store)
	transactor := newMemTransactor(store)

	registry := notify.NewRegistry(16)
	log := logger.New("error", false)
	publisher := notify.NewPublisher(registry, time.Second, log)

	hashSvc := service.NewArgon2HashService()
	tokenSvc := service.NewJWTTokenService("test-jwt-secret-key-32bytes!!", 24*time.Hour, "test-issuer")

	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc)
	transferSvc := service.NewTransferService(accountRepo, txRepo, transactor, publisher, log)
	ledgerSvc := service.NewLedgerService(accountRepo, txRepo)
	provisionSvc := service.NewProvisionService(accountRepo, hashSvc, 200, log)

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		TransferSvc:    transferSvc,
		LedgerSvc:      ledgerSvc,
		ProvisionSvc:   provisionSvc,
		TokenSvc:       tokenSvc,
		Registry:       registry,
		RateLimitStore: redisStorage.NewRateLimitStore(rdb),
		Logger:         log,
	})

	return &testApp{
		server:       httptest.NewServer(router),
		redis:        mr,
		store:        store,
		txRepo:       txRepo,
		registry:     registry,
		provisionSvc: provisionSvc,
		tokenSvc:     tokenSvc,
	}
}

func (a *testApp) close() {
	a.server.Close()
	a.redis.Close()
}

// provision creates an account directly through the provisioning
// service and returns it with a valid bearer token.
func (a *testApp) provision(t *testing.T, email, name string, role domain.Role) (*domain.Account, string) {
	t.Helper()
	account, err := a.provisionSvc.CreateAccount(context.Background(), ports.ProvisionRequest{
		Email:       email,
		Password:    "StrongPass123!",
		Role:        role,
		DisplayName: name,
	})
	require.NoError(t, err)

	token, _, err := a.tokenSvc.Generate(account.ID, account.Role)
	require.NoError(t, err)
	return account, token
}

func (a *testApp) postJSON(t *testing.T, path, token string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPost, a.server.URL+path, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func (a *testApp) getJSON(t *testing.T, path, token string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, a.server.URL+path, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeData(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	data, _ := body["data"].(map[string]interface{})
	return data
}

// --- Integration Tests ---

func TestIntegration_LoginFlow(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.provision(t, "priya@campus.edu", "priya", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "priya@campus.edu",
		"password": "StrongPass123!",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeData(t, resp)
	assert.NotEmpty(t, data["token"])

	resp = app.postJSON(t, "/api/v1/auth/login", "", map[string]string{
		"email":    "priya@campus.edu",
		"password": "wrong",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_PaymentMovesBalances(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payer, payerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)
	payee, payeeToken := app.provision(t, "q@campus.edu", "quentin", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/payments", payerToken, map[string]any{
		"payee_id": payee.ID.String(),
		"amount":   75,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, payer.ID.String(), data["payer_id"])
	assert.Equal(t, payee.ID.String(), data["payee_id"])

	assert.Equal(t, int64(125), app.store.balance(payer.ID))
	assert.Equal(t, int64(275), app.store.balance(payee.ID))

	// Payee sees the transfer in their history with the payer's name.
	resp = app.getJSON(t, "/api/v1/transactions", payeeToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txData := decodeData(t, resp)
	assert.Equal(t, float64(1), txData["count"])
	items := txData["items"].([]interface{})
	first := items[0].(map[string]interface{})
	assert.Equal(t, "priya", first["payer_display_name"])
	assert.Equal(t, float64(75), first["amount"])

	// Balance endpoint agrees.
	resp = app.getJSON(t, "/api/v1/accounts/me", payerToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	meData := decodeData(t, resp)
	assert.Equal(t, float64(125), meData["balance"])
}

func TestIntegration_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payer, payerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)
	payee, _ := app.provision(t, "q@campus.edu", "quentin", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/payments", payerToken, map[string]any{
		"payee_id": payee.ID.String(),
		"amount":   201,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	// Nothing moved, nothing recorded.
	assert.Equal(t, int64(200), app.store.balance(payer.ID))
	assert.Equal(t, int64(200), app.store.balance(payee.ID))
	assert.Equal(t, 0, app.store.ledgerSize())
}

func TestIntegration_SelfTransferRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payer, payerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/payments", payerToken, map[string]any{
		"payee_id": payer.ID.String(),
		"amount":   10,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, int64(200), app.store.balance(payer.ID))
}

func TestIntegration_PayeeNotFound(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payer, payerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/payments", payerToken, map[string]any{
		"payee_id": uuid.New().String(),
		"amount":   10,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int64(200), app.store.balance(payer.ID))
}

func TestIntegration_LedgerWriteFailureRollsBack(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payer, payerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)
	payee, _ := app.provision(t, "q@campus.edu", "quentin", domain.RoleConsumer)

	app.txRepo.failNextCreate(errors.New("disk full"))

	resp := app.postJSON(t, "/api/v1/payments", payerToken, map[string]any{
		"payee_id": payee.ID.String(),
		"amount":   50,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// The failed attempt left no partial state behind.
	assert.Equal(t, int64(200), app.store.balance(payer.ID))
	assert.Equal(t, int64(200), app.store.balance(payee.ID))
	assert.Equal(t, 0, app.store.ledgerSize())

	// A retry goes through cleanly.
	resp = app.postJSON(t, "/api/v1/payments", payerToken, map[string]any{
		"payee_id": payee.ID.String(),
		"amount":   50,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(150), app.store.balance(payer.ID))
	assert.Equal(t, int64(250), app.store.balance(payee.ID))
}

func TestIntegration_UnauthenticatedPaymentRejected(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	payee, _ := app.provision(t, "q@campus.edu", "quentin", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/payments", "", map[string]any{
		"payee_id": payee.ID.String(),
		"amount":   10,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestIntegration_AdminProvisionsAccounts(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	_, adminToken := app.provision(t, "admin@campus.edu", "admin", domain.RoleAdmin)
	_, consumerToken := app.provision(t, "p@campus.edu", "priya", domain.RoleConsumer)

	resp := app.postJSON(t, "/api/v1/admin/accounts", adminToken, map[string]string{
		"email":        "fresh@campus.edu",
		"password":     "StrongPass123!",
		"role":         "consumer",
		"display_name": "fresher",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeData(t, resp)
	assert.Equal(t, float64(200), data["balance"])

	// Consumers cannot reach admin routes.
	resp = app.postJSON(t, "/api/v1/admin/accounts", consumerToken, map[string]string{
		"email":        "another@campus.edu",
		"password":     "StrongPass123!",
		"role":         "consumer",
		"display_name": "another",
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
