package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/geststore-api/internal/application/auth"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/application/tasks"
	"github.com/jhoicas/geststore-api/internal/application/usecase"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/geststore-api/internal/interfaces/http"
	"github.com/jhoicas/geststore-api/pkg/logger"
	pkgredis "github.com/jhoicas/geststore-api/pkg/redis"
)

// memIdempotency IdempotencyStore en memoria para los tests del middleware.
type memIdempotency struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemIdempotency() *memIdempotency {
	return &memIdempotency{data: map[string]string{}}
}

func (m *memIdempotency) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", pkgredis.Nil
	}
	return v, nil
}

func (m *memIdempotency) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	return nil
}

func (m *memIdempotency) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value.(string)
	return true, nil
}

func (m *memIdempotency) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memIdempotency) IdempotencyKey(scope, id string) string {
	return "test:idem:" + scope + ":" + id
}

type apiEnv struct {
	app     *fiber.App
	store   *memory.Store
	admin   string
	manager string
	worker  string
	tokens  map[string]string
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	store := memory.NewStore()
	log := logger.Nop()
	ledger := inventory.NewLedger(log, nil)

	deps := apphttp.RouterDeps{
		AuthUC:          auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer}, log),
		UserUC:          usecase.NewUserUseCase(store.Users(), log),
		ProductUC:       usecase.NewProductUseCase(store, store.Products(), store.Stocks(), ledger, log),
		StockUC:         inventory.NewStockUseCase(store, store.Stocks(), store.Products(), store.Movements(), ledger, log),
		ReplenishmentUC: inventory.NewReplenishmentUseCase(store.Stocks()),
		TaskUC:          tasks.NewTaskUseCase(store, store.Tasks(), store.TaskProducts(), store.Users(), ledger, 0, log, nil),
		TaskProductUC:   tasks.NewTaskProductUseCase(store, store.Tasks(), store.Products(), store.TaskProducts(), ledger, log, nil),
		JWTSecret:       testJWTSecret,
		Idempotency:     newMemIdempotency(),
		IdempotencyTTL:  time.Hour,
		Logger:          log,
	}
	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	app.Use(apphttp.RequestLogger(log, nil))
	apphttp.Router(app, deps)

	env := &apiEnv{app: app, store: store, tokens: map[string]string{}}
	env.admin = env.seed(t, "admin@geststore.test", entity.RoleAdmin)
	env.manager = env.seed(t, "manager@geststore.test", entity.RoleManager)
	env.worker = env.seed(t, "worker@geststore.test", entity.RoleWorker)
	return env
}

func (e *apiEnv) seed(t *testing.T, email, role string) string {
	t.Helper()
	u, err := auth.NewUser(context.Background(), e.store.Users(), role, email, "password123", role, "Bodega")
	require.NoError(t, err)
	e.tokens[u.ID] = bearer(t, u.ID, role)
	return u.ID
}

// call ejecuta la petición como userID ("" = sin token) y decodifica el sobre.
func (e *apiEnv) call(t *testing.T, method, path, userID string, body any, headers ...string) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("Authorization", e.tokens[userID])
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["data"].(map[string]any)
	require.True(t, ok, "respuesta sin data: %v", body)
	return d
}

// createProduct crea un producto con stock inicial y devuelve (productID, stockID).
func (e *apiEnv) createProduct(t *testing.T, sku string, initial int) (string, string) {
	t.Helper()
	resp, body := e.call(t, http.MethodPost, "/api/products", e.manager, dto.CreateProductRequest{
		SKU: sku, Name: "Producto " + sku, InitialQuantity: initial,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	p := data(t, body)
	stock := p["stock"].(map[string]any)
	return p["id"].(string), stock["id"].(string)
}

func (e *apiEnv) stockOf(t *testing.T, stockID string) (available, reserved int) {
	t.Helper()
	resp, body := e.call(t, http.MethodGet, "/api/stock/"+stockID, e.manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := data(t, body)
	return int(s["quantityAvailable"].(float64)), int(s["quantityReserved"].(float64))
}

func TestRouter_FlujoCompletoDeTarea(t *testing.T) {
	e := newAPIEnv(t)
	productID, stockID := e.createProduct(t, "TOR-01", 10)

	worker := e.worker
	resp, body := e.call(t, http.MethodPost, "/api/tasks", e.manager, dto.CreateTaskRequest{
		Title: "Armar pedido", Priority: "HIGH", AssignedToUserID: &worker,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	taskID := data(t, body)["id"].(string)
	assert.Equal(t, "PENDING", data(t, body)["status"])

	resp, body = e.call(t, http.MethodPost, "/api/task-products/assign?taskId="+taskID+"&productId="+productID,
		e.manager, dto.AssignProductRequest{Quantity: 4, Notes: "caja"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	assignmentID := data(t, body)["id"].(string)

	available, reserved := e.stockOf(t, stockID)
	assert.Equal(t, 6, available)
	assert.Equal(t, 4, reserved)

	resp, _ = e.call(t, http.MethodPost, "/api/tasks/"+taskID+"/start", e.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.call(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", e.worker, nil)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INCOMPLETE_PRODUCTS", body["errorCode"])

	resp, _ = e.call(t, http.MethodPost, "/api/task-products/"+assignmentID+"/use?quantityUsed=4", e.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = e.call(t, http.MethodPost, "/api/tasks/"+taskID+"/complete", e.worker, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", body)
	assert.Equal(t, "COMPLETED", data(t, body)["status"])
	assert.Equal(t, true, data(t, body)["completed"])

	available, reserved = e.stockOf(t, stockID)
	assert.Equal(t, 10, available)
	assert.Equal(t, 0, reserved)
}

func TestRouter_ReservaInsuficienteDevuelve422(t *testing.T) {
	e := newAPIEnv(t)
	productID, stockID := e.createProduct(t, "TOR-02", 3)
	resp, body := e.call(t, http.MethodPost, "/api/tasks", e.manager, dto.CreateTaskRequest{Title: "Inventario"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := data(t, body)["id"].(string)

	resp, body = e.call(t, http.MethodPost, "/api/task-products/assign?taskId="+taskID+"&productId="+productID,
		e.manager, dto.AssignProductRequest{Quantity: 5})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["errorCode"])
	assert.Equal(t, "/api/task-products/assign", body["path"])

	available, reserved := e.stockOf(t, stockID)
	assert.Equal(t, 3, available)
	assert.Equal(t, 0, reserved)
}

func TestRouter_ValidacionDevuelveDetalles(t *testing.T) {
	e := newAPIEnv(t)
	resp, body := e.call(t, http.MethodPost, "/api/tasks", e.manager, map[string]any{"priority": "URGENT"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["errorCode"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "title")
	assert.Contains(t, details, "priority")

	_, stockID := e.createProduct(t, "TOR-03", 1)
	resp, body = e.call(t, http.MethodPost, "/api/stock/"+stockID+"/increase", e.manager, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["details"], "quantity")
}

func TestRouter_RBAC(t *testing.T) {
	e := newAPIEnv(t)
	_, stockID := e.createProduct(t, "TOR-04", 5)

	resp, _ := e.call(t, http.MethodPost, "/api/stock/"+stockID+"/increase?quantity=2", e.worker, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.call(t, http.MethodGet, "/api/users", e.manager, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.call(t, http.MethodGet, "/api/users", e.admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = e.call(t, http.MethodGet, "/api/tasks/user/"+e.manager, e.worker, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = e.call(t, http.MethodGet, "/api/tasks/user/"+e.worker, e.worker, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := e.call(t, http.MethodGet, "/api/products", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", body["errorCode"])
}

func TestRouter_WorkerNoIniciaTareaAjena(t *testing.T) {
	e := newAPIEnv(t)
	resp, body := e.call(t, http.MethodPost, "/api/tasks", e.manager, dto.CreateTaskRequest{Title: "Sin asignar"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	taskID := data(t, body)["id"].(string)

	resp, body = e.call(t, http.MethodPost, "/api/tasks/"+taskID+"/start", e.worker, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", body["errorCode"])
}

func TestRouter_LoginYMe(t *testing.T) {
	e := newAPIEnv(t)
	resp, body := e.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Name: "Nueva", Email: "Nueva@GestStore.test", Password: "password123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, "%v", body)
	assert.Equal(t, "WORKER", data(t, body)["role"])

	resp, body = e.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email: "nueva@geststore.test", Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", body)
	token := data(t, body)["token"].(string)
	assert.Equal(t, "Bearer", data(t, body)["tokenType"])

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	meResp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, meResp.StatusCode)

	resp, body = e.call(t, http.MethodPost, "/api/auth/login", "", dto.LoginRequest{
		Email: "nueva@geststore.test", Password: "incorrecta",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", body["errorCode"])

	resp, body = e.call(t, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{
		Email: "nueva@geststore.test", Password: "password123",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_EXISTS", body["errorCode"])
}

func TestRouter_IdempotenciaRepiteLaPrimeraRespuesta(t *testing.T) {
	e := newAPIEnv(t)
	_, stockID := e.createProduct(t, "TOR-05", 5)
	path := "/api/stock/" + stockID + "/increase?quantity=3"

	resp, first := e.call(t, http.MethodPost, path, e.manager, nil, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get(apphttp.HeaderReplayed))

	resp, second := e.call(t, http.MethodPost, path, e.manager, nil, apphttp.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(apphttp.HeaderReplayed))
	assert.Equal(t, data(t, first), data(t, second))

	available, _ := e.stockOf(t, stockID)
	assert.Equal(t, 8, available, "la repetición no debe mover stock otra vez")

	resp, body := e.call(t, http.MethodPost, "/api/stock/"+stockID+"/increase?quantity=4", e.manager, nil,
		apphttp.HeaderIdempotencyKey, "k-1")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "IDEMPOTENCY_KEY_REUSED", body["errorCode"])

	resp, _ = e.call(t, http.MethodPost, path, e.manager, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	available, _ = e.stockOf(t, stockID)
	assert.Equal(t, 11, available, "sin cabecera no hay idempotencia")
}

func TestRouter_IdempotenciaGuardaRechazosDeNegocio(t *testing.T) {
	e := newAPIEnv(t)
	_, stockID := e.createProduct(t, "TOR-06", 1)
	path := "/api/stock/" + stockID + "/decrease?quantity=5"

	resp, body := e.call(t, http.MethodPost, path, e.manager, nil, apphttp.HeaderIdempotencyKey, "k-2")
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["errorCode"])

	// Los 4xx se guardan: la misma petición devuelve el mismo rechazo sin reevaluar.
	resp, body = e.call(t, http.MethodPost, path, e.manager, nil, apphttp.HeaderIdempotencyKey, "k-2")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "true", resp.Header.Get(apphttp.HeaderReplayed))
	assert.Equal(t, "INSUFFICIENT_STOCK", body["errorCode"])
}

func TestRouter_Health(t *testing.T) {
	e := newAPIEnv(t)
	resp, body := e.call(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])

	resp, body = e.call(t, http.MethodGet, "/api/no-existe", e.manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["errorCode"])
}

func TestRouter_IDMalFormadoDevuelve404(t *testing.T) {
	e := newAPIEnv(t)
	productID, stockID := e.createProduct(t, "TOR-07", 5)

	cases := []struct {
		method, path, user string
	}{
		{http.MethodPost, "/api/tasks/abc/start", e.worker},
		{http.MethodGet, "/api/tasks/abc", e.manager},
		{http.MethodDelete, "/api/tasks/1", e.manager},
		{http.MethodGet, "/api/tasks/user/abc", e.manager},
		{http.MethodGet, "/api/stock/abc", e.manager},
		{http.MethodPost, "/api/stock/abc/increase?quantity=2", e.manager},
		{http.MethodGet, "/api/products/abc", e.manager},
		{http.MethodPost, "/api/task-products/abc/use?quantityUsed=1", e.worker},
		{http.MethodGet, "/api/task-products/task/abc", e.worker},
		{http.MethodPost, "/api/task-products/assign?taskId=abc&productId=" + productID, e.manager},
		{http.MethodGet, "/api/users/abc", e.admin},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			resp, body := e.call(t, tc.method, tc.path, tc.user, dto.AssignProductRequest{Quantity: 1})
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, "%v", body)
			assert.Equal(t, "NOT_FOUND", body["errorCode"])
		})
	}

	available, reserved := e.stockOf(t, stockID)
	assert.Equal(t, 5, available)
	assert.Equal(t, 0, reserved)
}

func TestRouter_TareasDeUsuarioInexistente(t *testing.T) {
	e := newAPIEnv(t)
	unknown := uuid.New().String()

	resp, body := e.call(t, http.MethodGet, "/api/tasks/user/"+unknown, e.manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", body["errorCode"])

	resp, _ = e.call(t, http.MethodGet, "/api/tasks/created-by/"+unknown, e.manager, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
