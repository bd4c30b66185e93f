package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gadup/internal/handlers"
	"gadup/internal/middleware"
	"gadup/internal/models"
	"gadup/internal/repositories"
	"gadup/internal/services"
	"gadup/pkg/paystack"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testApp struct {
	app         *fiber.App
	db          *gorm.DB
	productRepo *repositories.GORMProductRepository
	orderRepo   *repositories.GORMOrderRepository
	userRepo    *repositories.GORMUserRepository
}

// setupApp wires the full application over an in-memory SQLite database and
// the given payment provider endpoint.
func setupApp(t *testing.T, paystackURL string) *testApp {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}, &models.Address{}, &models.Order{}))

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)
	txRunner := repositories.NewGORMTxRunner(db)

	authService := services.NewAuthService(userRepo, "test_jwt_secret")
	userService := services.NewUserService(userRepo, orderRepo)
	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(orderRepo)

	verifier := paystack.NewClient(paystack.Config{
		SecretKey:   "sk_test_secret",
		BaseURL:     paystackURL,
		Timeout:     2 * time.Second,
		MaxAttempts: 1,
	})
	checkoutService := services.NewCheckoutService(txRunner, orderRepo, userRepo, verifier, nil, nil)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService, authService)
	productHandler := handlers.NewProductHandler(productService)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	orderHandler := handlers.NewOrderHandler(orderService)

	authHandler.RegisterRoutes(apiV1)
	productHandler.RegisterRoutes(apiV1)

	authed := apiV1.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(authed)
	checkoutHandler.RegisterRoutes(authed)

	admin := apiV1.Group("/admin", middleware.AuthRequired(authService), middleware.AdminRequired())
	productHandler.RegisterAdminRoutes(admin)
	orderHandler.RegisterRoutes(admin)

	return &testApp{
		app:         app,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
	}
}

// successfulPaystack serves a provider that confirms every reference.
func successfulPaystack(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": true, "data": {"status": "success", "reference": "ref", "amount": 120000, "currency": "NGN"}}`)
	}))
}

func jsonRequest(t *testing.T, method, url string, body interface{}, token string) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var parsed map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return parsed
}

// registerAndLogin creates a user through the API and returns a bearer token.
func registerAndLogin(t *testing.T, ta *testApp, name, email, password string) string {
	t.Helper()

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"name": name, "email": email, "password": password,
	}, ""), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"email": email, "password": password,
	}, ""), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func seedProduct(t *testing.T, ta *testApp, product models.Product) models.Product {
	t.Helper()
	require.NoError(t, ta.productRepo.Create(&product))
	return product
}

func checkoutBody(reference, productID string, quantity int) fiber.Map {
	return fiber.Map{
		"reference": reference,
		"items":     []fiber.Map{{"product_id": productID, "quantity": quantity}},
		"address": fiber.Map{
			"label": "Home", "line1": "12 Marina Road", "city": "Lagos",
			"state": "Lagos", "postal_code": "100001", "country": "Nigeria",
		},
		"user_name":  "Ada Obi",
		"user_email": "ada@example.com",
	}
}

func TestCheckoutEndpoint_Success(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")
	product := seedProduct(t, ta, models.Product{
		Name: "Gaming Laptop", Description: "16GB RAM", Price: 1200,
		Category: "laptops", Stock: 1,
	})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout",
		checkoutBody("ref-100", product.ID, 1), token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(t, resp)
	order, ok := body["order"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "paid", order["status"])
	assert.Equal(t, "ref-100", order["reference"])
	assert.Equal(t, 1200.0, order["total"])

	updated, err := ta.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Stock)
}

func TestCheckoutEndpoint_SavedAddress(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")
	product := seedProduct(t, ta, models.Product{
		Name: "USB Hub", Description: "7 ports", Price: 40,
		Category: "accessories", Stock: 2,
	})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPut, "/api/v1/users/address", fiber.Map{
		"action": "add",
		"address": fiber.Map{
			"label": "Office", "line1": "3 Broad Street", "city": "Lagos",
			"state": "Lagos", "postal_code": "101233", "country": "Nigeria",
		},
	}, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	addresses := decodeBody(t, resp)["addresses"].([]interface{})
	addressID := addresses[0].(map[string]interface{})["id"].(string)

	// Ship against the saved address: no inline address in the body.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout", fiber.Map{
		"reference":  "ref-150",
		"items":      []fiber.Map{{"product_id": product.ID, "quantity": 1}},
		"address_id": addressID,
		"user_name":  "Ada Obi",
		"user_email": "ada@example.com",
	}, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	order := decodeBody(t, resp)["order"].(map[string]interface{})
	shipped := order["address"].(map[string]interface{})
	assert.Equal(t, "3 Broad Street", shipped["line1"])
	assert.Equal(t, "Office", shipped["label"])
}

func TestCheckoutEndpoint_IdempotentReplay(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")
	product := seedProduct(t, ta, models.Product{
		Name: "Mechanical Keyboard", Description: "Clicky", Price: 75,
		Category: "accessories", Stock: 5,
	})

	payload := checkoutBody("ref-200", product.ID, 2)

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout", payload, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	first := decodeBody(t, resp)["order"].(map[string]interface{})

	resp, err = ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout", payload, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	second := decodeBody(t, resp)["order"].(map[string]interface{})

	assert.Equal(t, first["id"], second["id"])

	// Stock decremented exactly once across the two calls.
	updated, err := ta.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Stock)
}

func TestCheckoutEndpoint_InsufficientStock(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")
	product := seedProduct(t, ta, models.Product{
		Name: "Wireless Mouse", Description: "Ergonomic", Price: 25,
		Category: "accessories", Stock: 0,
	})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout",
		checkoutBody("ref-300", product.ID, 1), token), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["kind"])
	assert.Contains(t, body["message"], "Wireless Mouse")

	orders, err := ta.orderRepo.GetAll()
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckoutEndpoint_PaymentRejected(t *testing.T) {
	provider := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"status": true, "data": {"status": "abandoned", "reference": "ref"}}`)
	}))
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")
	product := seedProduct(t, ta, models.Product{
		Name: "Gaming Laptop", Description: "16GB RAM", Price: 1200,
		Category: "laptops", Stock: 2,
	})

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout",
		checkoutBody("ref-400", product.ID, 1), token), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "PAYMENT_REJECTED", body["kind"])

	// No side effects committed.
	updated, err := ta.productRepo.GetByID(product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)
}

func TestCheckoutEndpoint_RequiresAuth(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout",
		checkoutBody("ref-500", "prod-1", 1), ""), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckoutEndpoint_ValidationFailure(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout", fiber.Map{
		"reference": "", "items": []fiber.Map{},
	}, token), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, "VALIDATION_ERROR", body["kind"])
}

func TestProfileAndAddressBook(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")

	// Add an address.
	resp, err := ta.app.Test(jsonRequest(t, http.MethodPut, "/api/v1/users/address", fiber.Map{
		"action": "add",
		"address": fiber.Map{
			"label": "Home", "line1": "12 Marina Road", "city": "Lagos",
			"state": "Lagos", "postal_code": "100001", "country": "Nigeria",
		},
	}, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody(t, resp)
	addresses := body["addresses"].([]interface{})
	require.Len(t, addresses, 1)
	addressID := addresses[0].(map[string]interface{})["id"].(string)

	// Adding an incomplete address is still rejected.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPut, "/api/v1/users/address", fiber.Map{
		"action":  "add",
		"address": fiber.Map{"label": "Work"},
	}, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Deleting needs only the ID.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPut, "/api/v1/users/address", fiber.Map{
		"action":  "delete",
		"address": fiber.Map{"id": addressID},
	}, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body = decodeBody(t, resp)
	assert.Empty(t, body["addresses"])

	// Profile carries the user but never the password.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/users/profile", nil, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	profile := decodeBody(t, resp)
	assert.Equal(t, "ada@example.com", profile["email"])
	_, hasPassword := profile["Password"]
	assert.False(t, hasPassword)
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	token := registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")

	resp, err := ta.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/admin/orders", nil, token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Authenticated but unprivileged is its own failure kind.
	body := decodeBody(t, resp)
	assert.Equal(t, "FORBIDDEN", body["kind"])
}

func TestAdminRoutes_OrderManagement(t *testing.T) {
	provider := successfulPaystack(t)
	defer provider.Close()
	ta := setupApp(t, provider.URL)

	// Promote a registered user to admin directly in the store and log in
	// again so the fresh token carries the admin claim.
	registerAndLogin(t, ta, "Ada Obi", "ada@example.com", "secret123")
	require.NoError(t, ta.db.Model(&models.User{}).Where("email = ?", "ada@example.com").Update("is_admin", true).Error)

	resp, err := ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"email": "ada@example.com", "password": "secret123",
	}, ""), -1)
	require.NoError(t, err)
	adminToken := decodeBody(t, resp)["token"].(string)

	// Create a product through the admin API; discount must be derived.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/admin/products", fiber.Map{
		"name": "Gaming Laptop", "description": "16GB RAM", "price": 1200.0,
		"discount_price": 900.0, "category": "laptops", "stock": 4,
	}, adminToken), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)["product"].(map[string]interface{})
	assert.Equal(t, 25.0, created["discount_percentage"])

	// Settle an order, then advance its status as admin.
	token := adminToken
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPost, "/api/v1/checkout",
		checkoutBody("ref-600", created["id"].(string), 1), token), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := decodeBody(t, resp)["order"].(map[string]interface{})["id"].(string)

	// Income stats count the paid order.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodGet, "/api/v1/admin/orders/stats/income", nil, adminToken), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody(t, resp)
	daily := stats["daily"].(map[string]interface{})
	assert.Equal(t, 900.0, daily["total_income"])

	resp, err = ta.app.Test(jsonRequest(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/admin/orders/%s/status", orderID),
		fiber.Map{"status": "shipped"}, adminToken), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// Invalid status stays rejected.
	resp, err = ta.app.Test(jsonRequest(t, http.MethodPatch,
		fmt.Sprintf("/api/v1/admin/orders/%s/status", orderID),
		fiber.Map{"status": "refunded"}, adminToken), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}
