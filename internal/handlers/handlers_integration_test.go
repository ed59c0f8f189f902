package handlers_test

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"organicindia/internal/handlers"
	"organicindia/internal/middleware"
	"organicindia/internal/models"
	"organicindia/internal/repositories"
	"organicindia/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var dbCounter int64

// setupApp builds the full application against a fresh in-memory SQLite
// database, wired exactly as in main.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:handlers_it_%d?mode=memory&cache=shared&_busy_timeout=5000", atomic.AddInt64(&dbCounter, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // serialize writers on the shared in-memory DB

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Material{}, &models.Order{}))

	userRepo := repositories.NewGORMUserRepository(db)
	materialRepo := repositories.NewGORMMaterialRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)

	authService := services.NewAuthService(userRepo, "test_session_secret")
	catalogService := services.NewCatalogService(materialRepo, userRepo)
	orderService := services.NewOrderService(orderRepo, materialRepo, nil) // nil event publisher

	renderer, err := handlers.NewRenderer()
	require.NoError(t, err)

	authHandler := handlers.NewAuthHandler(authService, renderer)
	vendorHandler := handlers.NewVendorHandler(catalogService, orderService, renderer)
	supplierHandler := handlers.NewSupplierHandler(catalogService, orderService, renderer)

	app := fiber.New()

	authHandler.RegisterRoutes(app)

	vendor := app.Group("/vendor", middleware.RequireRole(authService, models.RoleVendor))
	vendorHandler.RegisterRoutes(vendor)

	supplier := app.Group("/supplier", middleware.RequireRole(authService, models.RoleSupplier))
	supplierHandler.RegisterRoutes(supplier)

	app.Get("/update_order_status/:order_id/:status",
		middleware.RequireRole(authService, models.RoleSupplier),
		supplierHandler.HandleUpdateOrderStatus)

	return app
}

func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func doGet(t *testing.T, app *fiber.App, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func doPost(t *testing.T, app *fiber.App, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func registerUser(t *testing.T, app *fiber.App, username, role, city string) {
	t.Helper()
	resp := doPost(t, app, "/register", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password":  {"password123"},
		"user_type": {role},
		"phone":     {"9876543210"},
		"city":      {city},
		"area":      {"Old Town"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func loginUser(t *testing.T, app *fiber.App, username string) *http.Cookie {
	t.Helper()
	resp := doPost(t, app, "/login", url.Values{
		"username": {username},
		"password": {"password123"},
	})
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	for _, cookie := range resp.Cookies() {
		if cookie.Name == middleware.SessionCookie {
			return cookie
		}
	}
	t.Fatalf("login for %s did not set a session cookie", username)
	return nil
}

func addMaterial(t *testing.T, app *fiber.App, session *http.Cookie, name, category, price, stock string) {
	t.Helper()
	resp := doPost(t, app, "/supplier/add_material", url.Values{
		"name":           {name},
		"category":       {category},
		"description":    {"integration fixture"},
		"price_per_unit": {price},
		"unit":           {"kg"},
		"stock_quantity": {stock},
	}, session)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	require.Equal(t, "/supplier/dashboard", resp.Header.Get("Location"))
}

// materialOrderLink pulls a material's order link off the vendor dashboard.
func materialOrderLink(t *testing.T, app *fiber.App, session *http.Cookie, name string) string {
	t.Helper()
	body := readBody(t, doGet(t, app, "/vendor/dashboard", session))
	re := regexp.MustCompile(`/vendor/place_order/[0-9a-f-]+`)
	rows := strings.Split(body, "<tr>")
	for _, row := range rows {
		if strings.Contains(row, name) {
			if link := re.FindString(row); link != "" {
				return link
			}
		}
	}
	t.Fatalf("material %s not found on vendor dashboard", name)
	return ""
}

func TestRegistration(t *testing.T) {
	app := setupApp(t)

	registerUser(t, app, "asha_vendor", models.RoleVendor, "Surat")

	// Duplicate username: rejected with its own message, first user intact
	resp := doPost(t, app, "/register", url.Values{
		"username":  {"asha_vendor"},
		"email":     {"other@example.com"},
		"password":  {"password123"},
		"user_type": {models.RoleVendor},
		"phone":     {"9876543210"},
		"city":      {"Surat"},
		"area":      {"Old Town"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Username already exists")

	// Duplicate email gets the distinct email message
	resp = doPost(t, app, "/register", url.Values{
		"username":  {"someone_else"},
		"email":     {"asha_vendor@example.com"},
		"password":  {"password123"},
		"user_type": {models.RoleVendor},
		"phone":     {"9876543210"},
		"city":      {"Surat"},
		"area":      {"Old Town"},
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Email already registered")

	// The original user can still log in
	loginUser(t, app, "asha_vendor")

	// Missing fields redisplay the form
	resp = doPost(t, app, "/register", url.Values{"username": {"incomplete"}})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestLoginRedirectsByRole(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "asha_vendor", models.RoleVendor, "Surat")
	registerUser(t, app, "ravi_supplier", models.RoleSupplier, "Surat")

	resp := doPost(t, app, "/login", url.Values{"username": {"asha_vendor"}, "password": {"password123"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/vendor/dashboard", resp.Header.Get("Location"))

	resp = doPost(t, app, "/login", url.Values{"username": {"ravi_supplier"}, "password": {"password123"}})
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/supplier/dashboard", resp.Header.Get("Location"))

	// Wrong password: generic failure, no session established
	resp = doPost(t, app, "/login", url.Values{"username": {"asha_vendor"}, "password": {"wrong"}})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	for _, cookie := range resp.Cookies() {
		assert.NotEqual(t, middleware.SessionCookie, cookie.Name)
	}
	assert.Contains(t, readBody(t, resp), "Invalid username or password")
}

func TestRoleGate(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "ravi_supplier", models.RoleSupplier, "Surat")
	supplierSession := loginUser(t, app, "ravi_supplier")

	// No session at all
	resp := doGet(t, app, "/vendor/dashboard")
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// Wrong role
	resp = doGet(t, app, "/vendor/dashboard", supplierSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// Right role passes
	resp = doGet(t, app, "/supplier/dashboard", supplierSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Logout clears the session
	resp = doGet(t, app, "/logout", supplierSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))
}

func TestVendorDashboardFilters(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "surat_supplier", models.RoleSupplier, "Surat")
	registerUser(t, app, "pune_supplier", models.RoleSupplier, "Pune")
	registerUser(t, app, "asha_vendor", models.RoleVendor, "Surat")

	suratSession := loginUser(t, app, "surat_supplier")
	puneSession := loginUser(t, app, "pune_supplier")
	addMaterial(t, app, suratSession, "Organic Turmeric", "Spices", "180", "50")
	addMaterial(t, app, suratSession, "Basmati Rice", "Grains", "95", "200")
	addMaterial(t, app, puneSession, "Turmeric Sticks", "Spices", "210", "30")

	vendorSession := loginUser(t, app, "asha_vendor")

	// Unfiltered listing has all three
	body := readBody(t, doGet(t, app, "/vendor/dashboard", vendorSession))
	assert.Contains(t, body, "Organic Turmeric")
	assert.Contains(t, body, "Basmati Rice")
	assert.Contains(t, body, "Turmeric Sticks")

	// Category filter is an exact match
	body = readBody(t, doGet(t, app, "/vendor/dashboard?category=Spices", vendorSession))
	assert.Contains(t, body, "Organic Turmeric")
	assert.Contains(t, body, "Turmeric Sticks")
	assert.NotContains(t, body, "Basmati Rice")

	// Category + search narrow as an intersection, not a union
	body = readBody(t, doGet(t, app, "/vendor/dashboard?category=Spices&search=Sticks", vendorSession))
	assert.Contains(t, body, "Turmeric Sticks")
	assert.NotContains(t, body, "Organic Turmeric")

	// City filter uses the location stamped from the supplier profile
	body = readBody(t, doGet(t, app, "/vendor/dashboard?city=Pune", vendorSession))
	assert.Contains(t, body, "Turmeric Sticks")
	assert.NotContains(t, body, "Organic Turmeric")

	// A zero-stock material is still created available: listed until an
	// order placement flips the flag.
	addMaterial(t, app, suratSession, "Seasonal Mango Pulp", "Preserves", "150", "0")
	body = readBody(t, doGet(t, app, "/vendor/dashboard", vendorSession))
	assert.Contains(t, body, "Seasonal Mango Pulp")
}

func TestPlaceOrderFlow(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "ravi_supplier", models.RoleSupplier, "Surat")
	registerUser(t, app, "asha_vendor", models.RoleVendor, "Surat")

	supplierSession := loginUser(t, app, "ravi_supplier")
	addMaterial(t, app, supplierSession, "Organic Turmeric", "Spices", "2.50", "10")

	vendorSession := loginUser(t, app, "asha_vendor")
	orderPath := materialOrderLink(t, app, vendorSession, "Organic Turmeric")

	// The order form renders
	resp := doGet(t, app, orderPath, vendorSession)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Organic Turmeric")

	// Over-ordering redisplays the form and mutates nothing
	resp = doPost(t, app, orderPath, url.Values{
		"quantity":         {"11"},
		"delivery_address": {"12 Market Road, Surat"},
	}, vendorSession)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Requested quantity exceeds available stock")

	body := readBody(t, doGet(t, app, "/supplier/dashboard", supplierSession))
	assert.Contains(t, body, "<td>10</td>") // stock untouched
	body = readBody(t, doGet(t, app, "/vendor/orders", vendorSession))
	assert.Contains(t, body, "No orders yet")

	// A malformed quantity is a notice, not a failure
	resp = doPost(t, app, orderPath, url.Values{
		"quantity":         {"many"},
		"delivery_address": {"12 Market Road, Surat"},
	}, vendorSession)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Quantity must be a positive whole number")

	// Ordering exactly the available stock zeroes it and freezes the total
	resp = doPost(t, app, orderPath, url.Values{
		"quantity":         {"10"},
		"delivery_address": {"12 Market Road, Surat"},
		"notes":            {"deliver mornings"},
	}, vendorSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/vendor/orders", resp.Header.Get("Location"))

	body = readBody(t, doGet(t, app, "/vendor/orders", vendorSession))
	assert.Contains(t, body, "Organic Turmeric")
	assert.Contains(t, body, "25.00") // 10 × 2.50, frozen at order time

	body = readBody(t, doGet(t, app, "/supplier/dashboard", supplierSession))
	assert.Contains(t, body, "<td>0</td>")
	assert.Contains(t, body, "<td>no</td>") // availability flipped off

	// Drained material disappears from the vendor listing
	body = readBody(t, doGet(t, app, "/vendor/dashboard", vendorSession))
	assert.NotContains(t, body, "Organic Turmeric")

	// Unknown material id is a hard 404
	resp = doGet(t, app, "/vendor/place_order/no-such-material", vendorSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateOrderStatus(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "owner_supplier", models.RoleSupplier, "Surat")
	registerUser(t, app, "other_supplier", models.RoleSupplier, "Pune")
	registerUser(t, app, "asha_vendor", models.RoleVendor, "Surat")

	ownerSession := loginUser(t, app, "owner_supplier")
	otherSession := loginUser(t, app, "other_supplier")
	addMaterial(t, app, ownerSession, "Organic Turmeric", "Spices", "180", "50")

	vendorSession := loginUser(t, app, "asha_vendor")
	orderPath := materialOrderLink(t, app, vendorSession, "Organic Turmeric")
	resp := doPost(t, app, orderPath, url.Values{
		"quantity":         {"5"},
		"delivery_address": {"12 Market Road, Surat"},
	}, vendorSession)
	resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	body := readBody(t, doGet(t, app, "/supplier/orders", ownerSession))
	re := regexp.MustCompile(`/update_order_status/([0-9a-f-]+)/shipped`)
	match := re.FindStringSubmatch(body)
	require.NotNil(t, match, "expected a status update link on the supplier order list")
	orderID := match[1]

	// A supplier who does not own the material is denied
	resp = doGet(t, app, "/update_order_status/"+orderID+"/cancelled", otherSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/supplier/dashboard", resp.Header.Get("Location"))

	body = readBody(t, doGet(t, app, "/supplier/orders", ownerSession))
	assert.Contains(t, body, "<td>pending</td>") // status unchanged

	// The owning supplier may write any status string
	resp = doGet(t, app, "/update_order_status/"+orderID+"/shipped", ownerSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/supplier/orders", resp.Header.Get("Location"))

	body = readBody(t, doGet(t, app, "/supplier/orders", ownerSession))
	assert.Contains(t, body, "<td>shipped</td>")

	// Vendors never pass the supplier gate on this route
	resp = doGet(t, app, "/update_order_status/"+orderID+"/delivered", vendorSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	// Unknown order id is a hard 404
	resp = doGet(t, app, "/update_order_status/no-such-order/shipped", ownerSession)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddMaterialMalformedNumbers(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "ravi_supplier", models.RoleSupplier, "Surat")
	supplierSession := loginUser(t, app, "ravi_supplier")

	resp := doPost(t, app, "/supplier/add_material", url.Values{
		"name":           {"Organic Turmeric"},
		"category":       {"Spices"},
		"price_per_unit": {"not-a-number"},
		"unit":           {"kg"},
		"stock_quantity": {"50"},
	}, supplierSession)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Price per unit must be a positive number")

	resp = doPost(t, app, "/supplier/add_material", url.Values{
		"name":           {"Organic Turmeric"},
		"category":       {"Spices"},
		"price_per_unit": {"180"},
		"unit":           {"kg"},
		"stock_quantity": {"lots"},
	}, supplierSession)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Stock quantity must be a non-negative whole number")

	// Neither attempt created anything
	body := readBody(t, doGet(t, app, "/supplier/dashboard", supplierSession))
	assert.Contains(t, body, "You have not listed any materials yet")
}

// Two simultaneous orders for a material's entire stock must resolve to
// exactly one winner: the conditional stock decrement runs inside the
// order-placement transaction.
func TestConcurrentExactStockOrders(t *testing.T) {
	app := setupApp(t)
	registerUser(t, app, "ravi_supplier", models.RoleSupplier, "Surat")
	registerUser(t, app, "vendor_one", models.RoleVendor, "Surat")
	registerUser(t, app, "vendor_two", models.RoleVendor, "Surat")

	supplierSession := loginUser(t, app, "ravi_supplier")
	addMaterial(t, app, supplierSession, "Organic Turmeric", "Spices", "180", "5")

	sessionOne := loginUser(t, app, "vendor_one")
	sessionTwo := loginUser(t, app, "vendor_two")
	orderPath := materialOrderLink(t, app, sessionOne, "Organic Turmeric")

	var successes int64
	var wg sync.WaitGroup
	for _, session := range []*http.Cookie{sessionOne, sessionTwo} {
		wg.Add(1)
		go func(session *http.Cookie) {
			defer wg.Done()
			form := url.Values{
				"quantity":         {"5"},
				"delivery_address": {"12 Market Road, Surat"},
			}
			req := httptest.NewRequest(http.MethodPost, orderPath, strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			req.AddCookie(session)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Errorf("concurrent order request failed: %v", err)
				return
			}
			resp.Body.Close()
			if resp.StatusCode == http.StatusSeeOther {
				atomic.AddInt64(&successes, 1)
			}
		}(session)
	}
	wg.Wait()

	assert.Equal(t, int64(1), successes, "exactly one of two concurrent exact-stock orders may succeed")

	// Stock ends at zero, never negative, and only one order exists
	body := readBody(t, doGet(t, app, "/supplier/dashboard", supplierSession))
	assert.Contains(t, body, "<td>0</td>")
	body = readBody(t, doGet(t, app, "/supplier/orders", supplierSession))
	re := regexp.MustCompile(`/update_order_status/[0-9a-f-]+/shipped`)
	assert.Len(t, re.FindAllString(body, -1), 1)
}
