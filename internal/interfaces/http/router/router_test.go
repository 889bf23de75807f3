package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter_BasePath(t *testing.T) {
	assert.Equal(t, "/api/v1", NewRouter(gin.New()).BasePath())
	assert.Equal(t, "/api/v2", NewRouter(gin.New(), WithAPIVersion("v2")).BasePath())
}

func TestDomainGroup_ServesEveryMethod(t *testing.T) {
	engine := gin.New()
	reply := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method+" "+c.FullPath()) }

	g := NewDomainGroup("ledger", "/ledger")
	assert.Equal(t, "ledger", g.Name())
	assert.Equal(t, "/ledger", g.Prefix())
	g.GET("/accounts/:id", reply).
		POST("/accounts", reply).
		PUT("/installments/:id", reply).
		PATCH("/accounts/:id/status", reply)
	NewRouter(engine).Register(g).Setup()

	tests := []struct {
		method, path, route string
	}{
		{http.MethodGet, "/api/v1/ledger/accounts/1", "/api/v1/ledger/accounts/:id"},
		{http.MethodPost, "/api/v1/ledger/accounts", "/api/v1/ledger/accounts"},
		{http.MethodPut, "/api/v1/ledger/installments/9", "/api/v1/ledger/installments/:id"},
		{http.MethodPatch, "/api/v1/ledger/accounts/1/status", "/api/v1/ledger/accounts/:id/status"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.method+" "+tt.route, w.Body.String())
		})
	}

	// Payments are append-only, there is no DELETE
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/v1/ledger/accounts/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_MultipleRegistrars(t *testing.T) {
	engine := gin.New()
	ledgerGroup := NewDomainGroup("ledger", "/ledger").GET("/accounts", func(c *gin.Context) { c.Status(http.StatusOK) })
	system := registrarFunc(func(rg *gin.RouterGroup) {
		rg.GET("/system/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	})
	NewRouter(engine).Register(ledgerGroup).Register(system).Setup()

	for path, code := range map[string]int{
		"/api/v1/ledger/accounts": http.StatusOK,
		"/api/v1/system/ping":     http.StatusNoContent,
	} {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, code, w.Code, path)
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/api/v1", joinPath("/api/v1", ""))
	assert.Equal(t, "/api/v1/ledger/accounts", joinPath("/api/v1/ledger", "/accounts"))
	assert.Equal(t, "/api/v1/ledger/", joinPath("/api/v1", "/ledger/"))
}

func TestRoutesInventory(t *testing.T) {
	noop := func(c *gin.Context) {}

	g := NewDomainGroup("ledger", "/ledger")
	accounts := g.Group("accounts", "/accounts")
	accounts.GET("/:id", noop).Describe("Get an account").
		POST("/:id/deliveries", noop).Describe("Record a delivery")
	payments := g.Group("payments", "/payments")
	payments.GET("/:id/receipt.pdf", noop)

	r := NewRouter(gin.New())
	r.Register(g)
	// Plain registrars without an inventory are skipped
	r.Register(registrarFunc(func(*gin.RouterGroup) {}))

	routes := r.Routes()
	require.Len(t, routes, 3)
	assert.Equal(t, RouteInfo{Method: http.MethodGet, Path: "/api/v1/ledger/accounts/:id", Description: "Get an account"}, routes[0])
	assert.Equal(t, RouteInfo{Method: http.MethodPost, Path: "/api/v1/ledger/accounts/:id/deliveries", Description: "Record a delivery"}, routes[1])
	assert.Equal(t, "/api/v1/ledger/payments/:id/receipt.pdf", routes[2].Path)
	assert.Empty(t, routes[2].Description)
}

func TestSubgroupInheritsMiddleware(t *testing.T) {
	engine := gin.New()
	g := NewDomainGroup("ledger", "/ledger")
	g.Use(func(c *gin.Context) {
		c.Header("X-Ledger", "yes")
		c.Next()
	})
	g.Group("installments", "/installments").GET("/:id", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r := NewRouter(engine)
	r.Register(g).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/ledger/installments/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "yes", w.Header().Get("X-Ledger"))
}

func TestDescribeWithoutRoutes(t *testing.T) {
	g := NewDomainGroup("empty", "/empty")
	assert.NotPanics(t, func() { g.Describe("nothing to describe") })
	assert.Empty(t, g.Routes())
}

type registrarFunc func(*gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }
