package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrispoponi/contractflowai-web-sub001/config"
	"github.com/chrispoponi/contractflowai-web-sub001/middleware"
	"github.com/chrispoponi/contractflowai-web-sub001/model"
	"github.com/chrispoponi/contractflowai-web-sub001/service"
)

func setupContractRouter(t *testing.T, auth *config.AuthConfig) (*gin.Engine, *service.ContractStore, *memStorage) {
	t.Helper()

	store := service.NewContractStore(0)
	storage := newMemStorage()

	path := "summaries/c1.json"
	summary := "Cash purchase, 30 day close."
	store.Save(&model.Contract{ID: "c1", UserID: "user-1", Title: "123 Main St", Summary: &summary, SummaryPath: &path})
	store.Save(&model.Contract{ID: "c2", UserID: "user-1", Title: "Unparsed"})
	store.Save(&model.Contract{ID: "c3", UserID: "user-2", Title: "Someone else"})
	storage.objects[path] = &service.Object{Data: []byte(`{"generated_at":"2024-03-01T12:00:00Z"}`), ContentType: "application/json"}

	if auth == nil {
		auth = &config.AuthConfig{}
	}
	handler := NewContractHandler(store, storage)
	router := gin.New()
	api := router.Group("/api", middleware.AuthMiddleware(auth))
	api.GET("/contracts/:id", handler.Get)
	api.GET("/contracts/:id/summary", handler.GetSummary)

	return router, store, storage
}

func get(router *gin.Engine, url, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", url, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestContractHandlerGet(t *testing.T) {
	router, _, _ := setupContractRouter(t, nil)

	w := get(router, "/api/contracts/c1?userId=user-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if resp["title"] != "123 Main St" {
		t.Errorf("Expected title '123 Main St', got %v", resp["title"])
	}
	if resp["summary_path"] != "summaries/c1.json" {
		t.Errorf("Expected summary_path, got %v", resp["summary_path"])
	}
}

func TestContractHandlerGetNotFound(t *testing.T) {
	router, _, _ := setupContractRouter(t, nil)

	tests := []struct {
		name string
		url  string
		code int
	}{
		{name: "missing", url: "/api/contracts/nope?userId=user-1", code: http.StatusNotFound},
		{name: "other owner", url: "/api/contracts/c3?userId=user-1", code: http.StatusNotFound},
		{name: "no caller", url: "/api/contracts/c1", code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := get(router, tt.url, ""); w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}
		})
	}
}

func TestContractHandlerGetSummary(t *testing.T) {
	router, _, _ := setupContractRouter(t, nil)

	w := get(router, "/api/contracts/c1/summary?userId=user-1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if w.Body.String() != `{"generated_at":"2024-03-01T12:00:00Z"}` {
		t.Errorf("Expected artifact verbatim, got %s", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %q", ct)
	}
}

func TestContractHandlerGetSummaryMissing(t *testing.T) {
	router, store, storage := setupContractRouter(t, nil)

	missing := "summaries/gone.json"
	store.Save(&model.Contract{ID: "c4", UserID: "user-1", SummaryPath: &missing})

	tests := []struct {
		name string
		url  string
		code int
	}{
		{name: "no summary yet", url: "/api/contracts/c2/summary?userId=user-1", code: http.StatusNotFound},
		{name: "other owner", url: "/api/contracts/c3/summary?userId=user-1", code: http.StatusNotFound},
		{name: "artifact missing from storage", url: "/api/contracts/c4/summary?userId=user-1", code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := get(router, tt.url, ""); w.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, w.Code)
			}
		})
	}
	if storage.downloads != 1 {
		t.Errorf("Expected only the c4 lookup to reach storage, got %d downloads", storage.downloads)
	}
}

func TestContractHandlerUsesTokenSubject(t *testing.T) {
	auth := &config.AuthConfig{JWTSecret: "test-secret"}
	router, _, _ := setupContractRouter(t, auth)

	token, _, err := middleware.GenerateToken("user-2", time.Hour, auth)
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	// the query parameter is ignored once a token is present
	if w := get(router, "/api/contracts/c1?userId=user-1", token); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for another user's contract, got %d", w.Code)
	}
	if w := get(router, "/api/contracts/c3", token); w.Code != http.StatusOK {
		t.Errorf("Expected 200 for own contract, got %d", w.Code)
	}
}
