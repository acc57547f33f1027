package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridge/careteam/pkg/careteam/auth"
	"github.com/carebridge/careteam/pkg/careteam/groups"
	"github.com/carebridge/careteam/pkg/careteam/invitations"
	"github.com/carebridge/careteam/pkg/careteam/models"
	"github.com/carebridge/careteam/pkg/careteam/patients"
	"github.com/carebridge/careteam/pkg/careteam/store"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// setupFullServer creates a Gin engine with all routes registered
// This mirrors the setup in cmd/careteam-server/main.go
func setupFullServer(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	logger := zap.NewNop()
	repo := store.New(db)

	membershipManager := groups.NewManager(repo, logger)
	assignmentManager := patients.NewManager(repo, logger)
	responseLimiter := invitations.NewActorRateLimiter(100, time.Minute)
	invitationManager := invitations.NewManager(repo, responseLimiter, 7*24*time.Hour, logger)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "careteam",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		authed := api.Group("", auth.AuthMiddleware())

		// Care-team routes
		groupsHandler := groups.NewHandler(db, membershipManager, groups.Defaults{
			MaxMembers:  25,
			MaxPatients: 200,
		})
		groupsGroup := authed.Group("/groups")
		groupsHandler.RegisterRoutes(groupsGroup)
		groupsHandler.RegisterMemberRoutes(groupsGroup)

		// Patient registry and assignment routes
		patientsHandler := patients.NewHandler(db, assignmentManager)
		patientsHandler.RegisterRoutes(authed)
		patientsHandler.RegisterGroupRoutes(groupsGroup)

		// Invitation routes
		invitationsHandler := invitations.NewHandler(db, invitationManager)
		invitationsHandler.RegisterGroupRoutes(groupsGroup)
		invitationsHandler.RegisterRoutes(authed.Group("/invitations"))
	}

	return r
}

// doJSON sends a JSON request with an optional bearer token and returns the recorder
func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

// registerUser registers a user through the API and returns their token
func registerUser(t *testing.T, router *gin.Engine, email, name string) string {
	resp := doJSON(router, "POST", "/api/auth/register", "", map[string]string{
		"email":    email,
		"password": "password123",
		"name":     name,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Failed to register %s: %d %s", email, resp.Code, resp.Body.String())
	}
	var authResp auth.AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &authResp)
	return authResp.Token
}

// TestServerStartup verifies that all routes can be registered without conflicts
// This test would fail if there are route parameter conflicts (like :id vs :groupId)
func TestServerStartup(t *testing.T) {
	db := setupTestDB(t)

	// This will panic if there are route conflicts
	router := setupFullServer(db)

	if router == nil {
		t.Fatal("Expected router to be created")
	}
}

// TestHealthEndpoints verifies the health endpoints respond correctly
func TestHealthEndpoints(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	for _, path := range []string{"/health", "/api/health"} {
		resp := doJSON(router, "GET", path, "", nil)
		if resp.Code != http.StatusOK {
			t.Errorf("Expected status 200 for %s, got %d", path, resp.Code)
		}
	}
}

// TestProtectedEndpointsRequireAuth verifies that protected endpoints return 401 without auth
func TestProtectedEndpointsRequireAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	protectedEndpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/groups"},
		{"POST", "/api/groups"},
		{"GET", "/api/patients"},
		{"GET", "/api/invitations"},
		{"POST", "/api/invitations/1/accept"},
	}

	for _, endpoint := range protectedEndpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			resp := doJSON(router, endpoint.method, endpoint.path, "", nil)
			if resp.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401 for %s %s, got %d", endpoint.method, endpoint.path, resp.Code)
			}
		})
	}
}

// TestPublicEndpointsNoAuth verifies that public endpoints don't require auth
func TestPublicEndpointsNoAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	publicEndpoints := []struct {
		method       string
		path         string
		expectedCode int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/health", http.StatusOK},
		{"POST", "/api/auth/register", http.StatusBadRequest}, // Bad request (no body), but not 401
		{"POST", "/api/auth/login", http.StatusBadRequest},    // Bad request (no body), but not 401
	}

	for _, endpoint := range publicEndpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			resp := doJSON(router, endpoint.method, endpoint.path, "", nil)
			if resp.Code != endpoint.expectedCode {
				t.Errorf("Expected status %d for %s %s, got %d", endpoint.expectedCode, endpoint.method, endpoint.path, resp.Code)
			}
		})
	}
}

// TestCareTeamLifecycle walks the whole flow through the public API: an admin
// creates a team, invites a colleague, the colleague accepts, and a patient
// gets assigned to the team.
func TestCareTeamLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	adminToken := registerUser(t, router, "attending@example.com", "Dr. Attending")
	residentToken := registerUser(t, router, "resident@example.com", "Dr. Resident")

	// Admin creates a care team and becomes its first admin
	resp := doJSON(router, "POST", "/api/groups", adminToken, map[string]interface{}{
		"name": "ICU Team",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Failed to create group: %d %s", resp.Code, resp.Body.String())
	}
	var group groups.GroupResponse
	json.Unmarshal(resp.Body.Bytes(), &group)
	if group.Role != "admin" {
		t.Errorf("Expected creator to be admin, got %q", group.Role)
	}

	// Admin invites the resident
	resp = doJSON(router, "POST", "/api/groups/1/invitations", adminToken, map[string]string{
		"email": "resident@example.com",
		"role":  "member",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Failed to create invitation: %d %s", resp.Code, resp.Body.String())
	}

	// The resident can't invite anyone before joining
	resp = doJSON(router, "POST", "/api/groups/1/invitations", residentToken, map[string]string{
		"email": "other@example.com",
		"role":  "member",
	})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected 403 for non-member invite, got %d", resp.Code)
	}

	// The resident sees the invitation and accepts it
	resp = doJSON(router, "GET", "/api/invitations", residentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Failed to list invitations: %d %s", resp.Code, resp.Body.String())
	}
	var mine []invitations.InvitationResponse
	json.Unmarshal(resp.Body.Bytes(), &mine)
	if len(mine) != 1 || mine[0].Status != "pending" {
		t.Fatalf("Expected 1 pending invitation, got %+v", mine)
	}

	resp = doJSON(router, "POST", "/api/invitations/1/accept", residentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Failed to accept invitation: %d %s", resp.Code, resp.Body.String())
	}

	// The resident now sees the team
	resp = doJSON(router, "GET", "/api/groups/1", residentToken, nil)
	if resp.Code != http.StatusOK {
		t.Errorf("Expected member to see group, got %d", resp.Code)
	}

	// Admin registers a patient and assigns them to the team
	resp = doJSON(router, "POST", "/api/patients", adminToken, map[string]string{
		"name": "Pat Doe",
		"mrn":  "MRN-0001",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Failed to create patient: %d %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(router, "POST", "/api/groups/1/patients/1", adminToken, nil)
	if resp.Code != http.StatusCreated {
		t.Fatalf("Failed to assign patient: %d %s", resp.Code, resp.Body.String())
	}

	// Both members see the assigned patient
	resp = doJSON(router, "GET", "/api/groups/1/patients", residentToken, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Failed to list group patients: %d %s", resp.Code, resp.Body.String())
	}
	var assigned []patients.PatientResponse
	json.Unmarshal(resp.Body.Bytes(), &assigned)
	if len(assigned) != 1 || assigned[0].MRN != "MRN-0001" {
		t.Errorf("Expected 1 assigned patient, got %+v", assigned)
	}
}
