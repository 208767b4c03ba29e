package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdash/opsdash/internal/audit"
	"github.com/opsdash/opsdash/internal/client"
	"github.com/opsdash/opsdash/internal/dashboard"
	"github.com/opsdash/opsdash/internal/investigate"
	"github.com/opsdash/opsdash/internal/upstream"
	"github.com/opsdash/opsdash/internal/user"
)

// memUserRepo is an in-memory user.Repository for transport tests.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*user.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*user.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, user.ErrUserNotFound
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *memUserRepo) Update(ctx context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*user.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

// memClientRepo is an in-memory client.Repository for transport tests.
type memClientRepo struct {
	mu      sync.Mutex
	clients map[string]*client.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: map[string]*client.Client{}}
}

func (r *memClientRepo) Create(ctx context.Context, c *client.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *memClientRepo) GetByID(ctx context.Context, id string) (*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clients[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, client.ErrClientNotFound
}

func (r *memClientRepo) GetBySlug(ctx context.Context, slug string) (*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, client.ErrClientNotFound
}

func (r *memClientRepo) Update(ctx context.Context, c *client.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[c.ID]; !ok {
		return client.ErrClientNotFound
	}
	cp := *c
	r.clients[c.ID] = &cp
	return nil
}

func (r *memClientRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[id]; !ok {
		return client.ErrClientNotFound
	}
	delete(r.clients, id)
	return nil
}

func (r *memClientRepo) List(ctx context.Context, limit, offset int) ([]*client.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*client.Client, 0, len(r.clients))
	for _, c := range r.clients {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

// testEnv wires a full router over in-memory repositories and one httptest
// server standing in for all four upstream services.
type testEnv struct {
	router        http.Handler
	adminToken    string
	operatorToken string
	upstreamMux   *http.ServeMux
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	upstreamSrv := httptest.NewServer(mux)
	t.Cleanup(upstreamSrv.Close)

	cfg := upstream.Config{BaseURL: upstreamSrv.URL, Timeout: 2 * time.Second}
	leads := upstream.NewLeadsClient(cfg)
	sdr := upstream.NewSDRClient(cfg)
	calc := upstream.NewCalcClient(cfg)
	reports := upstream.NewReportClient(cfg)

	auditLogger := audit.NewSlogLogger()
	userService := user.NewService(newMemUserRepo(), user.NewPasswordHasher(), auditLogger)
	clientService := client.NewService(newMemClientRepo(), auditLogger)
	dashboardService := dashboard.NewService(leads, sdr, calc, reports, clientService)
	investigateService := investigate.NewService(leads)
	refresher := dashboard.NewRefresher(dashboardService, time.Minute)

	h := NewHandler(
		userService, clientService, dashboardService, investigateService, refresher,
		leads, sdr, calc, reports, auditLogger,
		AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		10*time.Millisecond,
	)
	router := NewRouter(h, NewRateLimiter(1000, 1000), "")

	env := &testEnv{router: router, upstreamMux: mux}

	admin, err := userService.Create(context.Background(), "admin@example.com", "Admin", user.RoleAdmin, "password123")
	require.NoError(t, err)
	operator, err := userService.Create(context.Background(), "op@example.com", "Operator", user.RoleOperator, "password123")
	require.NoError(t, err)

	env.adminToken = env.login(t, admin.Email, "password123")
	env.operatorToken = env.login(t, operator.Email, "password123")
	return env
}

func (e *testEnv) login(t *testing.T, email, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"email": email, "password": password})
	rec := e.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body *bytes.Reader) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// TestPurpose: Validates login, token issuance and the /auth/me round trip.
func TestHTTP_LoginAndMe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var me user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, "admin@example.com", me.Email)
	assert.Equal(t, user.RoleAdmin, me.Role)
	assert.NotContains(t, rec.Body.String(), "password_hash")
}

// TestPurpose: Validates that protected routes reject missing and tampered
// tokens.
func TestHTTP_RejectsBadTokens(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tampered := env.adminToken[:len(env.adminToken)-2] + "xx"
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", tampered, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates that login fails with wrong credentials.
func TestHTTP_LoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]string{"email": "admin@example.com", "password": "wrong"})
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", "", bytes.NewReader(body))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// TestPurpose: Validates role enforcement: non-admins cannot reach the client
// registry or operator management.
func TestHTTP_AdminOnlyRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/admin/clients/", env.operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/users/", env.operatorToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodGet, "/admin/clients/", env.adminToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// TestPurpose: Validates the client registry CRUD cycle over HTTP, including
// the slug conflict response.
func TestHTTP_ClientCRUD(t *testing.T) {
	env := newTestEnv(t)

	body, _ := json.Marshal(map[string]string{"slug": "acme", "name": "Acme Corp"})
	rec := env.do(t, http.MethodPost, "/admin/clients/", env.adminToken, bytes.NewReader(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created client.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.True(t, created.Active)

	// Duplicate slug
	body, _ = json.Marshal(map[string]string{"slug": "acme", "name": "Other"})
	rec = env.do(t, http.MethodPost, "/admin/clients/", env.adminToken, bytes.NewReader(body))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Partial update
	body, _ = json.Marshal(map[string]any{"active": false})
	rec = env.do(t, http.MethodPut, "/admin/clients/"+created.ID, env.adminToken, bytes.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	var updated client.Client
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.False(t, updated.Active)
	assert.Equal(t, "Acme Corp", updated.Name)

	// Delete
	rec = env.do(t, http.MethodDelete, "/admin/clients/"+created.ID, env.adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodGet, "/admin/clients/"+created.ID, env.adminToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// TestPurpose: Validates the aggregated stats endpoint and that an upstream
// outage surfaces as a degraded payload, not an error.
func TestHTTP_DashboardStats(t *testing.T) {
	env := newTestEnv(t)

	env.upstreamMux.HandleFunc("/api/dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"total_leads": 12, "sales": 3})
	})
	env.upstreamMux.HandleFunc("/api/sdr/metrics", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"active_conversations": 4})
	})
	env.upstreamMux.HandleFunc("/api/relatorio/counts", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"done": 9})
	})
	// No /api/calc/summary registered: that branch degrades.

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard/stats?period=today", env.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats dashboard.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 12, stats.Leads.TotalLeads)
	assert.Equal(t, 4, stats.SDR.ActiveConversations)
	assert.Equal(t, 9, stats.Reports.Done)
	assert.True(t, stats.Degraded)
}

// TestPurpose: Validates the investigation search and the in-memory chip
// refilter endpoint.
func TestHTTP_InvestigateAndFilter(t *testing.T) {
	env := newTestEnv(t)

	env.upstreamMux.HandleFunc("/api/dashboard/investigate", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "maria", r.URL.Query().Get("q"))
		json.NewEncoder(w).Encode(map[string]any{"results": []map[string]any{
			{"event_type": "sale", "status": "ok", "sale_amount": 100},
			{"event_type": "webhook_error", "status": "error"},
			{"event_type": "message", "status": "ok"},
		}})
	})

	rec := env.do(t, http.MethodGet, "/api/v1/dashboard/investigate?q=maria&period=7d", env.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var records []upstream.EventRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 3)

	rec = env.do(t, http.MethodGet, "/api/v1/dashboard/investigate/filter?chip=errors", env.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "webhook_error", records[0].EventType)
}

// TestPurpose: Validates that triggering a report proxies to the reporting
// service and returns 202.
func TestHTTP_TriggerReport(t *testing.T) {
	env := newTestEnv(t)

	env.upstreamMux.HandleFunc("/api/relatorio/trigger", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "acme", req["client_slug"])
		json.NewEncoder(w).Encode(map[string]any{"id": "exec-1", "client_slug": "acme", "status": "pending"})
	})

	body, _ := json.Marshal(map[string]string{"client_slug": "acme"})
	rec := env.do(t, http.MethodPost, "/api/v1/reports/trigger", env.operatorToken, bytes.NewReader(body))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var exec upstream.Execution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &exec))
	assert.Equal(t, "exec-1", exec.ID)
}

// TestPurpose: Validates the force-refresh endpoint populates a snapshot.
func TestHTTP_ForceRefresh(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/v1/dashboard/refresh", env.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Refreshed bool                `json:"refreshed"`
		Snapshot  *dashboard.Snapshot `json:"snapshot"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Refreshed)
	require.NotNil(t, resp.Snapshot)
}

// TestPurpose: Validates the pairing long-poll: the endpoint blocks until
// the gateway reports an open connection, then returns the final status.
func TestHTTP_WhatsAppWait(t *testing.T) {
	env := newTestEnv(t)

	var calls int
	var mu sync.Mutex
	env.upstreamMux.HandleFunc("/api/sdr/whatsapp/status", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		state := "connecting"
		if calls >= 3 {
			state = "open"
		}
		mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"instance_id": r.URL.Query().Get("instance"),
			"state":       state,
			"qr_code":     "qr-data",
		})
	})

	rec := env.do(t, http.MethodGet, "/api/v1/sdr/whatsapp/wait?instance=inst-1", env.operatorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var status upstream.ConnectionStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "open", status.State)
	assert.Equal(t, "inst-1", status.InstanceID)

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, calls, 3)
}

// TestPurpose: Validates the unauthenticated health endpoint.
func TestHTTP_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}
