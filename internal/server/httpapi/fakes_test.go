package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/auth"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}

func (n nopLogger) With(...any) logging.Logger { return n }

type logEntry struct {
	msg  string
	args []any
}

type captureLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (c *captureLogger) add(msg string, args []any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, logEntry{msg: msg, args: args})
}

func (c *captureLogger) Debug(_ context.Context, m string, a ...any) { c.add(m, a) }
func (c *captureLogger) Info(_ context.Context, m string, a ...any)  { c.add(m, a) }
func (c *captureLogger) Warn(_ context.Context, m string, a ...any)  { c.add(m, a) }
func (c *captureLogger) Error(_ context.Context, m string, a ...any) { c.add(m, a) }

func (c *captureLogger) With(...any) logging.Logger { return c }

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- services ---

type fakeAuth struct {
	pair      *services.TokenPair
	err       error
	gotLogin  [2]string
	gotToken  string
	loggedOut *auth.Claims
}

func (f *fakeAuth) Login(_ context.Context, email, password string) (*services.TokenPair, error) {
	f.gotLogin = [2]string{email, password}
	return f.pair, f.err
}

func (f *fakeAuth) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	f.gotToken = token
	return f.pair, f.err
}

func (f *fakeAuth) Logout(_ context.Context, c *auth.Claims) error {
	f.loggedOut = c
	return f.err
}

type fakeUsers struct {
	user     *models.User
	err      error
	calls    int
	gotID    int64
	gotInput services.RegisterInput
	gotPatch services.UserPatch
}

func (f *fakeUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	f.calls++
	f.gotInput = in
	return f.user, f.err
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []*models.User{f.user}, nil
}

func (f *fakeUsers) Get(_ context.Context, id int64) (*models.User, error) {
	f.calls++
	f.gotID = id
	return f.user, f.err
}

func (f *fakeUsers) Update(_ context.Context, id int64, p services.UserPatch) (*models.User, error) {
	f.calls++
	f.gotID = id
	f.gotPatch = p
	return f.user, f.err
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	f.calls++
	f.gotID = id
	return f.err
}

type fakeStatuses struct {
	status *models.TaskStatus
	err    error
	gotID  int64
}

func (f *fakeStatuses) List(context.Context) ([]*models.TaskStatus, error) {
	return []*models.TaskStatus{f.status}, f.err
}
func (f *fakeStatuses) Get(_ context.Context, id int64) (*models.TaskStatus, error) {
	f.gotID = id
	return f.status, f.err
}
func (f *fakeStatuses) Create(context.Context, services.TaskStatusInput) (*models.TaskStatus, error) {
	return f.status, f.err
}
func (f *fakeStatuses) Update(_ context.Context, id int64, _ services.TaskStatusPatch) (*models.TaskStatus, error) {
	f.gotID = id
	return f.status, f.err
}
func (f *fakeStatuses) Delete(_ context.Context, id int64) error {
	f.gotID = id
	return f.err
}

type fakeLabels struct {
	label *models.Label
	err   error
	gotIn services.LabelInput
}

func (f *fakeLabels) List(context.Context) ([]*models.Label, error) {
	return []*models.Label{f.label}, f.err
}
func (f *fakeLabels) Get(context.Context, int64) (*models.Label, error) { return f.label, f.err }
func (f *fakeLabels) Create(_ context.Context, in services.LabelInput) (*models.Label, error) {
	f.gotIn = in
	return f.label, f.err
}
func (f *fakeLabels) Update(context.Context, int64, services.LabelPatch) (*models.Label, error) {
	return f.label, f.err
}
func (f *fakeLabels) Delete(context.Context, int64) error { return f.err }

type fakeTasks struct {
	task      *models.Task
	err       error
	calls     int
	gotFilter models.TaskFilter
	gotInput  services.TaskInput
	gotPatch  services.TaskPatch
}

func (f *fakeTasks) List(_ context.Context, flt models.TaskFilter) ([]*models.Task, error) {
	f.calls++
	f.gotFilter = flt
	if f.err != nil {
		return nil, f.err
	}
	return []*models.Task{f.task}, nil
}
func (f *fakeTasks) Get(context.Context, int64) (*models.Task, error) {
	f.calls++
	return f.task, f.err
}
func (f *fakeTasks) Create(_ context.Context, in services.TaskInput) (*models.Task, error) {
	f.calls++
	f.gotInput = in
	return f.task, f.err
}
func (f *fakeTasks) Update(_ context.Context, _ int64, p services.TaskPatch) (*models.Task, error) {
	f.calls++
	f.gotPatch = p
	return f.task, f.err
}
func (f *fakeTasks) Delete(context.Context, int64) error {
	f.calls++
	return f.err
}

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

// --- harness ---

type harness struct {
	t        *testing.T
	router   *gin.Engine
	tokens   *auth.TokenManager
	auth     *fakeAuth
	users    *fakeUsers
	statuses *fakeStatuses
	labels   *fakeLabels
	tasks    *fakeTasks
	db       *fakePinger
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	key, err := auth.NewHMACKey("test", []byte("http-test-secret"))
	require.NoError(t, err)

	h := &harness{
		t:        t,
		tokens:   auth.NewTokenManager(auth.NewKeyring(key), auth.WithRevoker(auth.NewMemoryRevoker())),
		auth:     &fakeAuth{},
		users:    &fakeUsers{user: &models.User{ID: 2, Email: "bob@example.com", PasswordHash: "$2a$secret"}},
		statuses: &fakeStatuses{status: &models.TaskStatus{ID: 1, Name: "Draft", Slug: "draft"}},
		labels:   &fakeLabels{label: &models.Label{ID: 1, Name: "bug"}},
		tasks:    &fakeTasks{task: &models.Task{ID: 5, Title: "t", StatusSlug: "draft"}},
		db:       &fakePinger{},
	}
	h.router = NewRouter(Deps{
		Auth:     h.auth,
		Users:    h.users,
		Statuses: h.statuses,
		Labels:   h.labels,
		Tasks:    h.tasks,
		DB:       h.db,
		Gate:     auth.NewGate(h.tokens),
		Policy:   auth.NewRBACPolicy(auth.DefaultRBACConfig()),
		Logger:   nopLogger{},
	})
	return h
}

func (h *harness) token(sub string, roles ...string) string {
	h.t.Helper()
	tok, err := h.tokens.Issue(sub, auth.Payload{Email: sub + "@example.com", Roles: roles}, time.Hour)
	require.NoError(h.t, err)
	return tok
}

func (h *harness) do(method, path, token, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}


func newRecorder(h *harness, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}
