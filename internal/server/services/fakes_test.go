package services

import (
	"context"
	"database/sql"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/taskmanager/internal/common"
	"github.com/dmitrijs2005/taskmanager/internal/dbx"
	"github.com/dmitrijs2005/taskmanager/internal/logging"
	"github.com/dmitrijs2005/taskmanager/internal/server/models"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/labels"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/tasks"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/taskstatuses"
	"github.com/dmitrijs2005/taskmanager/internal/server/repositories/users"
)

type nopLogger struct{}

func (n nopLogger) Debug(context.Context, string, ...any) {}
func (n nopLogger) Info(context.Context, string, ...any)  {}
func (n nopLogger) Warn(context.Context, string, ...any)  {}
func (n nopLogger) Error(context.Context, string, ...any) {}

func (n nopLogger) With(...any) logging.Logger { return n }

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// --- in-memory repositories ---

type fakeUsers struct {
	mu     sync.Mutex
	rows   map[int64]*models.User
	nextID int64

	getErr    error
	createErr error
}

func newFakeUsers() *fakeUsers { return &fakeUsers{rows: map[int64]*models.User{}} }

func (f *fakeUsers) put(u models.User) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u.ID = f.nextID
	f.rows[u.ID] = &u
	return &u
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	for _, r := range f.rows {
		if r.Email == u.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	stored := f.put(*u)
	u.ID = stored.ID
	return u, nil
}

func (f *fakeUsers) GetUserByLogin(_ context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, r := range f.rows {
		if r.Email == email {
			c := *r
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeUsers) List(context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, r := range f.rows {
		c := *r
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.rows[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	f.rows[u.ID] = &c
	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeRefresh struct {
	rows          map[string]*models.RefreshToken
	created       []string
	deletedByUser []int64

	consumeErr error
	createErr  error
	purgeErr   error
}

func newFakeRefresh() *fakeRefresh { return &fakeRefresh{rows: map[string]*models.RefreshToken{}} }

func (f *fakeRefresh) Create(_ context.Context, userID int64, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.rows[token] = &models.RefreshToken{UserID: userID, TokenHash: token, Expires: time.Now().Add(validity)}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefresh) Consume(_ context.Context, token string) (*models.RefreshToken, error) {
	if f.consumeErr != nil {
		return nil, f.consumeErr
	}
	r, ok := f.rows[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.rows, token)
	return r, nil
}

func (f *fakeRefresh) DeleteByUser(_ context.Context, userID int64) error {
	f.deletedByUser = append(f.deletedByUser, userID)
	for k, r := range f.rows {
		if r.UserID == userID {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeRefresh) DeleteExpired(context.Context) (int64, error) {
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	var n int64
	for k, r := range f.rows {
		if r.Expired(time.Now()) {
			delete(f.rows, k)
			n++
		}
	}
	return n, nil
}

type fakeStatuses struct {
	rows   map[int64]*models.TaskStatus
	nextID int64
	inUse  map[int64]bool
}

func newFakeStatuses() *fakeStatuses {
	return &fakeStatuses{rows: map[int64]*models.TaskStatus{}, inUse: map[int64]bool{}}
}

func (f *fakeStatuses) Create(_ context.Context, s *models.TaskStatus) (*models.TaskStatus, error) {
	for _, r := range f.rows {
		if r.Slug == s.Slug || r.Name == s.Name {
			return nil, common.ErrAlreadyExists
		}
	}
	f.nextID++
	s.ID = f.nextID
	c := *s
	f.rows[s.ID] = &c
	return s, nil
}

func (f *fakeStatuses) GetByID(_ context.Context, id int64) (*models.TaskStatus, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeStatuses) GetBySlug(_ context.Context, slug string) (*models.TaskStatus, error) {
	for _, r := range f.rows {
		if r.Slug == slug {
			c := *r
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeStatuses) List(context.Context) ([]*models.TaskStatus, error) {
	var out []*models.TaskStatus
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStatuses) Update(_ context.Context, s *models.TaskStatus) (*models.TaskStatus, error) {
	if _, ok := f.rows[s.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	f.rows[s.ID] = &c
	return s, nil
}

func (f *fakeStatuses) Delete(_ context.Context, id int64) error {
	if f.inUse[id] {
		return common.ErrInUse
	}
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeLabels struct {
	rows   map[int64]*models.Label
	nextID int64
}

func newFakeLabels() *fakeLabels { return &fakeLabels{rows: map[int64]*models.Label{}} }

func (f *fakeLabels) Create(_ context.Context, l *models.Label) (*models.Label, error) {
	for _, r := range f.rows {
		if r.Name == l.Name {
			return nil, common.ErrAlreadyExists
		}
	}
	f.nextID++
	l.ID = f.nextID
	c := *l
	f.rows[l.ID] = &c
	return l, nil
}

func (f *fakeLabels) GetByID(_ context.Context, id int64) (*models.Label, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	return &c, nil
}

func (f *fakeLabels) GetByName(_ context.Context, name string) (*models.Label, error) {
	for _, r := range f.rows {
		if r.Name == name {
			c := *r
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeLabels) List(context.Context) ([]*models.Label, error) {
	var out []*models.Label
	for _, r := range f.rows {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLabels) Update(_ context.Context, l *models.Label) (*models.Label, error) {
	if _, ok := f.rows[l.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	c := *l
	f.rows[l.ID] = &c
	return l, nil
}

func (f *fakeLabels) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

type fakeTasks struct {
	rows     map[int64]*models.Task
	nextID   int64
	statuses *fakeStatuses

	setLabelsCalls int
	setLabelsErr   error
}

func newFakeTasks(st *fakeStatuses) *fakeTasks {
	return &fakeTasks{rows: map[int64]*models.Task{}, statuses: st}
}

func (f *fakeTasks) Create(_ context.Context, t *models.Task) (*models.Task, error) {
	f.nextID++
	t.ID = f.nextID
	c := *t
	c.LabelIDs = nil
	f.rows[t.ID] = &c
	return t, nil
}

func (f *fakeTasks) GetByID(_ context.Context, id int64) (*models.Task, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *r
	c.LabelIDs = slices.Clone(r.LabelIDs)
	if st, ok := f.statuses.rows[r.StatusID]; ok {
		c.StatusSlug = st.Slug
	}
	return &c, nil
}

func (f *fakeTasks) List(_ context.Context, flt models.TaskFilter) ([]*models.Task, error) {
	var out []*models.Task
	for id := range f.rows {
		t, _ := f.GetByID(context.Background(), id)
		if flt.TitleCont != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(flt.TitleCont)) {
			continue
		}
		if flt.Status != "" && t.StatusSlug != flt.Status {
			continue
		}
		if flt.AssigneeID != nil && (t.AssigneeID == nil || *t.AssigneeID != *flt.AssigneeID) {
			continue
		}
		if flt.LabelID != nil && !slices.Contains(t.LabelIDs, *flt.LabelID) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTasks) Update(_ context.Context, t *models.Task) (*models.Task, error) {
	old, ok := f.rows[t.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *t
	c.LabelIDs = old.LabelIDs
	f.rows[t.ID] = &c
	return t, nil
}

func (f *fakeTasks) Delete(_ context.Context, id int64) error {
	if _, ok := f.rows[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeTasks) SetLabels(_ context.Context, taskID int64, ids []int64) error {
	f.setLabelsCalls++
	if f.setLabelsErr != nil {
		return f.setLabelsErr
	}
	f.rows[taskID].LabelIDs = slices.Clone(ids)
	return nil
}

type fakeRepoManager struct {
	u  *fakeUsers
	r  *fakeRefresh
	st *fakeStatuses
	l  *fakeLabels
	t  *fakeTasks
}

func newFakeRepoManager() *fakeRepoManager {
	st := newFakeStatuses()
	return &fakeRepoManager{
		u:  newFakeUsers(),
		r:  newFakeRefresh(),
		st: st,
		l:  newFakeLabels(),
		t:  newFakeTasks(st),
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) ([]int64, error) { return nil, nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) TaskStatuses(dbx.DBTX) taskstatuses.Repository   { return m.st }
func (m *fakeRepoManager) Labels(dbx.DBTX) labels.Repository               { return m.l }
func (m *fakeRepoManager) Tasks(dbx.DBTX) tasks.Repository                 { return m.t }
