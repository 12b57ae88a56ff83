package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/teamtask/tasktracker/internal/core/domain"
	"github.com/teamtask/tasktracker/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory store shared by the stub repositories
// ---------------------------------------------------------------------------

type memState struct {
	users         map[int64]*domain.User
	tasks         map[int64]*domain.Task
	history       []*domain.HistoryEntry
	reassignments []*domain.ReassignmentEntry
	revoked       map[string]domain.RevokedToken
	seq           int64
}

type memStore struct {
	mu sync.Mutex
	memState

	appendHistoryErr      error // if set, AppendHistory fails with it
	appendReassignmentErr error // if set, AppendReassignment fails with it
	beforeUpdate          func() // runs before Update checks the version
	beforeTx              func() // runs before a transaction starts
}

func newMemStore() *memStore {
	return &memStore{memState: memState{
		users:   make(map[int64]*domain.User),
		tasks:   make(map[int64]*domain.Task),
		revoked: make(map[string]domain.RevokedToken),
	}}
}

func (m *memStore) nextID() int64 {
	m.seq++
	return m.seq
}

func (m *memStore) snapshot() memState {
	s := memState{
		users:         make(map[int64]*domain.User, len(m.users)),
		tasks:         make(map[int64]*domain.Task, len(m.tasks)),
		history:       append([]*domain.HistoryEntry(nil), m.history...),
		reassignments: append([]*domain.ReassignmentEntry(nil), m.reassignments...),
		revoked:       make(map[string]domain.RevokedToken, len(m.revoked)),
		seq:           m.seq,
	}
	for k, v := range m.users {
		s.users[k] = cloneUser(v)
	}
	for k, v := range m.tasks {
		s.tasks[k] = cloneTask(v)
	}
	for k, v := range m.revoked {
		s.revoked[k] = v
	}
	return s
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		c.AssigneeID = &id
	}
	return &c
}

// stubTransactor restores the store when fn fails, mirroring a rollback.
type stubTransactor struct{ db *memStore }

func (t stubTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if t.db.beforeTx != nil {
		t.db.beforeTx()
	}
	t.db.mu.Lock()
	saved := t.db.snapshot()
	t.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.db.mu.Lock()
		t.db.memState = saved
		t.db.mu.Unlock()
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct{ db *memStore }

func (r stubUserRepo) Create(_ context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return domain.ErrUserExists
		}
	}
	u.ID = r.db.nextID()
	r.db.users[u.ID] = cloneUser(u)
	return nil
}

func (r stubUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r stubUserRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r stubUserRepo) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.Role == role }), nil
}

func (r stubUserRepo) ListCreatedBy(_ context.Context, creatorID int64) ([]*domain.User, error) {
	return r.filter(func(u *domain.User) bool { return u.CreatedBy(creatorID) }), nil
}

func (r stubUserRepo) CountCreatedBy(ctx context.Context, creatorID int64) (int64, error) {
	users, _ := r.ListCreatedBy(ctx, creatorID)
	return int64(len(users)), nil
}

func (r stubUserRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.db.users, id)
	return nil
}

func (r stubUserRepo) filter(keep func(*domain.User) bool) []*domain.User {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.User
	for _, u := range r.db.users {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---------------------------------------------------------------------------
// Tasks
// ---------------------------------------------------------------------------

type stubTaskRepo struct{ db *memStore }

func (r stubTaskRepo) Create(_ context.Context, t *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t.ID = r.db.nextID()
	r.db.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r stubTaskRepo) FindByID(_ context.Context, id int64) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r stubTaskRepo) ListByAssignee(_ context.Context, employeeID int64) ([]*domain.Task, error) {
	return r.filter(func(t *domain.Task) bool { return t.AssignedTo(employeeID) }), nil
}

func (r stubTaskRepo) ListByAssigner(_ context.Context, managerID int64) ([]*domain.Task, error) {
	return r.filter(func(t *domain.Task) bool { return t.AssignerID == managerID }), nil
}

func (r stubTaskRepo) CountByAssigner(ctx context.Context, managerID int64) (int64, error) {
	tasks, _ := r.ListByAssigner(ctx, managerID)
	return int64(len(tasks)), nil
}

func (r stubTaskRepo) Update(_ context.Context, t *domain.Task, expectedVersion int64) error {
	if r.db.beforeUpdate != nil {
		r.db.beforeUpdate()
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.tasks[t.ID]
	if !ok || stored.Version != expectedVersion {
		return domain.ErrConcurrentUpdate
	}
	r.db.tasks[t.ID] = cloneTask(t)
	return nil
}

func (r stubTaskRepo) UnassignAll(_ context.Context, employeeID int64) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var n int64
	for _, t := range r.db.tasks {
		if t.AssignedTo(employeeID) {
			t.AssigneeID = nil
			t.Version++
			n++
		}
	}
	return n, nil
}

func (r stubTaskRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.db.tasks, id)
	return nil
}

func (r stubTaskRepo) filter(keep func(*domain.Task) bool) []*domain.Task {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.Task
	for _, t := range r.db.tasks {
		if keep(t) {
			out = append(out, cloneTask(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ---------------------------------------------------------------------------
// Audit
// ---------------------------------------------------------------------------

type stubAuditRepo struct{ db *memStore }

func (r stubAuditRepo) AppendHistory(_ context.Context, e *domain.HistoryEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.appendHistoryErr != nil {
		return r.db.appendHistoryErr
	}
	e.ID = r.db.nextID()
	c := *e
	r.db.history = append(r.db.history, &c)
	return nil
}

func (r stubAuditRepo) AppendReassignment(_ context.Context, e *domain.ReassignmentEntry) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.appendReassignmentErr != nil {
		return r.db.appendReassignmentErr
	}
	e.ID = r.db.nextID()
	c := *e
	r.db.reassignments = append(r.db.reassignments, &c)
	return nil
}

func (r stubAuditRepo) DeleteHistoryForTask(_ context.Context, taskID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	kept := r.db.history[:0:0]
	for _, e := range r.db.history {
		if e.TaskID != taskID {
			kept = append(kept, e)
		}
	}
	r.db.history = kept
	return nil
}

func (r stubAuditRepo) HistoryForTask(_ context.Context, taskID int64) ([]*domain.HistoryEntry, error) {
	return r.history(func(e *domain.HistoryEntry) bool { return e.TaskID == taskID }, true), nil
}

func (r stubAuditRepo) HistoryByActor(_ context.Context, actorID int64) ([]*domain.HistoryEntry, error) {
	return r.history(func(e *domain.HistoryEntry) bool { return e.ActorID == actorID }, false), nil
}

func (r stubAuditRepo) ReassignmentsForTask(_ context.Context, taskID int64) ([]*domain.ReassignmentEntry, error) {
	return r.reassignments(func(e *domain.ReassignmentEntry) bool { return e.TaskID == taskID }, true), nil
}

func (r stubAuditRepo) ReassignmentsByManager(_ context.Context, managerID int64) ([]*domain.ReassignmentEntry, error) {
	return r.reassignments(func(e *domain.ReassignmentEntry) bool { return e.ReassignedByID == managerID }, false), nil
}

func (r stubAuditRepo) ListHistory(_ context.Context, p ports.Page) ([]*domain.HistoryEntry, int64, error) {
	all := r.history(func(*domain.HistoryEntry) bool { return true }, false)
	return window(all, p), int64(len(all)), nil
}

func (r stubAuditRepo) ListReassignments(_ context.Context, p ports.Page) ([]*domain.ReassignmentEntry, int64, error) {
	all := r.reassignments(func(*domain.ReassignmentEntry) bool { return true }, false)
	return window(all, p), int64(len(all)), nil
}

func (r stubAuditRepo) history(keep func(*domain.HistoryEntry) bool, asc bool) []*domain.HistoryEntry {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.HistoryEntry
	for _, e := range r.db.history {
		if keep(e) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r stubAuditRepo) reassignments(keep func(*domain.ReassignmentEntry) bool, asc bool) []*domain.ReassignmentEntry {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*domain.ReassignmentEntry
	for _, e := range r.db.reassignments {
		if keep(e) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if asc {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func window[T any](items []T, p ports.Page) []T {
	skip := p.Skip()
	if skip >= len(items) {
		return []T{}
	}
	end := skip + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[skip:end]
}

// ---------------------------------------------------------------------------
// Revocation
// ---------------------------------------------------------------------------

type stubRevocationStore struct {
	db     *memStore
	addErr error
}

func (s *stubRevocationStore) Add(_ context.Context, digest string, revokedAt, expiresAt time.Time) error {
	if s.addErr != nil {
		return s.addErr
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	if _, ok := s.db.revoked[digest]; !ok {
		s.db.revoked[digest] = domain.RevokedToken{Digest: digest, RevokedAt: revokedAt, ExpiresAt: expiresAt}
	}
	return nil
}

func (s *stubRevocationStore) Exists(_ context.Context, digest string) (bool, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	_, ok := s.db.revoked[digest]
	return ok, nil
}

func (s *stubRevocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	var n int64
	for k, v := range s.db.revoked {
		if !v.ExpiresAt.IsZero() && !v.ExpiresAt.After(now) {
			delete(s.db.revoked, k)
			n++
		}
	}
	return n, nil
}

type stubRevocationCache struct {
	marked     map[string]time.Duration
	containErr error
}

func newStubRevocationCache() *stubRevocationCache {
	return &stubRevocationCache{marked: make(map[string]time.Duration)}
}

func (c *stubRevocationCache) Mark(_ context.Context, digest string, ttl time.Duration) error {
	c.marked[digest] = ttl
	return nil
}

func (c *stubRevocationCache) Contains(_ context.Context, digest string) (bool, error) {
	if c.containErr != nil {
		return false, c.containErr
	}
	_, ok := c.marked[digest]
	return ok, nil
}

// ---------------------------------------------------------------------------
// Fixture
// ---------------------------------------------------------------------------

var (
	discardLogger = zerolog.Nop()
	errBoom       = errors.New("boom")
	fixedNow      = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

type fixture struct {
	db          *memStore
	users       stubUserRepo
	tasks       stubTaskRepo
	audit       stubAuditRepo
	revocations *stubRevocationStore

	credentials *CredentialStore
	issuer      *TokenIssuer
	registry    *RevocationRegistry
	gate        *Gate
	auth        *AuthService
	identities  *IdentityService
	taskSvc     *TaskService
	auditSvc    *AuditService

	clock time.Time
}

func newFixture() *fixture {
	f := &fixture{db: newMemStore(), clock: fixedNow}
	f.users = stubUserRepo{db: f.db}
	f.tasks = stubTaskRepo{db: f.db}
	f.audit = stubAuditRepo{db: f.db}
	f.revocations = &stubRevocationStore{db: f.db}
	tx := stubTransactor{db: f.db}
	now := func() time.Time { return f.clock }

	f.credentials = NewCredentialStore(f.users, 4) // bcrypt.MinCost
	f.issuer = NewTokenIssuer([]byte("test-secret"), time.Hour).WithClock(now)
	f.registry = NewRevocationRegistry(f.revocations, nil, discardLogger).WithClock(now)
	f.gate = NewGate(f.registry, f.issuer, f.users)
	f.auth = NewAuthService(f.credentials, f.issuer, f.registry, discardLogger)
	f.identities = NewIdentityService(f.users, f.tasks, tx, f.credentials, discardLogger)
	f.taskSvc = NewTaskService(f.tasks, f.users, f.audit, tx, discardLogger).WithClock(now)
	f.auditSvc = NewAuditService(f.audit)
	return f
}

func (f *fixture) mustBootstrap(username string) *domain.User {
	u, _, err := f.identities.Bootstrap(context.Background(), ports.CreateIdentityInput{
		Name: "Root " + username, Username: username, Email: username + "@example.com", Password: "admin-pass",
	})
	if err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) mustManager(admin *domain.User, username string) *domain.User {
	v, err := f.identities.CreateManager(context.Background(), admin, ports.CreateIdentityInput{
		Name: "Manager " + username, Username: username, Email: username + "@example.com",
		Password: "manager-pass", Role: domain.RoleManager,
	})
	if err != nil {
		panic(err)
	}
	return v.User
}

func (f *fixture) mustEmployee(manager *domain.User, username string) *domain.User {
	v, err := f.identities.CreateEmployee(context.Background(), manager, ports.CreateIdentityInput{
		Name: "Employee " + username, Username: username, Email: username + "@example.com",
		Password: "employee-pass", Role: domain.RoleEmployee,
	})
	if err != nil {
		panic(err)
	}
	return v.User
}

func (f *fixture) mustTask(manager, employee *domain.User, title string) *domain.Task {
	t, err := f.taskSvc.Create(context.Background(), manager, ports.CreateTaskInput{Title: title, EmployeeID: employee.ID})
	if err != nil {
		panic(err)
	}
	return t
}

func hours(v float64) *float64 { return &v }
