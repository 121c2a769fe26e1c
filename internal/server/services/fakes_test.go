package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prajeshElEvEn/microauth/internal/logging"
	"github.com/prajeshElEvEn/microauth/internal/server/auth"
	"github.com/prajeshElEvEn/microauth/internal/server/models"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/repomanager"
	"github.com/prajeshElEvEn/microauth/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

type sentReset struct {
	email string
	token string
}

type fakeSender struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (f *fakeSender) SendReset(ctx context.Context, email, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReset{email: email, token: token})
	return f.err
}

func (f *fakeSender) last() sentReset {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

type fakeRecorder struct {
	mu     sync.Mutex
	ops    map[string]int
	emails map[bool]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{ops: map[string]int{}, emails: map[bool]int{}}
}

func (r *fakeRecorder) RecordOperation(op, result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops[op+"/"+result]++
}

func (r *fakeRecorder) RecordResetEmail(sent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails[sent]++
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	svc      *AuthService
	manager  *repomanager.MemoryRepositoryManager
	sender   *fakeSender
	clock    *clock
	issuer   *auth.Issuer
	recorder *fakeRecorder
}

func newFixture() *fixture {
	m := repomanager.NewMemoryRepositoryManager()
	sender := &fakeSender{}
	c := &clock{now: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	issuer := auth.NewIssuer(testSecret, time.Hour).WithClock(c.Now)
	rec := newFakeRecorder()

	svc := NewAuthService(m, auth.NewBcryptHasher(bcrypt.MinCost), issuer, sender, time.Hour, logging.Nop{}).
		WithClock(c.Now).
		WithRecorder(rec)

	return &fixture{svc: svc, manager: m, sender: sender, clock: c, issuer: issuer, recorder: rec}
}

func (f *fixture) stored(email string) *models.User {
	u, err := f.manager.Users().GetUserByEmail(context.Background(), email)
	if err != nil {
		panic(err)
	}
	return u
}

var errDB = errors.New("connection reset by peer")

// brokenManager fails every directory call.
type brokenManager struct {
	repomanager.RepositoryManager
}

type brokenRepo struct{}

func (brokenRepo) GetUserByEmail(context.Context, string) (*models.User, error) { return nil, errDB }
func (brokenRepo) GetUserByID(context.Context, string) (*models.User, error)    { return nil, errDB }
func (brokenRepo) GetUserByValidResetToken(context.Context, string, time.Time) (*models.User, error) {
	return nil, errDB
}
func (brokenRepo) Create(context.Context, *models.User) (*models.User, error) { return nil, errDB }
func (brokenRepo) Save(context.Context, *models.User) error                   { return errDB }

func (brokenManager) Users() users.Repository { return brokenRepo{} }
func (brokenManager) WithTx(ctx context.Context, fn func(context.Context, users.Repository) error) error {
	return fn(ctx, brokenRepo{})
}

// saveFailingRepo delegates to a real repository but fails Save after
// failAfter successful calls.
type saveFailingRepo struct {
	users.Repository
	mu        sync.Mutex
	saves     int
	failAfter int
}

func (r *saveFailingRepo) Save(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	r.saves++
	n := r.saves
	r.mu.Unlock()
	if n > r.failAfter {
		return errDB
	}
	return r.Repository.Save(ctx, u)
}

type saveFailingManager struct {
	*repomanager.MemoryRepositoryManager
	repo *saveFailingRepo
}

func (m *saveFailingManager) Users() users.Repository { return m.repo }
