package service

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
)

// fakeCodeStore mimics the TTL store without timers; tests expire keys by
// removing them.
type fakeCodeStore struct {
	mu        sync.Mutex
	data      map[string]string
	ttls      map[string]time.Duration
	deleted   []string
	pipelines [][]ports.Entry

	getErr  error
	putErr  error
	pipeErr error
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeCodeStore) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeCodeStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeCodeStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeCodeStore) PutPipeline(ctx context.Context, entries ...ports.Entry) error {
	if f.pipeErr != nil {
		return f.pipeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pipelines = append(f.pipelines, entries)
	for _, e := range entries {
		f.data[e.Key] = e.Value
		f.ttls[e.Key] = e.TTL
	}
	return nil
}

func (f *fakeCodeStore) expire(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
}

type fakeCaptcha struct {
	text  string
	image []byte
	err   error
}

func (f *fakeCaptcha) Generate() (string, []byte, error) {
	return f.text, f.image, f.err
}

type enqueuedSMS struct {
	mobile        string
	code          string
	expireMinutes int
}

type fakeDispatcher struct {
	mu       sync.Mutex
	enqueued []enqueuedSMS
}

func (f *fakeDispatcher) Enqueue(mobile, code string, expireMinutes int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, enqueuedSMS{mobile: mobile, code: code, expireMinutes: expireMinutes})
}

// fakeUserRepo serves lookups out of maps and records mutations.
type fakeUserRepo struct {
	byID       map[int64]*domain.User
	byUsername map[string]*domain.User
	byMobile   map[string]*domain.User

	createResult *domain.User
	createErr    error
	createCalls  []struct {
		username string
		mobile   string
	}

	updatePasswordInput struct {
		id   int64
		hash []byte
		salt []byte
	}
	updatePasswordErr error

	updateEmailInput struct {
		id    int64
		email string
	}
	emailActivated []int64

	defaultAddressInput struct {
		userID    int64
		addressID int64
	}
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{
		byID:       make(map[int64]*domain.User),
		byUsername: make(map[string]*domain.User),
		byMobile:   make(map[string]*domain.User),
	}
	for _, u := range users {
		f.byID[u.ID] = u
		f.byUsername[u.Username] = u
		f.byMobile[u.Mobile] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, username, mobile string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	f.createCalls = append(f.createCalls, struct {
		username string
		mobile   string
	}{username: username, mobile: mobile})
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createResult != nil {
		return f.createResult, nil
	}
	user := &domain.User{
		ID:           int64(len(f.byID) + 1),
		Username:     username,
		Mobile:       mobile,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
	}
	f.byID[user.ID] = user
	f.byUsername[username] = user
	f.byMobile[mobile] = user
	return user, nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := f.byUsername[username]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) FindByMobile(ctx context.Context, mobile string) (*domain.User, error) {
	if u, ok := f.byMobile[mobile]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeUserRepo) CountByUsername(ctx context.Context, username string) (int, error) {
	if _, ok := f.byUsername[username]; ok {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeUserRepo) CountByMobile(ctx context.Context, mobile string) (int, error) {
	if _, ok := f.byMobile[mobile]; ok {
		return 1, nil
	}
	return 0, nil
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash, passwordSalt []byte) error {
	f.updatePasswordInput = struct {
		id   int64
		hash []byte
		salt []byte
	}{id: id, hash: append([]byte(nil), passwordHash...), salt: append([]byte(nil), passwordSalt...)}
	return f.updatePasswordErr
}

func (f *fakeUserRepo) UpdateEmail(ctx context.Context, id int64, email string) error {
	f.updateEmailInput = struct {
		id    int64
		email string
	}{id: id, email: email}
	return nil
}

func (f *fakeUserRepo) MarkEmailActive(ctx context.Context, id int64) error {
	f.emailActivated = append(f.emailActivated, id)
	return nil
}

func (f *fakeUserRepo) SetDefaultAddress(ctx context.Context, id int64, addressID int64) error {
	f.defaultAddressInput = struct {
		userID    int64
		addressID int64
	}{userID: id, addressID: addressID}
	return nil
}
