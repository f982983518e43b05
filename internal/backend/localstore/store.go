// Package localstore implements the backend contract on a single-device
// SQLite database. Persistence mirrors the original key-value layout: one
// entry holds the remembered session user, one entry holds every user's
// tasks as a single serialized list. Whole-list reads and writes are
// acceptable here because the store is single-device and single-process;
// it is explicitly not designed for concurrent writers.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"taskflow/internal/backend/localstore/migrations"
	"taskflow/internal/errors"
	"taskflow/internal/task"
)

const (
	// sessionKey holds at most one serialized User record.
	sessionKey = "session"
	// tasksKey holds the full task collection of all users as one
	// serialized list.
	tasksKey = "tasks"

	// taskIDPrefix keeps locally assigned ids from colliding with
	// remote-assigned ones.
	taskIDPrefix = "m-"
)

// Demo credential accepted by SignIn out of the box. Stored in the same
// credential table as signed-up accounts.
const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
	demoUserID   = "demo-1"
	demoName     = "Demo"
)

// Store implements the backend contract against a local SQLite file.
type Store struct {
	db *sql.DB

	// mu serializes read-modify-write cycles on the whole-list tasks
	// entry within this process.
	mu sync.Mutex
}

// Open opens (creating if needed) the store at path, runs migrations, and
// seeds the demo credential.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.NewBackendError("open local store", err)
	}

	if err := migrations.RunMigrations(db); err != nil {
		db.Close()
		return nil, errors.NewBackendError("migrate local store", err)
	}

	s := &Store{db: db}
	if err := s.seedDemoUser(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SupportsRealtime reports that the local store has no push channel.
func (s *Store) SupportsRealtime() bool { return false }

func (s *Store) seedDemoUser(ctx context.Context) error {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM credentials WHERE email = ?`, DemoEmail).Scan(&n)
	if err != nil {
		return errors.NewBackendError("seed demo user", err)
	}
	if n > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.NewBackendError("seed demo user", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credentials (email, user_id, display_name, password_hash) VALUES (?, ?, ?, ?)`,
		DemoEmail, demoUserID, demoName, hash)
	if err != nil {
		return errors.NewBackendError("seed demo user", err)
	}
	return nil
}

// SignIn checks the credential table. Any identity created via SignUp is
// accepted alongside the seeded demo credential.
func (s *Store) SignIn(ctx context.Context, email, password string) (task.User, error) {
	email = normalizeEmail(email)

	var (
		userID, displayName string
		hash                []byte
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, display_name, password_hash FROM credentials WHERE email = ?`, email).
		Scan(&userID, &displayName, &hash)
	if err == sql.ErrNoRows {
		return task.User{}, errors.NewAuthError("invalid credentials", nil)
	}
	if err != nil {
		return task.User{}, errors.NewBackendError("sign in", err)
	}

	if bcrypt.CompareHashAndPassword(hash, []byte(password)) != nil {
		return task.User{}, errors.NewAuthError("invalid credentials", nil)
	}

	user := task.User{ID: userID, DisplayName: displayName, Email: email}
	if err := s.putSession(ctx, user); err != nil {
		return task.User{}, err
	}
	return user, nil
}

// SignUp creates a new local account, remembers it as the current
// session, and signs it in.
func (s *Store) SignUp(ctx context.Context, name, email, password string) (task.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return task.User{}, errors.NewValidationError("email required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return task.User{}, errors.NewBackendError("sign up", err)
	}

	user := task.User{ID: uuid.NewString(), DisplayName: name, Email: email}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO credentials (email, user_id, display_name, password_hash) VALUES (?, ?, ?, ?)`,
		email, user.ID, name, hash)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return task.User{}, errors.NewAuthError("email already in use", nil)
		}
		return task.User{}, errors.NewBackendError("sign up", err)
	}

	if err := s.putSession(ctx, user); err != nil {
		return task.User{}, err
	}
	return user, nil
}

// SignOut removes the remembered session record.
func (s *Store) SignOut(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, sessionKey)
	if err != nil {
		return errors.NewBackendError("sign out", err)
	}
	return nil
}

// CurrentUser returns the remembered session user, or nil when signed out.
func (s *Store) CurrentUser(ctx context.Context) (*task.User, error) {
	raw, ok, err := s.getKV(ctx, sessionKey)
	if err != nil || !ok {
		return nil, err
	}
	var user task.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, errors.NewBackendError("decode session", err)
	}
	return &user, nil
}

// LoadTasks filters the shared list down to one owner, newest first.
func (s *Store) LoadTasks(ctx context.Context, ownerID string) ([]task.Task, error) {
	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	var owned []task.Task
	for _, t := range all {
		if t.OwnerID == ownerID {
			owned = append(owned, t)
		}
	}
	task.SortByCreatedAtDesc(owned)
	return owned, nil
}

// CreateTask assigns a device-unique time-based id and persists the task.
func (s *Store) CreateTask(ctx context.Context, ownerID string, draft task.Draft) (task.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return task.Task{}, err
	}

	t := task.Task{
		ID:          taskIDPrefix + strconv.FormatInt(time.Now().UnixNano(), 10),
		OwnerID:     ownerID,
		Title:       draft.Title,
		Description: draft.Description,
		Completed:   false,
		CreatedAt:   time.Now().UTC(),
	}
	all = append(all, t)

	if err := s.saveAll(ctx, all); err != nil {
		return task.Task{}, err
	}
	return t, nil
}

// UpdateTask merges only the supplied patch fields.
func (s *Store) UpdateTask(ctx context.Context, id string, patch task.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	found := false
	for i, t := range all {
		if t.ID == id {
			all[i] = patch.Apply(t)
			found = true
			break
		}
	}
	if !found {
		return errors.NewNotFoundError("task", id)
	}
	return s.saveAll(ctx, all)
}

// DeleteTask removes the task. Deleting an absent id is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.loadAll(ctx)
	if err != nil {
		return err
	}

	kept := all[:0]
	for _, t := range all {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	return s.saveAll(ctx, kept)
}

// Subscribe returns a no-op unsubscribe: the local store has no push
// channel and never invokes the callbacks.
func (s *Store) Subscribe(ctx context.Context, ownerID string, onSnapshot func([]task.Task), onError func(error)) (func(), error) {
	return func() {}, nil
}

func (s *Store) putSession(ctx context.Context, user task.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return errors.NewBackendError("encode session", err)
	}
	return s.putKV(ctx, sessionKey, raw)
}

func (s *Store) loadAll(ctx context.Context) ([]task.Task, error) {
	raw, ok, err := s.getKV(ctx, tasksKey)
	if err != nil || !ok {
		return nil, err
	}
	var all []task.Task
	if err := json.Unmarshal(raw, &all); err != nil {
		return nil, errors.NewBackendError("decode tasks", err)
	}
	return all, nil
}

func (s *Store) saveAll(ctx context.Context, all []task.Task) error {
	if all == nil {
		all = []task.Task{}
	}
	raw, err := json.Marshal(all)
	if err != nil {
		return errors.NewBackendError("encode tasks", err)
	}
	return s.putKV(ctx, tasksKey, raw)
}

func (s *Store) getKV(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.NewBackendError("read "+key, err)
	}
	return value, true, nil
}

func (s *Store) putKV(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return errors.NewBackendError("write "+key, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
