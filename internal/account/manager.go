package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mesh-intelligence/moodlog/pkg/types"
)

// Options tune a Manager.
type Options struct {
	// Latency is waited at the start of Register and Authenticate.
	Latency time.Duration
	// VerifySession makes RestoreSession check the token and the account.
	VerifySession bool
	Logger        *slog.Logger
}

// Manager owns the accounts list and the active session of one device.
type Manager struct {
	kv      types.KV
	hasher  SecretHasher
	signer  SessionSigner
	latency time.Duration
	verify  bool
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	current *types.Session
}

type registration struct {
	Email  string `validate:"required,email"`
	Secret string `validate:"required"`
	Name   string `validate:"required"`
}

var validate = validator.New()

// NewManager creates a Manager over kv. Call RestoreSession to pick up a
// session persisted by an earlier run.
func NewManager(kv types.KV, hasher SecretHasher, signer SessionSigner, opts Options) *Manager {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Manager{
		kv:      kv,
		hasher:  hasher,
		signer:  signer,
		latency: opts.Latency,
		verify:  opts.VerifySession,
		logger:  l,
		now:     time.Now,
	}
}

// Register creates an account and signs it in. Emails are unique and
// compared exactly, so "A@x.io" and "a@x.io" are different accounts.
func (m *Manager) Register(ctx context.Context, email, secret, name string) (*types.Session, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	if err := validate.Struct(registration{Email: email, Secret: secret, Name: name}); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidAccount, err)
	}
	if len(secret) > MaxSecretBytes {
		return nil, fmt.Errorf("%w: secret longer than %d bytes", types.ErrInvalidAccount, MaxSecretBytes)
	}

	accounts, version, err := m.loadAccounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email == email {
			return nil, types.ErrDuplicateAccount
		}
	}

	hash, err := m.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash secret: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate account id: %w", err)
	}

	account := types.Account{
		ID:         id.String(),
		Email:      email,
		SecretHash: hash,
		Name:       name,
		CreatedAt:  m.now().UTC(),
	}
	session, err := m.issue(ctx, account)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(append(accounts, account))
	if err != nil {
		return nil, fmt.Errorf("encode accounts: %w", err)
	}
	saved, err := m.kv.CompareAndSet(types.AccountsKey, data, version)
	if err != nil {
		return nil, fmt.Errorf("save accounts: %w", err)
	}

	if err := m.persist(session); err != nil {
		if rerr := m.unregister(accounts, saved); rerr != nil {
			m.logger.Error("account left without session", "account_id", account.ID, "error", rerr)
		}
		return nil, err
	}

	m.logger.Debug("account registered", "account_id", account.ID)
	return copySession(session), nil
}

// unregister puts back the accounts list as it was before a registration
// whose session could not be stored. A concurrent write wins.
func (m *Manager) unregister(previous []types.Account, version int64) error {
	if previous == nil {
		previous = []types.Account{}
	}
	data, err := json.Marshal(previous)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	if _, err := m.kv.CompareAndSet(types.AccountsKey, data, version); err != nil {
		return fmt.Errorf("restore accounts: %w", err)
	}
	return nil
}

// Authenticate signs in the account matching email and secret. It returns
// ErrInvalidCredentials for an unknown email and for a wrong secret alike.
func (m *Manager) Authenticate(ctx context.Context, email, secret string) (*types.Session, error) {
	if err := m.wait(ctx); err != nil {
		return nil, err
	}

	accounts, _, err := m.loadAccounts()
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email != email {
			continue
		}
		if m.hasher.Compare(a.SecretHash, secret) == nil {
			return m.establish(ctx, a)
		}
	}

	m.logger.Debug("authentication failed")
	return nil, types.ErrInvalidCredentials
}

// RestoreSession loads the persisted session into memory. It returns nil
// without error when no session is stored. With verification on, a session
// whose token does not verify, or whose account is gone, is deleted and nil
// is returned. Other failures, such as an unreadable accounts list, are
// returned and leave the stored session in place.
func (m *Manager) RestoreSession(ctx context.Context) (*types.Session, error) {
	data, _, err := m.kv.Get(types.SessionKey)
	if errors.Is(err, types.ErrNotFound) {
		m.setCurrent(nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var session types.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, m.discard(fmt.Errorf("%w: %v", types.ErrInvalidSession, err))
	}

	if m.verify {
		if err := m.check(ctx, session); err != nil {
			if !rejected(err) {
				m.setCurrent(nil)
				return nil, fmt.Errorf("verify session: %w", err)
			}
			return nil, m.discard(err)
		}
	}

	m.setCurrent(&session)
	return copySession(&session), nil
}

// EndSession signs out. It is safe to call with no active session.
func (m *Manager) EndSession(_ context.Context) error {
	m.setCurrent(nil)
	if err := m.kv.Delete(types.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.logger.Debug("session ended")
	return nil
}

// Current returns the in-memory session, or nil when signed out.
func (m *Manager) Current() *types.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copySession(m.current)
}

// Accounts returns the registered accounts without their secret hashes.
func (m *Manager) Accounts() ([]types.Account, error) {
	accounts, _, err := m.loadAccounts()
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].SecretHash = ""
	}
	return accounts, nil
}

func (m *Manager) establish(ctx context.Context, a types.Account) (*types.Session, error) {
	session, err := m.issue(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := m.persist(session); err != nil {
		return nil, err
	}
	return copySession(session), nil
}

// issue builds a signed session for a without storing it.
func (m *Manager) issue(ctx context.Context, a types.Account) (*types.Session, error) {
	session := a.Session()
	session.IssuedAt = m.now().UTC()

	token, err := m.signer.Sign(ctx, session)
	if err != nil {
		return nil, err
	}
	session.Token = token
	return &session, nil
}

// persist stores session and makes it current.
func (m *Manager) persist(session *types.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if _, err := m.kv.Set(types.SessionKey, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	m.setCurrent(session)
	return nil
}

// check verifies the token and that it still describes a registered account.
func (m *Manager) check(ctx context.Context, session types.Session) error {
	claims, err := m.signer.Verify(ctx, session.Token)
	if err != nil {
		return err
	}
	if claims.AccountID != session.ID || claims.Email != session.Email {
		return fmt.Errorf("%w: token does not match session", types.ErrInvalidSession)
	}

	accounts, _, err := m.loadAccounts()
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if a.ID == session.ID && a.Email == session.Email {
			return nil
		}
	}
	return fmt.Errorf("%w: account no longer exists", types.ErrInvalidSession)
}

// rejected reports whether err says the session itself is bad.
func rejected(err error) bool {
	return errors.Is(err, types.ErrInvalidSession) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken)
}

// discard removes a rejected session. Only a failure to delete is returned.
func (m *Manager) discard(reason error) error {
	m.logger.Warn("discarding stored session", "reason", reason)
	m.setCurrent(nil)
	if err := m.kv.Delete(types.SessionKey); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (m *Manager) loadAccounts() ([]types.Account, int64, error) {
	data, version, err := m.kv.Get(types.AccountsKey)
	if errors.Is(err, types.ErrNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("load accounts: %w", err)
	}
	var accounts []types.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, 0, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, version, nil
}

func (m *Manager) setCurrent(s *types.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = copySession(s)
}

// wait sleeps for the configured latency or until ctx is done.
func (m *Manager) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func copySession(s *types.Session) *types.Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
