// Package memory — хранилище в памяти процесса.
// Соблюдает те же инварианты уникальности и compare-and-set, что и mongo/postgres;
// используется в тестах и для локального запуска (db.driver=memory).
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/go-blog-auth/internal/models"
	"github.com/pribylovaa/go-blog-auth/internal/storage"
)

// Storage — потокобезопасная реализация storage.Storage.
type Storage struct {
	mu        sync.Mutex
	now       func() time.Time
	users     map[uuid.UUID]*models.User
	passwords map[uuid.UUID]*models.Password
	images    map[uuid.UUID]*models.AccessImage
	refresh   map[uuid.UUID]*models.RefreshToken
	codes     map[uuid.UUID]*models.Code
	changes   map[uuid.UUID]*models.EmailChange
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		now:       func() time.Time { return time.Now().UTC() },
		users:     make(map[uuid.UUID]*models.User),
		passwords: make(map[uuid.UUID]*models.Password),
		images:    make(map[uuid.UUID]*models.AccessImage),
		refresh:   make(map[uuid.UUID]*models.RefreshToken),
		codes:     make(map[uuid.UUID]*models.Code),
		changes:   make(map[uuid.UUID]*models.EmailChange),
	}
}

// Close ничего не освобождает.
func (s *Storage) Close(context.Context) error { return nil }

// Проверка на соответствие интерфейсу Storage.
var _ storage.Storage = (*Storage)(nil)

// ---- users ----

func (s *Storage) CreateUser(_ context.Context, user *models.User) error {
	const op = "storage.memory.CreateUser"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	if s.activeUserByEmail(user.Email) != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
	}

	u := *user
	u.Email = strings.ToLower(u.Email)
	s.users[u.ID] = &u

	return nil
}

func (s *Storage) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	const op = "storage.memory.UserByID"

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.State != models.StateActive {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *u
	return &out, nil
}

func (s *Storage) UserByEmail(_ context.Context, email string) (*models.User, error) {
	const op = "storage.memory.UserByEmail"

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.activeUserByEmail(email)
	if u == nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	out := *u
	return &out, nil
}

func (s *Storage) RegisterFailedLogin(_ context.Context, id uuid.UUID, maxAttempts int) (*models.User, error) {
	const op = "storage.memory.RegisterFailedLogin"

	var out models.User
	err := s.updateUser(id, func(u *models.User) error {
		if u.FailedLoginAttempts < maxAttempts {
			u.FailedLoginAttempts++
		}
		if u.FailedLoginAttempts >= maxAttempts {
			u.Status = models.StatusBlocked
		}
		out = *u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (s *Storage) ResetFailedLogins(_ context.Context, id uuid.UUID) error {
	return s.wrapUpdate("storage.memory.ResetFailedLogins", id, func(u *models.User) error {
		u.FailedLoginAttempts = 0
		return nil
	})
}

func (s *Storage) BlockUser(_ context.Context, id uuid.UUID) error {
	return s.wrapUpdate("storage.memory.BlockUser", id, func(u *models.User) error {
		u.Status = models.StatusBlocked
		return nil
	})
}

func (s *Storage) UnblockUser(_ context.Context, id uuid.UUID) error {
	return s.wrapUpdate("storage.memory.UnblockUser", id, func(u *models.User) error {
		u.Status = models.StatusActive
		u.FailedLoginAttempts = 0
		return nil
	})
}

func (s *Storage) SetEmail(_ context.Context, id uuid.UUID, email string) error {
	email = strings.ToLower(email)

	return s.wrapUpdate("storage.memory.SetEmail", id, func(u *models.User) error {
		if other := s.activeUserByEmail(email); other != nil && other.ID != id {
			return storage.ErrAlreadyExists
		}
		u.Email = email
		u.EmailVerified = true
		return nil
	})
}

func (s *Storage) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	return s.wrapUpdate("storage.memory.MarkEmailVerified", id, func(u *models.User) error {
		u.EmailVerified = true
		return nil
	})
}

func (s *Storage) UpdateProfile(_ context.Context, id uuid.UUID, upd models.ProfileUpdate) (*models.User, error) {
	const op = "storage.memory.UpdateProfile"

	var out models.User
	err := s.updateUser(id, func(u *models.User) error {
		if upd.FirstName != nil {
			u.FirstName = *upd.FirstName
		}
		if upd.LastName != nil {
			u.LastName = *upd.LastName
		}
		if upd.About != nil {
			u.About = *upd.About
		}
		out = *u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &out, nil
}

func (s *Storage) DeleteUser(_ context.Context, id uuid.UUID) error {
	return s.wrapUpdate("storage.memory.DeleteUser", id, func(u *models.User) error {
		u.State = models.StateRevoked
		return nil
	})
}

// activeUserByEmail вызывается под s.mu.
func (s *Storage) activeUserByEmail(email string) *models.User {
	email = strings.ToLower(email)
	for _, u := range s.users {
		if u.State == models.StateActive && u.Email == email {
			return u
		}
	}

	return nil
}

// updateUser применяет fn к активному пользователю под блокировкой.
func (s *Storage) updateUser(id uuid.UUID, fn func(u *models.User) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok || u.State != models.StateActive {
		return storage.ErrNotFound
	}

	next := *u
	if err := fn(&next); err != nil {
		return err
	}
	next.UpdatedAt = s.now()
	*u = next

	return nil
}

func (s *Storage) wrapUpdate(op string, id uuid.UUID, fn func(u *models.User) error) error {
	if err := s.updateUser(id, fn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ---- passwords ----

func (s *Storage) ActivePassword(_ context.Context, userID uuid.UUID) (*models.Password, error) {
	const op = "storage.memory.ActivePassword"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.passwords {
		if p.UserID == userID && p.State == models.StateActive {
			out := *p
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (s *Storage) SetPassword(_ context.Context, password *models.Password) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, p := range s.passwords {
		if p.UserID == password.UserID && p.State == models.StateActive {
			p.State = models.StateRevoked
			p.UpdatedAt = now
		}
	}

	p := *password
	p.State = models.StateActive
	s.passwords[p.ID] = &p

	return nil
}

func (s *Storage) RevokePasswords(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, p := range s.passwords {
		if p.UserID == userID && p.State == models.StateActive {
			p.State = models.StateRevoked
			p.UpdatedAt = now
		}
	}

	return nil
}

// ---- access images ----

func (s *Storage) ActiveAccessImage(_ context.Context, userID uuid.UUID) (*models.AccessImage, error) {
	const op = "storage.memory.ActiveAccessImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, img := range s.images {
		if img.UserID == userID && img.State == models.StateActive {
			out := *img
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (s *Storage) SetAccessImage(_ context.Context, image *models.AccessImage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, img := range s.images {
		if img.UserID == image.UserID && img.State == models.StateActive {
			img.State = models.StateRevoked
			img.UpdatedAt = now
		}
	}

	img := *image
	img.State = models.StateActive
	s.images[img.ID] = &img

	return nil
}

func (s *Storage) RevokeAccessImages(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, img := range s.images {
		if img.UserID == userID && img.State == models.StateActive {
			img.State = models.StateRevoked
			img.UpdatedAt = now
		}
	}

	return nil
}

// ---- refresh tokens ----

func (s *Storage) SaveRefreshToken(_ context.Context, token *models.RefreshToken) error {
	const op = "storage.memory.SaveRefreshToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.refresh {
		if t.Token == token.Token || t.ID == token.ID {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}
	}

	t := *token
	t.State = models.StateActive
	s.refresh[t.ID] = &t

	return nil
}

func (s *Storage) RefreshTokenByToken(_ context.Context, token string) (*models.RefreshToken, error) {
	const op = "storage.memory.RefreshTokenByToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.refresh {
		if t.Token == token && t.State == models.StateActive {
			out := *t
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (s *Storage) ConsumeRefreshToken(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.ConsumeRefreshToken"

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.refresh[id]
	if !ok || t.State != models.StateActive {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	t.State = models.StateRevoked
	t.UpdatedAt = s.now()

	return nil
}

func (s *Storage) RevokeRefreshToken(_ context.Context, userID uuid.UUID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, t := range s.refresh {
		if t.UserID == userID && t.Token == token && t.State == models.StateActive {
			t.State = models.StateRevoked
			t.UpdatedAt = now
		}
	}

	return nil
}

func (s *Storage) RevokeRefreshTokens(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, t := range s.refresh {
		if t.UserID == userID && t.State == models.StateActive {
			t.State = models.StateRevoked
			t.UpdatedAt = now
		}
	}

	return nil
}

func (s *Storage) DeleteExpiredTokens(_ context.Context, before time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.refresh {
		if !t.ExpiresAt.After(before) {
			delete(s.refresh, id)
		}
	}

	for id, c := range s.codes {
		if !c.ExpiresAt.After(before) {
			delete(s.codes, id)
		}
	}

	return nil
}

// ---- codes ----

func (s *Storage) SetCode(_ context.Context, code *models.Code) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revokeCodesLocked(code.UserID, code.Purpose)

	c := *code
	c.State = models.StateActive
	s.codes[c.ID] = &c

	return nil
}

func (s *Storage) CodeByValue(_ context.Context, purpose models.CodePurpose, code string) (*models.Code, error) {
	const op = "storage.memory.CodeByValue"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.codes {
		if c.Purpose == purpose && c.Code == code && c.State == models.StateActive {
			out := *c
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (s *Storage) ConsumeCode(_ context.Context, id uuid.UUID) error {
	const op = "storage.memory.ConsumeCode"

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.codes[id]
	if !ok || c.State != models.StateActive {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	c.State = models.StateRevoked
	c.UpdatedAt = s.now()

	return nil
}

func (s *Storage) RevokeCodes(_ context.Context, userID uuid.UUID, purpose models.CodePurpose) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revokeCodesLocked(userID, purpose)

	return nil
}

func (s *Storage) revokeCodesLocked(userID uuid.UUID, purpose models.CodePurpose) {
	now := s.now()
	for _, c := range s.codes {
		if c.UserID == userID && c.Purpose == purpose && c.State == models.StateActive {
			c.State = models.StateRevoked
			c.UpdatedAt = now
		}
	}
}

// ---- email changes ----

func (s *Storage) SetEmailChange(_ context.Context, change *models.EmailChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, ch := range s.changes {
		if ch.UserID == change.UserID && ch.State == models.StateActive {
			ch.State = models.StateRevoked
			ch.UpdatedAt = now
		}
	}

	ch := *change
	ch.State = models.StateActive
	s.changes[ch.ID] = &ch

	return nil
}

func (s *Storage) EmailChangeByCode(_ context.Context, codeID uuid.UUID) (*models.EmailChange, error) {
	const op = "storage.memory.EmailChangeByCode"

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.changes {
		if ch.CodeID == codeID && ch.State == models.StateActive {
			out := *ch
			return &out, nil
		}
	}

	return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
}

func (s *Storage) RevokeEmailChanges(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for _, ch := range s.changes {
		if ch.UserID == userID && ch.State == models.StateActive {
			ch.State = models.StateRevoked
			ch.UpdatedAt = now
		}
	}

	return nil
}
