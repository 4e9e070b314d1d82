package users

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/platform/logger"
	"petclinic/internal/platform/txscope"
	"petclinic/internal/ports/auth"
)

var (
	ErrBadCredentials = errors.New("bad credentials")
)

type Service struct {
	repo Repository
	tx   txscope.Manager
	log  logger.Logger
	cost int
}

func NewService(repo Repository, tx txscope.Manager, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo: repo,
		tx:   tx,
		log:  log.With(map[string]any{"service": "users"}),
		cost: bcrypt.DefaultCost,
	}
}

// SaveUser exige al menos un rol, normaliza los nombres al prefijo ROLE_,
// colapsa roles repetidos y guarda el password hasheado. u solo cambia si la
// escritura tuvo éxito.
func (s *Service) SaveUser(ctx context.Context, u *User) error {
	username := strings.TrimSpace(u.Username)
	if username == "" {
		return &clinic.ValidationError{Entity: "user", Field: "username", Reason: "must not be empty"}
	}
	if u.Password == "" {
		return &clinic.ValidationError{Entity: "user", Field: "password", Reason: "must not be empty"}
	}

	roles := normalizeRoles(u.Roles)
	if len(roles) == 0 {
		return &clinic.ValidationError{Entity: "user", Field: "roles", Reason: "must have at least one role"}
	}

	saved := User{Username: username, Password: u.Password, Enabled: u.Enabled, Roles: roles}
	if !isBcryptHash(saved.Password) {
		h, err := bcrypt.GenerateFromPassword([]byte(saved.Password), s.cost)
		if err != nil {
			return err
		}
		saved.Password = string(h)
	}

	err := txscope.Write(ctx, s.tx, func(ctx context.Context) error {
		return s.repo.Save(ctx, &saved)
	})
	if err != nil {
		return err
	}
	*u = saved
	s.log.Info("user saved", map[string]any{"username": u.Username, "roles": u.RoleNames()})
	return nil
}

func (s *Service) FindUser(ctx context.Context, username string) (clinic.Lookup[User], error) {
	return txscope.Read(ctx, s.tx, func(ctx context.Context) (clinic.Lookup[User], error) {
		u, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			if clinic.IsNotFound(err) {
				return clinic.Absent[User](), nil
			}
			return clinic.Absent[User](), err
		}
		return clinic.Found(u), nil
	})
}

// Authenticate implementa auth.Authenticator.
func (s *Service) Authenticate(ctx context.Context, username, password string) (auth.Principal, error) {
	l, err := s.FindUser(ctx, username)
	if err != nil {
		return auth.Principal{}, err
	}
	u, ok := l.Get()
	if !ok || !u.Enabled {
		return auth.Principal{}, ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return auth.Principal{}, ErrBadCredentials
	}
	return auth.Principal{Username: u.Username, Roles: u.RoleNames()}, nil
}

func normalizeRoles(in []Role) []Role {
	seen := map[string]struct{}{}
	out := make([]Role, 0, len(in))
	for _, r := range in {
		name := normalizeRoleName(r.Name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, Role{ID: r.ID, Name: name})
	}
	return out
}

func isBcryptHash(s string) bool {
	_, err := bcrypt.Cost([]byte(s))
	return err == nil
}
