package postgres

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"petclinic/internal/domain/users"
)

type userRow struct {
	Username string `db:"username"`
	Password string `db:"password"`
	Enabled  bool   `db:"enabled"`
}

type roleRow struct {
	ID   int    `db:"id"`
	Role string `db:"role"`
}

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (users.User, error) {
	var u userRow
	err := r.s.selectOne(ctx, &u, dialect.From(tableUsers).
		Select("username", "password", "enabled").
		Where(goqu.C("username").Eq(username)).
		Prepared(true))
	if err != nil {
		return users.User{}, wrapNotFound(err, "user", username)
	}

	var roles []roleRow
	err = r.s.selectAll(ctx, &roles, dialect.From(tableRoles).
		Select("id", "role").
		Where(goqu.C("username").Eq(username)).
		Order(goqu.C("id").Asc()).
		Prepared(true))
	if err != nil {
		return users.User{}, err
	}

	out := users.User{Username: u.Username, Password: u.Password, Enabled: u.Enabled, Roles: make([]users.Role, 0, len(roles))}
	for _, role := range roles {
		out.Roles = append(out.Roles, users.Role{ID: role.ID, Name: role.Role})
	}
	return out, nil
}

// Save hace upsert del usuario y reemplaza sus roles. Un rol repetido choca
// con uni_username_role y vuelve como clinic.ErrConstraint.
func (r *userRepo) Save(ctx context.Context, u *users.User) error {
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		_, err := r.s.execCount(ctx, dialect.Insert(tableUsers).
			Rows(goqu.Record{"username": u.Username, "password": u.Password, "enabled": u.Enabled}).
			OnConflict(goqu.DoUpdate("username", goqu.Record{
				"password": goqu.L("EXCLUDED.password"),
				"enabled":  goqu.L("EXCLUDED.enabled"),
			})).
			Prepared(true))
		if err != nil {
			return err
		}

		if _, err := r.s.execCount(ctx, dialect.Delete(tableRoles).
			Where(goqu.C("username").Eq(u.Username)).
			Prepared(true)); err != nil {
			return err
		}

		roles := make([]users.Role, 0, len(u.Roles))
		for _, role := range u.Roles {
			id, err := r.s.insertReturningID(ctx, dialect.Insert(tableRoles).
				Rows(goqu.Record{"username": u.Username, "role": role.Name}).
				Returning("id").
				Prepared(true))
			if err != nil {
				return err
			}
			roles = append(roles, users.Role{ID: id, Name: role.Name})
		}
		u.Roles = roles
		return nil
	})
}
