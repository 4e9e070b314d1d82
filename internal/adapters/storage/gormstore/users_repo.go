package gormstore

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"petclinic/internal/domain/users"
)

type userRepo struct {
	s *Store
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (users.User, error) {
	var rec userRecord
	err := r.s.conn(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("roles.id") }).
		Where("username = ?", username).
		Take(&rec).Error
	if err != nil {
		return users.User{}, wrapNotFound(classify(err), "user", username)
	}
	return rec.toDomain(), nil
}

// Save hace upsert del usuario y reemplaza sus roles.
func (r *userRepo) Save(ctx context.Context, u *users.User) error {
	if err := r.s.writable(ctx); err != nil {
		return err
	}
	return r.s.ReadWrite(ctx, func(ctx context.Context) error {
		rec := userRecord{Username: u.Username, Password: u.Password, Enabled: u.Enabled}
		err := r.s.conn(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "username"}},
				DoUpdates: clause.AssignmentColumns([]string{"password", "enabled"}),
			}).
			Create(&rec).Error
		if err != nil {
			return classify(err)
		}

		if err := r.s.conn(ctx).Where("username = ?", u.Username).Delete(&roleRecord{}).Error; err != nil {
			return classify(err)
		}

		roles := make([]users.Role, 0, len(u.Roles))
		for _, role := range u.Roles {
			rr := roleRecord{Username: u.Username, Role: role.Name}
			if err := r.s.conn(ctx).Create(&rr).Error; err != nil {
				return classify(err)
			}
			roles = append(roles, users.Role{ID: rr.ID, Name: rr.Role})
		}
		u.Roles = roles
		return nil
	})
}
