package rbac

import "gorm.io/gorm"

type UserRoleRow struct {
	UserID string
	Role   string
}

//go:generate mockgen -source=rbac_repo.go -destination=mock/rbac_repo_mock.go -package=mock
type Repository interface {
	UserRoles() ([]UserRoleRow, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UserRoles() ([]UserRoleRow, error) {
	var result []UserRoleRow

	err := r.db.
		Table("users").
		Select("users.id AS user_id, users.role").
		Where("users.active = true AND users.deleted_at IS NULL").
		Scan(&result).Error

	return result, err
}
