package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=directory_repo.go -destination=mock/directory_repo_mock.go -package=mock
type Repository interface {
	FindUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error)
	FindActiveUsersByRoles(ctx context.Context, roles []string) ([]User, error)
	UserRoles(ctx context.Context) ([]UserRoleRow, error)
}

type UserRoleRow struct {
	UserID string
	Role   string
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) FindUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repository) FindDepartmentByID(ctx context.Context, id uuid.UUID) (*Department, error) {
	var d Department
	err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindActiveUsersByRoles(ctx context.Context, roles []string) ([]User, error) {
	var users []User
	err := r.db.WithContext(ctx).
		Where("role IN ?", roles).
		Where("active = ?", true).
		Order("full_name ASC").
		Find(&users).Error
	return users, err
}

func (r *repository) UserRoles(ctx context.Context) ([]UserRoleRow, error) {
	var rows []UserRoleRow
	err := r.db.WithContext(ctx).
		Model(&User{}).
		Select("id::text AS user_id, role").
		Where("active = ?", true).
		Scan(&rows).Error
	return rows, err
}
