package persistence

import (
	"context"

	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormUserRepository implements UserRepository using GORM
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user. A taken zid returns ErrAlreadyExists.
func (r *GormUserRepository) Create(ctx context.Context, user *identity.User) error {
	model := models.UserModelFromDomain(user)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return translateError(err)
	}
	user.CreatedAt = model.CreatedAt
	return nil
}

// FindByZid finds a user by zid
func (r *GormUserRepository) FindByZid(ctx context.Context, zid string) (*identity.User, error) {
	var model models.UserModel
	if err := r.db.WithContext(ctx).First(&model, "zid = ?", zid).Error; err != nil {
		return nil, translateError(err)
	}
	return model.ToDomain(), nil
}

// FindByRole lists the users holding a role, ordered by name
func (r *GormUserRepository) FindByRole(ctx context.Context, roleID int64) ([]*identity.User, error) {
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("role_id = ?", roleID).
		Order("name ASC, zid ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

// FindByZids loads the given users; unknown zids are skipped
func (r *GormUserRepository) FindByZids(ctx context.Context, zids []string) ([]*identity.User, error) {
	if len(zids) == 0 {
		return []*identity.User{}, nil
	}
	var rows []models.UserModel
	if err := r.db.WithContext(ctx).
		Where("zid IN ?", zids).
		Order("zid ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toUsers(rows), nil
}

func toUsers(rows []models.UserModel) []*identity.User {
	users := make([]*identity.User, len(rows))
	for i := range rows {
		users[i] = rows[i].ToDomain()
	}
	return users
}

// GormRoleRepository implements RoleRepository using GORM
type GormRoleRepository struct {
	db *gorm.DB
}

// NewGormRoleRepository creates a new GormRoleRepository
func NewGormRoleRepository(db *gorm.DB) *GormRoleRepository {
	return &GormRoleRepository{db: db}
}

// FindAll returns every role ordered by id
func (r *GormRoleRepository) FindAll(ctx context.Context) ([]identity.Role, error) {
	var rows []models.RoleModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	roles := make([]identity.Role, len(rows))
	for i := range rows {
		roles[i] = rows[i].ToDomain()
	}
	return roles, nil
}

var (
	_ identity.UserRepository = (*GormUserRepository)(nil)
	_ identity.RoleRepository = (*GormRoleRepository)(nil)
)
