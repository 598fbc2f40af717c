package admins

import (
	"context"
	"strings"

	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository exposes administrator persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to a DB handle or transaction.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Admin, error) {
	var rows []models.Admin
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Admin, error) {
	var row models.Admin
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindByEmail matches case-insensitively on the trimmed address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var row models.Admin
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, admin *models.Admin) error {
	return r.db.WithContext(ctx).Create(admin).Error
}

// Update writes the given columns.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the row and reports whether it existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Admin{})
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Admin{}).Count(&n).Error
	return n, err
}
