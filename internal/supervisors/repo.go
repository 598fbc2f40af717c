package supervisors

import (
	"context"

	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) List(ctx context.Context) ([]models.Supervisor, error) {
	var rows []models.Supervisor
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Supervisor, error) {
	var row models.Supervisor
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Supervisor) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Supervisor{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteInactive removes the supervisor only while it is not Active and reports whether a row went away.
func (r *Repository) DeleteInactive(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, enums.AccountStatusActive).
		Delete(&models.Supervisor{})
	return res.RowsAffected > 0, res.Error
}

// DetachGuards clears the weak reference held by the supervisor's guards.
func (r *Repository) DetachGuards(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Guard{}).
		Where("supervisor_id = ?", id).
		Update("supervisor_id", nil)
	return res.RowsAffected, res.Error
}
