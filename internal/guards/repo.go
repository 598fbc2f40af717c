package guards

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

func (r *Repository) List(ctx context.Context) ([]models.Guard, error) {
	var rows []models.Guard
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) ListBySupervisor(ctx context.Context, supervisorID int64) ([]models.Guard, error) {
	var rows []models.Guard
	err := r.db.WithContext(ctx).Where("supervisor_id = ?", supervisorID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Guard, error) {
	var row models.Guard
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// FindSupervisor loads the supervisor a guard points at, in any status.
func (r *Repository) FindSupervisor(ctx context.Context, id int64) (*models.Supervisor, error) {
	var row models.Supervisor
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) Create(ctx context.Context, row *models.Guard) error {
	return r.db.WithContext(ctx).Create(row).Error
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	return r.db.WithContext(ctx).Model(&models.Guard{}).Where("id = ?", id).Updates(updates).Error
}

// DeleteInactive removes the guard only while it is not Active.
func (r *Repository) DeleteInactive(ctx context.Context, id int64) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND status <> ?", id, enums.AccountStatusActive).
		Delete(&models.Guard{})
	return res.RowsAffected > 0, res.Error
}
