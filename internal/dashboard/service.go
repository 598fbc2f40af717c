package dashboard

import (
	"context"
	"fmt"

	"github.com/angelmondragon/secureguard-backend/pkg/db/models"
	"github.com/angelmondragon/secureguard-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/secureguard-backend/pkg/errors"
	"gorm.io/gorm"
)

// StatusCounts maps every account status to its row count.
type StatusCounts map[enums.AccountStatus]int64

// Stats is the dashboard payload.
type Stats struct {
	TotalSupervisors  int64        `json:"totalSupervisors"`
	ActiveSupervisors int64        `json:"activeSupervisors"`
	TotalGuards       int64        `json:"totalGuards"`
	ActiveGuards      int64        `json:"activeGuards"`
	Supervisors       StatusCounts `json:"supervisors"`
	Guards            StatusCounts `json:"guards"`
}

type Service interface {
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	db *gorm.DB
}

func NewService(conn *gorm.DB) (Service, error) {
	if conn == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &service{db: conn}, nil
}

// Stats counts supervisors and guards grouped by status. Every status is present, zero when empty.
func (s *service) Stats(ctx context.Context) (*Stats, error) {
	supervisors, err := s.countByStatus(ctx, models.Supervisor{}.TableName())
	if err != nil {
		return nil, err
	}
	guards, err := s.countByStatus(ctx, models.Guard{}.TableName())
	if err != nil {
		return nil, err
	}
	return &Stats{
		TotalSupervisors:  supervisors.total(),
		ActiveSupervisors: supervisors[enums.AccountStatusActive],
		TotalGuards:       guards.total(),
		ActiveGuards:      guards[enums.AccountStatusActive],
		Supervisors:       supervisors,
		Guards:            guards,
	}, nil
}

func (s *service) countByStatus(ctx context.Context, table string) (StatusCounts, error) {
	var rows []struct {
		Status enums.AccountStatus
		N      int64
	}
	err := s.db.WithContext(ctx).Table(table).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count "+table)
	}

	counts := StatusCounts{}
	for _, status := range enums.AccountStatuses() {
		counts[status] = 0
	}
	for _, r := range rows {
		counts[r.Status] += r.N
	}
	return counts, nil
}

func (c StatusCounts) total() int64 {
	var n int64
	for _, v := range c {
		n += v
	}
	return n
}
