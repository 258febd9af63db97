package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/zhli-dev/meiduo-backend/internal/domain"
	"github.com/zhli-dev/meiduo-backend/internal/repository/ports"
)

type AreaService struct {
	areas ports.AreaRepository
}

func NewAreaService(areas ports.AreaRepository) *AreaService {
	return &AreaService{areas: areas}
}

func (s *AreaService) Provinces(ctx context.Context) ([]domain.Area, error) {
	return s.areas.ListProvinces(ctx)
}

func (s *AreaService) AreaWithSubs(ctx context.Context, id int64) (*domain.Area, error) {
	area, err := s.areas.FindWithSubs(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAreaNotFound
	}
	return area, err
}
