package application

import (
	"context"

	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
)

type AuditService interface {
	GetStats(ctx context.Context, query *product.GetStatsQuery) (*dto.StatsResponse, error)
}

type auditService struct {
	repository product.AuditRepository
}

func NewAuditService(repository product.AuditRepository) AuditService {
	return &auditService{
		repository: repository,
	}
}

func (s *auditService) GetStats(ctx context.Context, query *product.GetStatsQuery) (*dto.StatsResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	result, err := s.repository.GetStats(ctx, query)
	if err != nil {
		return nil, err
	}

	response := &dto.StatsResponse{
		Batches:        result.Batches,
		TotalRequested: result.TotalRequested,
		TotalAffected:  result.TotalAffected,
		TotalFailed:    result.TotalFailed,
	}

	if len(result.GroupedData) > 0 {
		response.GroupedData = make([]dto.GroupedStats, len(result.GroupedData))
		for i, g := range result.GroupedData {
			response.GroupedData[i] = dto.GroupedStats{
				Key:            g.Key,
				Batches:        g.Batches,
				TotalRequested: g.TotalRequested,
				TotalAffected:  g.TotalAffected,
				TotalFailed:    g.TotalFailed,
			}
		}
	}

	return response, nil
}
