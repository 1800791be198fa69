package mocks

import (
	"context"

	"github.com/restaurant-hub/product-bulk/application/dto"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of product.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) SetFlag(ctx context.Context, id, flag string, value bool) (int64, error) {
	args := m.Called(ctx, id, flag, value)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of product.AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) InsertAuditBatch(ctx context.Context, records []*product.AuditRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

func (m *MockAuditRepository) GetStats(ctx context.Context, query *product.GetStatsQuery) (*product.StatsResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*product.StatsResult), args.Error(1)
}

// MockAuditPublisher is a mock implementation of kafka.AuditPublisher
type MockAuditPublisher struct {
	mock.Mock
}

func (m *MockAuditPublisher) Publish(ctx context.Context, record *product.AuditRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockAuditPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockAuditArchiver is a mock implementation of worker.AuditArchiver
type MockAuditArchiver struct {
	mock.Mock
}

func (m *MockAuditArchiver) Archive(ctx context.Context, records []*product.AuditRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// MockBulkProductService is a mock implementation of application.BulkProductService
type MockBulkProductService struct {
	mock.Mock
}

func (m *MockBulkProductService) Execute(ctx context.Context, cmd *product.BulkProductCommand) (*dto.BulkOperationResponse, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.BulkOperationResponse), args.Error(1)
}

// MockAuditService is a mock implementation of application.AuditService
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) GetStats(ctx context.Context, query *product.GetStatsQuery) (*dto.StatsResponse, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.StatsResponse), args.Error(1)
}

// MockPacer is a mock implementation of product.Pacer
type MockPacer struct {
	mock.Mock
}

func (m *MockPacer) AfterItem(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockPacer) AfterBatch(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
