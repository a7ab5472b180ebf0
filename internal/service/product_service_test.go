package service

import (
	"context"
	"errors"
	"testing"

	"bagvo/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductService_GetAll(t *testing.T) {
	ctx := context.Background()
	catalog := []model.Product{*testProduct("P001", 499, 10), *testProduct("P002", 899, 0)}

	tests := []struct {
		name           string
		limit          int
		offset         int
		expectedLimit  int
		expectedOffset int
		mockReturn     []model.Product
		mockError      error
		expectError    bool
	}{
		{name: "valid pagination", limit: 20, offset: 40, expectedLimit: 20, expectedOffset: 40, mockReturn: catalog},
		{name: "zero limit defaults to 10", limit: 0, expectedLimit: 10, mockReturn: catalog},
		{name: "negative limit defaults to 10", limit: -5, expectedLimit: 10, mockReturn: catalog},
		{name: "limit above max caps at 100", limit: 200, expectedLimit: 100, mockReturn: catalog},
		{name: "negative offset becomes 0", limit: 10, offset: -10, expectedLimit: 10, mockReturn: catalog},
		{name: "repository error", limit: 10, expectedLimit: 10, mockError: errors.New("database error"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			svc := NewProductService(mockRepo, zerolog.Nop())

			mockRepo.On("GetAll", ctx, tt.expectedLimit, tt.expectedOffset).Return(tt.mockReturn, tt.mockError)

			products, err := svc.GetAll(ctx, tt.limit, tt.offset)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, products)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.mockReturn, products)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestProductService_GetByID(t *testing.T) {
	ctx := context.Background()
	product := testProduct("P001", 499, 10)

	tests := []struct {
		name        string
		productID   string
		lookupID    string
		mockReturn  *model.Product
		mockError   error
		expectedErr error
		expectError bool
	}{
		{name: "found", productID: "P001", lookupID: "P001", mockReturn: product},
		{name: "surrounding whitespace is trimmed", productID: " P001 ", lookupID: "P001", mockReturn: product},
		{name: "not found", productID: "P999", lookupID: "P999", expectedErr: model.ErrProductNotFound, expectError: true},
		{name: "empty id", productID: "  ", expectedErr: model.ErrProductNotFound, expectError: true},
		{name: "repository error", productID: "P001", lookupID: "P001", mockError: errors.New("database error"), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockProductRepository)
			svc := NewProductService(mockRepo, zerolog.Nop())

			if tt.lookupID != "" {
				if tt.mockReturn == nil {
					mockRepo.On("GetByID", ctx, tt.lookupID).Return(nil, tt.mockError)
				} else {
					mockRepo.On("GetByID", ctx, tt.lookupID).Return(tt.mockReturn, tt.mockError)
				}
			}

			got, err := svc.GetByID(ctx, tt.productID)

			if tt.expectError {
				require.Error(t, err)
				assert.Nil(t, got)
				if tt.expectedErr != nil {
					assert.ErrorIs(t, err, tt.expectedErr)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, product, got)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
