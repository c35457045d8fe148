// Package mocks holds testify mocks of the domain ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCacheProvider is a testify mock of providers.CacheProvider
type MockCacheProvider struct {
	mock.Mock
}

// NewMockCacheProvider creates a mock that asserts its expectations when the
// test ends
func NewMockCacheProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCacheProvider {
	m := &MockCacheProvider{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

// Get mocks CacheProvider.Get
func (m *MockCacheProvider) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	var data []byte
	if v := args.Get(0); v != nil {
		data = v.([]byte)
	}
	return data, args.Error(1)
}

// Set mocks CacheProvider.Set
func (m *MockCacheProvider) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	args := m.Called(ctx, key, value, expirationSeconds)
	return args.Error(0)
}

// Delete mocks CacheProvider.Delete
func (m *MockCacheProvider) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// Exists mocks CacheProvider.Exists
func (m *MockCacheProvider) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}
