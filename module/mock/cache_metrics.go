package mock

import (
	mock "github.com/stretchr/testify/mock"
)

// CacheMetrics is a mock type for the CacheMetrics type
type CacheMetrics struct {
	mock.Mock
}

// CacheEntries provides a mock function with given fields: resource, entries
func (_m *CacheMetrics) CacheEntries(resource string, entries uint) {
	_m.Called(resource, entries)
}

// CacheHit provides a mock function with given fields: resource
func (_m *CacheMetrics) CacheHit(resource string) {
	_m.Called(resource)
}

// CacheMiss provides a mock function with given fields: resource
func (_m *CacheMetrics) CacheMiss(resource string) {
	_m.Called(resource)
}

// CacheNotFound provides a mock function with given fields: resource
func (_m *CacheMetrics) CacheNotFound(resource string) {
	_m.Called(resource)
}

type mockConstructorTestingTNewCacheMetrics interface {
	mock.TestingT
	Cleanup(func())
}

// NewCacheMetrics creates a new instance of CacheMetrics. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewCacheMetrics(t mockConstructorTestingTNewCacheMetrics) *CacheMetrics {
	mock := &CacheMetrics{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
