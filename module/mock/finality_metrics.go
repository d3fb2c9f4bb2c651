package mock

import (
	mock "github.com/stretchr/testify/mock"
)

// FinalityMetrics is a mock type for the FinalityMetrics type
type FinalityMetrics struct {
	mock.Mock
}

// AggregatedWeight provides a mock function with given fields: phase, weight
func (_m *FinalityMetrics) AggregatedWeight(phase string, weight uint64) {
	_m.Called(phase, weight)
}

// ProofVerified provides a mock function with given fields: phase, valid
func (_m *FinalityMetrics) ProofVerified(phase string, valid bool) {
	_m.Called(phase, valid)
}

// QuorumReached provides a mock function with given fields: phase
func (_m *FinalityMetrics) QuorumReached(phase string) {
	_m.Called(phase)
}

// VoteAccepted provides a mock function with given fields: phase
func (_m *FinalityMetrics) VoteAccepted(phase string) {
	_m.Called(phase)
}

// VoteRejected provides a mock function with given fields: phase, reason
func (_m *FinalityMetrics) VoteRejected(phase string, reason string) {
	_m.Called(phase, reason)
}

type mockConstructorTestingTNewFinalityMetrics interface {
	mock.TestingT
	Cleanup(func())
}

// NewFinalityMetrics creates a new instance of FinalityMetrics. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewFinalityMetrics(t mockConstructorTestingTNewFinalityMetrics) *FinalityMetrics {
	mock := &FinalityMetrics{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
