package metrics

import (
	"github.com/finalitylabs/qcert/module"
)

type NoopCollector struct{}

var _ module.FinalityMetrics = (*NoopCollector)(nil)
var _ module.CacheMetrics = (*NoopCollector)(nil)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) VoteAccepted(phase string)                    {}
func (nc *NoopCollector) VoteRejected(phase string, reason string)     {}
func (nc *NoopCollector) AggregatedWeight(phase string, weight uint64) {}
func (nc *NoopCollector) ProofVerified(phase string, valid bool)       {}
func (nc *NoopCollector) QuorumReached(phase string)                   {}
func (nc *NoopCollector) CacheEntries(resource string, entries uint)   {}
func (nc *NoopCollector) CacheHit(resource string)                     {}
func (nc *NoopCollector) CacheNotFound(resource string)                {}
func (nc *NoopCollector) CacheMiss(resource string)                    {}
