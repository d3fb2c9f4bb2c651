package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestFinalityCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	fc := NewFinalityCollector(registry)

	fc.VoteAccepted(PhasePrepare)
	fc.VoteAccepted(PhasePrepare)
	fc.VoteAccepted(PhaseCommit)
	fc.VoteRejected(PhasePrepare, ReasonDuplicate)
	fc.AggregatedWeight(PhaseCommit, 7)
	fc.ProofVerified(PhaseCommit, true)
	fc.ProofVerified(PhaseCommit, false)
	fc.ProofVerified(PhaseCommit, false)
	fc.QuorumReached(PhasePrepare)

	assert.Equal(t, 2.0, testutil.ToFloat64(fc.votesAccepted.WithLabelValues(PhasePrepare)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fc.votesAccepted.WithLabelValues(PhaseCommit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fc.votesRejected.WithLabelValues(PhasePrepare, ReasonDuplicate)))
	assert.Equal(t, 7.0, testutil.ToFloat64(fc.aggregatedWeight.WithLabelValues(PhaseCommit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fc.proofsVerified.WithLabelValues(PhaseCommit, OutcomeValid)))
	assert.Equal(t, 2.0, testutil.ToFloat64(fc.proofsVerified.WithLabelValues(PhaseCommit, OutcomeInvalid)))
	assert.Equal(t, 1.0, testutil.ToFloat64(fc.quorumsReached.WithLabelValues(PhasePrepare)))
}

func TestCacheCollector(t *testing.T) {
	registry := prometheus.NewRegistry()
	cc := NewCacheCollector(registry)

	cc.CacheEntries(ResourceCertificate, 3)
	cc.CacheHit(ResourceCertificate)
	cc.CacheMiss(ResourceCertificate)
	cc.CacheNotFound(ResourceCertificate)
	cc.CacheNotFound(ResourceCertificate)

	assert.Equal(t, 3.0, testutil.ToFloat64(cc.entries.WithLabelValues(ResourceCertificate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(cc.hits.WithLabelValues(ResourceCertificate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(cc.misses.WithLabelValues(ResourceCertificate)))
	assert.Equal(t, 2.0, testutil.ToFloat64(cc.notFounds.WithLabelValues(ResourceCertificate)))
}
