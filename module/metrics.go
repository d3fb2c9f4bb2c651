package module

// CacheMetrics reports the usage of read caches in front of the database.
type CacheMetrics interface {
	// CacheEntries report the total number of cached items
	CacheEntries(resource string, entries uint)
	// CacheHit report the number of times the queried item is found in the cache
	CacheHit(resource string)
	// CacheNotFound records the number of times the queried item was not found in either cache or database.
	CacheNotFound(resource string)
	// CacheMiss report the number of times the queried item is not found in the cache, but found in the database.
	CacheMiss(resource string)
}

// FinalityMetrics reports the progress of PBFT vote aggregation. Phases are the values of
// the metrics.Phase* constants.
type FinalityMetrics interface {
	// VoteAccepted counts a vote folded into the aggregate of the given phase.
	VoteAccepted(phase string)

	// VoteRejected counts a vote that was not folded, by reason (duplicate, invalid
	// signature, unknown signer, etc.).
	VoteRejected(phase string, reason string)

	// AggregatedWeight reports the running weight of the aggregate of the given phase.
	AggregatedWeight(phase string, weight uint64)

	// ProofVerified counts verification outcomes of the given phase.
	ProofVerified(phase string, valid bool)

	// QuorumReached counts the rounds in which the given phase reached quorum.
	QuorumReached(phase string)
}
