package metrics

// Prometheus metric namespaces
const (
	namespaceConsensus = "consensus"
	namespaceStorage   = "storage"
)

// Consensus subsystems
const (
	subsystemPBFT = "pbft"
)

// Storage subsystems
const (
	subsystemBadger = "badger"
)
