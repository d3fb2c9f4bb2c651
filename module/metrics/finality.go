package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/finalitylabs/qcert/module"
)

// FinalityCollector reports PBFT vote aggregation metrics to prometheus.
type FinalityCollector struct {
	votesAccepted    *prometheus.CounterVec
	votesRejected    *prometheus.CounterVec
	aggregatedWeight *prometheus.GaugeVec
	proofsVerified   *prometheus.CounterVec
	quorumsReached   *prometheus.CounterVec
}

var _ module.FinalityMetrics = (*FinalityCollector)(nil)

func NewFinalityCollector(registerer prometheus.Registerer) *FinalityCollector {
	fc := &FinalityCollector{
		votesAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "votes_accepted_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemPBFT,
			Help:      "the number of votes folded into an aggregate proof",
		}, []string{LabelPhase}),
		votesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "votes_rejected_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemPBFT,
			Help:      "the number of votes rejected by an aggregate proof",
		}, []string{LabelPhase, LabelReason}),
		aggregatedWeight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:      "aggregated_weight",
			Namespace: namespaceConsensus,
			Subsystem: subsystemPBFT,
			Help:      "the voting weight aggregated for the current round",
		}, []string{LabelPhase}),
		proofsVerified: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "proofs_verified_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemPBFT,
			Help:      "the number of proof verifications by outcome",
		}, []string{LabelPhase, LabelOutcome}),
		quorumsReached: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:      "quorums_reached_total",
			Namespace: namespaceConsensus,
			Subsystem: subsystemPBFT,
			Help:      "the number of rounds in which a phase reached quorum",
		}, []string{LabelPhase}),
	}
	registerer.MustRegister(
		fc.votesAccepted,
		fc.votesRejected,
		fc.aggregatedWeight,
		fc.proofsVerified,
		fc.quorumsReached,
	)
	return fc
}

func (fc *FinalityCollector) VoteAccepted(phase string) {
	fc.votesAccepted.WithLabelValues(phase).Inc()
}

func (fc *FinalityCollector) VoteRejected(phase string, reason string) {
	fc.votesRejected.WithLabelValues(phase, reason).Inc()
}

func (fc *FinalityCollector) AggregatedWeight(phase string, weight uint64) {
	fc.aggregatedWeight.WithLabelValues(phase).Set(float64(weight))
}

func (fc *FinalityCollector) ProofVerified(phase string, valid bool) {
	outcome := OutcomeInvalid
	if valid {
		outcome = OutcomeValid
	}
	fc.proofsVerified.WithLabelValues(phase, outcome).Inc()
}

func (fc *FinalityCollector) QuorumReached(phase string) {
	fc.quorumsReached.WithLabelValues(phase).Inc()
}
