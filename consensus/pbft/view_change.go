package pbft

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
	"github.com/rs/zerolog"

	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
)

// ViewChangeProof collects votes to leave the current view of a macro block. It is valid
// once more than threshold weight signed the same view change.
type ViewChangeProof struct {
	log     zerolog.Logger
	metrics module.FinalityMetrics
	proof   *signature.AggregateProof[model.ViewChangeMessage]
}

func NewViewChangeProof(scheme signature.Scheme, log zerolog.Logger, collector module.FinalityMetrics) *ViewChangeProof {
	log = log.With().Str("component", "view_change_proof").Logger()
	return &ViewChangeProof{
		log:     log,
		metrics: collector,
		proof:   signature.NewAggregateProof[model.ViewChangeMessage](scheme, log),
	}
}

// AddSignature adds a view change vote and returns whether it was accepted.
func (v *ViewChangeProof) AddSignature(pk crypto.PublicKey, weight uint16, vote *signature.SignedMessage[model.ViewChangeMessage]) bool {
	err := v.proof.VerifyAndAdd(pk, weight, vote)
	if err != nil {
		v.metrics.VoteRejected(metrics.PhaseViewChange, rejectionReason(err))
		logRejected(v.log, metrics.PhaseViewChange, vote, err)
		return false
	}
	v.metrics.VoteAccepted(metrics.PhaseViewChange)
	v.metrics.AggregatedWeight(metrics.PhaseViewChange, v.proof.Weight())
	return true
}

// Verify returns whether more than threshold weight signed msg.
func (v *ViewChangeProof) Verify(validators validator.Lookup, msg model.ViewChangeMessage, threshold uint16) bool {
	valid := v.proof.Verify(validators, msg, threshold)
	v.metrics.ProofVerified(metrics.PhaseViewChange, valid)
	return valid
}

// Clear resets the proof.
func (v *ViewChangeProof) Clear() {
	v.proof.Clear()
	v.metrics.AggregatedWeight(metrics.PhaseViewChange, 0)
}

func (v *ViewChangeProof) Weight() uint64 {
	return v.proof.Weight()
}

// Certificate returns the transferable form of the proof.
//
// Expected errors:
//   - signature.ErrEmptyProof if no vote was accepted
//   - signature.InvalidSignerError if a signer is outside of validators
func (v *ViewChangeProof) Certificate(validators validator.Lookup) (*model.ViewChangeCertificate, error) {
	msg, ok := v.proof.Message()
	if !ok {
		return nil, signature.ErrEmptyProof
	}
	agg, err := v.proof.Snapshot(validators)
	if err != nil {
		return nil, fmt.Errorf("could not snapshot view change proof: %w", err)
	}
	return &model.ViewChangeCertificate{
		ViewChange: msg,
		Proof:      agg,
	}, nil
}
