package pbft

import (
	"fmt"
	"sync"

	"github.com/onflow/flow-go/crypto"
	"github.com/rs/zerolog"

	"github.com/finalitylabs/qcert/model/hash"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
)

// Proof collects the two PBFT voting phases for one macro block. A block is final once
// more than threshold weight signed the prepare message, more than threshold weight signed
// the commit message, and the validators that signed both hold more than threshold weight.
//
// The first accepted vote of either phase fixes the block hash of the proof; votes for
// other blocks are rejected until Clear is called.
//
// Adding votes and clearing are serialized. Verification may run concurrently with other
// verifications.
type Proof struct {
	log     zerolog.Logger
	metrics module.FinalityMetrics

	lock      sync.RWMutex
	blockHash hash.Hash
	pinned    bool
	prepare   *signature.AggregateProof[model.PrepareMessage]
	commit    *signature.AggregateProof[model.CommitMessage]
}

// NewProof returns an empty proof.
func NewProof(scheme signature.Scheme, log zerolog.Logger, collector module.FinalityMetrics) *Proof {
	log = log.With().Str("component", "pbft_proof").Logger()
	return &Proof{
		log:     log,
		metrics: collector,
		prepare: signature.NewAggregateProof[model.PrepareMessage](scheme, log),
		commit:  signature.NewAggregateProof[model.CommitMessage](scheme, log),
	}
}

// VerifyAndAddPrepare adds a prepare vote signed by the holder of pk.
//
// Expected errors during normal operations:
//   - VoteForIncompatibleBlockError if the vote is for another block than the proof
//   - all errors of signature.AggregateProof.VerifyAndAdd
func (p *Proof) VerifyAndAddPrepare(pk crypto.PublicKey, weight uint16, vote *signature.SignedMessage[model.PrepareMessage]) error {
	if vote == nil {
		return fmt.Errorf("nil prepare vote: %w", signature.ErrInvalidInputs)
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	err := p.addVote(metrics.PhasePrepare, vote.Message.BlockHash, func() error {
		return p.prepare.VerifyAndAdd(pk, weight, vote)
	})
	if err != nil {
		return err
	}
	p.metrics.AggregatedWeight(metrics.PhasePrepare, p.prepare.Weight())
	return nil
}

// VerifyAndAddCommit adds a commit vote signed by the holder of pk.
//
// Expected errors during normal operations:
//   - VoteForIncompatibleBlockError if the vote is for another block than the proof
//   - all errors of signature.AggregateProof.VerifyAndAdd
func (p *Proof) VerifyAndAddCommit(pk crypto.PublicKey, weight uint16, vote *signature.SignedMessage[model.CommitMessage]) error {
	if vote == nil {
		return fmt.Errorf("nil commit vote: %w", signature.ErrInvalidInputs)
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	err := p.addVote(metrics.PhaseCommit, vote.Message.BlockHash, func() error {
		return p.commit.VerifyAndAdd(pk, weight, vote)
	})
	if err != nil {
		return err
	}
	p.metrics.AggregatedWeight(metrics.PhaseCommit, p.commit.Weight())
	return nil
}

// addVote must be called while holding the write lock.
func (p *Proof) addVote(phase string, blockHash hash.Hash, add func() error) error {
	if p.pinned && blockHash != p.blockHash {
		err := fmt.Errorf("proof collects votes for block %v but got a %s vote for %v: %w",
			p.blockHash, phase, blockHash, VoteForIncompatibleBlockError)
		p.metrics.VoteRejected(phase, rejectionReason(err))
		return err
	}
	err := add()
	if err != nil {
		p.metrics.VoteRejected(phase, rejectionReason(err))
		return err
	}
	p.blockHash = blockHash
	p.pinned = true
	p.metrics.VoteAccepted(phase)
	return nil
}

// AddPrepareSignature adds a prepare vote and returns whether it was accepted. Rejected
// votes leave the proof unchanged.
func (p *Proof) AddPrepareSignature(pk crypto.PublicKey, weight uint16, vote *signature.SignedMessage[model.PrepareMessage]) bool {
	err := p.VerifyAndAddPrepare(pk, weight, vote)
	if err != nil {
		logRejected(p.log, metrics.PhasePrepare, vote, err)
		return false
	}
	return true
}

// AddCommitSignature adds a commit vote and returns whether it was accepted. Rejected votes
// leave the proof unchanged.
func (p *Proof) AddCommitSignature(pk crypto.PublicKey, weight uint16, vote *signature.SignedMessage[model.CommitMessage]) bool {
	err := p.VerifyAndAddCommit(pk, weight, vote)
	if err != nil {
		logRejected(p.log, metrics.PhaseCommit, vote, err)
		return false
	}
	return true
}

func logRejected[T signature.Message](log zerolog.Logger, phase string, vote *signature.SignedMessage[T], err error) {
	lg := log.Debug().Str("phase", phase).Err(err)
	if vote != nil {
		lg = lg.Uint16("signer_index", vote.SignerIndex)
	}
	lg.Msg("vote rejected")
}

// VerifyPrepare returns whether more than threshold weight signed the prepare message for
// blockHash.
func (p *Proof) VerifyPrepare(validators validator.Lookup, blockHash hash.Hash, threshold uint16) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	valid := p.prepare.Verify(validators, model.NewPrepareMessage(blockHash), threshold)
	p.metrics.ProofVerified(metrics.PhasePrepare, valid)
	return valid
}

// VerifyCommit returns whether more than threshold weight signed the commit message for
// blockHash. It does not check the prepare phase.
func (p *Proof) VerifyCommit(validators validator.Lookup, blockHash hash.Hash, threshold uint16) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	return p.commit.Verify(validators, model.NewCommitMessage(blockHash), threshold)
}

// Verify returns whether the proof finalizes blockHash: both phases hold more than
// threshold weight and the validators present in both phases hold more than threshold
// weight on their own.
func (p *Proof) Verify(validators validator.Lookup, blockHash hash.Hash, threshold uint16) bool {
	p.lock.RLock()
	defer p.lock.RUnlock()

	valid := p.verify(validators, blockHash, threshold)
	p.metrics.ProofVerified(metrics.PhaseCommit, valid)
	return valid
}

func (p *Proof) verify(validators validator.Lookup, blockHash hash.Hash, threshold uint16) bool {
	if !p.prepare.Verify(validators, model.NewPrepareMessage(blockHash), threshold) {
		return false
	}
	if !p.commit.Verify(validators, model.NewCommitMessage(blockHash), threshold) {
		return false
	}

	both := p.prepare.SignerSet().Intersection(p.commit.SignerSet())
	weight, err := signature.SignersWeight(validators, both)
	if err != nil {
		p.log.Debug().Err(err).Msg("could not compute weight of validators in both phases")
		return false
	}
	if weight <= uint64(threshold) {
		p.log.Debug().
			Uint64("weight", weight).
			Uint16("threshold", threshold).
			Msg("validators in both phases do not hold enough weight")
		return false
	}
	return true
}

// Clear resets both phases and unpins the block hash. Clearing an empty proof is a no-op.
func (p *Proof) Clear() {
	p.lock.Lock()
	defer p.lock.Unlock()

	p.prepare.Clear()
	p.commit.Clear()
	p.blockHash = hash.ZeroHash
	p.pinned = false
	p.metrics.AggregatedWeight(metrics.PhasePrepare, 0)
	p.metrics.AggregatedWeight(metrics.PhaseCommit, 0)
}

// BlockHash returns the block the proof collects votes for, or false if no vote was
// accepted yet.
func (p *Proof) BlockHash() (hash.Hash, bool) {
	p.lock.RLock()
	defer p.lock.RUnlock()
	return p.blockHash, p.pinned
}

func (p *Proof) PrepareWeight() uint64 {
	return p.prepare.Weight()
}

func (p *Proof) CommitWeight() uint64 {
	return p.commit.Weight()
}

func (p *Proof) PrepareSigners() []uint16 {
	return p.prepare.Signers()
}

func (p *Proof) CommitSigners() []uint16 {
	return p.commit.Signers()
}

// Certificate returns the transferable form of the proof. It does not verify the proof.
//
// Expected errors:
//   - signature.ErrEmptyProof if either phase has no signers
//   - signature.InvalidSignerError if a signer is outside of validators
func (p *Proof) Certificate(validators validator.Lookup) (*model.Certificate, error) {
	p.lock.RLock()
	defer p.lock.RUnlock()

	prepare, err := p.prepare.Snapshot(validators)
	if err != nil {
		return nil, fmt.Errorf("could not snapshot prepare phase: %w", err)
	}
	commit, err := p.commit.Snapshot(validators)
	if err != nil {
		return nil, fmt.Errorf("could not snapshot commit phase: %w", err)
	}
	return &model.Certificate{
		BlockHash: p.blockHash,
		Prepare:   prepare,
		Commit:    commit,
	}, nil
}
