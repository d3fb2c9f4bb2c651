package pbft

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/finalitylabs/qcert/model/hash"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module"
	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
)

// OnPrepareQuorum is called once per round when the prepare phase first verifies.
type OnPrepareQuorum func(blockHash hash.Hash)

// OnCertificate is called once per round when the proof first finalizes the block.
type OnCertificate func(cert *model.Certificate)

// quorumTracker fires its callback at most once successfully, for the first caller that
// observes a verified quorum. A callback reporting failure re-arms the tracker.
type quorumTracker struct {
	done     atomic.Bool
	onQuorum func() bool
}

// Track checks verify and fires the callback if it holds and the tracker has not fired yet.
// It returns true for the caller whose callback succeeded.
func (t *quorumTracker) Track(verify func() bool) bool {
	if t.done.Load() {
		return false
	}
	if !verify() {
		return false
	}
	if !t.done.CompareAndSwap(false, true) {
		return false
	}
	if !t.onQuorum() {
		t.done.Store(false)
		return false
	}
	return true
}

// Collector feeds the votes of one round into a Proof and reports quorums. Votes can be
// added synchronously from many goroutines or submitted to an internal worker pool.
//
// Callbacks are invoked on the goroutine that added the deciding vote. They must not block
// and must not call Reset.
type Collector struct {
	log        zerolog.Logger
	metrics    module.FinalityMetrics
	validators validator.Lookup
	threshold  uint16
	proof      *Proof
	workers    *workerpool.WorkerPool

	// round guards blockHash; votes hold it for reading, Reset for writing
	round     sync.RWMutex
	blockHash hash.Hash

	prepareQC     quorumTracker
	certificateQC quorumTracker
}

// NewCollector returns a collector for votes on blockHash.
func NewCollector(
	log zerolog.Logger,
	collector module.FinalityMetrics,
	scheme signature.Scheme,
	validators validator.Lookup,
	blockHash hash.Hash,
	threshold uint16,
	workers uint,
	onPrepareQuorum OnPrepareQuorum,
	onCertificate OnCertificate,
) *Collector {
	log = log.With().Str("component", "pbft_collector").Logger()
	c := &Collector{
		log:        log,
		metrics:    collector,
		validators: validators,
		threshold:  threshold,
		proof:      NewProof(scheme, log, collector),
		workers:    workerpool.New(int(workers)),
		blockHash:  blockHash,
	}
	c.prepareQC.onQuorum = func() bool {
		c.metrics.QuorumReached(metrics.PhasePrepare)
		c.log.Info().Str("block_hash", c.blockHash.String()).Msg("prepare quorum reached")
		onPrepareQuorum(c.blockHash)
		return true
	}
	c.certificateQC.onQuorum = func() bool {
		cert, err := c.proof.Certificate(c.validators)
		if err != nil {
			// only validators from the lookup are ever added, so this is an exception
			c.log.Error().Err(err).Msg("could not build certificate from verified proof")
			return false
		}
		c.metrics.QuorumReached(metrics.PhaseCommit)
		c.log.Info().Str("block_hash", c.blockHash.String()).Msg("block finalized")
		onCertificate(cert)
		return true
	}
	return c
}

// AddPrepare adds a prepare vote of the validator at vote.SignerIndex.
//
// Expected errors during normal operations:
//   - signature.InvalidSignerError if the signer is not a validator
//   - VoteForIncompatibleBlockError if the vote is for another block than the round
//   - all errors of Proof.VerifyAndAddPrepare
func (c *Collector) AddPrepare(vote *signature.SignedMessage[model.PrepareMessage]) error {
	if vote == nil {
		return fmt.Errorf("nil prepare vote: %w", signature.ErrInvalidInputs)
	}

	c.round.RLock()
	defer c.round.RUnlock()

	v, err := c.checkVote(metrics.PhasePrepare, vote.SignerIndex, vote.Message.BlockHash)
	if err != nil {
		return err
	}
	err = c.proof.VerifyAndAddPrepare(v.PublicKey, v.Weight, vote)
	if err != nil {
		return err
	}
	c.checkQuorums()
	return nil
}

// AddCommit adds a commit vote of the validator at vote.SignerIndex.
//
// Expected errors during normal operations:
//   - signature.InvalidSignerError if the signer is not a validator
//   - VoteForIncompatibleBlockError if the vote is for another block than the round
//   - all errors of Proof.VerifyAndAddCommit
func (c *Collector) AddCommit(vote *signature.SignedMessage[model.CommitMessage]) error {
	if vote == nil {
		return fmt.Errorf("nil commit vote: %w", signature.ErrInvalidInputs)
	}

	c.round.RLock()
	defer c.round.RUnlock()

	v, err := c.checkVote(metrics.PhaseCommit, vote.SignerIndex, vote.Message.BlockHash)
	if err != nil {
		return err
	}
	err = c.proof.VerifyAndAddCommit(v.PublicKey, v.Weight, vote)
	if err != nil {
		return err
	}
	c.checkQuorums()
	return nil
}

// checkVote must be called while holding the round lock.
func (c *Collector) checkVote(phase string, signerIndex uint16, blockHash hash.Hash) (*validator.Validator, error) {
	if blockHash != c.blockHash {
		c.metrics.VoteRejected(phase, metrics.ReasonMismatch)
		return nil, fmt.Errorf("collecting votes for block %v, got %s vote for %v: %w",
			c.blockHash, phase, blockHash, VoteForIncompatibleBlockError)
	}
	v, ok := c.validators.ByIndex(signerIndex)
	if !ok {
		c.metrics.VoteRejected(phase, metrics.ReasonUnknownSigner)
		return nil, signature.NewInvalidSignerErrorf("%s vote from slot %d which is not in the validator set", phase, signerIndex)
	}
	return v, nil
}

// checkQuorums must be called while holding the round lock. A commit quorum can complete
// through a late prepare vote, so both trackers are checked after every vote.
func (c *Collector) checkQuorums() {
	c.prepareQC.Track(func() bool {
		return c.proof.PrepareWeight() > uint64(c.threshold) &&
			c.proof.VerifyPrepare(c.validators, c.blockHash, c.threshold)
	})
	c.certificateQC.Track(func() bool {
		return c.proof.PrepareWeight() > uint64(c.threshold) &&
			c.proof.CommitWeight() > uint64(c.threshold) &&
			c.proof.Verify(c.validators, c.blockHash, c.threshold)
	})
}

// SubmitPrepare queues a prepare vote for processing by the worker pool.
func (c *Collector) SubmitPrepare(vote *signature.SignedMessage[model.PrepareMessage]) {
	c.workers.Submit(func() {
		err := c.AddPrepare(vote)
		c.logProcessed(metrics.PhasePrepare, err)
	})
}

// SubmitCommit queues a commit vote for processing by the worker pool.
func (c *Collector) SubmitCommit(vote *signature.SignedMessage[model.CommitMessage]) {
	c.workers.Submit(func() {
		err := c.AddCommit(vote)
		c.logProcessed(metrics.PhaseCommit, err)
	})
}

func (c *Collector) logProcessed(phase string, err error) {
	if err == nil {
		return
	}
	if signature.IsExpectedVoteError(err) || signature.IsInvalidSignerError(err) || errors.Is(err, VoteForIncompatibleBlockError) {
		c.log.Debug().Str("phase", phase).Err(err).Msg("vote rejected")
		return
	}
	c.log.Error().Str("phase", phase).Err(err).Msg("unexpected error processing vote")
}

// Reset clears the proof and starts collecting votes for blockHash. Callbacks fire again
// for the new round.
func (c *Collector) Reset(blockHash hash.Hash) {
	c.round.Lock()
	defer c.round.Unlock()

	c.proof.Clear()
	c.blockHash = blockHash
	c.prepareQC.done.Store(false)
	c.certificateQC.done.Store(false)
	c.log.Debug().Str("block_hash", blockHash.String()).Msg("collector reset")
}

// BlockHash returns the block of the current round.
func (c *Collector) BlockHash() hash.Hash {
	c.round.RLock()
	defer c.round.RUnlock()
	return c.blockHash
}

// Proof returns the proof of the current round.
func (c *Collector) Proof() *Proof {
	return c.proof
}

// Stop waits for all submitted votes to be processed and stops the workers. Votes must not
// be submitted after Stop.
func (c *Collector) Stop() {
	c.workers.StopWait()
}
