package pbft_test

import (
	"errors"
	"testing"

	"github.com/onflow/flow-go/crypto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/finalitylabs/qcert/consensus/pbft"
	"github.com/finalitylabs/qcert/model/hash"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module/metrics"
	mockmodule "github.com/finalitylabs/qcert/module/mock"
	"github.com/finalitylabs/qcert/module/signature"
	"github.com/finalitylabs/qcert/utils/unittest"
)

// votes signs prepare and commit votes for one block with every key.
type votes struct {
	blockHash hash.Hash
	prepare   []*signature.SignedMessage[model.PrepareMessage]
	commit    []*signature.SignedMessage[model.CommitMessage]
}

func signVotes(t testing.TB, scheme signature.Scheme, keys []crypto.PrivateKey, blockHash hash.Hash) *votes {
	v := &votes{blockHash: blockHash}
	for i, sk := range keys {
		signer := signature.NewLocalSigner(scheme, sk)
		prepare, err := signature.NewSignedMessage(model.NewPrepareMessage(blockHash), uint16(i), signer)
		require.NoError(t, err)
		commit, err := signature.NewSignedMessage(model.NewCommitMessage(blockHash), uint16(i), signer)
		require.NoError(t, err)
		v.prepare = append(v.prepare, prepare)
		v.commit = append(v.commit, commit)
	}
	return v
}

func TestProof(t *testing.T) {
	suite.Run(t, new(ProofSuite))
}

// ProofSuite uses four validators of weight 1 and threshold 2, so three votes are needed
// per phase.
type ProofSuite struct {
	suite.Suite

	scheme     *signature.BLSScheme
	keys       []crypto.PrivateKey
	validators *validator.Set
	threshold  uint16
	votes      *votes
	proof      *pbft.Proof
}

func (s *ProofSuite) SetupTest() {
	s.scheme = signature.NewPBFTScheme()
	s.keys = unittest.StakingKeys(4)
	s.validators = unittest.ValidatorSetFixture(s.keys)
	s.threshold = s.validators.QuorumThreshold()
	s.Require().Equal(uint16(2), s.threshold)
	s.votes = signVotes(s.T(), s.scheme, s.keys, unittest.HashFixture())
	s.proof = pbft.NewProof(s.scheme, unittest.Logger(), metrics.NewNoopCollector())
}

func (s *ProofSuite) prepare(signers ...int) {
	for _, i := range signers {
		s.Require().True(s.proof.AddPrepareSignature(s.keys[i].PublicKey(), 1, s.votes.prepare[i]))
	}
}

func (s *ProofSuite) commit(signers ...int) {
	for _, i := range signers {
		s.Require().True(s.proof.AddCommitSignature(s.keys[i].PublicKey(), 1, s.votes.commit[i]))
	}
}

func (s *ProofSuite) TestEmpty() {
	s.False(s.proof.VerifyPrepare(s.validators, s.votes.blockHash, s.threshold))
	s.False(s.proof.Verify(s.validators, s.votes.blockHash, 0))
	_, pinned := s.proof.BlockHash()
	s.False(pinned)
	_, err := s.proof.Certificate(s.validators)
	s.ErrorIs(err, signature.ErrEmptyProof)
}

func (s *ProofSuite) TestConcreteScenario() {
	s.prepare(0, 1, 2)
	s.commit(0, 1)
	s.True(s.proof.VerifyPrepare(s.validators, s.votes.blockHash, s.threshold))
	s.False(s.proof.VerifyCommit(s.validators, s.votes.blockHash, s.threshold))
	s.False(s.proof.Verify(s.validators, s.votes.blockHash, s.threshold))

	s.commit(2)
	s.True(s.proof.VerifyCommit(s.validators, s.votes.blockHash, s.threshold))
	s.True(s.proof.Verify(s.validators, s.votes.blockHash, s.threshold))
	s.False(s.proof.Verify(s.validators, s.votes.blockHash, 3))
	s.False(s.proof.Verify(s.validators, unittest.HashFixture(), s.threshold))

	blockHash, pinned := s.proof.BlockHash()
	s.True(pinned)
	s.Equal(s.votes.blockHash, blockHash)
	s.Equal([]uint16{0, 1, 2}, s.proof.PrepareSigners())
	s.Equal([]uint16{0, 1, 2}, s.proof.CommitSigners())
}

// Both phases exceed the threshold, but the validators that signed both do not.
func (s *ProofSuite) TestIntersectionRule() {
	s.prepare(0, 1, 2)
	s.commit(1, 2, 3)
	s.True(s.proof.VerifyPrepare(s.validators, s.votes.blockHash, s.threshold))
	s.True(s.proof.VerifyCommit(s.validators, s.votes.blockHash, s.threshold))
	s.False(s.proof.Verify(s.validators, s.votes.blockHash, s.threshold))

	// slot 3 prepares as well: the intersection becomes {1, 2, 3}
	s.prepare(3)
	s.True(s.proof.Verify(s.validators, s.votes.blockHash, s.threshold))
}

// The intersection is weighed, not counted.
func (s *ProofSuite) TestIntersectionWeight() {
	heavy := unittest.ValidatorSetFixture(s.keys, unittest.WithWeights(1, 1, 4, 1))
	threshold := heavy.QuorumThreshold() // 2*7/3 = 4
	s.Require().Equal(uint16(4), threshold)

	s.prepare(0, 2)
	s.commit(2, 3)
	// prepare 5, commit 5, intersection {2} weighs 4
	s.True(s.proof.VerifyPrepare(heavy, s.votes.blockHash, threshold))
	s.True(s.proof.VerifyCommit(heavy, s.votes.blockHash, threshold))
	s.False(s.proof.Verify(heavy, s.votes.blockHash, threshold))

	s.commit(0)
	s.True(s.proof.Verify(heavy, s.votes.blockHash, threshold))
}

func (s *ProofSuite) TestCrossPhaseIsolation() {
	prepare := s.votes.prepare[0]
	asCommit := &signature.SignedMessage[model.CommitMessage]{
		Message:     model.NewCommitMessage(prepare.Message.BlockHash),
		SignerIndex: prepare.SignerIndex,
		Signature:   prepare.Signature,
	}
	err := s.proof.VerifyAndAddCommit(s.keys[0].PublicKey(), 1, asCommit)
	s.ErrorIs(err, signature.ErrInvalidSignature)

	commit := s.votes.commit[1]
	asPrepare := &signature.SignedMessage[model.PrepareMessage]{
		Message:     model.NewPrepareMessage(commit.Message.BlockHash),
		SignerIndex: commit.SignerIndex,
		Signature:   commit.Signature,
	}
	s.False(s.proof.AddPrepareSignature(s.keys[1].PublicKey(), 1, asPrepare))

	s.Empty(s.proof.PrepareSigners())
	s.Empty(s.proof.CommitSigners())
}

func (s *ProofSuite) TestVoteForOtherBlock() {
	s.prepare(0)
	other := signVotes(s.T(), s.scheme, s.keys, unittest.HashFixture())

	err := s.proof.VerifyAndAddPrepare(s.keys[1].PublicKey(), 1, other.prepare[1])
	s.ErrorIs(err, pbft.VoteForIncompatibleBlockError)

	// the block hash is shared by both phases
	err = s.proof.VerifyAndAddCommit(s.keys[1].PublicKey(), 1, other.commit[1])
	s.ErrorIs(err, pbft.VoteForIncompatibleBlockError)
	s.Empty(s.proof.CommitSigners())
}

func (s *ProofSuite) TestDuplicateVotes() {
	s.prepare(0, 1)
	s.commit(0)

	s.False(s.proof.AddPrepareSignature(s.keys[0].PublicKey(), 1, s.votes.prepare[0]))
	s.False(s.proof.AddCommitSignature(s.keys[0].PublicKey(), 1, s.votes.commit[0]))

	// a second vote of the same slot with other signature bytes
	forged := *s.votes.prepare[1]
	forged.Signature = s.votes.prepare[2].Signature
	err := s.proof.VerifyAndAddPrepare(s.keys[1].PublicKey(), 1, &forged)
	s.True(signature.IsDuplicatedSignerError(err))

	s.Equal(uint64(2), s.proof.PrepareWeight())
	s.Equal(uint64(1), s.proof.CommitWeight())
}

func (s *ProofSuite) TestClear() {
	s.proof.Clear()
	s.prepare(0, 1, 2)
	s.commit(0, 1, 2)
	s.Require().True(s.proof.Verify(s.validators, s.votes.blockHash, s.threshold))
	cert, err := s.proof.Certificate(s.validators)
	s.Require().NoError(err)

	s.proof.Clear()
	s.False(s.proof.Verify(s.validators, s.votes.blockHash, s.threshold))
	s.Equal(uint64(0), s.proof.PrepareWeight())
	s.Equal(uint64(0), s.proof.CommitWeight())
	_, pinned := s.proof.BlockHash()
	s.False(pinned)
	s.proof.Clear()

	// same votes in the same order reproduce the same aggregates
	s.prepare(0, 1, 2)
	s.commit(0, 1, 2)
	again, err := s.proof.Certificate(s.validators)
	s.Require().NoError(err)
	s.Equal(cert, again)

	fresh := pbft.NewProof(s.scheme, unittest.Logger(), metrics.NewNoopCollector())
	for _, i := range []int{0, 1, 2} {
		s.Require().True(fresh.AddPrepareSignature(s.keys[i].PublicKey(), 1, s.votes.prepare[i]))
		s.Require().True(fresh.AddCommitSignature(s.keys[i].PublicKey(), 1, s.votes.commit[i]))
	}
	freshCert, err := fresh.Certificate(s.validators)
	s.Require().NoError(err)
	s.Equal(cert, freshCert)

	// after clearing, another block can be collected
	s.proof.Clear()
	other := signVotes(s.T(), s.scheme, s.keys, unittest.HashFixture())
	s.True(s.proof.AddPrepareSignature(s.keys[0].PublicKey(), 1, other.prepare[0]))
}

func (s *ProofSuite) TestCertificate() {
	s.prepare(0, 1, 2, 3)
	s.commit(1, 2, 3)

	cert, err := s.proof.Certificate(s.validators)
	s.Require().NoError(err)
	s.Equal(s.votes.blockHash, cert.BlockHash)
	s.Equal([]byte{0xf0}, cert.Prepare.Signers)
	s.Equal([]byte{0x70}, cert.Commit.Signers)
	s.NoError(pbft.VerifyCertificate(s.scheme, s.validators, cert, s.threshold))
}

func (s *ProofSuite) TestMetrics() {
	collector := mockmodule.NewFinalityMetrics(s.T())
	proof := pbft.NewProof(s.scheme, unittest.Logger(), collector)

	collector.On("VoteAccepted", metrics.PhasePrepare).Once()
	collector.On("AggregatedWeight", metrics.PhasePrepare, uint64(1)).Once()
	s.True(proof.AddPrepareSignature(s.keys[0].PublicKey(), 1, s.votes.prepare[0]))

	collector.On("VoteRejected", metrics.PhasePrepare, metrics.ReasonDuplicate).Once()
	s.False(proof.AddPrepareSignature(s.keys[0].PublicKey(), 1, s.votes.prepare[0]))

	collector.On("VoteRejected", metrics.PhaseCommit, metrics.ReasonInvalidSignature).Once()
	s.False(proof.AddCommitSignature(s.keys[2].PublicKey(), 1, s.votes.commit[1]))

	collector.On("ProofVerified", metrics.PhaseCommit, false).Once()
	s.False(proof.Verify(s.validators, s.votes.blockHash, s.threshold))

	collector.On("AggregatedWeight", mock.Anything, uint64(0)).Twice()
	proof.Clear()
}

// Two disjoint coalitions, each above threshold, sign both phases for their own block. A
// proof mixing the prepare votes of one coalition with the commit votes of the other passes
// each phase on its own but never verifies.
func TestProof_DisjointCoalitions(t *testing.T) {
	scheme := signature.NewPBFTScheme()
	keys := unittest.StakingKeys(6)
	validators := unittest.ValidatorSetFixture(keys)
	threshold := uint16(2)
	coalitionA := []int{0, 1, 2}
	coalitionB := []int{3, 4, 5}

	for _, blockHash := range unittest.HashListFixture(2) {
		all := signVotes(t, scheme, keys, blockHash)

		proof := pbft.NewProof(scheme, unittest.Logger(), metrics.NewNoopCollector())
		for _, i := range coalitionA {
			require.True(t, proof.AddPrepareSignature(keys[i].PublicKey(), 1, all.prepare[i]))
		}
		for _, i := range coalitionB {
			require.True(t, proof.AddCommitSignature(keys[i].PublicKey(), 1, all.commit[i]))
		}

		require.True(t, proof.VerifyPrepare(validators, blockHash, threshold))
		require.True(t, proof.VerifyCommit(validators, blockHash, threshold))
		require.False(t, proof.Verify(validators, blockHash, threshold))

		cert, err := proof.Certificate(validators)
		require.NoError(t, err)
		err = pbft.VerifyCertificate(scheme, validators, cert, threshold)
		require.ErrorIs(t, err, pbft.ErrInvalidCertificate)
	}

	// each coalition on its own finalizes its block
	for _, coalition := range [][]int{coalitionA, coalitionB} {
		blockHash := unittest.HashFixture()
		all := signVotes(t, scheme, keys, blockHash)
		proof := pbft.NewProof(scheme, unittest.Logger(), metrics.NewNoopCollector())
		for _, i := range coalition {
			require.True(t, proof.AddPrepareSignature(keys[i].PublicKey(), 1, all.prepare[i]))
			require.True(t, proof.AddCommitSignature(keys[i].PublicKey(), 1, all.commit[i]))
		}
		require.True(t, proof.Verify(validators, blockHash, threshold))
	}
}

func TestProof_NilVotes(t *testing.T) {
	keys := unittest.StakingKeys(1)
	proof := pbft.NewProof(signature.NewPBFTScheme(), unittest.Logger(), metrics.NewNoopCollector())

	err := proof.VerifyAndAddPrepare(keys[0].PublicKey(), 1, nil)
	require.True(t, errors.Is(err, signature.ErrInvalidInputs))
	require.False(t, proof.AddCommitSignature(keys[0].PublicKey(), 1, nil))
}
