package run

import (
	"fmt"

	"github.com/onflow/flow-go/crypto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/finalitylabs/qcert/consensus/pbft"
	"github.com/finalitylabs/qcert/model/hash"
	model "github.com/finalitylabs/qcert/model/pbft"
	"github.com/finalitylabs/qcert/model/validator"
	"github.com/finalitylabs/qcert/module"
	"github.com/finalitylabs/qcert/module/signature"
)

// Signer is a validator slot together with its private staking key.
type Signer struct {
	Index      uint16
	StakingKey crypto.PrivateKey
}

// Votes holds the prepare and commit votes of a set of signers for one block.
type Votes struct {
	Prepare []*signature.SignedMessage[model.PrepareMessage]
	Commit  []*signature.SignedMessage[model.CommitMessage]
}

// GenerateVotes signs the prepare and commit messages for blockHash with every signer.
// Signing runs concurrently; the returned votes are in signer order.
func GenerateVotes(scheme signature.Scheme, signers []Signer, blockHash hash.Hash) (*Votes, error) {
	votes := &Votes{
		Prepare: make([]*signature.SignedMessage[model.PrepareMessage], len(signers)),
		Commit:  make([]*signature.SignedMessage[model.CommitMessage], len(signers)),
	}

	var g errgroup.Group
	for i, s := range signers {
		i, s := i, s
		g.Go(func() error {
			signer := signature.NewLocalSigner(scheme, s.StakingKey)
			prepare, err := signature.NewSignedMessage(model.NewPrepareMessage(blockHash), s.Index, signer)
			if err != nil {
				return fmt.Errorf("could not sign prepare vote for slot %d: %w", s.Index, err)
			}
			commit, err := signature.NewSignedMessage(model.NewCommitMessage(blockHash), s.Index, signer)
			if err != nil {
				return fmt.Errorf("could not sign commit vote for slot %d: %w", s.Index, err)
			}
			votes.Prepare[i] = prepare
			votes.Commit[i] = commit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return votes, nil
}

// GenerateCertificate feeds the votes into a collector for blockHash and returns the
// certificate once the block is final. Invalid votes are logged and skipped.
func GenerateCertificate(
	log zerolog.Logger,
	collector module.FinalityMetrics,
	scheme signature.Scheme,
	validators *validator.Set,
	blockHash hash.Hash,
	votes *Votes,
) (*model.Certificate, error) {
	certificates := make(chan *model.Certificate, 1)
	c := pbft.NewCollector(log, collector, scheme, validators, blockHash, validators.QuorumThreshold(), 4,
		func(hash.Hash) {},
		func(cert *model.Certificate) {
			certificates <- cert
		},
	)
	for _, vote := range votes.Prepare {
		c.SubmitPrepare(vote)
	}
	for _, vote := range votes.Commit {
		c.SubmitCommit(vote)
	}
	c.Stop()

	select {
	case cert := <-certificates:
		return cert, nil
	default:
		p := c.Proof()
		return nil, fmt.Errorf("votes do not finalize block %v (prepare weight %d, commit weight %d, threshold %d)",
			blockHash, p.PrepareWeight(), p.CommitWeight(), validators.QuorumThreshold())
	}
}
