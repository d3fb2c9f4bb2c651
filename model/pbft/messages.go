package pbft

import (
	"github.com/finalitylabs/qcert/model/hash"
)

// Protocol prefixes mixed into the signed bytes of each message role. A signature made for
// one role can never verify for another, even when the remaining payload bytes coincide.
// Values must stay pairwise distinct.
const (
	PrefixProposal   byte = 0x01
	PrefixPrepare    byte = 0x02
	PrefixCommit     byte = 0x03
	PrefixViewChange byte = 0x04
)

// ProposalMessage is the leader's macro block proposal. The header is consumed opaquely in
// its encoded form.
type ProposalMessage struct {
	_      struct{} `cbor:",toarray"`
	Header []byte
}

func (ProposalMessage) Prefix() byte { return PrefixProposal }

// PrepareMessage is the first phase vote for a block.
type PrepareMessage struct {
	_         struct{} `cbor:",toarray"`
	BlockHash hash.Hash
}

// NewPrepareMessage returns the prepare vote payload for the given block.
func NewPrepareMessage(blockHash hash.Hash) PrepareMessage {
	return PrepareMessage{BlockHash: blockHash}
}

func (PrepareMessage) Prefix() byte { return PrefixPrepare }

// CommitMessage is the second phase vote for a block. Its payload is identical to
// PrepareMessage; only the prefix differs.
type CommitMessage struct {
	_         struct{} `cbor:",toarray"`
	BlockHash hash.Hash
}

// NewCommitMessage returns the commit vote payload for the given block.
func NewCommitMessage(blockHash hash.Hash) CommitMessage {
	return CommitMessage{BlockHash: blockHash}
}

func (CommitMessage) Prefix() byte { return PrefixCommit }

// ViewChangeMessage is signed by validators that give up on the current view of the macro
// block at BlockNumber and want to move to NewView.
type ViewChangeMessage struct {
	_           struct{} `cbor:",toarray"`
	BlockNumber uint32
	NewView     uint32
}

func (ViewChangeMessage) Prefix() byte { return PrefixViewChange }
