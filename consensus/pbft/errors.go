package pbft

import (
	"errors"

	"github.com/finalitylabs/qcert/module/metrics"
	"github.com/finalitylabs/qcert/module/signature"
)

var (
	// ErrInvalidCertificate is returned when a received certificate does not prove finality
	// of its block.
	ErrInvalidCertificate = errors.New("invalid certificate")

	// VoteForIncompatibleBlockError is returned for votes for another block than the one
	// the proof is collecting votes for.
	VoteForIncompatibleBlockError = errors.New("vote for incompatible block")
)

// rejectionReason maps errors returned when adding a vote to a metrics label.
func rejectionReason(err error) string {
	switch {
	case signature.IsDuplicatedSignerError(err):
		return metrics.ReasonDuplicate
	case signature.IsMessageMismatchError(err), errors.Is(err, VoteForIncompatibleBlockError):
		return metrics.ReasonMismatch
	case signature.IsInvalidSignerError(err):
		return metrics.ReasonUnknownSigner
	case errors.Is(err, signature.ErrInvalidSignature):
		return metrics.ReasonInvalidSignature
	default:
		return metrics.ReasonInvalidFormat
	}
}
