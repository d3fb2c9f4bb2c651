package signature

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidFormat    = errors.New("invalid signature format")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrInvalidInputs    = errors.New("invalid inputs")
	ErrEmptyProof       = errors.New("proof has no signers")
)

// DuplicatedSignerError indicates that a signature from the same validator slot has already been added
type DuplicatedSignerError struct {
	SignerIndex uint16
}

func NewDuplicatedSignerError(signerIndex uint16) error {
	return DuplicatedSignerError{SignerIndex: signerIndex}
}

func (e DuplicatedSignerError) Error() string {
	return fmt.Sprintf("duplicated signer: slot %d already contributed", e.SignerIndex)
}

// IsDuplicatedSignerError returns whether err is an DuplicatedSignerError
func IsDuplicatedSignerError(err error) bool {
	var e DuplicatedSignerError
	return errors.As(err, &e)
}

// MessageMismatchError indicates that a vote signs different content than the content the
// proof is already aggregating.
type MessageMismatchError struct {
	err error
}

func NewMessageMismatchErrorf(msg string, args ...interface{}) error {
	return MessageMismatchError{err: fmt.Errorf(msg, args...)}
}

func (e MessageMismatchError) Error() string { return e.err.Error() }
func (e MessageMismatchError) Unwrap() error { return e.err }

// IsMessageMismatchError returns whether err is an MessageMismatchError
func IsMessageMismatchError(err error) bool {
	var e MessageMismatchError
	return errors.As(err, &e)
}

// InvalidSignerError indicates that the signer is not part of the validator set
type InvalidSignerError struct {
	err error
}

func NewInvalidSignerErrorf(msg string, args ...interface{}) error {
	return InvalidSignerError{fmt.Errorf(msg, args...)}
}

func (e InvalidSignerError) Error() string { return e.err.Error() }
func (e InvalidSignerError) Unwrap() error { return e.err }

// IsInvalidSignerError returns whether err is an InvalidSignerError
func IsInvalidSignerError(err error) bool {
	var e InvalidSignerError
	return errors.As(err, &e)
}

// InsufficientWeightError indicates that the signers of a proof do not hold more than the
// required threshold of voting weight.
type InsufficientWeightError struct {
	Weight    uint64
	Threshold uint16
}

func (e InsufficientWeightError) Error() string {
	return fmt.Sprintf("insufficient weight: %d does not exceed threshold %d", e.Weight, e.Threshold)
}

// IsInsufficientWeightError returns whether err is an InsufficientWeightError
func IsInsufficientWeightError(err error) bool {
	var e InsufficientWeightError
	return errors.As(err, &e)
}
