package metrics

const (
	LabelPhase    = "phase"
	LabelReason   = "reason"
	LabelOutcome  = "outcome"
	LabelResource = "resource"
)

// Vote phases
const (
	PhasePrepare    = "prepare"
	PhaseCommit     = "commit"
	PhaseViewChange = "view_change"
)

// Vote rejection reasons
const (
	ReasonDuplicate        = "duplicate"
	ReasonMismatch         = "mismatch"
	ReasonInvalidSignature = "invalid_signature"
	ReasonUnknownSigner    = "unknown_signer"
	ReasonInvalidFormat    = "invalid_format"
)

const (
	OutcomeValid   = "valid"
	OutcomeInvalid = "invalid"
)

const (
	ResourceCertificate = "certificate"
)
