package cmd

const (
	randomSeedBytes = 48

	FilenameValidators  = "validators.yml"
	DirnameKeys         = "keys"
	FilenameStakingKey  = "%d.staking.priv" // %d will be replaced by the validator index
	DirnameVotes        = "votes"
	FilenameVote        = "%d.%s.vote.cbor" // validator index and phase
	FilenameCertificate = "certificate.cbor"
)
