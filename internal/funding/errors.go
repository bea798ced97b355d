package funding

import "errors"

var (
	ErrMissingFields    = errors.New("missing fields")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrProjectNotFound  = errors.New("project not found")
	ErrDuplicateProof   = errors.New("duplicate proof_hash")
)
