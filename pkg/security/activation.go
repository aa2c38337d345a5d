package security

import (
	"strings"

	"github.com/google/uuid"
)

// NewActivationPair returns the opaque hash and token used in account
// activation links. Both are 32 lowercase hex characters.
func NewActivationPair() (hash, token string, err error) {
	h, err := uuid.NewRandom()
	if err != nil {
		return "", "", err
	}

	t, err := uuid.NewRandom()
	if err != nil {
		return "", "", err
	}

	return hexID(h), hexID(t), nil
}

func hexID(u uuid.UUID) string {
	return strings.ReplaceAll(u.String(), "-", "")
}
