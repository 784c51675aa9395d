package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/makquiz/live-server-go/internal/config"
	apperrors "github.com/makquiz/live-server-go/internal/errors"
	"github.com/makquiz/live-server-go/internal/store"
)

// codeSpace is 10^6: join codes are exactly 6 ASCII digits, zero-padded so a
// player always types 6 characters. Eight-digit codes elsewhere in the product
// are deck-clone codes, not join codes.
const codeSpace = 1_000_000

// CodeGenerator allocates join codes that are unique among non-completed
// sessions. Codes of completed sessions are recycled by the store, so the
// effective space is 10^6 against a handful of concurrent sessions.
type CodeGenerator struct {
	store store.Store
}

func NewCodeGenerator(s store.Store) *CodeGenerator {
	return &CodeGenerator{store: s}
}

// Generate draws random codes until one is free, bounded so a pathologically
// full code space surfaces CODE_SPACE_EXHAUSTED instead of looping forever.
func (g *CodeGenerator) Generate() (string, error) {
	for attempts := 0; attempts < config.JoinCodeMaxAttempts; attempts++ {
		code, err := randomJoinCode()
		if err != nil {
			return "", err
		}
		if !g.store.CodeInUse(code) {
			return code, nil
		}
	}
	return "", apperrors.CodeSpaceExhausted()
}

func randomJoinCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpace))
	if err != nil {
		return "", fmt.Errorf("draw join code: %w", err)
	}
	return fmt.Sprintf("%0*d", config.JoinCodeLength, n.Int64()), nil
}
