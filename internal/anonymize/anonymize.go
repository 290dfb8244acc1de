// Package anonymize provides the deterministic, keyed one-way mapping used
// to turn phone numbers and group titles into opaque ids before anything
// touches storage.
package anonymize

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

// iterations is intentionally 1: this is a keyed deterministic mapping, not
// a password hash. See spec section 4.1.
const iterations = 1

const keyLen = sha256.Size

// Anonymizer holds the process-wide secret salt. It is immutable after
// construction — the salt is never re-bound once a run has started, so a
// single Anonymizer can be shared across every goroutine the pipeline
// spawns for I/O fan-out without synchronization.
type Anonymizer struct {
	globalSalt string
}

// New returns an Anonymizer keyed by globalSalt. Use NewWithRandomSalt when
// the caller has explicitly allowed non-deterministic anonymization.
func New(globalSalt string) *Anonymizer {
	return &Anonymizer{globalSalt: globalSalt}
}

// NewWithRandomSalt generates a random salt for a single run. Results will
// not be reproducible across runs — callers must only use this when the
// user passed --salt-not-required.
func NewWithRandomSalt() (*Anonymizer, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate random salt: %w", err)
	}
	return &Anonymizer{globalSalt: hex.EncodeToString(buf)}, nil
}

// Anonymize returns the hex PBKDF2-HMAC-SHA256 digest of s, salted with the
// global salt plus salt2. Passing a distinct salt2 per use site (e.g. the
// group id) makes the same human identifier hash to different ids in
// different contexts.
func (a *Anonymizer) Anonymize(s string, salt2 string) string {
	salt := a.globalSalt + salt2
	digest := pbkdf2.Key([]byte(s), []byte(salt), iterations, keyLen, sha256.New)
	return hex.EncodeToString(digest)
}

// defaultOnce guards the package-level default instance used by callers that
// do not want to thread an *Anonymizer through every function signature.
var (
	defaultOnce sync.Once
	defaultInst *Anonymizer
)

// SetDefault installs the process-wide Anonymizer. Call this once at
// startup; only the first call takes effect, later calls are ignored.
func SetDefault(a *Anonymizer) {
	defaultOnce.Do(func() {
		defaultInst = a
	})
}

// Default returns the process-wide Anonymizer installed by SetDefault.
// Panics if SetDefault was never called — every entrypoint must configure
// anonymization before running the pipeline.
func Default() *Anonymizer {
	if defaultInst == nil {
		panic("anonymize: Default() called before SetDefault()")
	}
	return defaultInst
}
