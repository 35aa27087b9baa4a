package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters for new hashes. Verification reads the
// parameters back out of the stored PHC string, so these can change
// without invalidating existing accounts.
const (
	hashIterations = 3
	hashMemoryKiB  = 64 * 1024
	hashThreads    = 1
	hashLen        = 32
	saltLen        = 16
)

// HashPassword hashes a plaintext password with Argon2id and encodes
// the result as a PHC string ($argon2id$v=19$m=...,t=...,p=...$salt$hash).
// The bridge only ever stores this encoded form.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, hashIterations, hashMemoryKiB, hashThreads, hashLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemoryKiB, hashIterations, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	)
	return encoded, nil
}

// VerifyPassword checks a plaintext password against a stored PHC
// string, in constant time with respect to the hash bytes.
func VerifyPassword(password, encoded string) (bool, error) {
	salt, sum, params, err := parsePHC(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt,
		params.iterations, params.memoryKiB, params.threads,
		uint32(len(sum))) // #nosec G115 -- hash length always fits uint32

	return subtle.ConstantTimeCompare(sum, candidate) == 1, nil
}

type phcParams struct {
	iterations uint32
	memoryKiB  uint32
	threads    uint8
}

// parsePHC splits a $-delimited Argon2id PHC string into salt, hash
// and the parameters it was produced with.
func parsePHC(encoded string) ([]byte, []byte, phcParams, error) {
	var params phcParams

	// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash> has six fields,
	// the first of them empty.
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, nil, params, fmt.Errorf("malformed password hash")
	}
	if parts[1] != "argon2id" {
		return nil, nil, params, fmt.Errorf("unsupported hash algorithm %q", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, nil, params, fmt.Errorf("parsing hash version: %w", err)
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.memoryKiB, &params.iterations, &params.threads); err != nil {
		return nil, nil, params, fmt.Errorf("parsing hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding salt: %w", err)
	}
	sum, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return nil, nil, params, fmt.Errorf("decoding hash: %w", err)
	}

	return salt, sum, params, nil
}
