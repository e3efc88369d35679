// AngelaMos | 2026
// security.go

package core

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// hashParams are the argon2id cost parameters baked into an encoded hash.
// Stored hashes carry their own parameters, so these defaults only apply
// to newly minted hashes; older hashes get upgraded on successful verify.
type hashParams struct {
	memory  uint32
	time    uint32
	threads uint8
	keyLen  uint32
}

var defaultHashParams = hashParams{
	memory:  64 * 1024,
	time:    1,
	threads: 4,
	keyLen:  32,
}

const saltLength = 16

// dummyHash gives login a hash to verify against when the email matches no
// operator, so the miss path costs the same as the hit path.
var dummyHash string

func init() {
	hash, err := HashPassword("dummy_password_for_timing_attack_prevention")
	if err != nil {
		panic(fmt.Sprintf("security: failed to generate dummy hash: %v", err))
	}
	dummyHash = hash
}

// HashPassword produces a PHC-encoded argon2id hash with a fresh salt.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	p := defaultHashParams
	digest := argon2.IDKey(
		[]byte(password), salt, p.time, p.memory, p.threads, p.keyLen,
	)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory, p.time, p.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)

	return encoded, nil
}

// VerifyPassword checks password against a stored PHC hash using the
// parameters the hash itself was created with.
func VerifyPassword(password, encodedHash string) (bool, error) {
	p, salt, digest, err := decodeHash(encodedHash)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey(
		[]byte(password), salt, p.time, p.memory, p.threads, p.keyLen,
	)

	return subtle.ConstantTimeCompare(digest, candidate) == 1, nil
}

// VerifyPasswordWithRehash verifies and, when the stored hash predates the
// current cost parameters, returns an upgraded hash for the caller to store.
// The third return is empty when no upgrade is needed or the rehash failed;
// a rehash failure never fails an otherwise valid login.
func VerifyPasswordWithRehash(
	password, encodedHash string,
) (bool, string, error) {
	valid, err := VerifyPassword(password, encodedHash)
	if err != nil || !valid {
		return valid, "", err
	}

	if !staleParams(encodedHash) {
		return true, "", nil
	}

	upgraded, hashErr := HashPassword(password)
	if hashErr != nil {
		//nolint:nilerr // verified fine; the upgrade can wait for next login
		return true, "", nil
	}
	return true, upgraded, nil
}

// VerifyPasswordTimingSafe behaves like VerifyPasswordWithRehash but accepts
// a possibly-missing stored hash. A nil or empty hash still burns a full
// argon2 verification against dummyHash before reporting failure, keeping
// unknown-email and wrong-password responses indistinguishable by timing.
func VerifyPasswordTimingSafe(
	password string,
	encodedHash *string,
) (bool, string, error) {
	target := dummyHash
	missing := encodedHash == nil || *encodedHash == ""
	if !missing {
		target = *encodedHash
	}

	valid, upgraded, err := VerifyPasswordWithRehash(password, target)
	if missing {
		return false, "", nil
	}

	return valid, upgraded, err
}

func decodeHash(encodedHash string) (hashParams, []byte, []byte, error) {
	var p hashParams

	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return p, nil, nil, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	_, err := fmt.Sscanf(
		parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads,
	)
	if err != nil {
		return p, nil, nil, fmt.Errorf("invalid params: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode salt: %w", err)
	}

	digest, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return p, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	//nolint:gosec // G115: digest length is always small (32 bytes)
	p.keyLen = uint32(len(digest))

	return p, salt, digest, nil
}

// staleParams reports whether the hash was created with parameters other
// than the current defaults. Undecodable hashes count as stale.
func staleParams(encodedHash string) bool {
	p, _, _, err := decodeHash(encodedHash)
	if err != nil {
		return true
	}
	return p != defaultHashParams
}

func GenerateSecureToken(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(buf), nil
}

// GenerateRefreshToken returns an opaque 256-bit bearer secret. Only its
// SHA-256 digest is ever stored.
func GenerateRefreshToken() (string, error) {
	return GenerateSecureToken(32)
}

func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

// CompareTokenHash checks a presented token against its stored digest in
// constant time.
func CompareTokenHash(token, hash string) bool {
	candidate := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(hash)) == 1
}
