package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/popeyesteak/pos-backend/pkg/config"
)

// ErrInvalidHash signals a malformed Argon2id hash string.
var ErrInvalidHash = fmt.Errorf("invalid argon2id hash")

// ArgonParams captures the Argon2id parameters embedded into each hash string.
type ArgonParams struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLen     uint32
	KeyLen      uint32
}

// HashPIN returns a formatted Argon2id hash for the provided terminal PIN.
func HashPIN(pin string, cfg config.TerminalConfig) (string, error) {
	if pin == "" {
		return "", fmt.Errorf("pin cannot be empty")
	}

	params := paramsFromConfig(cfg)
	salt := make([]byte, params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(pin), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	encSalt := base64.RawStdEncoding.EncodeToString(salt)
	encHash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s", params.Memory, params.Time, params.Parallelism, encSalt, encHash), nil
}

// VerifyPIN returns true when the PIN matches the encoded argon2id hash.
func VerifyPIN(pin, encoded string) (bool, error) {
	params, salt, hash, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(pin), salt, params.Time, params.Memory, params.Parallelism, params.KeyLen)

	return subtle.ConstantTimeCompare(hash, computed) == 1, nil
}

// MatchesTerminal checks a submitted PIN against the terminal configuration,
// preferring the hashed form when both are present.
func MatchesTerminal(pin string, cfg config.TerminalConfig) (bool, error) {
	if cfg.PINHash != "" {
		return VerifyPIN(pin, cfg.PINHash)
	}
	if cfg.PIN == "" {
		return false, fmt.Errorf("terminal pin not configured")
	}
	return subtle.ConstantTimeCompare([]byte(pin), []byte(cfg.PIN)) == 1, nil
}

func paramsFromConfig(cfg config.TerminalConfig) ArgonParams {
	threads := clampInt(cfg.ArgonParallelism, 1, 255)
	return ArgonParams{
		Memory:      clampUint32(cfg.ArgonMemoryKB, 8, 512*1024),
		Time:        clampUint32(cfg.ArgonTime, 1, 10),
		Parallelism: uint8(threads),
		SaltLen:     clampUint32(cfg.ArgonSaltLen, 8, 64),
		KeyLen:      clampUint32(cfg.ArgonKeyLen, 16, 64),
	}
}

func decodeHash(encoded string) (ArgonParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	var params ArgonParams
	for _, kv := range strings.Split(parts[3], ",") {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		n, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return ArgonParams{}, nil, nil, ErrInvalidHash
		}
		switch key {
		case "m":
			params.Memory = uint32(n)
		case "t":
			params.Time = uint32(n)
		case "p":
			params.Parallelism = uint8(n)
		}
	}
	if params.Memory == 0 || params.Time == 0 || params.Parallelism == 0 {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return ArgonParams{}, nil, nil, ErrInvalidHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(hash))
	return params, salt, hash, nil
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampUint32(v, min, max int) uint32 {
	return uint32(clampInt(v, min, max))
}
