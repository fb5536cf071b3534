// Package password hashes and verifies user passwords with argon2id.
//
// Hashes use the PHC string format so parameters travel with the hash:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/beppofit-auth/internal/common"
	"golang.org/x/crypto/argon2"
)

const algorithmID = "argon2id"

// Params tunes the argon2id cost. Zero fields take the defaults.
type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is 64 MiB, one pass, four lanes.
var DefaultParams = Params{
	Memory:      64 * 1024,
	Time:        1,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher produces and checks argon2id hashes. It is safe for concurrent use.
type Hasher struct {
	params Params
	rand   io.Reader
}

// NewHasher returns a Hasher using p, filling zero fields from DefaultParams.
func NewHasher(p Params) *Hasher {
	if p.Memory == 0 {
		p.Memory = DefaultParams.Memory
	}
	if p.Time == 0 {
		p.Time = DefaultParams.Time
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultParams.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultParams.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultParams.KeyLength
	}
	return &Hasher{params: p, rand: rand.Reader}
}

// Hash returns a self-describing salted hash of plaintext. It only fails if
// the system random source does.
func (h *Hasher) Hash(plaintext string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := io.ReadFull(h.rand, salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	key := argon2.IDKey(pw, salt, h.params.Time, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify reports whether plaintext matches encoded. A malformed encoded
// hash is a mismatch, not an error.
func (h *Hasher) Verify(plaintext, encoded string) bool {
	p, salt, key, err := decode(encoded)
	if err != nil {
		return false
	}

	pw := []byte(plaintext)
	defer common.WipeByteArray(pw)

	computed := argon2.IDKey(pw, salt, p.Time, p.Memory, p.Parallelism, uint32(len(key)))
	return subtle.ConstantTimeCompare(computed, key) == 1
}

func decode(encoded string) (Params, []byte, []byte, error) {
	var p Params

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != algorithmID {
		return p, nil, nil, errors.New("invalid hash format")
	}

	if parts[2] != "v="+strconv.Itoa(argon2.Version) {
		return p, nil, nil, errors.New("unsupported argon2 version")
	}

	for _, kv := range strings.Split(parts[3], ",") {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return p, nil, nil, errors.New("invalid parameter entry")
		}
		switch name {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return p, nil, nil, errors.New("invalid memory parameter")
			}
			p.Memory = uint32(v)
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return p, nil, nil, errors.New("invalid time parameter")
			}
			p.Time = uint32(v)
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v == 0 {
				return p, nil, nil, errors.New("invalid parallelism parameter")
			}
			p.Parallelism = uint8(v)
		default:
			return p, nil, nil, errors.New("unsupported parameter")
		}
	}
	if p.Memory == 0 || p.Time == 0 || p.Parallelism == 0 {
		return p, nil, nil, errors.New("missing parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errors.New("invalid salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, errors.New("invalid key")
	}

	return p, salt, key, nil
}
