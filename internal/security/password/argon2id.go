package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara plain contra un hash almacenado. Acepta argon2id (formato
// actual) y bcrypt (deployments anteriores: "deprecated but verifiable").
// Hash malformado o esquema desconocido → false, nunca error ni panic.
func Verify(plain, stored string) bool {
	switch {
	case strings.HasPrefix(stored, "$argon2id$"):
		return verifyArgon2id(plain, stored)
	case strings.HasPrefix(stored, "$2a$"), strings.HasPrefix(stored, "$2b$"), strings.HasPrefix(stored, "$2y$"):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil
	default:
		return false
	}
}

// parsePHC descompone "$argon2id$v=19$m=..,t=..,p=..$salt$dk".
func parsePHC(phc string) (p Params, salt, dk []byte, ok bool) {
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return Params{}, nil, nil, false
	}
	var v int
	if n, err := fmt.Sscanf(parts[2], "v=%d", &v); n != 1 || err != nil || v != 19 {
		return Params{}, nil, nil, false
	}
	var m, t, par int
	if n, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &par); n != 3 || err != nil {
		return Params{}, nil, nil, false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, false
	}
	dk, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, false
	}
	p = Params{Memory: uint32(m), Time: uint32(t), Parallelism: uint8(par), KeyLen: uint32(len(dk))}
	return p, salt, dk, true
}

func verifyArgon2id(plain, phc string) bool {
	p, salt, dkStored, ok := parsePHC(phc)
	if !ok {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}

// NeedsRehash indica si el hash almacenado debería regenerarse con los
// parámetros actuales (bcrypt legacy, o argon2id con work factor distinto).
// El re-hash ocurre de forma oportunista en el login, nunca en frío.
func NeedsRehash(stored string, p Params) bool {
	if !strings.HasPrefix(stored, "$argon2id$") {
		return true
	}
	got, _, _, ok := parsePHC(stored)
	if !ok {
		return true
	}
	return got.Memory != p.Memory || got.Time != p.Time || got.Parallelism != p.Parallelism
}
