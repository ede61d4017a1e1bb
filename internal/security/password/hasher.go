package password

import (
	"github.com/alexedwards/argon2id"
)

type Params struct {
	Memory      uint32 // kibibytes
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is ~128MiB, t=3, p=1.
func DefaultParams() Params {
	return Params{Memory: 131072, Iterations: 3, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

type Hasher struct {
	p Params
}

func NewHasher(p Params) *Hasher {
	d := DefaultParams()
	if p.Memory == 0 {
		p.Memory = d.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = d.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = d.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = d.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = d.KeyLength
	}
	return &Hasher{p: p}
}

// Hash returns a PHC string like `$argon2id$v=19$m=131072,t=3,p=1$...`
func (h *Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain, &argon2id.Params{
		Memory:      h.p.Memory,
		Iterations:  h.p.Iterations,
		Parallelism: h.p.Parallelism,
		SaltLength:  h.p.SaltLength,
		KeyLength:   h.p.KeyLength,
	})
}

// Verify checks password vs PHC hash and also indicates if a rehash is recommended.
func (h *Hasher) Verify(plain, phc string) (ok bool, needsRehash bool, err error) {
	ok, err = argon2id.ComparePasswordAndHash(plain, phc)
	if err != nil || !ok {
		return ok, false, err
	}
	return ok, h.NeedsRehash(phc), nil
}

func (h *Hasher) NeedsRehash(phc string) bool {
	stored, _, _, err := argon2id.DecodeHash(phc)
	if err != nil {
		return true
	}
	return stored.Memory < h.p.Memory ||
		stored.Iterations < h.p.Iterations ||
		stored.Parallelism < h.p.Parallelism ||
		stored.SaltLength < h.p.SaltLength ||
		stored.KeyLength < h.p.KeyLength
}
