package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"hash/crc32"

	"github.com/cespare/xxhash/v2"
	"github.com/spaolacci/murmur3"
	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Default is the algorithm used when none is configured.
const Default = "sha256"

// Algorithm describes a digest function. New returns a fresh hash.Hash; each
// hash worker owns one instance and resets it between blocks.
type Algorithm struct {
	// Name is the identifier used in configuration and on the command line.
	Name string
	// Size is the digest length in bytes.
	Size int
	// Cryptographic reports whether the function is collision resistant.
	Cryptographic bool
	// New creates a hash instance.
	New func() hash.Hash
}

// Sum computes the digest of data with a new instance. Workers should keep
// their own instance instead.
func (a Algorithm) Sum(data []byte) []byte {
	h := a.New()
	h.Write(data)
	return h.Sum(nil)
}

func builtins() []Algorithm {
	return []Algorithm{
		{Name: "sha256", Size: sha256.Size, Cryptographic: true, New: sha256.New},
		{Name: "sha512", Size: sha512.Size, Cryptographic: true, New: sha512.New},
		{Name: "sha1", Size: sha1.Size, New: sha1.New},
		{Name: "md5", Size: md5.Size, New: md5.New},
		{Name: "crc32", Size: crc32.Size, New: func() hash.Hash { return crc32.NewIEEE() }},
		{Name: "sha3-256", Size: 32, Cryptographic: true, New: func() hash.Hash { return sha3.New256() }},
		{Name: "blake2b-256", Size: blake2b.Size256, Cryptographic: true, New: newBlake2b256},
		{Name: "blake3", Size: 32, Cryptographic: true, New: func() hash.Hash { return blake3.New() }},
		{Name: "xxh3", Size: 8, New: func() hash.Hash { return xxh3.New() }},
		{Name: "xxh3-128", Size: 16, New: func() hash.Hash { return &xxh3Hash128{Hasher: xxh3.New()} }},
		{Name: "xxhash64", Size: 8, New: func() hash.Hash { return xxhash.New() }},
		{Name: "murmur3-128", Size: 16, New: func() hash.Hash { return murmur3.New128() }},
	}
}

func newBlake2b256() hash.Hash {
	// Only a key longer than 64 bytes makes New256 fail.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

// xxh3Hash128 exposes the 128-bit XXH3 digest through hash.Hash.
type xxh3Hash128 struct {
	*xxh3.Hasher
}

func (h *xxh3Hash128) Size() int { return 16 }

func (h *xxh3Hash128) Sum(b []byte) []byte {
	sum := h.Sum128().Bytes()
	return append(b, sum[:]...)
}
