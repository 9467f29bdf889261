// Package digest names the hash functions a signature can be computed with.
//
// Each Algorithm is a factory for hash.Hash. Besides the standard library
// functions the registry carries BLAKE3, BLAKE2b-256, SHA3-256, XXH3 (64 and
// 128 bit), xxHash64 and Murmur3-128. Non-cryptographic functions are much
// faster but only suitable for change detection, not for integrity against an
// adversary.
package digest
