// Package envelope owns the byte layout of the passphrase-protected key file.
//
// An envelope is a fixed 53-byte header followed by the AEAD ciphertext of the
// 32-byte identity seed:
//
//	magic(8)="HNDFKEY\x00" | version(1)=0x01 | time(4) | memory(4) | threads(4) | salt(32) | ciphertext(N)
//
// Integers are big-endian. The ciphertext region is a 24-byte XChaCha20-Poly1305
// nonce followed by the sealed seed, and the header bytes are the additional
// data, so the KDF parameters cannot be altered without detection.
//
// The parameters stored in the header are the ones used when the file was
// written. Decode always reads them from the header, never from DefaultParams,
// so files survive later changes to the defaults.
package envelope
