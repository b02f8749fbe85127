package pipeline

import "encoding/hex"

// XORStrategy names how a provider applies its keystream. Two variants are
// observed in the wild and both are kept as distinct strategies; no
// unifying rule is documented upstream.
type XORStrategy int

const (
	// XORHexStrategy hex-encodes the ciphertext, then XORs each character
	// code of the hex string against the repeating keystream.
	XORHexStrategy XORStrategy = iota
	// XORByteStrategy XORs the raw ciphertext bytes directly against the
	// repeating keystream.
	XORByteStrategy
)

// XORBytes XORs data against a repeating keystream, wrapping byte-for-byte.
// Applying it twice with the same keystream yields the input.
func XORBytes(data, keystream []byte) []byte {
	if len(keystream) == 0 {
		return append([]byte(nil), data...)
	}
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ keystream[i%len(keystream)]
	}
	return out
}

// XORHexChars hex-encodes ciphertext and XORs the character codes of the
// hex string against the keystream.
func XORHexChars(ciphertext, keystream []byte) []byte {
	return XORBytes([]byte(hex.EncodeToString(ciphertext)), keystream)
}

// UnXORHexChars reverses XORHexChars: un-XORs the keystream, then decodes
// the recovered hex string back to ciphertext bytes.
func UnXORHexChars(data, keystream []byte) ([]byte, error) {
	return hex.DecodeString(string(XORBytes(data, keystream)))
}
