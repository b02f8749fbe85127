package pipeline

import "fmt"

// Pipeline bundles one provider's cipher parameters: fixed AES key/IV, XOR
// keystream with its application strategy, and the permuted base64 alphabet.
// Encode produces the blob a provider splices into its URL path template;
// Decode reverses a blob of the same shape from a response.
type Pipeline struct {
	Key       []byte
	IV        []byte
	Keystream []byte
	Strategy  XORStrategy
	Alphabet  *Alphabet
}

// Encode runs token through encrypt → XOR → base64 → alphabet substitution.
func (p Pipeline) Encode(token string) (string, error) {
	ciphertext, err := EncryptCBC([]byte(token), p.Key, p.IV)
	if err != nil {
		return "", fmt.Errorf("encrypting token: %w", err)
	}

	var xored []byte
	switch p.Strategy {
	case XORHexStrategy:
		xored = XORHexChars(ciphertext, p.Keystream)
	case XORByteStrategy:
		xored = XORBytes(ciphertext, p.Keystream)
	default:
		return "", fmt.Errorf("unknown XOR strategy %d", p.Strategy)
	}

	encoded := EncodeURLSafe(xored)
	if p.Alphabet != nil {
		encoded = p.Alphabet.Substitute(encoded)
	}
	return encoded, nil
}

// Decode reverses Encode: alphabet → base64 → un-XOR → decrypt.
func (p Pipeline) Decode(blob string) (string, error) {
	if p.Alphabet != nil {
		blob = p.Alphabet.Unsubstitute(blob)
	}

	xored, err := DecodeURLSafe(blob)
	if err != nil {
		return "", fmt.Errorf("decoding base64: %w", err)
	}

	var ciphertext []byte
	switch p.Strategy {
	case XORHexStrategy:
		ciphertext, err = UnXORHexChars(xored, p.Keystream)
		if err != nil {
			return "", fmt.Errorf("decoding hex layer: %w", err)
		}
	case XORByteStrategy:
		ciphertext = XORBytes(xored, p.Keystream)
	default:
		return "", fmt.Errorf("unknown XOR strategy %d", p.Strategy)
	}

	plaintext, err := DecryptCBC(ciphertext, p.Key, p.IV)
	if err != nil {
		return "", fmt.Errorf("decrypting token: %w", err)
	}
	return string(plaintext), nil
}
