package utils

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"math/big"
)

// GenerateVAPIDKeys generates a VAPID key pair for the legacy web-push channel
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	curve := elliptic.P256()
	key, err := ecdsa.GenerateKey(curve, rand.Reader)
	if err != nil {
		return "", "", fmt.Errorf("generating key: %w", err)
	}

	// Public key is the uncompressed point (X, Y)
	pubBytes := elliptic.Marshal(curve, key.PublicKey.X, key.PublicKey.Y)
	publicKey = base64.RawURLEncoding.EncodeToString(pubBytes)

	privBytes := key.D.Bytes()
	// Pad to 32 bytes if needed
	if len(privBytes) < 32 {
		padding := make([]byte, 32-len(privBytes))
		privBytes = append(padding, privBytes...)
	}
	privateKey = base64.RawURLEncoding.EncodeToString(privBytes)

	return publicKey, privateKey, nil
}

// DecodeVAPIDPrivateKey decodes a base64url VAPID private key
func DecodeVAPIDPrivateKey(privateKey string) (*ecdsa.PrivateKey, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(privateKey)
	if err != nil {
		return nil, fmt.Errorf("decoding private key: %w", err)
	}

	curve := elliptic.P256()
	d := new(big.Int).SetBytes(decoded)

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{
			Curve: curve,
		},
		D: d,
	}

	priv.PublicKey.X, priv.PublicKey.Y = curve.ScalarBaseMult(decoded)

	return priv, nil
}
