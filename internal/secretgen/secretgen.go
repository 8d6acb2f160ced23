// Package secretgen produces the per-run secrets written into the values
// documents.
package secretgen

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"math/big"

	"github.com/kompox/lsinstall/domain/model"
)

const (
	// SecretBytes is the number of random bytes behind the salt and JWT secret.
	SecretBytes = 32
	// PasswordLength is the length of generated admin passwords.
	PasswordLength = 24

	Upper   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lower   = "abcdefghijklmnopqrstuvwxyz"
	Digits  = "0123456789"
	Symbols = `!#$%()+,-./:?@[\]^_{~}`
)

// Generate draws all secrets from r. Pass nil to use crypto/rand.Reader.
func Generate(r io.Reader) (model.Secrets, error) {
	if r == nil {
		r = rand.Reader
	}
	salt, err := RandomBase64(r, SecretBytes)
	if err != nil {
		return model.Secrets{}, err
	}
	jwt, err := RandomBase64(r, SecretBytes)
	if err != nil {
		return model.Secrets{}, err
	}
	pw, err := Password(r, PasswordLength)
	if err != nil {
		return model.Secrets{}, err
	}
	return model.Secrets{APIKeySalt: salt, JWTSecret: jwt, AdminPassword: pw}, nil
}

// RandomBase64 returns n random bytes, standard base64 encoded.
func RandomBase64(r io.Reader, n int) (string, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return "", fmt.Errorf("%w: read %d random bytes: %v", model.ErrSecretGeneration, n, err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// Password returns a password of the given length with at least one
// uppercase letter, lowercase letter, digit and symbol from Symbols.
func Password(r io.Reader, length int) (string, error) {
	if r == nil {
		r = rand.Reader
	}
	classes := []string{Upper, Lower, Digits, Symbols}
	if length < len(classes) {
		return "", fmt.Errorf("%w: password length %d is below %d", model.ErrSecretGeneration, length, len(classes))
	}
	all := Upper + Lower + Digits + Symbols

	out := make([]byte, 0, length)
	for _, set := range classes {
		c, err := pick(r, set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < length {
		c, err := pick(r, all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}

	// Fisher-Yates so the guaranteed characters are not always in front.
	for i := len(out) - 1; i > 0; i-- {
		j, err := randInt(r, i+1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

func pick(r io.Reader, set string) (byte, error) {
	i, err := randInt(r, len(set))
	if err != nil {
		return 0, err
	}
	return set[i], nil
}

func randInt(r io.Reader, n int) (int, error) {
	v, err := rand.Int(r, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", model.ErrSecretGeneration, err)
	}
	return int(v.Int64()), nil
}
