// Package security generates the random values used for temporary
// passwords and generated usernames.
package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	upperAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerAlphabet = "abcdefghijkmnopqrstuvwxyz"
	digitAlphabet = "23456789"

	// MinTemporaryPasswordLength keeps generated passwords inside the
	// account password policy.
	MinTemporaryPasswordLength = 8
)

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString draws length characters uniformly from alphabet.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	value := make([]byte, length)
	for index := range value {
		position, err := randomIndex(len(alphabet))
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position]
	}
	return string(value), nil
}

// TemporaryPassword returns a password with at least one upper case letter,
// one lower case letter and one digit. Ambiguous glyphs (0, O, 1, l, I) are
// never used so the value can be read aloud or copied from a terminal.
func TemporaryPassword(length int) (string, error) {
	if length < MinTemporaryPasswordLength {
		length = MinTemporaryPasswordLength
	}

	required := []string{upperAlphabet, lowerAlphabet, digitAlphabet}
	value := make([]byte, 0, length)
	for _, alphabet := range required {
		part, err := RandomString(1, alphabet)
		if err != nil {
			return "", err
		}
		value = append(value, part...)
	}

	rest, err := RandomString(length-len(required), upperAlphabet+lowerAlphabet+digitAlphabet)
	if err != nil {
		return "", err
	}
	value = append(value, rest...)

	for index := len(value) - 1; index > 0; index-- {
		swap, err := randomIndex(index + 1)
		if err != nil {
			return "", err
		}
		value[index], value[swap] = value[swap], value[index]
	}
	return string(value), nil
}

func randomIndex(limit int) (int, error) {
	position, err := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	if err != nil {
		return 0, err
	}
	return int(position.Int64()), nil
}
