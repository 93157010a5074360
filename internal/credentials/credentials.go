package credentials

import (
	"crypto/rand"
	"math/big"
)

// Alphabets for join credentials. Codes are uppercase so they read well when
// shared aloud; passwords are mixed-case alphanumerics.
const (
	joinCodeChars     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinPasswordChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// JoinCodeLength is the length of a family or circle join code
	JoinCodeLength = 8
	// JoinPasswordLength is the length of a generated join password
	JoinPasswordLength = 6
)

// GenerateJoinCode generates a random 8-character uppercase-alphanumeric code
// used to find a family or circle
func GenerateJoinCode() (string, error) {
	return randomString(joinCodeChars, JoinCodeLength)
}

// GenerateJoinPassword generates a random 6-character alphanumeric password.
// The caller is expected to hash it before storing; the plaintext is shown to
// the user exactly once.
func GenerateJoinPassword() (string, error) {
	return randomString(joinPasswordChars, JoinPasswordLength)
}

// randomString builds a string of the given length from chars using crypto/rand
func randomString(chars string, length int) (string, error) {
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		result[i] = chars[num.Int64()]
	}
	return string(result), nil
}
