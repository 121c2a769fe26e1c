package auth

import "github.com/prajeshElEvEn/microauth/internal/common"

// ResetTokenBytes is the entropy of a reset token; the hex form is twice as long.
const ResetTokenBytes = 20

// GenerateResetToken returns a fresh hex-encoded reset token.
func GenerateResetToken() (string, error) {
	return common.MakeRandHexString(ResetTokenBytes)
}
