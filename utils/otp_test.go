package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateOTPDigitsOnly(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP(6)
		require.NoError(t, err)
		require.Len(t, otp, 6)
		for _, r := range otp {
			require.True(t, r >= '0' && r <= '9')
		}
		seen[otp] = true
	}
	require.Greater(t, len(seen), 1, "codes should vary")
}

func TestGenerateReferralCode(t *testing.T) {
	a, err := GenerateReferralCode()
	require.NoError(t, err)
	b, err := GenerateReferralCode()
	require.NoError(t, err)
	require.Len(t, a, 8)
	require.NotEqual(t, a, b)
}
