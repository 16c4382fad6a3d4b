package pagination_test

import (
	"testing"
	"time"

	"github.com/birukt/bank_ledger_app/internal/utils/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryToken_RoundTrip(t *testing.T) {
	createdAt := time.Date(2025, 6, 1, 12, 30, 45, 123456789, time.UTC)
	token := pagination.EncodeHistoryToken(createdAt, 42)

	gotTime, gotSeq, err := pagination.DecodeHistoryToken(token)
	require.NoError(t, err)
	assert.True(t, gotTime.Equal(createdAt))
	assert.Equal(t, int64(42), gotSeq)
}

func TestDecodeHistoryToken_Invalid(t *testing.T) {
	cases := []string{
		"not-base64!!!",
		"bm8tc2VwYXJhdG9y",             // "no-separator"
		"bm90LWEtdGltZXw0Mg==",         // "not-a-time|42"
		"MjAyNS0wNi0wMVQwMDowMDowMFp8eA==", // valid time, bad sequence
	}
	for _, tc := range cases {
		_, _, err := pagination.DecodeHistoryToken(tc)
		assert.Error(t, err, tc)
	}
}
