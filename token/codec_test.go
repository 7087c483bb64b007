package token_test

import (
	"testing"
	"time"

	clienterrors "github.com/jrsteele09/fogeapi-client/internal/errors"
	"github.com/jrsteele09/fogeapi-client/token"
	"github.com/jrsteele09/fogeapi-client/token/tokenfake"
	"github.com/stretchr/testify/require"
)

func TestCodec_MalformedTokensAreExpired(t *testing.T) {
	malformed := map[string]string{
		"empty":           "",
		"single segment":  "abc",
		"two segments":    "abc.def",
		"bad base64":      "eyJhbGciOiJIUzI1NiJ9.!!!not-base64!!!.sig",
		"truncated json":  tokenfake.WithPayload(`{"exp":17`),
		"not json":        tokenfake.WithPayload(`hello`),
		"missing exp":     tokenfake.WithoutExpiry("user-1"),
		"exp wrong type":  tokenfake.WithPayload(`{"exp":"tomorrow"}`),
		"null payload":    tokenfake.WithPayload(`null`),
		"whitespace only": "   ",
	}

	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			require.True(t, token.IsExpired(raw))
			require.True(t, token.DecodeExpiry(raw).IsZero())

			_, err := token.Decode(raw)
			require.Error(t, err)
			var decodeErr *token.DecodeError
			require.ErrorAs(t, err, &decodeErr)
			require.ErrorIs(t, err, clienterrors.ErrInvalidToken)
		})
	}
}

func TestCodec_Expiry(t *testing.T) {
	t.Run("past exp is expired", func(t *testing.T) {
		require.True(t, token.IsExpired(tokenfake.ExpiresIn(-time.Minute)))
	})

	t.Run("future exp is not expired", func(t *testing.T) {
		require.False(t, token.IsExpired(tokenfake.ExpiresIn(10*time.Minute)))
	})

	t.Run("decode returns claims", func(t *testing.T) {
		exp := time.Now().Add(time.Hour).Truncate(time.Second)
		claims, err := token.Decode(tokenfake.Mint("user-42", exp))
		require.NoError(t, err)
		require.Equal(t, "user-42", claims.Subject)
		require.True(t, claims.ExpiresAt.Equal(exp))
		require.NotEmpty(t, claims.ID)
	})

	t.Run("hand built payload", func(t *testing.T) {
		raw := tokenfake.WithPayload(`{"exp":4102444800}`) // 2100-01-01
		require.False(t, token.IsExpired(raw))
		require.Equal(t, int64(4102444800), token.DecodeExpiry(raw).Unix())
	})
}

func TestCodec_InjectedClockAndLeeway(t *testing.T) {
	exp := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)
	raw := tokenfake.Mint("user-1", exp)

	before := token.NewCodec(token.WithNowTime(func() time.Time { return exp.Add(-time.Second) }))
	require.False(t, before.IsExpired(raw))

	after := token.NewCodec(token.WithNowTime(func() time.Time { return exp.Add(10 * time.Second) }))
	require.True(t, after.IsExpired(raw))

	tolerant := token.NewCodec(
		token.WithNowTime(func() time.Time { return exp.Add(10 * time.Second) }),
		token.WithLeeway(30*time.Second),
	)
	require.False(t, tolerant.IsExpired(raw))
}

func TestNowTimeFuncOverride(t *testing.T) {
	raw := tokenfake.Mint("user-1", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))

	original := token.NowTimeFunc
	t.Cleanup(func() { token.NowTimeFunc = original })

	token.NowTimeFunc = func() time.Time { return time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC) }
	require.True(t, token.IsExpired(raw))
}
