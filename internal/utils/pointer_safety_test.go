package utils_test

import (
	"testing"

	"github.com/jrsteele09/fogeapi-client/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestValue(t *testing.T) {
	require.Equal(t, "", utils.Value[string](nil))
	require.Equal(t, "x", utils.Value(utils.Ptr("x")))
}

func TestFirstNonEmpty(t *testing.T) {
	require.Equal(t, "b", utils.FirstNonEmpty("", "  ", "b", "c"))
	require.Equal(t, "", utils.FirstNonEmpty())
}
