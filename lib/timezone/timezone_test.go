package timezone

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNowUsesPortalTimezone(t *testing.T) {
	now := Now()
	require.Equal(t, Location, now.Location())

	_, offset := now.Zone()
	require.Equal(t, 8*60*60, offset)

	require.Less(t, time.Since(now), time.Minute)
}
