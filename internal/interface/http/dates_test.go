package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/rencard-user/internal/domain/auth"
)

func TestWireDate_KeepsCalendarDateAsWritten(t *testing.T) {
	for _, tc := range []struct {
		raw  string
		want time.Time
	}{
		{`"2008-10-14"`, time.Date(2008, time.October, 14, 0, 0, 0, 0, time.UTC)},
		{`"2008-10-14T20:00:00-05:00"`, time.Date(2008, time.October, 14, 0, 0, 0, 0, time.UTC)},
		{`"2008-10-14T01:30:00+09:00"`, time.Date(2008, time.October, 14, 0, 0, 0, 0, time.UTC)},
		{`""`, time.Time{}},
	} {
		var d wireDate
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &d), tc.raw)
		require.True(t, tc.want.Equal(d.Time), "%s parsed as %s", tc.raw, d.Time)
	}

	var d wireDate
	require.Error(t, json.Unmarshal([]byte(`"14/10/2008"`), &d))
	require.Error(t, json.Unmarshal([]byte(`20081014`), &d))
}

func TestWireDate_OffsetBirthdayIsOfAge(t *testing.T) {
	var d wireDate
	require.NoError(t, json.Unmarshal([]byte(`"2008-10-14T20:00:00-05:00"`), &d))

	birthday := time.Date(2026, time.October, 14, 9, 0, 0, 0, time.UTC)
	require.Equal(t, auth.MinimumAge, auth.AgeOn(d.Time, birthday))
}
