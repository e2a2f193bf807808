package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestID_UnmarshalJSON(t *testing.T) {
	cases := []struct {
		in   string
		want ID
	}{
		{`42`, "42"},
		{`"42"`, "42"},
		{`"8c6f1c0e-8d0a-4d4a-9b39-6c3a3f1b2d11"`, "8c6f1c0e-8d0a-4d4a-9b39-6c3a3f1b2d11"},
		{`null`, ""},
	}
	for _, tc := range cases {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(tc.in), &id), tc.in)
		assert.Equal(t, tc.want, id, tc.in)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`{}`), &id))
}

func TestSession_Expired(t *testing.T) {
	now := time.Unix(1000, 0)

	assert.False(t, (&Session{}).Expired(now), "unknown expiry never expires")
	assert.False(t, (&Session{ExpiresAt: 1001}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: 1000}).Expired(now))
	assert.True(t, (&Session{ExpiresAt: 999}).Expired(now))
}
