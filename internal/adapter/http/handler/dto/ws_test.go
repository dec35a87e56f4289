package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

func TestClientFrame_CarriesFallbackFlag(t *testing.T) {
	tripID := uuid.New()
	raw := `{"type":"location-update","latitude":-26.2,"longitude":28.04,"speed":0,"trip_id":"` + tripID.String() + `","is_fallback":true}`

	var frame ClientFrame
	require.NoError(t, json.Unmarshal([]byte(raw), &frame))

	require.True(t, frame.IsFallback, "a synthetic sample must stay marked across the wire")
	require.NotNil(t, frame.TripID)
	require.Equal(t, tripID, *frame.TripID)

	out, err := json.Marshal(frame)
	require.NoError(t, err)
	require.Contains(t, string(out), `"is_fallback":true`)
}

func TestClientFrame_RealSampleOmitsFlag(t *testing.T) {
	raw := `{"type":"location-update","latitude":-26.2,"longitude":28.04}`

	var frame ClientFrame
	require.NoError(t, json.Unmarshal([]byte(raw), &frame))

	require.False(t, frame.IsFallback)
}
