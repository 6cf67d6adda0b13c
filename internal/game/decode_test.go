package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

func response(t *testing.T, body string) domain.PlayResponse {
	t.Helper()
	var resp domain.PlayResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestDecodeWheel(t *testing.T) {
	r, err := DecodeWheel(response(t, `{"selected_index":3,"label":"Gold","segment_count":8}`))
	require.NoError(t, err)
	assert.Equal(t, "wheel stopped on segment 4/8 (Gold)", RenderWheel(r))

	_, err = DecodeWheel(response(t, `{"selected_index":8,"segment_count":8}`))
	assert.Error(t, err)
	_, err = DecodeWheel(response(t, `{"remaining_plays":1}`))
	assert.Error(t, err)
}

func TestDecodeDice(t *testing.T) {
	r, err := DecodeDice(response(t, `{"dice":[[1,2],[6,6]]}`))
	require.NoError(t, err)
	assert.Equal(t, 15, r.Total())
	assert.Equal(t, "rolled 1+2, 6+6 = 15", RenderDice(r))

	_, err = DecodeDice(response(t, `{"dice":[[0,7]]}`))
	assert.Error(t, err)
	_, err = DecodeDice(response(t, `{"dice":[]}`))
	assert.Error(t, err)
}

func TestDecodeCard(t *testing.T) {
	r, err := DecodeCard(response(t, `{"prize":{"id":"p9","name":"Coffee coupon","tier":"rare"}}`))
	require.NoError(t, err)
	assert.Equal(t, "scratched a rare prize: Coffee coupon", RenderCard(r))

	r, err = DecodeCard(response(t, `{"prize":{"id":"p1"}}`))
	require.NoError(t, err)
	assert.Equal(t, "scratched: p1", RenderCard(r))

	_, err = DecodeCard(response(t, `{"remaining_plays":0}`))
	assert.Error(t, err)
}
