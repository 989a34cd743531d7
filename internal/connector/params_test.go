package connector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlancehq/parlance/internal/mapping"
	"github.com/parlancehq/parlance/internal/model"
)

func testIntent() *model.Intent {
	return &model.Intent{
		Name: "order_fish",
		Parameters: []model.Parameter{
			{Name: "fish", Type: &model.Entity{Name: "FishType"}, Required: true},
			{Name: "amount", Type: model.SysInteger, Default: int64(1)},
			{Name: "notes", Type: model.SysEmail},
		},
	}
}

func testRegistry() *mapping.Registry {
	reg := mapping.NewRegistry()
	reg.Register("svc", mapping.IntegerMapping{Name: "number"})
	reg.Register("svc", mapping.StringMapping{EntityType: model.SysEmail, Name: "email"})
	return reg
}

func TestCoerceParameters(t *testing.T) {
	params, incomplete, err := CoerceParameters(testIntent(), map[string]any{
		"fish":   "tuna",
		"amount": float64(3),
	}, testRegistry(), "svc")
	require.NoError(t, err)
	assert.False(t, incomplete)
	assert.Equal(t, map[string]any{"fish": "tuna", "amount": int64(3)}, params)
}

func TestCoerceParameters_OptionalFallsBackToDefault(t *testing.T) {
	params, incomplete, err := CoerceParameters(testIntent(), map[string]any{
		"fish": "salmon",
	}, testRegistry(), "svc")
	require.NoError(t, err)
	assert.False(t, incomplete)
	assert.Equal(t, int64(1), params["amount"])

	// Optionals without a default stay unset.
	_, ok := params["notes"]
	assert.False(t, ok)
}

func TestCoerceParameters_MissingRequiredIsIncomplete(t *testing.T) {
	params, incomplete, err := CoerceParameters(testIntent(), map[string]any{
		"amount": float64(2),
	}, testRegistry(), "svc")
	require.NoError(t, err)
	assert.True(t, incomplete)
	_, ok := params["fish"]
	assert.False(t, ok)
}

func TestCoerceParameters_EmptyValueCountsAsMissing(t *testing.T) {
	_, incomplete, err := CoerceParameters(testIntent(), map[string]any{
		"fish": "",
	}, testRegistry(), "svc")
	require.NoError(t, err)
	assert.True(t, incomplete)
}

func TestCoerceParameters_UndeclaredParameter(t *testing.T) {
	_, _, err := CoerceParameters(testIntent(), map[string]any{
		"fish":    "tuna",
		"surplus": "x",
	}, testRegistry(), "svc")
	require.Error(t, err)
	assert.True(t, IsProtocolError(err, ErrCodeUnknownParameter))
	assert.Contains(t, err.Error(), "surplus")
}

func TestCoerceParameters_ListIsAtomic(t *testing.T) {
	intent := &model.Intent{
		Name: "order_many",
		Parameters: []model.Parameter{
			{Name: "amounts", Type: model.SysInteger, IsList: true},
		},
	}

	params, incomplete, err := CoerceParameters(intent, map[string]any{
		"amounts": []any{float64(1), "2"},
	}, testRegistry(), "svc")
	require.NoError(t, err)
	assert.False(t, incomplete)
	assert.Equal(t, []any{int64(1), int64(2)}, params["amounts"])

	// One bad element fails the whole call.
	_, _, err = CoerceParameters(intent, map[string]any{
		"amounts": []any{float64(1), "broken"},
	}, testRegistry(), "svc")
	assert.True(t, mapping.IsMappingError(err, mapping.ErrCodeCoercion))

	// A scalar where a list is declared fails too.
	_, _, err = CoerceParameters(intent, map[string]any{
		"amounts": float64(1),
	}, testRegistry(), "svc")
	assert.True(t, mapping.IsMappingError(err, mapping.ErrCodeCoercion))
}

func TestCoerceParameters_CoercionErrorNamesParameter(t *testing.T) {
	_, _, err := CoerceParameters(testIntent(), map[string]any{
		"fish":   "tuna",
		"amount": "plenty",
	}, testRegistry(), "svc")
	require.Error(t, err)

	var me *mapping.Error
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "amount", me.Parameter)
	assert.Equal(t, "svc", me.Service)
}
