package fulfillment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlancehq/parlance/internal/connector"
	"github.com/parlancehq/parlance/internal/model"
)

func prediction() *connector.Prediction {
	return &connector.Prediction{
		Intent:          &model.Intent{Name: "order_fish"},
		Parameters:      map[string]any{"fish": "tuna"},
		FulfillmentText: "tuna, coming right up",
	}
}

func TestDispatch_NoHandlerEchoesPrediction(t *testing.T) {
	d := NewDispatcher()
	result, err := d.Dispatch(context.Background(), prediction())
	require.NoError(t, err)
	assert.Equal(t, "tuna, coming right up", result.Text)
}

func TestDispatch_HandlerResult(t *testing.T) {
	d := NewDispatcher()
	d.Register("order_fish", func(_ context.Context, p *connector.Prediction) (*Result, error) {
		return &Result{
			Text:     "your tuna is order #42",
			Contexts: []connector.ActiveContext{{Name: "c_order_fish", Lifespan: 0}},
		}, nil
	})

	result, err := d.Dispatch(context.Background(), prediction())
	require.NoError(t, err)
	assert.Equal(t, "your tuna is order #42", result.Text)
	assert.Equal(t, 0, result.Contexts[0].Lifespan)
}

func TestDispatch_NilResultMeansNoOverride(t *testing.T) {
	d := NewDispatcher()
	d.Register("order_fish", func(_ context.Context, _ *connector.Prediction) (*Result, error) {
		return nil, nil
	})

	result, err := d.Dispatch(context.Background(), prediction())
	require.NoError(t, err)
	assert.Equal(t, "tuna, coming right up", result.Text)
}

func TestDispatch_HandlerError(t *testing.T) {
	cause := errors.New("inventory service down")
	d := NewDispatcher()
	d.Register("order_fish", func(_ context.Context, _ *connector.Prediction) (*Result, error) {
		return nil, cause
	})

	result, err := d.Dispatch(context.Background(), prediction())
	require.Error(t, err)
	assert.Equal(t, DefaultErrorText, result.Text)

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "order_fish", he.Intent)
	assert.ErrorIs(t, err, cause)
}

func TestDispatch_RecoversPanic(t *testing.T) {
	d := NewDispatcher(WithErrorText("ops, try again later"))
	d.Register("order_fish", func(_ context.Context, _ *connector.Prediction) (*Result, error) {
		panic("nil map write")
	})

	result, err := d.Dispatch(context.Background(), prediction())
	require.Error(t, err)
	assert.Equal(t, "ops, try again later", result.Text)

	var he *HandlerError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, "nil map write", he.Recovered)
	assert.Contains(t, he.Error(), "panicked")
}
