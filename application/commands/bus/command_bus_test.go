package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingCommand struct {
	Name string
}

func (c *pingCommand) Validate() error {
	if c.Name == "" {
		return errors.New("name is required")
	}
	return nil
}

func TestCommandBus_Dispatch(t *testing.T) {
	var order []string
	trace := func(tag string) Middleware {
		return func(next CommandHandler) CommandHandler {
			return CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
				order = append(order, tag)
				return next.Handle(ctx, cmd)
			})
		}
	}

	b := NewCommandBus(trace("outer"), trace("inner"), LoggingMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		order = append(order, "handler:"+cmd.(*pingCommand).Name)
		return nil
	})))

	require.NoError(t, b.Send(context.Background(), &pingCommand{Name: "a"}))
	assert.Equal(t, []string{"outer", "inner", "handler:a"}, order)
}

func TestCommandBus_Errors(t *testing.T) {
	b := NewCommandBus()

	err := b.Send(context.Background(), &pingCommand{Name: "a"})
	assert.ErrorIs(t, err, ErrHandlerNotFound)

	require.NoError(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return nil
	})))
	assert.Error(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		return nil
	})))

	err = b.Send(context.Background(), &pingCommand{})
	assert.ErrorIs(t, err, ErrValidationFailed)
	assert.ErrorContains(t, err, "name is required")
}

func TestRecoveryMiddleware(t *testing.T) {
	b := NewCommandBus(RecoveryMiddleware(zap.NewNop()))
	require.NoError(t, b.Register(&pingCommand{}, CommandHandlerFunc(func(ctx context.Context, cmd Command) error {
		panic("boom")
	})))

	err := b.Send(context.Background(), &pingCommand{Name: "x"})
	assert.ErrorContains(t, err, "command panicked: boom")
}
