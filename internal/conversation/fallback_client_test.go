package conversation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

func TestFallbackClientUsesPrimaryOnSuccess(t *testing.T) {
	primary := &scriptedLLM{responses: []LLMResponse{{Text: "primary"}}}
	fallback := &scriptedLLM{responses: []LLMResponse{{Text: "fallback"}}}
	c := NewFallbackLLMClient(primary, fallback, logging.Default())

	resp, err := c.Complete(context.Background(), LLMRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "primary", resp.Text)
	assert.Empty(t, fallback.requests)
}

func TestFallbackClientFallsBack(t *testing.T) {
	primary := &scriptedLLM{errs: []error{errors.New("overloaded")}}
	fallback := &scriptedLLM{responses: []LLMResponse{{Text: "fallback"}}}
	c := NewFallbackLLMClient(primary, fallback, logging.Default())

	resp, err := c.Complete(context.Background(), LLMRequest{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "fallback", resp.Text)
	require.Len(t, fallback.requests, 1)
}

func TestFallbackClientWithoutFallback(t *testing.T) {
	primaryErr := errors.New("overloaded")
	c := NewFallbackLLMClient(&scriptedLLM{errs: []error{primaryErr}}, nil, logging.Default())

	_, err := c.Complete(context.Background(), LLMRequest{Model: "m"})
	assert.ErrorIs(t, err, primaryErr)
}

func TestFallbackClientBothFail(t *testing.T) {
	fallbackErr := errors.New("quota exceeded")
	c := NewFallbackLLMClient(
		&scriptedLLM{errs: []error{errors.New("overloaded")}},
		&scriptedLLM{errs: []error{fallbackErr}},
		logging.Default(),
	)

	_, err := c.Complete(context.Background(), LLMRequest{Model: "m"})
	assert.ErrorIs(t, err, fallbackErr)
}
