package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

type fakeSender struct {
	to   []string
	body []string
	err  error
}

func (f *fakeSender) Send(_ context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.to = append(f.to, to)
	f.body = append(f.body, body)
	return "SM123", nil
}

func TestSendMessage(t *testing.T) {
	sender := &fakeSender{}
	h := NewSendMessageHandler(sender, nil, nil, logging.Default())

	r := httptest.NewRequest("POST", "/api/send-message",
		strings.NewReader(`{"to":"whatsapp:+5215512345678","message":"Hola"}`))
	w := httptest.NewRecorder()
	h.Handle(w, r)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Equal(t, []string{"+5215512345678"}, sender.to)
	assert.Equal(t, []string{"Hola"}, sender.body)
}

func TestSendMessageValidation(t *testing.T) {
	h := NewSendMessageHandler(&fakeSender{}, nil, nil, logging.Default())

	for _, body := range []string{
		`not json`,
		`{"to":"","message":"Hola"}`,
		`{"to":"+521","message":"  "}`,
	} {
		r := httptest.NewRequest("POST", "/api/send-message", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Handle(w, r)
		assert.Equal(t, 400, w.Code, "body: %s", body)
	}
}

func TestSendMessageProviderFailure(t *testing.T) {
	h := NewSendMessageHandler(&fakeSender{err: errors.New("boom")}, nil, nil, logging.Default())

	r := httptest.NewRequest("POST", "/api/send-message",
		strings.NewReader(`{"to":"+521","message":"Hola"}`))
	w := httptest.NewRecorder()
	h.Handle(w, r)

	require.Equal(t, 502, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
