package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terravista/whatsapp-concierge/internal/appointments"
	"github.com/terravista/whatsapp-concierge/pkg/logging"
)

type fakeSheet struct {
	rows []appointments.CustomerRecord
}

func (f *fakeSheet) AppendCustomerRow(_ context.Context, rec appointments.CustomerRecord) error {
	f.rows = append(f.rows, rec)
	return nil
}

func TestRegistration(t *testing.T) {
	sheet := &fakeSheet{}
	h := NewRegistrationHandler(sheet, logging.Default())

	body := `{"name":"Juan Pérez","phone":"+5215512345678","email":"juan@example.com","interest":"Lote 12"}`
	r := httptest.NewRequest("POST", "/api/registro", strings.NewReader(body))
	w := httptest.NewRecorder()
	h.Handle(w, r)

	require.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "Registro guardado")

	require.Len(t, sheet.rows, 1)
	assert.Equal(t, "Juan Pérez", sheet.rows[0].Name)
	assert.Equal(t, "+5215512345678", sheet.rows[0].Phone)
	assert.Equal(t, "Lote 12", sheet.rows[0].Interest)
}

func TestRegistrationRequiresNameAndPhone(t *testing.T) {
	h := NewRegistrationHandler(&fakeSheet{}, logging.Default())

	for _, body := range []string{
		`{"name":"","phone":"+521"}`,
		`{"name":"Juan","phone":"  "}`,
	} {
		r := httptest.NewRequest("POST", "/api/registro", strings.NewReader(body))
		w := httptest.NewRecorder()
		h.Handle(w, r)
		assert.Equal(t, 400, w.Code, "body: %s", body)
	}
}

func TestRegistrationWithoutIntegration(t *testing.T) {
	h := NewRegistrationHandler(nil, logging.Default())

	r := httptest.NewRequest("POST", "/api/registro",
		strings.NewReader(`{"name":"Juan","phone":"+521"}`))
	w := httptest.NewRecorder()
	h.Handle(w, r)

	assert.Equal(t, 503, w.Code)
}
