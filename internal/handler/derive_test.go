package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/AlexZinkM/keyderive/derive"
	"github.com/AlexZinkM/keyderive/internal/config"
	"github.com/AlexZinkM/keyderive/internal/model"
)

const (
	testCode     = "AbcDEF123456789xyz"
	testPassword = "Passw9rd"
)

func newTestHandler(t *testing.T) *DeriveHandler {
	t.Helper()
	require.NoError(t, config.Init())
	h, err := NewDeriveHandler(zaptest.NewLogger(t))
	require.NoError(t, err)
	return h
}

func postJSON(t *testing.T, handlerFunc http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/derive", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handlerFunc(rec, req)
	return rec
}

func deriveBody(code, password string) string {
	b, _ := json.Marshal(model.DeriveRequest{Code: code, Password: password})
	return string(b)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestNewDeriveHandlerRequiresLogger(t *testing.T) {
	require.NoError(t, config.Init())
	_, err := NewDeriveHandler(nil)
	assert.Error(t, err)
}

func TestRawKey(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.RawKey, deriveBody(testCode, testPassword))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	var resp model.RawKeyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))

	want, err := derive.RawKey(testCode, testPassword)
	require.NoError(t, err)
	assert.Equal(t, want, resp.Key)
}

func TestBitcoinKey(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.BitcoinKey, deriveBody(testCode, testPassword))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.BitcoinKeyResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "KxSRuAB2k6BtPPDX9PDUJsVZ62Jz6XfwCdHuJ2q5pmzjpTYiJdpY", resp.WIF)
	assert.Equal(t, "1Nfe8K325NTUcyfXPwGvri5NB5NWDGdPwb", resp.Address)

	png, err := base64.StdEncoding.DecodeString(resp.QR)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(png), "\x89PNG"))
}

func TestDeriveValidationErrors(t *testing.T) {
	h := newTestHandler(t)

	tests := []struct {
		name     string
		code     string
		password string
		wantCode string
	}{
		{"short code", "AbcDEF1234", "Pass", derive.CodeCodeTooShort},
		{"short password", testCode, "Pass", derive.CodePasswordTooShort},
		{"code alphabet", "not-base58!!not-base58", testPassword, derive.CodeCodeNotBase58},
		{"password alphabet", testCode, "Passw0rd", derive.CodePasswordNotBase58},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, fn := range []http.HandlerFunc{h.RawKey, h.BitcoinKey} {
				rec := postJSON(t, fn, deriveBody(tt.code, tt.password))
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Equal(t, tt.wantCode, decodeError(t, rec).Code)
			}
		})
	}
}

func TestDeriveHashingFailed(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.RawKey, deriveBody(testCode, strings.Repeat("a", 49)))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, derive.CodeHashingFailed, decodeError(t, rec).Code)
}

func TestDeriveBadRequest(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.RawKey, "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, codeBadRequest, decodeError(t, rec).Code)

	rec = postJSON(t, h.RawKey, `{"code":"`+strings.Repeat("a", maxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeriveMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.RawKey(rec, httptest.NewRequest(http.MethodGet, "/derive/raw", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodPost, "/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDeriveRateLimited(t *testing.T) {
	t.Setenv("DERIVE_RATE_PER_MINUTE", "1")
	h := newTestHandler(t)

	rec := postJSON(t, h.RawKey, deriveBody("short", "short"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, h.RawKey, deriveBody(testCode, testPassword))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, codeRateLimited, decodeError(t, rec).Code)
}

func TestDeriveNoSlot(t *testing.T) {
	h := newTestHandler(t)
	require.NoError(t, h.slots.Acquire(context.Background(), int64(config.GetMaxConcurrent())))
	defer h.slots.Release(int64(config.GetMaxConcurrent()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, "/derive/raw", strings.NewReader(deriveBody(testCode, testPassword))).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.RawKey(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, codeUnavailable, decodeError(t, rec).Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
	}{
		{derive.ErrCodeTooShort, http.StatusBadRequest, derive.CodeCodeTooShort},
		{fmt.Errorf("%w: zero", derive.ErrInvalidScalar), http.StatusUnprocessableEntity, derive.CodeInvalidScalar},
		{fmt.Errorf("%w: boom", derive.ErrHashingFailed), http.StatusInternalServerError, derive.CodeHashingFailed},
		{&qrError{err: errors.New("too big")}, http.StatusInternalServerError, codeQRFailed},
		{errors.New("unexpected"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		status, code := errorStatus(tt.err)
		assert.Equal(t, tt.wantStatus, status, tt.err.Error())
		assert.Equal(t, tt.wantCode, code, tt.err.Error())
	}
}
