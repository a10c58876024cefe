package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/AlexZinkM/keyderive/derive"
	"github.com/AlexZinkM/keyderive/internal/common"
	"github.com/AlexZinkM/keyderive/internal/config"
	"github.com/AlexZinkM/keyderive/internal/model"
)

const (
	maxBodyBytes = 4 << 10

	codeBadRequest  = "BAD_REQUEST"
	codeRateLimited = "RATE_LIMITED"
	codeUnavailable = "UNAVAILABLE"
	codeQRFailed    = "QR_FAILED"
)

// DeriveHandler serves key derivation over HTTP.
// Each derivation holds about 19 MiB for Argon2, so the number running at once is bounded.
type DeriveHandler struct {
	logger  *zap.Logger
	slots   *semaphore.Weighted
	limiter *rate.Limiter
	qrSize  int
}

// NewDeriveHandler creates a new DeriveHandler with config values
func NewDeriveHandler(logger *zap.Logger) (*DeriveHandler, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	limit, burst := rate.Inf, 1
	if perMinute := config.GetRatePerMinute(); perMinute > 0 {
		limit, burst = rate.Limit(float64(perMinute)/60), perMinute
	}

	return &DeriveHandler{
		logger:  logger,
		slots:   semaphore.NewWeighted(int64(config.GetMaxConcurrent())),
		limiter: rate.NewLimiter(limit, burst),
		qrSize:  config.GetQRSize(),
	}, nil
}

// RawKey handles POST /derive/raw
// @Summary      Derive raw key
// @Description  Derives a 64 character hex key: SHA3-256 of the Argon2id hash of code+password
// @Tags         derive
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeriveRequest  true  "Code and password"
// @Success      200      {object}  model.RawKeyResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /derive/raw [post]
func (h *DeriveHandler) RawKey(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "raw", func(req model.DeriveRequest) (any, error) {
		key, err := derive.RawKey(req.Code, req.Password)
		if err != nil {
			return nil, err
		}
		return model.RawKeyResponse{Key: key}, nil
	})
}

// BitcoinKey handles POST /derive/bitcoin
// @Summary      Derive bitcoin private key
// @Description  Derives a compressed mainnet private key in WIF with its P2PKH address and a QR code of the WIF
// @Tags         derive
// @Accept       json
// @Produce      json
// @Param        request  body      model.DeriveRequest  true  "Code and password"
// @Success      200      {object}  model.BitcoinKeyResponse
// @Failure      400      {object}  model.ErrorResponse
// @Failure      422      {object}  model.ErrorResponse
// @Failure      500      {object}  model.ErrorResponse
// @Router       /derive/bitcoin [post]
func (h *DeriveHandler) BitcoinKey(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "bitcoin", func(req model.DeriveRequest) (any, error) {
		wif, address, err := derive.BitcoinAddress(req.Code, req.Password)
		if err != nil {
			return nil, err
		}

		qr, err := common.QRCodePNG(wif, h.qrSize)
		if err != nil {
			return nil, &qrError{err: err}
		}

		return model.BitcoinKeyResponse{
			WIF:     wif,
			Address: address,
			QR:      qr,
		}, nil
	})
}

// Health handles GET /health
// @Summary      Health check
// @Tags         service
// @Produce      json
// @Success      200  {object}  model.HealthResponse
// @Router       /health [get]
func (h *DeriveHandler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. Should be GET", http.StatusMethodNotAllowed)
		return
	}
	common.WriteJSON(w, http.StatusOK, model.HealthResponse{Status: "ok"})
}

// serve runs the shared request flow: method check, rate limit, body decode,
// derivation slot, response. Secrets and keys are never logged.
func (h *DeriveHandler) serve(w http.ResponseWriter, r *http.Request, endpoint string, fn func(model.DeriveRequest) (any, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed. Should be POST", http.StatusMethodNotAllowed)
		return
	}

	if !h.limiter.Allow() {
		common.WriteError(w, http.StatusTooManyRequests, "too many derivation requests", codeRateLimited)
		return
	}

	var req model.DeriveRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid request body: "+err.Error(), codeBadRequest)
		return
	}

	if err := h.slots.Acquire(r.Context(), 1); err != nil {
		common.WriteError(w, http.StatusServiceUnavailable, "no derivation slot available: "+err.Error(), codeUnavailable)
		return
	}
	start := time.Now()
	resp, err := fn(req)
	h.slots.Release(1)

	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Duration("took", time.Since(start)),
	}
	if err != nil {
		status, code := errorStatus(err)
		fields = append(fields, zap.String("code", code))
		if status >= http.StatusInternalServerError {
			h.logger.Error("derivation failed", append(fields, zap.Error(err))...)
		} else {
			h.logger.Debug("derivation rejected", fields...)
		}
		common.WriteError(w, status, err.Error(), code)
		return
	}

	h.logger.Info("derivation completed", fields...)
	common.WriteJSON(w, http.StatusOK, resp)
}

// errorStatus maps a derivation error to HTTP status and error code
func errorStatus(err error) (int, string) {
	var qrErr *qrError
	if errors.As(err, &qrErr) {
		return http.StatusInternalServerError, codeQRFailed
	}

	code := derive.ErrorCode(err)
	switch {
	case code == derive.CodeInvalidScalar:
		return http.StatusUnprocessableEntity, code
	case derive.IsInputError(err):
		return http.StatusBadRequest, code
	case code == derive.CodeHashingFailed:
		return http.StatusInternalServerError, code
	}
	return http.StatusInternalServerError, "INTERNAL"
}

// qrError marks a failure to render the QR code after a successful derivation
type qrError struct {
	err error
}

func (e *qrError) Error() string {
	return e.err.Error()
}

func (e *qrError) Unwrap() error {
	return e.err
}
