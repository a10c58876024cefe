package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/AlexZinkM/keyderive/docs"
	"github.com/AlexZinkM/keyderive/internal/handler"
)

// SetupRouter sets up router with handlers
func SetupRouter(logger *zap.Logger) (http.Handler, error) {
	deriveHandler, err := handler.NewDeriveHandler(logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()

	// Swagger UI
	mux.HandleFunc("/swagger/", httpSwagger.WrapHandler)

	mux.HandleFunc("/health", deriveHandler.Health)

	// Derivation endpoints
	mux.HandleFunc("/derive/raw", deriveHandler.RawKey)
	mux.HandleFunc("/derive/bitcoin", deriveHandler.BitcoinKey)

	return mux, nil
}
