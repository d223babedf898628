package httpapi

import (
	"fmt"
	"net/http"

	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handler construit la chaîne complète : routes -> CORS -> OTEL (racine).
func Handler(s *Server, allowedOrigins []string) http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)

	var h http.Handler = mux

	// A. CORS (le front tourne sur une autre origine)
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "traceparent", "tracestate", "baggage"},
	})
	h = c.Handler(h)

	// B. OTEL HTTP
	h = otelhttp.NewHandler(h, "board-api", otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
		return fmt.Sprintf("HTTP %s %s", r.Method, r.URL.Path)
	}))

	return h
}
