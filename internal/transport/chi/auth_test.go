package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/gitaverse/internal/logger"
)

func TestBearerAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		keys       []string
		path       string
		header     string
		wantStatus int
	}{
		{"no keys configured", nil, "/v1/usage", "", http.StatusOK},
		{"blank keys ignored", []string{"", "  "}, "/v1/usage", "", http.StatusOK},
		{"missing header", []string{"om"}, "/v1/ask", "", http.StatusUnauthorized},
		{"basic scheme", []string{"om"}, "/v1/ask", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"wrong key", []string{"om"}, "/v1/ask", "Bearer tat-sat", http.StatusUnauthorized},
		{"key prefix", []string{"arjuna"}, "/v1/ask", "Bearer arj", http.StatusUnauthorized},
		{"scheme only", []string{"om"}, "/v1/ask", "Bearer", http.StatusUnauthorized},
		{"valid key", []string{"om"}, "/v1/ask", "Bearer om", http.StatusOK},
		{"lowercase scheme", []string{"om"}, "/v1/ask", "bearer om", http.StatusOK},
		{"second of two keys", []string{"om", "tat-sat"}, "/v1/verses/2/47", "Bearer tat-sat", http.StatusOK},
		{"health is public", []string{"om"}, "/health", "", http.StatusOK},
		{"metrics is public", []string{"om"}, "/metrics", "", http.StatusOK},
	}

	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, http.NoBody)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()
			BearerAuthMiddleware(tc.keys)(ok).ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status: got %d, want %d", rr.Code, tc.wantStatus)
			}
			if tc.wantStatus != http.StatusUnauthorized {
				return
			}
			var resp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if resp.Code != CodeUnauthorized {
				t.Errorf("code: got %s, want %s", resp.Code, CodeUnauthorized)
			}
		})
	}
}

func TestBearerAuthMiddleware_AnnotatesRejection(t *testing.T) {
	ctx := logpkg.ContextWithLogger(t.Context(), zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", http.NoBody).WithContext(ctx)
	req.Header.Set("Authorization", "Token om")

	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { t.Fatal("next must not run") })
	BearerAuthMiddleware([]string{"om"})(next).ServeHTTP(httptest.NewRecorder(), req)

	fields := logpkg.Annotations(ctx)
	if len(fields) != 1 || fields[0].Key != "auth_rejected" {
		t.Fatalf("expected auth_rejected annotation, got %v", fields)
	}
	if fields[0].String != "authorization header must use Bearer scheme" {
		t.Errorf("unexpected reason %q", fields[0].String)
	}
}
