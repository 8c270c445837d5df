package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

func (s *Server) auditLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry := AuditLogEntry{
			Timestamp: s.timeNow(),
			Method:    r.Method,
			Path:      r.URL.Path,
			Handler:   handlerName(r.URL.Path, r.Method),
		}

		if strings.Contains(r.URL.Path, "/orders/") {
			parts := strings.Split(r.URL.Path, "/")
			for i, part := range parts {
				if part == "orders" && i+1 < len(parts) {
					entry.OrderID = parts[i+1]
					break
				}
			}
		}

		// Login bodies carry credentials, validate/logout bodies carry
		// tokens. Neither belongs in the audit stream.
		captureBody := !strings.Contains(r.URL.Path, "/auth/")

		if captureBody && r.Body != nil {
			requestBody, _ := io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewBuffer(requestBody))
			entry.Request = string(requestBody)

			if entry.OrderID != "" && r.Method == http.MethodPatch {
				var statusRequest struct {
					Status string `json:"status"`
				}
				if err := json.Unmarshal(requestBody, &statusRequest); err == nil {
					entry.NewStatus = statusRequest.Status
				}
			}
		}

		wrw := wrapResponseWriter(w)

		next.ServeHTTP(wrw, r)

		entry.StatusCode = wrw.status
		if captureBody {
			entry.Response = wrw.body.String()
		}

		s.audit.LogEntry(r.Context(), entry)
	})
}

func handlerName(path string, method string) string {
	switch {
	case strings.HasSuffix(path, "/auth/login"):
		return "handleLogin"
	case strings.HasSuffix(path, "/auth/logout"):
		return "handleLogout"
	case strings.HasSuffix(path, "/auth/validate"):
		return "handleValidate"
	case strings.HasSuffix(path, "/dashboard"):
		return "handleDashboard"
	case strings.Contains(path, "/orders"):
		switch method {
		case http.MethodPost:
			return "handleCreateOrder"
		case http.MethodPatch:
			return "handleUpdateOrder"
		case http.MethodDelete:
			return "handleDeleteOrder"
		}
	case strings.HasSuffix(path, "/health"):
		return "handleHealth"
	}
	return "unknown"
}
