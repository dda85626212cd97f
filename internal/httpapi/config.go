package httpapi

import "time"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
// Image uploads travel base64-encoded, so the default is larger than a typical API.
var maxBodyBytes int64 = 16 << 20

// SetMaxBodyBytes allows configuring the maximum request body size.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 16 << 20
		return
	}
	maxBodyBytes = n
}

// errorDismissAfter is how long a job error stays in the view's notice field.
var errorDismissAfter = 4 * time.Second

// SetErrorDismissAfter sets the inline error lifetime (<=0 restores the default).
func SetErrorDismissAfter(d time.Duration) {
	if d <= 0 {
		d = 4 * time.Second
	}
	errorDismissAfter = d
}

// readyTimeout bounds the remote health probe behind /readyz.
var readyTimeout = 3 * time.Second

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
