//go:build !swagger

package httpapi

import (
	"net/http"
	"testing"
)

func TestSwaggerNotMountedByDefault(t *testing.T) {
	if w := do(t, NewMux(Services{}), http.MethodGet, "/swagger/index.html", ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}
