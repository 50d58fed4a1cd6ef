package docker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProbe(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   ServiceStatus
	}{
		{name: "healthy", status: http.StatusOK, want: ServiceUp},
		{name: "unhealthy", status: http.StatusServiceUnavailable, want: ServiceDown},
		{name: "not found", status: http.StatusNotFound, want: ServiceDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/health" {
					w.WriteHeader(http.StatusNotFound)
					return
				}
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			if got := Probe(context.Background(), srv.URL+"/health", time.Second); got != tt.want {
				t.Errorf("Probe() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProbeUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if got := Probe(context.Background(), url, 200*time.Millisecond); got != ServiceDown {
		t.Errorf("Probe() = %v, want DOWN", got)
	}
}

func TestProbeBadURL(t *testing.T) {
	if got := Probe(context.Background(), "://bad", 0); got != ServiceUnknown {
		t.Errorf("Probe() = %v, want UNKNOWN", got)
	}
}

func TestServiceStatusString(t *testing.T) {
	if ServiceUp.String() != "UP" || ServiceDown.String() != "DOWN" || ServiceUnknown.String() != "UNKNOWN" {
		t.Error("unexpected ServiceStatus string")
	}
}
