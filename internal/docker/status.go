package docker

import (
	"context"
	"net/http"
	"time"
)

// ServiceStatus represents the status of a service
type ServiceStatus int

const (
	ServiceUnknown ServiceStatus = iota
	ServiceUp
	ServiceDown
)

// DefaultProbeTimeout bounds a single health check
const DefaultProbeTimeout = 2 * time.Second

func (s ServiceStatus) String() string {
	switch s {
	case ServiceUp:
		return "UP"
	case ServiceDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Probe reports whether url answers 200 within timeout
func Probe(ctx context.Context, url string, timeout time.Duration) ServiceStatus {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	client := &http.Client{
		Timeout: timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return ServiceUnknown
	}

	resp, err := client.Do(req)
	if err != nil {
		return ServiceDown
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		return ServiceUp
	}

	return ServiceDown
}
