// Package credentials supplies the session headers each remote service
// expects. Headers are captured outside this program and handed in through
// a Provider, so fetchers never hold global session state.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Service names a remote API that needs session headers.
type Service string

const (
	ServiceMonarch   Service = "monarch"
	ServiceUberRides Service = "uber_rides"
	ServiceUberEats  Service = "uber_eats"
	ServiceBayWheels Service = "baywheels"
)

// DisplayName is the human-readable service name used in errors.
func (s Service) DisplayName() string {
	switch s {
	case ServiceMonarch:
		return "Monarch"
	case ServiceUberRides:
		return "Uber"
	case ServiceUberEats:
		return "Uber Eats"
	case ServiceBayWheels:
		return "Bay Wheels"
	default:
		return string(s)
	}
}

// AllServices lists every service in display order.
var AllServices = []Service{ServiceMonarch, ServiceUberRides, ServiceUberEats, ServiceBayWheels}

// ErrMissing is returned when a service has no usable headers.
var ErrMissing = errors.New("not logged in")

// minMonarchAuthLength is the shortest Authorization value that can hold a token.
const minMonarchAuthLength = 7

// Provider returns the headers to send to a service.
type Provider interface {
	Headers(ctx context.Context, service Service) (http.Header, error)
}

// Status reports whether a service has usable headers.
type Status struct {
	Service  Service `json:"service"`
	LoggedIn bool    `json:"logged_in"`
}

// Check asks the provider for each service and reports which ones are
// usable. Errors other than ErrMissing are returned.
func Check(ctx context.Context, p Provider, services ...Service) ([]Status, error) {
	if len(services) == 0 {
		services = AllServices
	}
	statuses := make([]Status, 0, len(services))
	for _, svc := range services {
		_, err := p.Headers(ctx, svc)
		switch {
		case err == nil:
			statuses = append(statuses, Status{Service: svc, LoggedIn: true})
		case errors.Is(err, ErrMissing):
			statuses = append(statuses, Status{Service: svc, LoggedIn: false})
		default:
			return nil, fmt.Errorf("check %s credentials: %w", svc, err)
		}
	}
	return statuses, nil
}

// Missing returns the services in statuses that are logged out.
func Missing(statuses []Status) []Service {
	var out []Service
	for _, s := range statuses {
		if !s.LoggedIn {
			out = append(out, s.Service)
		}
	}
	return out
}

// usable reports whether a captured header set can authenticate.
func usable(service Service, h http.Header) bool {
	if len(h) == 0 {
		return false
	}
	if service == ServiceMonarch {
		return len(strings.TrimSpace(h.Get("Authorization"))) >= minMonarchAuthLength
	}
	return true
}

func missing(service Service) error {
	return fmt.Errorf("%s: %w", service, ErrMissing)
}

// Static is an in-memory provider.
type Static map[Service]http.Header

// Headers returns a copy of the stored headers.
func (s Static) Headers(_ context.Context, service Service) (http.Header, error) {
	h := s[service]
	if !usable(service, h) {
		return nil, missing(service)
	}
	return h.Clone(), nil
}

// MonarchToken builds a Static provider holding a Monarch API token.
func MonarchToken(token string) Static {
	if token == "" {
		return Static{}
	}
	if !strings.HasPrefix(token, "Token ") {
		token = "Token " + token
	}
	return Static{ServiceMonarch: http.Header{"Authorization": []string{token}}}
}

// Chain asks each provider in turn and returns the first usable headers.
type Chain []Provider

// Headers implements Provider.
func (c Chain) Headers(ctx context.Context, service Service) (http.Header, error) {
	for _, p := range c {
		h, err := p.Headers(ctx, service)
		if err == nil {
			return h, nil
		}
		if !errors.Is(err, ErrMissing) {
			return nil, err
		}
	}
	return nil, missing(service)
}
