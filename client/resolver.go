package client

import (
	"fmt"

	"protorpc/loadbalance"
	"protorpc/registry"
)

// Resolver produces the endpoint a Channel should connect (or reconnect)
// to. It is consulted once per connect, never mid-call — resolving a
// fresh address on reconnect is plain address selection, not a retry
// policy (spec Non-goals exclude the latter, not the former).
type Resolver interface {
	Resolve() (addr string, err error)
}

type staticResolver string

func (s staticResolver) Resolve() (string, error) { return string(s), nil }

// Static always resolves to the same fixed "host:port" — the literal
// contract of spec §4.6.
func Static(addr string) Resolver { return staticResolver(addr) }

// discoveredResolver resolves a service name through a registry and picks
// one instance with a balancer, adapted from the teacher's client.Client
// (registry.Discover + balancer.Pick).
type discoveredResolver struct {
	registry    registry.Registry
	balancer    loadbalance.Balancer
	serviceName string
}

// Discovered resolves serviceName's address through reg on every connect,
// choosing among the returned instances with bal.
func Discovered(reg registry.Registry, bal loadbalance.Balancer, serviceName string) Resolver {
	return &discoveredResolver{registry: reg, balancer: bal, serviceName: serviceName}
}

func (r *discoveredResolver) Resolve() (string, error) {
	instances, err := r.registry.Discover(r.serviceName)
	if err != nil {
		return "", fmt.Errorf("client: discover %q: %w", r.serviceName, err)
	}
	instance, err := r.balancer.Pick(instances)
	if err != nil {
		return "", fmt.Errorf("client: pick instance for %q: %w", r.serviceName, err)
	}
	return instance.Addr, nil
}
