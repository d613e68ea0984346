// Package loadbalance provides load balancing strategies for distributing
// RPC requests across multiple service instances.
package loadbalance

import "protorpc/registry"

// Balancer is the interface for load balancing strategies.
// client.Discovered calls Pick() each time a Channel opens a new
// connection, to select the instance to dial.
type Balancer interface {
	// Pick selects one instance from the available list.
	// May be called from several goroutines — must be goroutine-safe.
	Pick(instances []registry.ServiceInstance) (*registry.ServiceInstance, error)

	// Name returns the strategy name (for logging/debugging).
	Name() string
}
