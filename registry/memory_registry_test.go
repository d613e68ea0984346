package registry

import "testing"

func TestMemoryRegistryRegisterAndDiscover(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.Register("Svc", ServiceInstance{Addr: "10.0.0.1:1"}, 0); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	instances, err := r.Discover("Svc")
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(instances) != 1 || instances[0].Addr != "10.0.0.1:1" {
		t.Fatalf("unexpected instances: %v", instances)
	}
}

func TestMemoryRegistryRegisterIsIdempotent(t *testing.T) {
	r := NewMemoryRegistry()
	r.Register("Svc", ServiceInstance{Addr: "10.0.0.1:1"}, 0)
	r.Register("Svc", ServiceInstance{Addr: "10.0.0.1:1"}, 0)
	instances, _ := r.Discover("Svc")
	if len(instances) != 1 {
		t.Fatalf("expected Register to dedupe by addr, got %d instances", len(instances))
	}
}

func TestMemoryRegistryDeregister(t *testing.T) {
	r := NewMemoryRegistry()
	r.Register("Svc", ServiceInstance{Addr: "10.0.0.1:1"}, 0)
	if err := r.Deregister("Svc", "10.0.0.1:1"); err != nil {
		t.Fatalf("Deregister failed: %v", err)
	}
	instances, _ := r.Discover("Svc")
	if len(instances) != 0 {
		t.Fatalf("expected no instances after Deregister, got %d", len(instances))
	}
}

func TestMemoryRegistryWatchReceivesUpdates(t *testing.T) {
	r := NewMemoryRegistry()
	ch := r.Watch("Svc")

	r.Register("Svc", ServiceInstance{Addr: "10.0.0.1:1"}, 0)

	select {
	case instances := <-ch:
		if len(instances) != 1 {
			t.Fatalf("expected 1 instance in watch update, got %d", len(instances))
		}
	default:
		t.Fatal("expected a watch update after Register")
	}
}

func TestMemoryRegistryDiscoverUnknownServiceIsEmpty(t *testing.T) {
	r := NewMemoryRegistry()
	instances, err := r.Discover("Nope")
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(instances) != 0 {
		t.Fatalf("expected no instances, got %d", len(instances))
	}
}
