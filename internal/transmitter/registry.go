package transmitter

import (
	"github.com/customs-docflow/internal/domain/credential"
)

// ErrUnsupportedServiceType indicates no transmitter is registered for a service type
type ErrUnsupportedServiceType struct {
	ServiceType credential.ServiceType
}

func (e ErrUnsupportedServiceType) Error() string {
	return "no transmitter registered for service type: " + string(e.ServiceType)
}

// Registry maps service types to transmitter instances. It is populated once
// during startup and read-only afterwards, so lookups need no locking.
type Registry struct {
	transmitters map[credential.ServiceType]Transmitter
}

// NewRegistry creates an empty transmitter registry
func NewRegistry() *Registry {
	return &Registry{
		transmitters: make(map[credential.ServiceType]Transmitter),
	}
}

// Register binds a service type to a transmitter, replacing any previous binding
func (r *Registry) Register(serviceType credential.ServiceType, t Transmitter) {
	r.transmitters[serviceType] = t
}

// Resolve returns the transmitter for a service type.
// Returns ErrUnsupportedServiceType when none is registered.
func (r *Registry) Resolve(serviceType credential.ServiceType) (Transmitter, error) {
	t, ok := r.transmitters[serviceType]
	if !ok {
		return nil, ErrUnsupportedServiceType{ServiceType: serviceType}
	}
	return t, nil
}
