package models

import (
	"fmt"
	"strings"
)

// Capability is a named permission attached to a caller.
type Capability uint8

const (
	CapabilityAdmin Capability = 1 << iota
	CapabilitySupplier
	CapabilityCustomer
)

var allCapabilities = []Capability{CapabilityAdmin, CapabilitySupplier, CapabilityCustomer}

func (c Capability) String() string {
	switch c {
	case CapabilityAdmin:
		return "admin"
	case CapabilitySupplier:
		return "supplier"
	case CapabilityCustomer:
		return "customer"
	default:
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
}

func ParseCapability(s string) (Capability, error) {
	for _, c := range allCapabilities {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", s)
}

// Capabilities is the set of capabilities a caller holds.
type Capabilities uint8

func NewCapabilities(caps ...Capability) Capabilities {
	var set Capabilities
	for _, c := range caps {
		set |= Capabilities(c)
	}
	return set
}

func (s Capabilities) Has(c Capability) bool {
	return s&Capabilities(c) != 0
}

func (s Capabilities) With(c Capability) Capabilities {
	return s | Capabilities(c)
}

func (s Capabilities) Without(c Capability) Capabilities {
	return s &^ Capabilities(c)
}

// Names lists the held capabilities in a stable order.
func (s Capabilities) Names() []string {
	names := make([]string, 0, len(allCapabilities))
	for _, c := range allCapabilities {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	return names
}

// ParseCapabilities rejects unknown names instead of skipping them.
func ParseCapabilities(names []string) (Capabilities, error) {
	var set Capabilities
	for _, name := range names {
		c, err := ParseCapability(name)
		if err != nil {
			return 0, err
		}
		set = set.With(c)
	}
	return set, nil
}

// Identity is the authenticated caller resolved from a session token.
type Identity struct {
	UserID       uint         `json:"user_id"`
	Username     string       `json:"username"`
	Capabilities Capabilities `json:"-"`
}

func (i *Identity) Can(c Capability) bool {
	return i != nil && i.Capabilities.Has(c)
}
