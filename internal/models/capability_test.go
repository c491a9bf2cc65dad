package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilities_SetOperations(t *testing.T) {
	caps := NewCapabilities(CapabilityAdmin, CapabilityCustomer)

	assert.True(t, caps.Has(CapabilityAdmin))
	assert.True(t, caps.Has(CapabilityCustomer))
	assert.False(t, caps.Has(CapabilitySupplier))

	caps = caps.With(CapabilitySupplier).Without(CapabilityCustomer)
	assert.Equal(t, []string{"admin", "supplier"}, caps.Names())
}

func TestParseCapabilities(t *testing.T) {
	caps, err := ParseCapabilities([]string{"Customer", "supplier"})
	require.NoError(t, err)
	assert.Equal(t, NewCapabilities(CapabilitySupplier, CapabilityCustomer), caps)

	_, err = ParseCapabilities([]string{"customer", "is_admin"})
	assert.Error(t, err)
}

func TestIdentity_Can(t *testing.T) {
	var nobody *Identity
	assert.False(t, nobody.Can(CapabilityCustomer))

	id := &Identity{UserID: 7, Capabilities: NewCapabilities(CapabilityCustomer)}
	assert.True(t, id.Can(CapabilityCustomer))
	assert.False(t, id.Can(CapabilityAdmin))
}

func TestUser_Identity(t *testing.T) {
	u := &User{Username: "maria", IsSupplier: true}
	u.ID = 12

	id := u.Identity()
	assert.Equal(t, uint(12), id.UserID)
	assert.Equal(t, "maria", id.Username)
	assert.Equal(t, []string{"supplier"}, id.Capabilities.Names())
}

func TestUser_Password(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("s3cret-pass"))

	assert.NoError(t, u.CheckPassword("s3cret-pass"))
	assert.Error(t, u.CheckPassword("wrong"))
}

func TestProduct_Available(t *testing.T) {
	assert.False(t, (&Product{IsActive: true, Stock: 0}).Available())
	assert.False(t, (&Product{IsActive: false, Stock: 5}).Available())
	assert.True(t, (&Product{IsActive: true, Stock: 5}).Available())
}
