package eventstorage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCallbackRegistry_FiresInRegistrationOrder(t *testing.T) {
	var registry callbackRegistry
	var order []int

	_, err := registry.register(DataWriterCallBackFunc(func(string, Metadata, Trailer) {
		order = append(order, 1)
	}))
	require.NoError(t, err)
	_, err = registry.register(DataWriterCallBackFunc(func(string, Metadata, Trailer) {
		order = append(order, 2)
	}))
	require.NoError(t, err)

	registry.fire("file.data", Metadata{}, Trailer{})

	require.Equal(t, []int{1, 2}, order)
}

func TestCallbackRegistry_RejectsNil(t *testing.T) {
	var registry callbackRegistry
	_, err := registry.register(nil)
	require.Error(t, err)
}

func TestCallbackRegistry_UnregisterStopsFiring(t *testing.T) {
	var registry callbackRegistry
	fired := false

	handle, err := registry.register(DataWriterCallBackFunc(func(string, Metadata, Trailer) {
		fired = true
	}))
	require.NoError(t, err)

	registry.unregister(handle)
	registry.fire("file.data", Metadata{}, Trailer{})

	require.False(t, fired)
}

func TestCallbackRegistry_UnregisterUnknownHandleIsNoOp(t *testing.T) {
	var registry callbackRegistry
	require.NotPanics(t, func() { registry.unregister(999) })
}

func TestCallbackRegistry_HandlesNonComparableCallbacks(t *testing.T) {
	// DataWriterCallBackFunc closures are func values: comparing two with
	// == panics at runtime, which is why unregister keys off a handle
	// instead of the callback value itself.
	var registry callbackRegistry
	h1, err := registry.register(DataWriterCallBackFunc(func(string, Metadata, Trailer) {}))
	require.NoError(t, err)
	h2, err := registry.register(DataWriterCallBackFunc(func(string, Metadata, Trailer) {}))
	require.NoError(t, err)

	require.NotPanics(t, func() {
		registry.unregister(h1)
		registry.unregister(h2)
	})
}
