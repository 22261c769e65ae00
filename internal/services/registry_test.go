package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	name            string
	initializeCalls *[]string
	initializeError error
}

func (m *mockService) Name() string {
	return m.name
}

func (m *mockService) Initialize() error {
	if m.initializeCalls != nil {
		*m.initializeCalls = append(*m.initializeCalls, m.name)
	}
	return m.initializeError
}

func TestRegistry_NewRegistry(t *testing.T) {
	registry := NewRegistry()

	assert.NotNil(t, registry)
	assert.Empty(t, registry.services)
}

func TestRegistry_RegisterService(t *testing.T) {
	registry := NewRegistry()

	require.NoError(t, registry.RegisterService(&mockService{name: "one"}))
	err := registry.RegisterService(&mockService{name: "one"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_GetService(t *testing.T) {
	registry := NewRegistry()
	svc := &mockService{name: "one"}
	require.NoError(t, registry.RegisterService(svc))

	got, err := registry.GetService("one")
	require.NoError(t, err)
	assert.Same(t, svc, got)

	_, err = registry.GetService("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_InitializeAllInOrder(t *testing.T) {
	registry := NewRegistry()
	var calls []string
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, registry.RegisterService(&mockService{name: name, initializeCalls: &calls}))
	}

	require.NoError(t, registry.InitializeAll())
	assert.Equal(t, []string{"c", "a", "b"}, calls)
	assert.Equal(t, []string{"a", "b", "c"}, registry.ServiceNames())
}

func TestRegistry_InitializeAllError(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterService(&mockService{name: "broken", initializeError: errors.New("boom")}))

	err := registry.InitializeAll()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize service broken")
}

func TestGetGlobalService(t *testing.T) {
	original := GetGlobalRegistry()
	defer SetGlobalRegistry(original)

	registry := NewRegistry()
	SetGlobalRegistry(registry)
	require.NoError(t, registry.RegisterService(&mockService{name: "mock"}))

	svc, err := getGlobalService[*mockService]("mock")
	require.NoError(t, err)
	assert.Equal(t, "mock", svc.Name())

	_, err = getGlobalService[*SearchService]("mock")
	assert.Error(t, err)

	_, err = getGlobalService[*mockService]("absent")
	assert.Error(t, err)
}
