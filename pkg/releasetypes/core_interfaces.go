// Package releasetypes defines core architectural interfaces for ccreleases.
// This file contains the service contracts shared by the CLI, the interactive shell
// and the service registry.
package releasetypes

// Service defines the interface for ccreleases services that provide specific functionality.
// Services are registered at startup and initialized once before any command runs.
type Service interface {
	Name() string
	Initialize() error
}

// ServiceRegistry defines the interface for service registration and lookup.
type ServiceRegistry interface {
	GetService(name string) (Service, error)
	RegisterService(service Service) error
}
