// Package services implements the business logic layer of the relay
// server. It provides a clean separation between HTTP handlers and the
// outbound hosting-service client, ensuring that validation rules are
// centralized and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Domain-focused methods that encapsulate business rules
//
// # Available Services
//
// The package provides these core services:
//
//	- RelayService: Validates CSV payloads and relays them to the hosting service
//	- HealthService: Provides process health and readiness checks
//
// # Error Handling
//
// Services return sentinel errors that handlers transform into HTTP
// responses:
//
//	- ErrEmptyPayload and ErrInvalidCSV reject bad input before any
//	  outbound call
//	- ErrUpstreamUnavailable wraps hosting-service failures
//
// # Testing
//
// Services are tested by substituting the HostClient interface:
//
//	service := NewRelayService(stubHost, nil, logger)
//	url, err := service.UpdateData(ctx, csvBytes)
package services
