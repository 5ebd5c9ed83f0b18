// Package http implements the HTTP request handlers of the relay
// server. It provides a thin layer between chi routing and the service
// layer, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Hosting API
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Response Shapes
//
// The relay endpoints answer with the relay envelope:
//
//	{"success": true, "message": "...", "url": "..."}
//	{"success": true, "data": [{...}, ...]}
//	{"success": false, "message": "..."}
//
// Client-input problems map to 400 before any outbound call;
// hosting-service failures map to 502. Unexpected internal errors fall
// through to the RFC 7807 Problem Details handler used by the health
// and infrastructure surfaces:
//
//	{
//	    "type": "/errors/internal",
//	    "title": "Internal Server Error",
//	    "status": 500,
//	    "detail": "...",
//	    "trace_id": "..."
//	}
//
// # Testing
//
// Handlers are tested using httptest with the service interface
// mocked, verifying both envelopes and status codes.
package http
