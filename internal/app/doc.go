// Package app wires herdbook together: configuration, logging, telemetry,
// the role checker, the alerts hub, the services and the HTTP router.
//
// # Initialization Flow
//
//  1. Resolve and create the data, exports and logs directories
//  2. Initialize OpenTelemetry and the business metrics
//  3. Build the role checker from the auth section
//  4. Create the alerts hub and the services
//  5. Mount middleware and routes, then create the HTTP server
//
// # Lifecycle
//
// Start runs the HTTP server and the alerts hub under one errgroup. When the
// context is cancelled, or either of them fails, the server is shut down
// within Server.ShutdownTimeout and telemetry is flushed. Run wires Start to
// SIGINT and SIGTERM.
package app
