// Package http implements the herdbook HTTP handlers. Handlers stay thin:
// they decode and validate requests, call a service and render the result.
// Every failure is rendered as an RFC 7807 problem through the shared
// errors.ErrorHandler.
//
// Routes mounted by the application:
//
//	POST /api/export              CSV or XLSX download, or stored with ?deliver=file
//	GET  /api/countdown?target=   classify one sale date
//	POST /api/countdown/batch     classify many sale dates against one clock reading
//	GET  /api/health              liveness
//	GET  /api/health/ready        readiness
//	GET  /api/version             build information
//	GET  /metrics                 Prometheus scrape endpoint
package http
