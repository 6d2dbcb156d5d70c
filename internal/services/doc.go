// Package services implements the business logic layer of herdbook.
// It sits between the HTTP handlers and the exporter and countdown
// packages, adding limits, tracing spans and business metrics.
//
// # Available Services
//
//   - ExportService: renders datasets and delivers them to an ArtifactSink
//   - CountdownService: classifies sale targets against an injected clock
//   - HealthService: liveness, readiness and version reporting
//
// Services accept a nil *infrastructure.BusinessMetrics, in which case
// nothing is recorded.
package services
