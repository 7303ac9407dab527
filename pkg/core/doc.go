// Package core defines the shared language of the EduMetric client.
//
// This package contains:
//   - Drill-down requests (FilterKind, Scope, FilterRequest)
//   - Student records and projections (Student, StudentSummary)
//   - Prediction and analytics payloads returned by the server
//   - The JSON response envelope used by every endpoint
//
// The Golden Rule: pkg/core imports ONLY third-party validation and stdlib.
// All other packages depend on core, not the reverse.
package core
