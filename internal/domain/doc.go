// Package domain models citizen disaster reports and the incidents they
// become after triage.
//
// # Reports
//
// A [Report] arrives as JSON on the source topic or as a multipart upload
// through the HTTP API. The evidence photo travels as base64 in the "image"
// field. [NormalizeReport] trims text, canonicalizes labels
// case-insensitively ("flood" becomes "Flood"), fills in "anonymous" for a
// missing reporter, and rejects reports with neither a description nor an
// image. Unknown severity and disaster labels are kept verbatim; priority
// scoring gives them neutral weights.
//
// # Incidents
//
// An [Incident] is the stored and published record. [NewIncident] copies
// the report fields; the triage service then adds:
//
//	classified_type / confidence / explanation   heuristic classifier output
//	authenticity_score / authenticity_verdict    image authenticity scorer
//	ocean_hazard_level                           0-3, from the classified type
//	priority                                     0-100 dispatch priority
//	geo / geo_source / geo_note                  image GPS or geocoded location
//	camera / capture_note / recent_capture       EXIF metadata
//
// # ID Generation
//
// Incident IDs are "inc-" plus the first 8 bytes (hex) of SHA-256 over
// reporter|location|description|image-sha256. Replaying the same report
// produces the same ID, so store writes are upserts. See [IncidentID].
//
// # Responder Queue
//
// Responders work incidents in [SortQueue] order: descending
// ocean_hazard_level*30 + priority, so any ocean hazard outranks an
// equal-priority land incident, then oldest first.
//
// # Workflow
//
// [Incident.Verify] records a decision (confirmed, rejected, investigate,
// ocean_review) and may be repeated. [Incident.Assign] succeeds only once
// per incident. Both return an [Action] for the audit log.
package domain
