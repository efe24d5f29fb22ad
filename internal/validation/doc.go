// Package validation layers schema checks, unique constraints,
// referential integrity, and clinic business rules over the raw engine.
// The validated wrappers run every check before touching the engine, so a
// rejected write leaves the store exactly as it was.
package validation
