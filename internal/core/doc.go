// Package core provides the business logic for converting vendor product
// exports into the catalog product schema.
//
// The package is independent of any UI or transport layer. It is used by
// the web handlers and the command-line converter alike.
//
// # Pipeline
//
// A conversion runs these steps over an in-memory [SourceTable]:
//
//  1. [DetectPlatform] scores the source columns against every registered
//     [PlatformProfile] and reports the best one above the threshold
//  2. [SuggestMapping] maps each of the 15 target fields to a source column
//     using the platform's synonyms, then fuzzy matching
//  3. The caller may override the suggestion ([FieldMapping.Overlay])
//  4. [Transformer.Transform] copies mapped values, resolves nested category
//     strings to IDs, normalizes price, variants and image URLs, fills
//     defaults and drops incomplete rows
//  5. [Validate] reports missing required values and malformed numbers
//
// # Platform Registry
//
// Profiles are registered at init time by the platforms package using
// [RegisterPlatform]. Registration order is the detection tie-break order.
//
// # Reference Data
//
// [ReferenceData] holds the three-level category taxonomy. It is loaded once
// by the refdata package and passed to [NewTransformer] or [NewService]; it
// is never mutated afterwards, so conversions share it without locking.
//
// # Sessions
//
// [Service] keeps each analyzed upload in a [SessionStore] until it is
// downloaded, closed or expires. Concurrent conversions are bounded by a
// [ConversionLimiter].
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE007: File errors (size, format, parsing)
//   - MAP001-MAP003: Mapping errors (unknown field or platform)
//   - SES001-SES002: Session errors (expired, not converted)
//   - UPL001-UPL003: Capacity and request errors
//   - REF001-REF002: Reference data errors
package core
