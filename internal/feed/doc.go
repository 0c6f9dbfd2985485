// Package feed parses iCalendar documents into normalized event records.
//
// [Parse] accepts raw ICS text (fetched or uploaded) and yields one
// [NormalizedEvent] per concrete occurrence, with dates converted to local
// wall-clock time at minute precision. All downstream day bucketing and
// cutoff comparisons rely on that normalization: the same calendar day
// always renders to the same date prefix regardless of the feed's
// timezone metadata.
//
// [Fetcher] retrieves feeds over HTTP with a shared rate limiter, and
// [IsAssessment] classifies events that should also yield a derived task.
package feed
