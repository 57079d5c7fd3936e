// Package dailyquote builds a small "daily quote" widget: a random quote paired with a
// monochrome colour scheme, fetched once per day and cached on disk under a date-keyed file.
//
// The package talks to three public read-only endpoints (random colour, colour scheme, random
// quote), persists the day's result as JSON, and turns it into a Widget that can be rendered
// to a terminal, rasterised to a 296×152 PNG, or pushed to a Quote/0 e-ink display.
//
// Features
//   - Functional options for every endpoint, HTTP client, limiter and logger
//   - Per-host minimum-interval rate limiting (pluggable, context aware)
//   - Error normalisation for JSON and plain-text error bodies
//   - One record file per day; yesterday's record is removed opportunistically
//
// Endpoints:
//   - https://colors.zoodinkers.com/api
//   - https://www.thecolorapi.com/docs
//   - https://github.com/lukePeavey/quotable
//   - https://dot.mindreset.tech/docs/service/studio/api/text_api
package dailyquote
