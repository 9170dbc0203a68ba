// Package versions is the filtered gem index feature.
//
// It exposes the webhook that triggers a filter run and the read endpoints
// serving the most recently published artifact. A run loads the filter
// lists from the bucket, streams the upstream index through the engine,
// and publishes the result with its checksum. Triggers are acknowledged
// immediately and processed in the background; overlapping triggers
// collapse into one run. A failed run leaves the previously published
// artifact serving.
package versions
