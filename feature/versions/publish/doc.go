// Package publish stores filtered index artifacts in object storage.
//
// Every successful run uploads a timestamped artifact together with a
// sibling .sha256 checksum object, then repoints the "latest" aliases with
// server-side copies. The aliases are only touched after both timestamped
// uploads succeed, so a failed run keeps serving the previous artifact.
// Old timestamped artifacts beyond the configured keep-count are pruned
// after each publish.
package publish
