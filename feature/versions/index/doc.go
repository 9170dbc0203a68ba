// Package index handles the line format of the RubyGems versions index.
//
// A record line is whitespace-separated:
//
//	<gem name> <versions>[,<versions>]* <md5> [<extra field>...]
//
// The first token is the gem name and everything after it is the payload,
// kept verbatim so unknown trailing fields survive a round trip. A leading
// '-' on a version entry marks it yanked and is part of the version token.
//
// StripVersions rewrites only the version-list field to the sentinel "0",
// shrinking the output for consumers that resolve exact versions elsewhere.
package index
