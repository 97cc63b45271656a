// Package queryutil implements the pure URL-decoding routine that the
// bytes of httpcore's Request.RawQueryWithMarker are handed to: turning a raw, percent-encoded
// query string into decoded key/value pairs. It is deliberately outside
// package httpcore -- the parser core only ever hands back the raw
// query bytes it found on the wire; decoding them is an external
// collaborator's job, per the parser's scope.
package queryutil

import "net/url"

// Get decodes rawQuery (with or without a leading '?') and returns the
// first value bound to key, along with whether key was present at all.
// It mirrors the single-key lookup a router typically wants without
// forcing callers to build a full url.Values for one field.
func Get(rawQuery []byte, key string) (string, bool) {
	values, err := url.ParseQuery(trimLeadingMarker(rawQuery))
	if err != nil {
		return "", false
	}
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// Values decodes rawQuery into the standard library's url.Values,
// for callers that need every value of every key rather than a single
// lookup.
func Values(rawQuery []byte) (url.Values, error) {
	return url.ParseQuery(trimLeadingMarker(rawQuery))
}

func trimLeadingMarker(rawQuery []byte) string {
	if len(rawQuery) > 0 && rawQuery[0] == '?' {
		rawQuery = rawQuery[1:]
	}
	return string(rawQuery)
}
