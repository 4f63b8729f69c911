package utils

import (
	"net/url"
	"strconv"
)

// QueryInt reads an integer query parameter. Missing, malformed or
// negative values fall back to def; pagination never goes backwards.
func QueryInt(q url.Values, key string, def int) int {
	v := q.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}
