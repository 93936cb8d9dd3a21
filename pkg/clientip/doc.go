// Package clientip extracts the originating client IP from HTTP requests,
// taking common reverse-proxy headers into account.
package clientip
