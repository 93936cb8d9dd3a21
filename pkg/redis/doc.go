// Package redis connects to a Redis server with retry and exposes a
// healthcheck helper. Sessions and password reset token tracking sit on top
// of the returned client.
package redis
