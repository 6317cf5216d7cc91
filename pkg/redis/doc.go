// Package redis connects to the Redis server that caches explicit permission
// grants.
//
// Connect parses a redis:// URL, pings the server and retries until it
// answers or the connect timeout elapses. Healthcheck returns a probe
// suitable for the health endpoint.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
// Config fields are populated from environment variables via
// github.com/caarlos0/env.
package redis
