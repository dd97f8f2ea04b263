// Cache backends for responses fetched by handlers: weather forecasts, feeds, profile and
// emoji-set events.
//
// Values are opaque strings (usually JSON) stored under a namespace and key with a TTL. Includes
// an interface and implementations using redis and in-process memory.
package cachestore
