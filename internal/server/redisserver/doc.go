// Package redisserver serves the RESP2 command set over TCP.
//
// Supported commands:
//   - PING
//   - ECHO message
//   - SET key value [PX milliseconds | EX seconds]
//   - GET key
//   - RPUSH key value [value ...]
//
// Command names are matched case-sensitively. Each connection is served by
// its own goroutine; the store is the only state shared between them.
package redisserver
