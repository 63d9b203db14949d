// Package client talks to the babylog sync server.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic contract (see the Client interface): create a
//     remote profile, push and pull entries, watch for live updates, and
//     upload a profile photo through a presigned URL.
//  2. A gRPC implementation (see GRPCClient) over the hand-written
//     babylog.sync.v1.SyncService descriptor. It injects the access token
//     on every call, traces calls with OpenTelemetry and maps gRPC status
//     codes to sentinel errors.
//
// # Error Handling
//
// Callers match ErrUnavailable and ErrUnauthorized with errors.Is; any other
// failure is wrapped as "rpc error: ...".
//
// Concurrency & Contexts
//
// GRPCClient is safe for concurrent use. All operations honor context
// cancellation; unary calls additionally get the configured timeout.
package client
