// Package syncpb defines the babylog.sync.v1.SyncService gRPC contract.
//
// The service descriptor is written by hand and every message travels as a
// google.protobuf.Struct envelope, so no generated code is needed. The typed
// request/response structs below are converted with Encode and Decode.
package syncpb
