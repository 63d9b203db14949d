package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the sync
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// TimerKind names used in keys, events and API paths.
const (
	TimerKindSleep  = "sleep"
	TimerKindBreast = "breast"
)
