package google

import "errors"

var (
	// ErrUnauthenticated means no Google credential is stored; the user must
	// go through the consent flow before calendar calls can be made.
	ErrUnauthenticated = errors.New("google calendar is not connected, authorization is required")

	// ErrAuthExchange means the authorization-code exchange failed; the user
	// must restart the consent flow.
	ErrAuthExchange = errors.New("google authorization code exchange failed")

	// ErrAuthRefresh means the refresh-token grant was rejected (revoked or
	// invalid); the stored credential has been cleared.
	ErrAuthRefresh = errors.New("google token refresh failed")

	// ErrAuthExpired means a live access token was rejected mid-call; the
	// connection must be re-established.
	ErrAuthExpired = errors.New("google access token rejected, reauthorization is required")

	// ErrEventNotFound maps a remote 404: the event no longer exists.
	ErrEventNotFound = errors.New("google calendar event not found")

	// ErrRemoteUnavailable covers network failures, timeouts, and 5xx
	// responses; transient, safe to retry on the next cycle.
	ErrRemoteUnavailable = errors.New("google calendar is unavailable")
)
