package sdk

import "fmt"

// Gateway error codes and their descriptions, collected from the vendor API
// documentation. Negative codes are returned synchronously by the binding,
// positive codes arrive in RspInfo.
var errorCodes = map[int]string{
	0:  "ok",
	-1: "not connected",
	-2: "initialization incomplete",
	-3: "request queue full",
	-4: "flow control limit exceeded",

	3:  "member does not exist",
	4:  "member id does not exist",
	6:  "investor does not exist",
	7:  "trading code does not exist",
	8:  "invalid password",
	16: "client authentication failed",
	17: "client authentication timed out",
	18: "invalid client authentication info",
	19: "client not bound to authentication",
	26: "not logged in",
	63: "no trading seat available",
	90: "duplicate login request",

	22: "order does not exist",
	31: "order already submitted",
	36: "cancel already submitted",
	37: "order already canceled",
	40: "too many orders",
	41: "duplicate order reference",
	42: "unreasonable order price",
	43: "unreasonable order volume",
	44: "order price outside limit band",
	51: "insufficient funds",
	52: "insufficient position",
	53: "position limit exceeded",
	54: "invalid order type",
	55: "invalid combination order",
	56: "invalid hedge flag",
	57: "invalid offset flag",
	58: "invalid direction",

	61: "account locked",
	62: "account closed",
	64: "insufficient account margin",
	65: "negative account equity",

	70: "instrument does not exist",
	71: "instrument suspended",
	72: "instrument expired",
	73: "outside trading hours",
	74: "instrument not tradable",

	80: "exchange system error",
	81: "exchange network error",
	82: "exchange seat error",

	91: "query rate too high",
	92: "query result does not exist",

	100: "network connect failed",
	101: "network read/write failed",
	102: "heartbeat receive timeout",
	103: "heartbeat send timeout",
}

// FormatError renders a gateway error code with its known description and the
// raw message, when present.
func FormatError(code int, msg string) string {
	desc, ok := errorCodes[code]
	if !ok {
		desc = "unknown error"
	}
	if msg == "" {
		return fmt.Sprintf("gateway error [%d]: %s", code, desc)
	}
	return fmt.Sprintf("gateway error [%d]: %s - %s", code, desc, msg)
}

// IsNetworkError reports whether the code indicates a transport problem.
func IsNetworkError(code int) bool {
	switch code {
	case -1, 100, 101, 102, 103:
		return true
	}
	return false
}

// IsAuthError reports whether the code indicates bad credentials or a failed
// client authentication. Auth errors are not worth reconnecting over.
func IsAuthError(code int) bool {
	switch code {
	case 3, 4, 6, 7, 8, 16, 17, 18, 19:
		return true
	}
	return false
}

// IsFlowControlError reports whether the code indicates the gateway's request
// throttle rejected the call.
func IsFlowControlError(code int) bool {
	switch code {
	case -3, -4, 91:
		return true
	}
	return false
}

// ShouldReconnect reports whether the error class is one a reconnect can fix.
func ShouldReconnect(code int) bool {
	if IsNetworkError(code) {
		return true
	}
	switch code {
	case 80, 81, 82:
		return true
	}
	return false
}
