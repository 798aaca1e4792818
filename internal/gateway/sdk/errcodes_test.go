package sdk

import (
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	got := FormatError(51, "资金不足")
	if !strings.Contains(got, "[51]") || !strings.Contains(got, "insufficient funds") {
		t.Errorf("Unexpected format: %s", got)
	}

	got = FormatError(51, "")
	if strings.Contains(got, " - ") {
		t.Errorf("Expected no raw-message suffix, got %s", got)
	}

	got = FormatError(9999, "")
	if !strings.Contains(got, "unknown error") {
		t.Errorf("Expected unknown-error fallback, got %s", got)
	}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		code        int
		network     bool
		auth        bool
		flowControl bool
		reconnect   bool
	}{
		{-1, true, false, false, true},
		{-4, false, false, true, false},
		{8, false, true, false, false},
		{16, false, true, false, false},
		{51, false, false, false, false},
		{80, false, false, false, true},
		{91, false, false, true, false},
		{101, true, false, false, true},
	}
	for _, c := range cases {
		if got := IsNetworkError(c.code); got != c.network {
			t.Errorf("IsNetworkError(%d): expected %v, got %v", c.code, c.network, got)
		}
		if got := IsAuthError(c.code); got != c.auth {
			t.Errorf("IsAuthError(%d): expected %v, got %v", c.code, c.auth, got)
		}
		if got := IsFlowControlError(c.code); got != c.flowControl {
			t.Errorf("IsFlowControlError(%d): expected %v, got %v", c.code, c.flowControl, got)
		}
		if got := ShouldReconnect(c.code); got != c.reconnect {
			t.Errorf("ShouldReconnect(%d): expected %v, got %v", c.code, c.reconnect, got)
		}
	}
}

func TestRspInfoErr(t *testing.T) {
	var nilRsp *RspInfo
	if !nilRsp.OK() {
		t.Error("Expected nil RspInfo to be OK")
	}
	if nilRsp.Err() != nil {
		t.Error("Expected nil error from nil RspInfo")
	}

	rsp := &RspInfo{ErrorID: 26, ErrorMsg: "not logged in"}
	if rsp.OK() {
		t.Error("Expected non-zero ErrorID to not be OK")
	}
	if rsp.Err() == nil {
		t.Error("Expected an error")
	}
}
