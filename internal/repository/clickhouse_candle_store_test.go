package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"testing"

	"candlerelay/internal/domain/fault"
)

func TestMapStoreErrTimeout(t *testing.T) {
	err := mapStoreErr(context.DeadlineExceeded)
	if !fault.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "query timeout") {
		t.Fatalf("timeout not distinguishable: %q", err.Error())
	}
}

func TestMapStoreErrCanceled(t *testing.T) {
	err := mapStoreErr(context.Canceled)
	if !fault.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}

func TestMapStoreErrBadConn(t *testing.T) {
	err := mapStoreErr(driver.ErrBadConn)
	if !fault.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot connect") {
		t.Fatalf("connection failure not distinguishable: %q", err.Error())
	}
}

func TestMapStoreErrNetError(t *testing.T) {
	cause := &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	err := mapStoreErr(cause)
	if !fault.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "cannot connect") {
		t.Fatalf("connection failure not distinguishable: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not preserved")
	}
}

func TestMapStoreErrGeneric(t *testing.T) {
	err := mapStoreErr(errors.New("code: 60, message: table does not exist"))
	if !fault.IsUnavailable(err) {
		t.Fatalf("expected unavailable, got %v", err)
	}
}
