//go:build windows

package singleinstance

import (
	"errors"
	"testing"
)

func TestTryLockWindows(t *testing.T) {
	lock1, err := TryLock("shorty-test-mutex")
	if err != nil {
		t.Fatalf("first TryLock failed: %v", err)
	}
	lock2, err := TryLock("shorty-test-mutex")
	if !errors.Is(err, ErrAlreadyRunning) || lock2 != nil {
		t.Fatalf("second TryLock = %v, %v; want nil, ErrAlreadyRunning", lock2, err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	if err := lock1.Release(); err != nil {
		t.Fatalf("second Release should be no-op, got: %v", err)
	}
	lock3, err := TryLock("shorty-test-mutex")
	if err != nil {
		t.Fatalf("TryLock after release failed: %v", err)
	}
	lock3.Release()

	if _, err := TryLock(""); err == nil {
		t.Fatal("TryLock with empty name should fail")
	}
}
