// SPDX-License-Identifier: MPL-2.0

//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package store

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestLockCreatesStoreAndFile(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	lock, err := s.Lock(Global)
	if err != nil {
		t.Fatalf("Lock() error: %v", err)
	}
	defer lock.Release()

	if _, err := os.Stat(filepath.Join(s.Dir(Global), lockFileName)); err != nil {
		t.Errorf("lock file missing: %v", err)
	}

	names, err := s.List(Global)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("lock file listed as module: %v", names)
	}
}

func TestLockBlocksConcurrent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	lockA, err := s.Lock(Local)
	if err != nil {
		t.Fatalf("Lock A: %v", err)
	}

	var acquired atomic.Bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		lockB, bErr := s.Lock(Local)
		if bErr != nil {
			t.Errorf("Lock B: %v", bErr)
			return
		}
		acquired.Store(true)
		lockB.Release()
	}()

	time.Sleep(100 * time.Millisecond)
	if acquired.Load() {
		t.Fatal("second Lock() returned while the first was held")
	}

	lockA.Release()

	select {
	case <-done:
		if !acquired.Load() {
			t.Fatal("second Lock() never acquired")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the second Lock()")
	}
}

func TestLockReleaseIdempotent(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	lock, err := s.Lock(Local)
	if err != nil {
		t.Fatal(err)
	}
	lock.Release()
	lock.Release()

	var nilLock *Lock
	nilLock.Release()
}
