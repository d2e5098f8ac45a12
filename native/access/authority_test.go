package access

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func addr(fill byte) common.Address {
	var a common.Address
	for i := range a {
		a[i] = fill
	}
	return a
}

func TestAuthorityPredicate(t *testing.T) {
	owner := addr(0x01)
	governance := addr(0x02)
	stranger := addr(0x03)

	auth := NewAuthority(owner, governance)
	if !auth.IsAuthorized(owner) {
		t.Fatalf("owner should be authorized")
	}
	if !auth.IsAuthorized(governance) {
		t.Fatalf("governance should be authorized")
	}
	if auth.IsAuthorized(stranger) {
		t.Fatalf("stranger should not be authorized")
	}
	if err := auth.RequireAuthorized(stranger); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
}

func TestTransferOwnership(t *testing.T) {
	owner := addr(0x01)
	governance := addr(0x02)
	next := addr(0x04)

	auth := NewAuthority(owner, governance)
	if err := auth.TransferOwnership(addr(0x05), next); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := auth.TransferOwnership(owner, next); err != nil {
		t.Fatalf("owner transfer failed: %v", err)
	}
	if auth.Owner() != next {
		t.Fatalf("owner not updated")
	}

	// The governance contract retains transfer authority after the owner
	// field moves.
	if err := auth.TransferOwnership(governance, owner); err != nil {
		t.Fatalf("governance transfer failed: %v", err)
	}
	if auth.Owner() != owner {
		t.Fatalf("owner not restored")
	}

	if err := auth.TransferOwnership(owner, common.Address{}); !errors.Is(err, ErrZeroAddress) {
		t.Fatalf("expected ErrZeroAddress, got %v", err)
	}
}

func TestTogglePauseAndGuard(t *testing.T) {
	owner := addr(0x01)
	auth := NewAuthority(owner, addr(0x02))

	if err := Guard(auth); err != nil {
		t.Fatalf("unpaused guard failed: %v", err)
	}
	if _, err := auth.TogglePause(addr(0x09)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	paused, err := auth.TogglePause(owner)
	if err != nil || !paused {
		t.Fatalf("toggle failed: paused=%v err=%v", paused, err)
	}
	if err := Guard(auth); !errors.Is(err, ErrPaused) {
		t.Fatalf("expected ErrPaused, got %v", err)
	}
	paused, err = auth.TogglePause(owner)
	if err != nil || paused {
		t.Fatalf("unpause failed: paused=%v err=%v", paused, err)
	}
}
