package domain

import (
	"testing"
	"time"
)

func TestMarkSyncFailedAlwaysCarriesReason(t *testing.T) {
	var l Lead
	l.MarkSyncFailed(RemoteIDs{JobID: "42"}, "")
	if l.SyncStatus != SyncError || l.SyncError == "" {
		t.Fatalf("expected error status with a message, got %q %q", l.SyncStatus, l.SyncError)
	}
	if l.Remote.JobID != "42" {
		t.Fatalf("expected ids kept, got %+v", l.Remote)
	}
}

func TestMarkSyncedClearsError(t *testing.T) {
	l := Lead{SyncStatus: SyncError, SyncError: "boom"}
	now := time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)
	l.MarkSynced(RemoteIDs{CustomerID: "7"}, now)

	if l.SyncStatus != SyncSynced || l.SyncError != "" {
		t.Fatalf("expected synced without error, got %q %q", l.SyncStatus, l.SyncError)
	}
	if l.LastSyncedAt == nil || !l.LastSyncedAt.Equal(now) {
		t.Fatalf("expected last synced time recorded")
	}
	if !l.Linked() {
		t.Fatalf("expected lead to be linked")
	}
}
