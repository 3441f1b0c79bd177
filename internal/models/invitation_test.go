package models

import (
	"testing"
	"time"
)

func TestInvitation_IsExpired(t *testing.T) {
	fresh := &Invitation{ExpiresAt: time.Now().Add(time.Hour)}
	if fresh.IsExpired() {
		t.Error("invitation expiring in an hour should not be expired")
	}

	stale := &Invitation{ExpiresAt: time.Now().Add(-time.Minute)}
	if !stale.IsExpired() {
		t.Error("invitation past its deadline should be expired")
	}
}
