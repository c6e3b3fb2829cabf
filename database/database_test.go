package database

import (
	"testing"
)

func TestPing_clientNil(t *testing.T) {
	// Save current state
	oldClient := Client
	Client = nil
	defer func() { Client = oldClient }()

	err := Ping()
	if err == nil {
		t.Error("Ping() should fail when Client is nil")
	}
	if err != nil && err.Error() != "MongoDB client not initialized" {
		t.Errorf("Ping() error = %v", err)
	}
}
