package utils

import (
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	id1 := GenerateID()
	id2 := GenerateID()
	if id1 == "" || id1 == id2 {
		t.Fatalf("expected unique non-empty IDs, got %q and %q", id1, id2)
	}
	if !strings.Contains(id1, "-") {
		t.Errorf("GenerateID should contain hyphen: %s", id1)
	}
}

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	if !strings.HasPrefix(id, "run-") {
		t.Errorf("expected run- prefix, got %s", id)
	}
}

func TestGenerateTrialID(t *testing.T) {
	id := GenerateTrialID("nngs_sa", 3)
	if !strings.HasPrefix(id, "nngs_sa-0003-") {
		t.Errorf("unexpected trial id %s", id)
	}
}
