package instance

import "testing"

func TestGetID(t *testing.T) {
	t.Setenv("IRF_INSTANCE_ID", "")
	t.Setenv("DYNO", "")
	t.Setenv("HOSTNAME", "")
	if got := GetID(); got != "local" {
		t.Fatalf("expected fallback local, got %q", got)
	}

	t.Setenv("HOSTNAME", "irf-7d9f")
	t.Setenv("DYNO", "web.1")
	if got := GetID(); got != "web.1" {
		t.Fatalf("expected DYNO to win over HOSTNAME, got %q", got)
	}

	t.Setenv("IRF_INSTANCE_ID", "report-batch")
	if got := GetID(); got != "report-batch" {
		t.Fatalf("expected explicit id, got %q", got)
	}
}
