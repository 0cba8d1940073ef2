package logging

import "testing"

func TestNew(t *testing.T) {
	tests := []struct {
		level  string
		format string
		ok     bool
	}{
		{"debug", "console", true},
		{"info", "json", true},
		{"warn", "console", true},
		{"error", "json", true},
		{"chatty", "console", false},
	}
	for _, tt := range tests {
		t.Run(tt.level+"/"+tt.format, func(t *testing.T) {
			log, err := New(tt.level, tt.format)
			if tt.ok && err != nil {
				t.Fatalf("New(%q, %q) failed: %v", tt.level, tt.format, err)
			}
			if !tt.ok && err == nil {
				t.Fatalf("New(%q, %q) should reject the level", tt.level, tt.format)
			}
			if tt.ok && log == nil {
				t.Error("expected a logger")
			}
		})
	}
}
