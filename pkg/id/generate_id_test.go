package id

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

func TestNewID32_FormatAndDecode(t *testing.T) {
	got := NewID32()

	// length
	if len(got) != 32 {
		t.Fatalf("length = %d, want 32 (got=%q)", len(got), got)
	}
	// lowercase hex only (no separators/prefixes)
	if !reHex32.MatchString(got) {
		t.Fatalf("not 32-char lowercase hex: %q", got)
	}
	// decodes to exactly 16 bytes
	b, err := hex.DecodeString(got)
	if err != nil {
		t.Fatalf("hex.DecodeString error: %v", err)
	}
	if len(b) != 16 {
		t.Fatalf("decoded bytes = %d, want 16", len(b))
	}
}

func TestNewID32_Uniqueness(t *testing.T) {
	const n = 200
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewID32()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id after %d iterations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewID32_NoUppercaseOrHyphen(t *testing.T) {
	id := NewID32()
	for _, r := range id {
		if r >= 'A' && r <= 'Z' {
			t.Fatalf("found uppercase letter in id: %q", id)
		}
		if r == '-' {
			t.Fatalf("found hyphen in id: %q", id)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", want: "3f9a6a1b3d544fbe8b3a6b3e8d6b2c88"},
		{in: "3F9A6A1B-3D54-4FBE-8B3A-6B3E8D6B2C88", want: "3f9a6a1b3d544fbe8b3a6b3e8d6b2c88"},
		{in: "  " + strings.Repeat("a", 32) + " ", want: strings.Repeat("a", 32)},
		{in: "urn:uuid:3f9a6a1b-3d54-4fbe-8b3a-6b3e8d6b2c88", want: "3f9a6a1b3d544fbe8b3a6b3e8d6b2c88"},
		{in: "", wantErr: true},
		{in: "deadbeef", wantErr: true},
		{in: strings.Repeat("g", 32), wantErr: true},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidKey) {
				t.Fatalf("Normalize(%q): want ErrInvalidKey, got %v (%q)", tt.in, err, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Normalize(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
		if !IsID32(got) {
			t.Fatalf("normalized key is not 32-hex: %q", got)
		}
	}
}
