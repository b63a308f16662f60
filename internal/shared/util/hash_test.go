package util

import "testing"

func TestHashStorageKeyStable(t *testing.T) {
	a := HashStorageKey("batch-1")
	b := HashStorageKey("batch-1")
	if a != b {
		t.Fatalf("expected stable hash, got %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if a == HashStorageKey("batch-2") {
		t.Fatalf("expected different inputs to hash differently")
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "sof_voyage_12.pdf", want: "sof_voyage_12.pdf"},
		{in: "  padded.docx ", want: "padded.docx"},
		{in: "a/b.pdf", want: "a_b.pdf"},
		{in: "a\\b.pdf", want: "a_b.pdf"},
		{in: "../escape.pdf", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tc := range cases {
		got, err := SanitizeFileName(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("SanitizeFileName(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("SanitizeFileName(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
