package invoke

import (
	"errors"
	"testing"
)

func TestRegion_TranslateString(t *testing.T) {
	r := &Region{Base: 0x100}
	addr := r.Write([]byte("hello"))
	r.Write([]byte{0xff, 0xfe})

	tests := []struct {
		name    string
		addr    uint64
		length  uint64
		want    string
		wantErr error
	}{
		{"whole string", addr, 5, "hello", nil},
		{"prefix", addr, 2, "he", nil},
		{"empty", addr + 5, 0, "", nil},
		{"below base", 0x10, 1, "", ErrAccessViolation},
		{"past end", addr + 3, 10, "", ErrAccessViolation},
		{"offset past end", addr + 100, 0, "", ErrAccessViolation},
		{"invalid utf8", addr + 5, 2, "", ErrInvalidString},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.TranslateString(tt.addr, tt.length)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}
