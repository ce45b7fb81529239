package output

import (
	"errors"
	"fmt"
	"io"
	"syscall"
	"testing"
)

func TestIsBrokenPipe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"epipe", syscall.EPIPE, true},
		{"wrapped epipe", fmt.Errorf("writing record: %w", syscall.EPIPE), true},
		{"closed pipe", io.ErrClosedPipe, true},
		{"other", errors.New("disk full"), false},
	}

	for _, tt := range tests {
		if got := IsBrokenPipe(tt.err); got != tt.want {
			t.Errorf("IsBrokenPipe(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
