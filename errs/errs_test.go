package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"missing room", ErrMissingRoom, KindMissingRoom},
		{"wrapped insufficient", fmt.Errorf("merge: %w", ErrInsufficientMembers), KindInsufficientMembers},
		{"store", StoreIO("append", errors.New("disk full")), KindStoreIO},
		{"remote", &RemoteError{Op: "create playlist", Err: errors.New("502")}, KindRemote},
		{"timeout inside remote", &RemoteError{Op: "top tracks", Err: fmt.Errorf("%w: %w", ErrRemoteTimeout, context.DeadlineExceeded)}, KindRemoteTimeout},
		{"unknown", errors.New("boom"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStoreIONil(t *testing.T) {
	assert.NoError(t, StoreIO("read", nil))
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(StoreIO("write", errors.New("locked"))))
	assert.True(t, Retryable(ErrRemoteTimeout))
	assert.False(t, Retryable(ErrInvalidGrant))
}
