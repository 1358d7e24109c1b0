package revocation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// testConcurrentRevocation runs revokers and unrelated readers against s at
// the same time. Every revoker must see its own revocation on the very next
// check, and readers must never see a token nobody revoked.
func testConcurrentRevocation(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	exp := time.Now().Add(time.Hour)

	const workers = 32
	const reads = 20

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(2)

		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("revoked-%d", i)
			if err := s.Revoke(ctx, token, exp); err != nil {
				t.Errorf("revoke %s: %v", token, err)
				return
			}
			revoked, err := s.IsRevoked(ctx, token)
			assert.NoError(t, err)
			assert.True(t, revoked, "%s must be revoked right after Revoke returns", token)
		}(i)

		go func(i int) {
			defer wg.Done()
			token := fmt.Sprintf("untouched-%d", i)
			for n := 0; n < reads; n++ {
				revoked, err := s.IsRevoked(ctx, token)
				assert.NoError(t, err)
				assert.False(t, revoked, "%s was never revoked", token)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		revoked, err := s.IsRevoked(ctx, fmt.Sprintf("revoked-%d", i))
		assert.NoError(t, err)
		assert.True(t, revoked)
	}
}
