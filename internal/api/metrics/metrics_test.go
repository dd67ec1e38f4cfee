package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type fakeHasher struct{}

func (fakeHasher) Hash(p string) (string, error) { return "h:" + p, nil }
func (fakeHasher) Verify(p, digest string) bool  { return digest == "h:"+p }

func TestInstrumentHasher_DelegatesAndObserves(t *testing.T) {
	before := testutil.CollectAndCount(PasswordHashDuration)

	h := InstrumentHasher(fakeHasher{})
	digest, err := h.Hash("secret1")
	if err != nil || digest != "h:secret1" {
		t.Fatalf("unexpected hash result %q, %v", digest, err)
	}
	if !h.Verify("secret1", digest) || h.Verify("other", digest) {
		t.Fatalf("verify not delegated")
	}

	if after := testutil.CollectAndCount(PasswordHashDuration); after < before+1 {
		t.Fatalf("expected hash and verify series, got %d", after)
	}
}
