// Package platform decides which runtime the client is running on. The answer
// selects the token store variant and the API base URL, and is computed once
// per process.
package platform

import (
	"fmt"
	"strings"
	"sync"
)

type Platform int

const (
	// Web is a browser-like runtime: plain local storage, relative API paths.
	Web Platform = iota
	// Native is an embedded shell with access to an encrypted keystore.
	Native
)

func (p Platform) String() string {
	if p == Native {
		return "native"
	}
	return "web"
}

func (p Platform) IsNative() bool { return p == Native }

// Capabilities is what the probe inspects.
type Capabilities struct {
	// Requested is "auto", "native" or "web".
	Requested string
	// KeystoreAvailable reports whether device key material is configured.
	KeystoreAvailable bool
}

// Detect resolves the platform from capabilities. An explicit request wins;
// "auto" picks Native only when a keystore is available.
func Detect(c Capabilities) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(c.Requested)) {
	case "native":
		return Native, nil
	case "web":
		return Web, nil
	case "", "auto":
		if c.KeystoreAvailable {
			return Native, nil
		}
		return Web, nil
	default:
		return Web, fmt.Errorf("unknown platform %q", c.Requested)
	}
}

// Probe memoises the first Detect result for the lifetime of the process.
type Probe struct {
	once sync.Once
	caps Capabilities
	p    Platform
	err  error
}

func NewProbe(c Capabilities) *Probe {
	return &Probe{caps: c}
}

// Platform runs detection on first use and returns the same answer afterwards.
func (pr *Probe) Platform() (Platform, error) {
	pr.once.Do(func() {
		pr.p, pr.err = Detect(pr.caps)
	})
	return pr.p, pr.err
}
