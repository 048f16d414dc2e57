// Package guard forces test mode before any package under test spins
// up runtime side effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("CASEBUDDY_TEST_MODE") == "" {
			_ = os.Setenv("CASEBUDDY_TEST_MODE", "1")
		}
	})
}
