package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("TALENTDESK_TEST_MODE") == "" {
			_ = os.Setenv("TALENTDESK_TEST_MODE", "1")
		}
	})
}
