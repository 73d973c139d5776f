package testutil

import (
	"fmt"

	"github.com/google/uuid"
)

// RandomUsername returns a unique username for test fixtures.
func RandomUsername() string {
	return "user-" + uuid.NewString()[:8]
}

// RandomEmail returns a unique email address for test fixtures.
func RandomEmail() string {
	return fmt.Sprintf("%s@example.com", uuid.NewString()[:8])
}
