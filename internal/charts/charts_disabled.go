//go:build nocharts

package charts

import "github.com/moamenhredeen/proxybench/internal/models"

// Enabled reports whether this build can render charts
const Enabled = false

// Render always fails with ErrUnavailable
func Render(store *models.Store, scenarios []string, opts Options) (string, error) {
	return "", ErrUnavailable
}
