package pricing

import (
	"fmt"
	"strings"
)

// FormatOrderNumber renders sequence seq of a tenant as SLUG-000042
func FormatOrderNumber(slug string, seq int64) string {
	return fmt.Sprintf("%s-%06d", strings.ToUpper(slug), seq)
}
