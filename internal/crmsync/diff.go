package crmsync

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var ignoreTemperature = cmp.Options{
	cmpopts.IgnoreFields(Lead{}, "TempRating", "IDs"),
	cmpopts.EquateEmpty(),
}

// TemperatureOnlyChange reports whether next differs from prev in the
// temperature rating and nothing else the CRM sees.
func TemperatureOnlyChange(prev, next Lead) bool {
	if equalRating(prev.TempRating, next.TempRating) {
		return false
	}
	return cmp.Equal(prev, next, ignoreTemperature)
}

func equalRating(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
