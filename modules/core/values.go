package core

import (
	"time"

	"github.com/zclconf/go-cty/cty"
)

func num(v cty.Value) float64 {
	f, _ := v.AsBigFloat().Float64()
	return f
}

func numVal(f float64) cty.Value {
	return cty.NumberFloatVal(f)
}

func truthy(v cty.Value) bool {
	return v.True()
}

// seconds converts an interval input, in seconds, to a duration.
func seconds(v cty.Value) time.Duration {
	return time.Duration(num(v) * float64(time.Second))
}
