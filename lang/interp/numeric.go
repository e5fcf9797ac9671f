package interp

import "math"

func doubleFromBits(bits int64) float64 { return math.Float64frombits(uint64(bits)) }

func floorFloat(f float64) float64 { return math.Floor(f) }

func ceilFloat(f float64) float64 { return math.Ceil(f) }
