package utils

import (
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToFloat64 converts a numeric column, treating NULL as 0.
func NumericToFloat64(value pgtype.Numeric) float64 {
	if v := NumericPtr(value); v != nil {
		return *v
	}
	return 0
}

// NumericPtr converts a nullable numeric column. NULL, NaN and infinities
// come back as nil so callers can tell an absent figure from zero.
func NumericPtr(value pgtype.Numeric) *float64 {
	if !value.Valid || value.NaN || value.InfinityModifier != pgtype.Finite {
		return nil
	}
	f, err := value.Float64Value()
	if err == nil && f.Valid {
		return finitePtr(f.Float64)
	}
	text, err := value.MarshalJSON()
	if err != nil {
		return nil
	}
	out, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return nil
	}
	return finitePtr(out)
}

func finitePtr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// TimestamptzPtr converts a nullable timestamp column.
func TimestamptzPtr(value pgtype.Timestamptz) *time.Time {
	if !value.Valid || value.InfinityModifier != pgtype.Finite {
		return nil
	}
	t := value.Time
	return &t
}
