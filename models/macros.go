package models

import (
	"errors"
	"fmt"
	"math"
)

// DateLayout is the calendar-date format used for entry dates.
const DateLayout = "2006-01-02"

var ErrNegativeMacro = errors.New("nutrient values must be non-negative numbers")

// Macros holds the four tracked macro-nutrients.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (m Macros) Scale(q float64) Macros {
	return Macros{
		Calories: m.Calories * q,
		Protein:  m.Protein * q,
		Carbs:    m.Carbs * q,
		Fat:      m.Fat * q,
	}
}

func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
	}
}

func (m Macros) Validate() error {
	for name, v := range map[string]float64{
		"calories": m.Calories,
		"protein":  m.Protein,
		"carbs":    m.Carbs,
		"fat":      m.Fat,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s=%v", ErrNegativeMacro, name, v)
		}
	}
	return nil
}
