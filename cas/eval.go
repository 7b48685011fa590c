package cas

import (
	"fmt"
	"math"
)

var floatFuncs = map[string]func(float64) float64{
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"exp":   math.Exp,
	"ln":    math.Log,
	"log":   math.Log,
	"abs":   math.Abs,
	"asin":  math.Asin,
	"acos":  math.Acos,
	"atan":  math.Atan,
	"sinh":  math.Sinh,
	"cosh":  math.Cosh,
	"tanh":  math.Tanh,
	"floor": math.Floor,
	"ceil":  math.Ceil,
}

// Evaluate computes e in floating point with the given variable values.
func Evaluate(e Expr, vars map[string]float64) (float64, error) {
	v, err := evalFloat(e, vars)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("cas: %s is undefined at %v", e, vars)
	}
	return v, nil
}

func evalFloat(e Expr, vars map[string]float64) (float64, error) {
	switch v := e.(type) {
	case *Num:
		return v.Float64(), nil
	case *Sym:
		x, ok := vars[v.name]
		if !ok {
			return 0, fmt.Errorf("cas: no value for %q", v.name)
		}
		return x, nil
	case *Add:
		acc := 0.0
		for _, t := range v.terms {
			x, err := evalFloat(t, vars)
			if err != nil {
				return 0, err
			}
			acc += x
		}
		return acc, nil
	case *Mul:
		acc := 1.0
		for _, f := range v.factors {
			x, err := evalFloat(f, vars)
			if err != nil {
				return 0, err
			}
			acc *= x
		}
		return acc, nil
	case *Pow:
		b, err := evalFloat(v.base, vars)
		if err != nil {
			return 0, err
		}
		ex, err := evalFloat(v.exp, vars)
		if err != nil {
			return 0, err
		}
		// odd roots of negative numbers stay real
		if n, ok := v.exp.(*Num); ok && b < 0 && !n.IsInteger() && n.val.Denom().Bit(0) == 1 {
			r := math.Pow(-b, ex)
			if n.val.Num().Bit(0) == 1 {
				r = -r
			}
			return r, nil
		}
		return math.Pow(b, ex), nil
	case *Func:
		fn, ok := floatFuncs[v.name]
		if !ok {
			return 0, fmt.Errorf("cas: unknown function %q", v.name)
		}
		x, err := evalFloat(v.arg, vars)
		if err != nil {
			return 0, err
		}
		return fn(x), nil
	}
	return 0, fmt.Errorf("cas: cannot evaluate %T", e)
}
