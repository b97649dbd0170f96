package effects

import "github.com/kazuvin/teto/pkg/logger"

// EasingFunc maps a normalized time t∈[0,1] to a normalized progress
// value, typically also in [0,1].
type EasingFunc func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseIn uses the CSS "ease-in" cubic bezier control points.
func EaseIn(t float64) float64 { return cubicBezierY(t, 0.42, 0, 1, 1) }

// EaseOut uses the CSS "ease-out" cubic bezier control points.
func EaseOut(t float64) float64 { return cubicBezierY(t, 0, 0, 0.58, 1) }

// EaseInOut uses the CSS "ease-in-out" cubic bezier control points,
// (0.42, 0) and (0.58, 1) — the choice recorded for spec §9's open
// question on which curve "easeInOut" pins down.
func EaseInOut(t float64) float64 { return cubicBezierY(t, 0.42, 0, 0.58, 1) }

// Resolve maps an easing name to its function. An unknown name falls
// back to Linear with a logged warning (spec §4.7), rather than erroring
// — effects are rendering detail, not a validation-time concern.
func Resolve(name string, log logger.Logger) EasingFunc {
	switch name {
	case "", "linear":
		return Linear
	case "easeIn":
		return EaseIn
	case "easeOut":
		return EaseOut
	case "easeInOut":
		return EaseInOut
	default:
		if log != nil {
			log.WithField("easing", name).Warn("unknown easing name, falling back to linear")
		}
		return Linear
	}
}

// cubicBezierY evaluates the y-value of a cubic bezier timing curve with
// control points (0,0), (x1,y1), (x2,y2), (1,1) at parameter t, solving
// for the bezier parameter u such that bezierX(u) == t via Newton-Raphson
// (falling back to bisection if the derivative is ~0), then returning
// bezierY(u). This is the standard technique CSS easing curves use to
// convert a time fraction into a progress fraction.
func cubicBezierY(t, x1, y1, x2, y2 float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	bezierX := func(u float64) float64 {
		mu := 1 - u
		return 3*mu*mu*u*x1 + 3*mu*u*u*x2 + u*u*u
	}
	bezierXDeriv := func(u float64) float64 {
		mu := 1 - u
		return 3*mu*mu*x1 + 6*mu*u*(x2-x1) + 3*u*u*(1-x2)
	}
	bezierY := func(u float64) float64 {
		mu := 1 - u
		return 3*mu*mu*u*y1 + 3*mu*u*u*y2 + u*u*u
	}

	u := t
	for i := 0; i < 8; i++ {
		x := bezierX(u) - t
		d := bezierXDeriv(u)
		if d == 0 {
			break
		}
		u -= x / d
		if u < 0 {
			u = 0
		} else if u > 1 {
			u = 1
		}
	}

	// A few bisection steps clean up any cases where Newton-Raphson
	// overshot due to a near-flat derivative.
	lo, hi := 0.0, 1.0
	for i := 0; i < 20; i++ {
		x := bezierX(u)
		if x < t {
			lo = u
		} else {
			hi = u
		}
		if absFloat(x-t) < 1e-6 {
			break
		}
		u = (lo + hi) / 2
	}

	return bezierY(u)
}

func absFloat(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
