package camera

import (
	"sort"
	"strings"

	"github.com/chewxy/math32"
)

// Easing maps normalized animation progress in [0, 1] to interpolation weight.
// Every easing returns 0 at 0 and 1 at 1; Back and Elastic overshoot in between.
type Easing func(t float32) float32

const (
	backC1 = 1.70158
	backC2 = backC1 * 1.525
	backC3 = backC1 + 1

	elasticC4 = 2 * math32.Pi / 3
	elasticC5 = 2 * math32.Pi / 4.5

	bounceN1 = 7.5625
	bounceD1 = 2.75
)

var (
	Linear Easing = func(t float32) float32 { return t }

	// EaseIn, EaseOut and EaseInOut are the quadratic curves used by default for camera moves.
	EaseIn    Easing = InQuad
	EaseOut   Easing = OutQuad
	EaseInOut Easing = InOutQuad

	InSine    Easing = func(t float32) float32 { return 1 - math32.Cos(t*math32.Pi/2) }
	OutSine   Easing = func(t float32) float32 { return math32.Sin(t * math32.Pi / 2) }
	InOutSine Easing = func(t float32) float32 { return -(math32.Cos(math32.Pi*t) - 1) / 2 }

	InQuad    = inPow(2)
	OutQuad   = outPow(2)
	InOutQuad = inOutPow(2)

	InCubic    = inPow(3)
	OutCubic   = outPow(3)
	InOutCubic = inOutPow(3)

	InQuart    = inPow(4)
	OutQuart   = outPow(4)
	InOutQuart = inOutPow(4)

	InQuint    = inPow(5)
	OutQuint   = outPow(5)
	InOutQuint = inOutPow(5)

	InExpo Easing = func(t float32) float32 {
		if t == 0 {
			return 0
		}
		return math32.Pow(2, 10*t-10)
	}
	OutExpo Easing = func(t float32) float32 {
		if t == 1 {
			return 1
		}
		return 1 - math32.Pow(2, -10*t)
	}
	InOutExpo Easing = func(t float32) float32 {
		switch {
		case t == 0:
			return 0
		case t == 1:
			return 1
		case t < 0.5:
			return math32.Pow(2, 20*t-10) / 2
		default:
			return (2 - math32.Pow(2, -20*t+10)) / 2
		}
	}

	InCirc    Easing = func(t float32) float32 { return 1 - math32.Sqrt(1-t*t) }
	OutCirc   Easing = func(t float32) float32 { return math32.Sqrt(1 - (t-1)*(t-1)) }
	InOutCirc Easing = func(t float32) float32 {
		if t < 0.5 {
			return (1 - math32.Sqrt(1-4*t*t)) / 2
		}
		u := -2*t + 2
		return (math32.Sqrt(1-u*u) + 1) / 2
	}

	InBack  Easing = func(t float32) float32 { return backC3*t*t*t - backC1*t*t }
	OutBack Easing = func(t float32) float32 {
		u := t - 1
		return 1 + backC3*u*u*u + backC1*u*u
	}
	InOutBack Easing = func(t float32) float32 {
		if t < 0.5 {
			u := 2 * t
			return u * u * ((backC2+1)*u - backC2) / 2
		}
		u := 2*t - 2
		return (u*u*((backC2+1)*u+backC2) + 2) / 2
	}

	InElastic Easing = func(t float32) float32 {
		if t == 0 || t == 1 {
			return t
		}
		return -math32.Pow(2, 10*t-10) * math32.Sin((10*t-10.75)*elasticC4)
	}
	OutElastic Easing = func(t float32) float32 {
		if t == 0 || t == 1 {
			return t
		}
		return math32.Pow(2, -10*t)*math32.Sin((10*t-0.75)*elasticC4) + 1
	}
	InOutElastic Easing = func(t float32) float32 {
		switch {
		case t == 0 || t == 1:
			return t
		case t < 0.5:
			return -(math32.Pow(2, 20*t-10) * math32.Sin((20*t-11.125)*elasticC5)) / 2
		default:
			return math32.Pow(2, -20*t+10)*math32.Sin((20*t-11.125)*elasticC5)/2 + 1
		}
	}

	OutBounce   Easing = outBounce
	InBounce    Easing = func(t float32) float32 { return 1 - outBounce(1-t) }
	InOutBounce Easing = func(t float32) float32 {
		if t < 0.5 {
			return (1 - outBounce(1-2*t)) / 2
		}
		return (1 + outBounce(2*t-1)) / 2
	}
)

var easingsByName = map[string]Easing{
	"linear":         Linear,
	"ease-in":        EaseIn,
	"ease-out":       EaseOut,
	"ease-in-out":    EaseInOut,
	"in-sine":        InSine,
	"out-sine":       OutSine,
	"in-out-sine":    InOutSine,
	"in-quad":        InQuad,
	"out-quad":       OutQuad,
	"in-out-quad":    InOutQuad,
	"in-cubic":       InCubic,
	"out-cubic":      OutCubic,
	"in-out-cubic":   InOutCubic,
	"in-quart":       InQuart,
	"out-quart":      OutQuart,
	"in-out-quart":   InOutQuart,
	"in-quint":       InQuint,
	"out-quint":      OutQuint,
	"in-out-quint":   InOutQuint,
	"in-expo":        InExpo,
	"out-expo":       OutExpo,
	"in-out-expo":    InOutExpo,
	"in-circ":        InCirc,
	"out-circ":       OutCirc,
	"in-out-circ":    InOutCirc,
	"in-back":        InBack,
	"out-back":       OutBack,
	"in-out-back":    InOutBack,
	"in-elastic":     InElastic,
	"out-elastic":    OutElastic,
	"in-out-elastic": InOutElastic,
	"in-bounce":      InBounce,
	"out-bounce":     OutBounce,
	"in-out-bounce":  InOutBounce,
}

// EasingByName looks up an easing by its kebab-case name, e.g. "in-out-cubic". Matching ignores case.
//
// Parameters:
//   - name: the easing name
//
// Returns:
//   - Easing: the easing function
//   - bool: false if no easing has that name
func EasingByName(name string) (Easing, bool) {
	e, ok := easingsByName[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// EasingNames returns every name accepted by EasingByName in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easingsByName))
	for n := range easingsByName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func inPow(n float32) Easing {
	return func(t float32) float32 { return math32.Pow(t, n) }
}

func outPow(n float32) Easing {
	return func(t float32) float32 { return 1 - math32.Pow(1-t, n) }
}

func inOutPow(n float32) Easing {
	return func(t float32) float32 {
		if t < 0.5 {
			return math32.Pow(2, n-1) * math32.Pow(t, n)
		}
		return 1 - math32.Pow(-2*t+2, n)/2
	}
}

func outBounce(t float32) float32 {
	switch {
	case t < 1/bounceD1:
		return bounceN1 * t * t
	case t < 2/bounceD1:
		t -= 1.5 / bounceD1
		return bounceN1*t*t + 0.75
	case t < 2.5/bounceD1:
		t -= 2.25 / bounceD1
		return bounceN1*t*t + 0.9375
	default:
		t -= 2.625 / bounceD1
		return bounceN1*t*t + 0.984375
	}
}
