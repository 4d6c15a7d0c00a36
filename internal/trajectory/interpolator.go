package trajectory

import (
	"github.com/ivlev/reframe/internal/planner"
)

// CameraState is the interpolated crop at a specific moment: center point
// and window size in source pixels.
type CameraState struct {
	X      float64 // crop center X
	Y      float64 // crop center Y
	Width  float64
	Height float64
}

// Interpolate calculates the camera state at a given time by interpolating
// between the surrounding keyframes with smooth in-out easing. Renderers
// that interpolate themselves only need the keyframes; this is for
// collaborators that sample the path at arbitrary times.
func Interpolate(keyframes []planner.CropKeyframe, currentTime float64) CameraState {
	if len(keyframes) == 0 {
		return CameraState{}
	}

	if currentTime <= keyframes[0].Timestamp {
		return stateOf(keyframes[0])
	}
	if currentTime >= keyframes[len(keyframes)-1].Timestamp {
		return stateOf(keyframes[len(keyframes)-1])
	}

	var prev, next planner.CropKeyframe
	for i := 0; i < len(keyframes)-1; i++ {
		if currentTime >= keyframes[i].Timestamp && currentTime < keyframes[i+1].Timestamp {
			prev = keyframes[i]
			next = keyframes[i+1]
			break
		}
	}

	timeDelta := next.Timestamp - prev.Timestamp
	if timeDelta == 0 {
		timeDelta = 0.001 // avoid division by zero
	}
	t := (currentTime - prev.Timestamp) / timeDelta
	t = easeInOutCubic(t)

	return CameraState{
		X:      lerp(prev.CenterX(), next.CenterX(), t),
		Y:      lerp(prev.CenterY(), next.CenterY(), t),
		Width:  lerp(prev.Width, next.Width, t),
		Height: lerp(prev.Height, next.Height, t),
	}
}

func stateOf(kf planner.CropKeyframe) CameraState {
	return CameraState{X: kf.CenterX(), Y: kf.CenterY(), Width: kf.Width, Height: kf.Height}
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// easeInOutCubic applies smooth easing.
func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
