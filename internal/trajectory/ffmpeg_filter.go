package trajectory

import (
	"fmt"

	"github.com/ivlev/reframe/internal/planner"
)

// GenerateCropFilter builds an FFmpeg crop filter whose x/y/w/h expressions
// follow the trajectory with piecewise-linear interpolation between
// keyframes. One way for the rendering collaborator to apply the path
// without reimplementing interpolation.
func GenerateCropFilter(keyframes []planner.CropKeyframe, fps int) string {
	if len(keyframes) == 0 {
		return ""
	}

	wExpr := buildExpression(keyframes, fps, func(k planner.CropKeyframe) float64 { return k.Width })
	hExpr := buildExpression(keyframes, fps, func(k planner.CropKeyframe) float64 { return k.Height })
	xExpr := buildExpression(keyframes, fps, func(k planner.CropKeyframe) float64 { return k.X })
	yExpr := buildExpression(keyframes, fps, func(k planner.CropKeyframe) float64 { return k.Y })

	return fmt.Sprintf("crop=w='%s':h='%s':x='%s':y='%s'", wExpr, hExpr, xExpr, yExpr)
}

// buildExpression creates a piecewise expression over the output frame
// counter n, linear between consecutive keyframes.
func buildExpression(keyframes []planner.CropKeyframe, fps int, value func(planner.CropKeyframe) float64) string {
	if len(keyframes) == 1 {
		return fmt.Sprintf("%.4f", value(keyframes[0]))
	}

	expr := ""
	for i := 0; i < len(keyframes)-1; i++ {
		startFrame := int(keyframes[i].Timestamp * float64(fps))
		endFrame := int(keyframes[i+1].Timestamp * float64(fps))
		startVal := value(keyframes[i])
		endVal := value(keyframes[i+1])

		if i > 0 {
			expr += ","
		}

		if endFrame > startFrame {
			expr += fmt.Sprintf("if(lte(n,%d),%.4f+(n-%d)/%d*(%.4f-%.4f)",
				endFrame, startVal, startFrame, endFrame-startFrame, endVal, startVal)
		} else {
			expr += fmt.Sprintf("if(lte(n,%d),%.4f", endFrame, startVal)
		}
	}

	// Close the nested if chain and pin the final value.
	for i := 0; i < len(keyframes)-2; i++ {
		expr += ")"
	}
	expr += fmt.Sprintf(",%.4f)", value(keyframes[len(keyframes)-1]))

	return expr
}
