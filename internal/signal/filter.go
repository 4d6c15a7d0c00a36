package signal

// Filter applies the catalog to one frame's raw detections. Pure function:
// no state survives between frames.
//
// A detection satisfying several rules is tagged once, with the
// highest-weight match, so fused centroids never double-count a subject.
// Required is sticky: any required rule among the matches marks the
// detection as a guaranteed subject.
func (c *Catalog) Filter(frameIndex int, timestamp float64, detections []Detection) FrameAnalysis {
	fa := FrameAnalysis{
		FrameIndex: frameIndex,
		Timestamp:  timestamp,
	}

	for _, d := range detections {
		best := -1
		required := false
		for i, r := range c.Rules {
			if !r.Matches(d) {
				continue
			}
			if r.Required {
				required = true
			}
			if best == -1 || r.Weight > c.Rules[best].Weight {
				best = i
			}
		}
		if best == -1 {
			continue
		}
		fa.Detections = append(fa.Detections, Accepted{
			Detection: d,
			RuleName:  c.Rules[best].Name,
			Weight:    c.Rules[best].Weight,
			Required:  required,
		})
		if required {
			fa.HasRequired = true
		}
	}

	return fa
}
