package signal

import "fmt"

// Rule admits detections of the listed classes whose score falls inside
// [MinScore, MaxScore], tagging them with Weight. Required rules mark
// subjects the crop must keep visible.
type Rule struct {
	Name     string
	Classes  []Class
	MinScore float64
	MaxScore float64
	Weight   float64
	Required bool
}

// Matches reports whether d satisfies this rule. Matching is strict range
// matching on the score; detections with out-of-range scores never pass.
func (r Rule) Matches(d Detection) bool {
	if d.Score < r.MinScore || d.Score > r.MaxScore {
		return false
	}
	for _, c := range r.Classes {
		if c == d.Class {
			return true
		}
	}
	return false
}

// Catalog is the ordered rule set for one focus mode.
type Catalog struct {
	Mode  string
	Rules []Rule
}

// NewCatalog returns the catalog for a focus mode.
func NewCatalog(mode string) (*Catalog, error) {
	switch mode {
	case "face":
		return &Catalog{Mode: mode, Rules: []Rule{
			{Name: "face_core", Classes: []Class{ClassFace}, MinScore: 0.5, MaxScore: 1.0, Weight: 1.0, Required: true},
			{Name: "human", Classes: []Class{ClassPerson}, MinScore: 0.5, MaxScore: 1.0, Weight: 0.4},
		}}, nil
	case "person":
		return &Catalog{Mode: mode, Rules: []Rule{
			{Name: "person_core", Classes: []Class{ClassPerson}, MinScore: 0.5, MaxScore: 1.0, Weight: 1.0, Required: true},
			{Name: "face_support", Classes: []Class{ClassFace}, MinScore: 0.5, MaxScore: 1.0, Weight: 0.6},
		}}, nil
	case "object":
		return &Catalog{Mode: mode, Rules: []Rule{
			{Name: "object_core", Classes: []Class{ClassObject}, MinScore: 0.4, MaxScore: 1.0, Weight: 1.0, Required: true},
			{Name: "vehicle", Classes: []Class{ClassCar}, MinScore: 0.5, MaxScore: 1.0, Weight: 0.6},
			{Name: "animal", Classes: []Class{ClassPet}, MinScore: 0.5, MaxScore: 1.0, Weight: 0.6},
			{Name: "brand", Classes: []Class{ClassLogo}, MinScore: 0.6, MaxScore: 1.0, Weight: 0.3},
		}}, nil
	case "text":
		return &Catalog{Mode: mode, Rules: []Rule{
			{Name: "text_core", Classes: []Class{ClassText}, MinScore: 0.6, MaxScore: 1.0, Weight: 1.0, Required: true},
			{Name: "brand", Classes: []Class{ClassLogo}, MinScore: 0.6, MaxScore: 1.0, Weight: 0.5},
		}}, nil
	case "auto", "":
		// face_core and human overlap on purpose: a face satisfies both,
		// keeping people weighted even when the face detector misfires.
		return &Catalog{Mode: "auto", Rules: []Rule{
			{Name: "face_core", Classes: []Class{ClassFace}, MinScore: 0.5, MaxScore: 1.0, Weight: 1.0, Required: true},
			{Name: "human", Classes: []Class{ClassPerson, ClassFace}, MinScore: 0.5, MaxScore: 1.0, Weight: 0.8},
			{Name: "object", Classes: []Class{ClassObject, ClassCar, ClassPet}, MinScore: 0.4, MaxScore: 1.0, Weight: 0.5},
			{Name: "caption", Classes: []Class{ClassText, ClassLogo}, MinScore: 0.6, MaxScore: 1.0, Weight: 0.4},
		}}, nil
	default:
		return nil, fmt.Errorf("unknown focus mode: %s", mode)
	}
}

// HasRequired reports whether the catalog carries any required rule.
func (c *Catalog) HasRequired() bool {
	for _, r := range c.Rules {
		if r.Required {
			return true
		}
	}
	return false
}
