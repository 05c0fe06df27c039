package domain

import "strings"

// MotionRequest is the single input accepted by the generator. A blank topic
// is treated the same as no topic.
type MotionRequest struct {
	Topic string `json:"topic,omitempty" validate:"max=500,topic"`
}

// Normalize returns the trimmed topic.
func (r MotionRequest) Normalize() string {
	return strings.TrimSpace(r.Topic)
}

type Motion struct {
	Text      string `json:"text"`
	Reasoning string `json:"reasoning"`
	Category  string `json:"category,omitempty"`
}

// MotionSet keeps motions in the order the model returned them.
type MotionSet struct {
	Context string   `json:"context,omitempty"`
	Motions []Motion `json:"motions"`
}
