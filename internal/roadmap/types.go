package roadmap

import "github.com/dhanush/skillpath/internal/store"

// Subtopic is one planned entry of a roadmap before persistence.
type Subtopic struct {
	Title       string
	Description string
	Resources   []string
}

// Plan is the result of generating a roadmap for a learner.
type Plan struct {
	Topic   string
	NodeIDs []int64
	Nodes   []store.Node
}
