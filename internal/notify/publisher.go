package notify

// Publisher is the single write path from pipeline code into the registry.
// It keeps the orchestrator away from the registry's concurrency details.
type Publisher struct {
	registry *Registry
}

func NewPublisher(registry *Registry) *Publisher {
	return &Publisher{registry: registry}
}

// Notify builds the {stage, progress, error} event and fans it out to every
// live subscriber of the document. Progress is 0-100 and non-decreasing
// within a run, except that failed always reports 0.
func (p *Publisher) Notify(documentId string, stage Stage, progress int, err error) {
	var errText *string
	if err != nil {
		msg := err.Error()
		errText = &msg
	}
	p.registry.Publish(documentId, Event{
		Stage:    stage,
		Progress: progress,
		Error:    errText,
	})
}
