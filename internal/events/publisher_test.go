package events

import "testing"

func TestNilPublisherIsSafe(t *testing.T) {
	var p *Publisher
	p.Publish(SubjectStarted, map[string]string{"ignored": "yes"})
	p.Close()
}
