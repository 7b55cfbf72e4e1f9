package planner

import (
	"strings"

	"github.com/noah-isme/lesson-planner-api/internal/models"
)

// Topic is one schedulable subtopic.
type Topic struct {
	Chapter  string
	Subtopic string
}

// Details renders the class details for the topic.
func (t Topic) Details() string {
	return t.Chapter + ": " + t.Subtopic
}

// TopicQueue yields chapter subtopics in chapter-then-subtopic order.
type TopicQueue struct {
	topics []Topic
	cursor int
}

// NewTopicQueue flattens chapters in the given order. Blank subtopics are skipped.
func NewTopicQueue(chapters []models.Chapter) *TopicQueue {
	q := &TopicQueue{}
	for _, ch := range chapters {
		name := strings.TrimSpace(ch.Name)
		for _, sub := range ch.Subtopics {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				continue
			}
			q.topics = append(q.topics, Topic{Chapter: name, Subtopic: sub})
		}
	}
	return q
}

// Next pops the next unconsumed topic.
func (q *TopicQueue) Next() (Topic, bool) {
	if q.cursor >= len(q.topics) {
		return Topic{}, false
	}
	t := q.topics[q.cursor]
	q.cursor++
	return t, true
}

// Remaining reports how many topics are still unconsumed.
func (q *TopicQueue) Remaining() int {
	return len(q.topics) - q.cursor
}

// Len reports the total number of topics.
func (q *TopicQueue) Len() int {
	return len(q.topics)
}

// Reset rewinds the queue to its first topic.
func (q *TopicQueue) Reset() {
	q.cursor = 0
}

// Topics returns a copy of every topic in queue order.
func (q *TopicQueue) Topics() []Topic {
	out := make([]Topic, len(q.topics))
	copy(out, q.topics)
	return out
}
