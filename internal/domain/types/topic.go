package types

import (
	"errors"
	"strings"

	"github.com/Zubra14/verista-tracking/pkg/uuid"
)

// Topic names a broadcast channel on the realtime hub.
// Grammar: "child:<student_id>" or "school:<school_id>".
type Topic string

const (
	topicChildPrefix  = "child:"
	topicSchoolPrefix = "school:"
)

var ErrInvalidTopic = errors.New("invalid topic format")

func ChildTopic(studentID uuid.UUID) Topic {
	return Topic(topicChildPrefix + studentID.String())
}

func SchoolTopic(schoolID uuid.UUID) Topic {
	return Topic(topicSchoolPrefix + schoolID.String())
}

func (t Topic) String() string {
	return string(t)
}

// ParseTopic validates the topic grammar and returns the embedded entity id.
func ParseTopic(s string) (Topic, uuid.UUID, error) {
	var raw string
	switch {
	case strings.HasPrefix(s, topicChildPrefix):
		raw = strings.TrimPrefix(s, topicChildPrefix)
	case strings.HasPrefix(s, topicSchoolPrefix):
		raw = strings.TrimPrefix(s, topicSchoolPrefix)
	default:
		return "", uuid.UUID{}, ErrInvalidTopic
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.UUID{}, ErrInvalidTopic
	}
	return Topic(s), id, nil
}
