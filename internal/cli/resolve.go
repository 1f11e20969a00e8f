package cli

import (
	"fmt"
	"strings"

	"github.com/revisio/revisio/internal/model"
	"github.com/revisio/revisio/internal/store"
)

// findSubject resolves a subject by name, case-insensitively. An exact
// match wins; otherwise a unique prefix is accepted.
func findSubject(db *store.DB, name string) (*model.Subject, error) {
	subjects, err := db.ListSubjects(true)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}

	needle := strings.ToLower(name)
	var prefix []model.Subject
	for _, s := range subjects {
		lower := strings.ToLower(s.Name)
		if lower == needle {
			return db.GetSubject(s.ID)
		}
		if strings.HasPrefix(lower, needle) {
			prefix = append(prefix, s)
		}
	}

	switch len(prefix) {
	case 0:
		return nil, fmt.Errorf("no subject matches %q", name)
	case 1:
		return db.GetSubject(prefix[0].ID)
	default:
		names := make([]string, len(prefix))
		for i, s := range prefix {
			names[i] = s.Name
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", name, strings.Join(names, ", "))
	}
}

// findTopic resolves a topic inside a subject, same matching rules as
// findSubject.
func findTopic(sub *model.Subject, name string) (*model.Topic, error) {
	needle := strings.ToLower(name)
	var prefix []*model.Topic
	for i := range sub.Topics {
		t := &sub.Topics[i]
		lower := strings.ToLower(t.Name)
		if lower == needle {
			return t, nil
		}
		if strings.HasPrefix(lower, needle) {
			prefix = append(prefix, t)
		}
	}

	switch len(prefix) {
	case 0:
		return nil, fmt.Errorf("no topic matches %q in %s", name, sub.Name)
	case 1:
		return prefix[0], nil
	default:
		names := make([]string, len(prefix))
		for i, t := range prefix {
			names[i] = t.Name
		}
		return nil, fmt.Errorf("%q is ambiguous: %s", name, strings.Join(names, ", "))
	}
}
