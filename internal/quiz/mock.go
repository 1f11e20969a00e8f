package quiz

import "context"

// MockClient is a test double for the quiz Client interface. It can also
// back the "mock" provider for offline use.
type MockClient struct {
	Questions []Question
	Err       error
	Calls     []string // records the material sent
}

// Generate records the call and returns the canned questions. With no
// canned set, it fabricates count placeholder questions so callers
// always get a well-formed quiz.
func (m *MockClient) Generate(ctx context.Context, material string, count int) ([]Question, error) {
	m.Calls = append(m.Calls, material)
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Questions != nil {
		return m.Questions, nil
	}

	qs := make([]Question, 0, count)
	for i := 0; i < count; i++ {
		qs = append(qs, Question{
			Type:   "open",
			Text:   "Summarize one key point of the material.",
			Answer: "Any accurate summary of the material.",
		})
	}
	return qs, nil
}
