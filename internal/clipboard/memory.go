package clipboard

// Memory is an in-process clipboard, used when no desktop session is
// available and in tests.
type Memory struct {
	Content Content
	Err     error
}

func (m *Memory) Read() (Content, error) {
	if m.Err != nil {
		return Content{}, m.Err
	}
	if m.Content.Kind == KindEmpty {
		return Content{}, ErrEmpty
	}
	return m.Content, nil
}

func (m *Memory) WriteText(text string) error {
	m.Content = Content{Kind: KindText, Text: text}
	return nil
}

func (m *Memory) HasContent() bool {
	return m.Err == nil && m.Content.Kind != KindEmpty
}
