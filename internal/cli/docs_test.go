package cli

import "testing"

func TestListBundledDocTopics(t *testing.T) {
	topics, err := listBundledDocTopics()
	if err != nil {
		t.Fatalf("listBundledDocTopics: %v", err)
	}
	if len(topics) == 0 {
		t.Fatal("expected bundled guide topics")
	}

	seen := make(map[string]bool)
	for _, topic := range topics {
		if topic.Title == "" {
			t.Errorf("topic %s has no title heading", topic.ID)
		}
		seen[topic.ID] = true
	}
	for _, want := range []string{"getting-started", "templates", "backups"} {
		if !seen[want] {
			t.Errorf("missing bundled topic %q", want)
		}
	}
}
