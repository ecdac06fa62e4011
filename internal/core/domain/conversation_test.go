package domain

import "testing"

func TestTranscriptAppendDoesNotShareBackingArray(t *testing.T) {
	base := Transcript{{Role: RoleUser, Content: "first"}}

	a := base.Append(Turn{Role: RoleAssistant, Content: "answer a"})
	b := base.Append(Turn{Role: RoleAssistant, Content: "answer b"})

	if len(base) != 1 {
		t.Fatalf("base transcript grew to %d entries", len(base))
	}
	if a[1].Content != "answer a" || b[1].Content != "answer b" {
		t.Fatalf("appends interfered: a=%v b=%v", a, b)
	}
}

func TestTranscriptAppendPreservesOrder(t *testing.T) {
	var transcript Transcript
	transcript = transcript.Append(Turn{Role: RoleUser, Content: "q1"})
	transcript = transcript.Append(Turn{Role: RoleAssistant, Content: "a1"})
	transcript = transcript.Append(Turn{Role: RoleUser, Content: "q2"})

	if len(transcript) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(transcript))
	}
	if transcript[0].Content != "q1" || transcript[1].Content != "a1" || transcript[2].Content != "q2" {
		t.Fatalf("entries out of order: %v", transcript)
	}
}
