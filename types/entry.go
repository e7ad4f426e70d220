package types

// Entry represents one utterance in a conversation transcript: who spoke
// and the verbatim text they produced.
//
// Entries carry no timestamp on purpose. Every speaker keeps its own copy
// of the transcript, and those copies must stay structurally identical
// after each broadcast; per-copy clock reads would break that comparison.
type Entry struct {
	Identity string `json:"identity"`
	Text     string `json:"text"`
}

// NewEntry creates a transcript entry.
func NewEntry(identity, text string) Entry {
	return Entry{Identity: identity, Text: text}
}

// TranscriptsEqual reports whether two transcripts contain the same
// entries in the same order.
func TranscriptsEqual(a, b []Entry) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
