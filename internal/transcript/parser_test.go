package transcript

import (
	"strings"
	"testing"
)

const u1 = "+91 12345 12345"
const u2 = "+91 12345 54321"

// sampleTranscript reproduces spec scenario S1: an encryption notice, a
// group-creation action, a join action, seven messages, and a left action.
var sampleTranscript = strings.Join([]string{
	"1/1/23, 10:00 am - Messages and calls are end-to-end encrypted. No one outside of this chat can read or listen to them.",
	"1/1/23, 10:01 am - You created group \"Test Group\"",
	"1/1/23, 10:02 am - " + u2 + " joined using this group's invite link",
	"1/1/23, 10:03 am - " + u2 + ": Hi",
	"1/1/23, 10:04 am - " + u2 + ": IMG-W0.jpg (file attached)",
	"1/1/23, 10:05 am - " + u2 + ": IMG-W1.jpg (file attached)",
	"1/1/23, 10:06 am - " + u1 + ": Neat photo",
	"1/1/23, 10:07 am - " + u2 + ": Yea",
	"Let me write",
	"Three lines",
	"1/1/23, 10:08 am - " + u1 + ": Call me",
	"1/1/23, 10:09 am - " + u2 + ": OK",
	"1/1/23, 10:10 am - " + u1 + " left",
	"",
}, "\n")

func TestParseScenarioS1(t *testing.T) {
	media := MediaByName{"IMG-W0.jpg": {}, "IMG-W2.jpg": {}}

	msgs, err := Parse(sampleTranscript, "WhatsApp Chat with test", media, 0, "drive", "folder-1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if len(msgs) != 7 {
		t.Fatalf("expected 7 messages, got %d", len(msgs))
	}

	wantContent := []string{
		"Hi",
		"IMG-W0.jpg (file attached)",
		"IMG-W1.jpg (file attached)",
		"Neat photo",
		"Yea\nLet me write\nThree lines",
		"Call me",
		"OK",
	}
	for i, want := range wantContent {
		if msgs[i].Content != want {
			t.Errorf("msgs[%d].Content = %q, want %q", i, msgs[i].Content, want)
		}
		if msgs[i].Order != i {
			t.Errorf("msgs[%d].Order = %d, want %d", i, msgs[i].Order, i)
		}
	}

	if !msgs[1].HasMedia {
		t.Errorf("msgs[1] (IMG-W0.jpg) should have HasMedia=true")
	}
	if msgs[2].HasMedia {
		t.Errorf("msgs[2] (IMG-W1.jpg, not in media set) should have HasMedia=false")
	}
	if msgs[5].HasMedia {
		t.Errorf("msgs[5] (Call me) should have HasMedia=false")
	}

	// Senders are anonymized: u1 and u2 must map to distinct, non-raw ids.
	if msgs[0].SenderID == u2 || msgs[0].SenderID == "" {
		t.Errorf("sender id must be anonymized and non-empty, got %q", msgs[0].SenderID)
	}
	if msgs[0].SenderID != msgs[1].SenderID {
		t.Errorf("same sender (u2) across messages 0 and 1 should anonymize identically")
	}
	if msgs[3].SenderID == msgs[0].SenderID {
		t.Errorf("different senders (u1 vs u2) should anonymize differently")
	}

	// Every message shares the same group id and file_datetime (last
	// message's datetime in this file).
	for i := range msgs {
		if msgs[i].GroupID != msgs[0].GroupID {
			t.Errorf("msgs[%d].GroupID differs from msgs[0]", i)
		}
		if !msgs[i].FileDatetime.Equal(msgs[6].DT) {
			t.Errorf("msgs[%d].FileDatetime should equal last message's dt", i)
		}
	}
}

func TestParseActionLinesProduceNoMessages(t *testing.T) {
	msgs, err := Parse(sampleTranscript, "WhatsApp Chat with test", MediaByName{}, 0, "drive", "folder-1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	for _, m := range msgs {
		if strings.Contains(m.Content, "encrypted") || strings.Contains(m.Content, "created group") {
			t.Errorf("action line leaked into a message: %q", m.Content)
		}
	}
}

func TestParseContinuationWithoutCurrentIsDiscarded(t *testing.T) {
	blob := "stray continuation line with no preceding header\n" +
		"1/1/23, 9:00 am - " + u1 + ": first\n"
	msgs, err := Parse(blob, "WhatsApp Chat with test", MediaByName{}, 0, "drive", "folder-1")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Content != "first" {
		t.Fatalf("expected exactly one message %q, got %+v", "first", msgs)
	}
}

func TestParseInvalidTimestampFails(t *testing.T) {
	blob := "13/13/9999, 99:99 am - " + u1 + ": hello\n"
	_, err := Parse(blob, "WhatsApp Chat with test", MediaByName{}, 0, "drive", "folder-1")
	if err == nil {
		t.Fatalf("expected a ParseError for an unparseable timestamp")
	}
	var pe *ParseError
	if !asParseError(err, &pe) {
		t.Fatalf("expected *ParseError, got %T: %v", err, err)
	}
}

func asParseError(err error, target **ParseError) bool {
	pe, ok := err.(*ParseError)
	if ok {
		*target = pe
	}
	return ok
}
