// Package transcript turns a raw WhatsApp chat export blob into an ordered
// sequence of model.Message records (spec sections 4.2 and 4.3).
package transcript

import (
	"strings"

	"github.com/tattle-made/whatsapp-scraper/internal/anonymize"
	"github.com/tattle-made/whatsapp-scraper/internal/model"
)

// MediaByName is the set of media file names available to resolve
// "<name> (file attached)" message bodies against, keyed by filename.
type MediaByName map[string]struct{}

// Parse streams blob into an ordered sequence of messages belonging to one
// transcript. groupTitle is the exported chat title (e.g. "WhatsApp Chat
// with Some Group" — the exact file name, including that prefix), anonymized
// once into the group id shared by every message in the result. fileIdx
// names this transcript for the Group Merger's file-bucketing step.
// sourceType/sourceLoc are carried through as provenance (spec section 3);
// sourceLoc is independent of groupTitle (e.g. a drive folder id versus a
// chat's exported name) and both feed the ConversationKey.
//
// Parse never fails on a malformed individual line — only a malformed
// header's timestamp is fatal for the whole file, returned as a
// *ParseError, matching spec section 7 (ParseError: skip that file, warn).
func Parse(blob, groupTitle string, mediaByName MediaByName, fileIdx int, sourceType, sourceLoc string) ([]model.Message, error) {
	anon := anonymize.Default()
	groupID := anon.Anonymize(groupTitle, "")

	var out []model.Message
	var current *model.Message

	flush := func() {
		if current != nil {
			out = append(out, *current)
			current = nil
		}
	}

	lines := strings.Split(blob, "\n")
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		kind, hm := classifyLine(line)

		switch kind {
		case kindAction:
			// Action header ends whatever message was in progress; the
			// action line itself never produces a message.
			flush()
		case kindMessage:
			flush()
			dt, err := parseDayTime(hm.day, hm.tm)
			if err != nil {
				return nil, err
			}
			senderID := anon.Anonymize(strings.TrimSpace(hm.sender), groupID)
			current = &model.Message{
				DT:         dt,
				SenderID:   senderID,
				GroupID:    groupID,
				SourceType: sourceType,
				SourceLoc:  sourceLoc,
				Content:    hm.tail,
				FileIdx:    fileIdx,
			}
		default: // continuation
			if current != nil && line != "" {
				current.Content += "\n" + line
			}
		}
	}
	flush()

	if len(out) == 0 {
		return out, nil
	}

	fileDatetime := out[len(out)-1].DT
	for i := range out {
		out[i].Order = i
		out[i].Content = strings.TrimSpace(out[i].Content)
		out[i].FileDatetime = fileDatetime

		if fn, ok := matchFileAttached(out[i].Content); ok {
			if _, known := mediaByName[fn]; known {
				out[i].HasMedia = true
				out[i].SetMediaFileName(fn)
			}
		}
	}

	return out, nil
}
