package transcript

import "regexp"

// actionLine matches a timestamped system line (group creation, joins,
// leaves, the encryption notice, etc.) — anything that is NOT followed by
// "sender: " per spec section 4.2.
var actionLine = regexp.MustCompile(`(?i)^(?P<day>\d+/\d+/\d+), (?P<tm>\d+:\d+(?: am| pm)?)\s*-\s*(?P<tail>[^:]+)$`)

// msgLine matches a timestamped user message. MSG_LINE is the more specific
// alternative (spec section 9, "Regex alternates") and must be tried before
// actionLine so it takes precedence on lines that match both.
var msgLine = regexp.MustCompile(`(?i)^(?P<day>\d+/\d+/\d+), (?P<tm>\d+:\d+(?: am| pm)?)\s*-\s*(?P<sn>[^:]+): (?P<tail>.*)$`)

// fileAttached matches message content that names an attached media file.
var fileAttached = regexp.MustCompile(`^(?P<fn>.+?) \(file attached\)$`)

// lineKind classifies a single transcript line.
type lineKind int

const (
	kindContinuation lineKind = iota
	kindAction
	kindMessage
)

// headerMatch holds the named capture groups of a message or action header.
type headerMatch struct {
	day, tm, sender, tail string
}

// classifyLine determines what kind of transcript line this is and, for
// action/message headers, extracts the named groups. Message headers take
// precedence over action headers per spec section 9.
func classifyLine(line string) (lineKind, headerMatch) {
	if m := msgLine.FindStringSubmatch(line); m != nil {
		idx := msgLine.SubexpNames()
		hm := headerMatch{}
		for i, name := range idx {
			switch name {
			case "day":
				hm.day = m[i]
			case "tm":
				hm.tm = m[i]
			case "sn":
				hm.sender = m[i]
			case "tail":
				hm.tail = m[i]
			}
		}
		return kindMessage, hm
	}
	if m := actionLine.FindStringSubmatch(line); m != nil {
		idx := actionLine.SubexpNames()
		hm := headerMatch{}
		for i, name := range idx {
			switch name {
			case "day":
				hm.day = m[i]
			case "tm":
				hm.tm = m[i]
			case "tail":
				hm.tail = m[i]
			}
		}
		return kindAction, hm
	}
	return kindContinuation, headerMatch{}
}

// matchFileAttached reports whether content is "<filename> (file attached)"
// and returns the filename if so.
func matchFileAttached(content string) (string, bool) {
	m := fileAttached.FindStringSubmatch(content)
	if m == nil {
		return "", false
	}
	for i, name := range fileAttached.SubexpNames() {
		if name == "fn" {
			return m[i], true
		}
	}
	return "", false
}
