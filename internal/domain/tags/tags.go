// Package tags parses free-text annotations into structured tags and
// applies tag-triggered side effects to cards.
//
// Three token families are recognized: #word (hashtag), @word (mention)
// and !word (priority indicator). Extraction is a plain lexical scan with
// no escaping or quoting; unrecognized prefixes are ignored.
package tags

import (
	"strings"
	"time"

	"github.com/okian/flowboard/internal/domain/model"
)

// Well-known tags and defaults.
const (
	TagBlocked           = "#blocked"
	blockedWord          = "blocked"
	defaultBlockedReason = "blocked via tag"
)

// ActionType classifies a side effect triggered by applying tags.
type ActionType string

// Tag-triggered actions.
const (
	ActionMarkBlocked    ActionType = "mark_blocked"
	ActionNotifyAssignee ActionType = "notify_assignee"
	ActionSetPriority    ActionType = "set_priority"
)

// Action is a single side effect emitted while applying tags to a card.
type Action struct {
	Type   ActionType `json:"type"`
	Target string     `json:"target,omitempty"`
}

// Result reports what applying tags to a card did.
type Result struct {
	TagsProcessed []string          `json:"tags_processed"`
	Actions       []Action          `json:"actions_triggered"`
	StatusUpdates map[string]string `json:"status_updates"`
}

// Extract scans text for tag tokens and returns them normalized to
// lowercase, in order of appearance. Extraction is idempotent: the same
// text always yields the same tag list.
func Extract(text string) []string {
	var tags []string
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		prefix := runes[i]
		if prefix != '#' && prefix != '@' && prefix != '!' {
			continue
		}
		j := i + 1
		for j < len(runes) && isWordRune(runes[j]) {
			j++
		}
		if j == i+1 {
			continue // bare prefix with no word
		}
		tags = append(tags, strings.ToLower(string(runes[i:j])))
		i = j - 1
	}
	return tags
}

func isWordRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}

// Apply runs the tag side effects against a card. source is the text the
// tags were extracted from; blockage is cued either by the #blocked tag or
// by the standalone word "blocked" anywhere in that text, so "blocked on
// #infra" blocks the card even though the tag list carries only #infra.
//
// Contract: extraction is idempotent but side effects are not, except for
// the assignee case: the first apply sets the assignee, subsequent applies
// are no-ops for the field. The notify-assignee action is emitted on every
// apply regardless of whether the assignee changed.
func Apply(card *model.Card, tagList []string, source string, now time.Time) Result {
	res := Result{
		TagsProcessed: append([]string(nil), tagList...),
		StatusUpdates: make(map[string]string),
	}
	if hasTag(tagList, TagBlocked) || mentionsBlockage(source) {
		card.Blocked = true
		if card.BlockedReason == "" {
			card.BlockedReason = defaultBlockedReason
		}
		res.Actions = append(res.Actions, Action{Type: ActionMarkBlocked})
		res.StatusUpdates["blocked"] = "true"
	}
	for _, tag := range tagList {
		switch {
		case strings.HasPrefix(tag, "@"):
			name := strings.TrimPrefix(tag, "@")
			if card.Item.Assignee == "" {
				card.Item.Assignee = name
				res.StatusUpdates["assignee"] = name
			}
			// Emitted even when the assignee is already set; repeated
			// notification is the documented behavior of the board.
			res.Actions = append(res.Actions, Action{Type: ActionNotifyAssignee, Target: name})

		case strings.HasPrefix(tag, "!"):
			p, err := model.ParsePriority(strings.TrimPrefix(tag, "!"))
			if err != nil {
				continue // not a priority indicator we know
			}
			card.Item.Priority = p
			card.Item.UpdatedAt = now
			res.Actions = append(res.Actions, Action{Type: ActionSetPriority, Target: string(p)})
			res.StatusUpdates["priority"] = string(p)
		}
	}
	return res
}

func hasTag(list []string, tag string) bool {
	for _, t := range list {
		if t == tag {
			return true
		}
	}
	return false
}

// mentionsBlockage reports whether text contains "blocked" as a standalone
// word. "unblocked" does not count; "#blocked" does.
func mentionsBlockage(text string) bool {
	lower := strings.ToLower(text)
	for i := 0; ; {
		j := strings.Index(lower[i:], blockedWord)
		if j < 0 {
			return false
		}
		j += i
		end := j + len(blockedWord)
		startsWord := j == 0 || !isWordRune(rune(lower[j-1]))
		endsWord := end == len(lower) || !isWordRune(rune(lower[end]))
		if startsWord && endsWord {
			return true
		}
		i = end
	}
}
