package history

import (
	"regexp"
	"time"
)

// failSafeTruncateLen is the character budget for the single-message
// fail-safe path when no tag markup parses (§4.2, §8 boundary behaviors).
const failSafeTruncateLen = 10000

var tagPattern = regexp.MustCompile(`(?s)<USER>(.*?)</USER>|<BOT>(.*?)</BOT>|<SALE>(.*?)</SALE>`)

// Parse turns a history suffix into a chronologically ordered message
// list, matching on tag boundaries separated by <br>. Ordering follows
// position in s, not tag type; malformed fragments (unmatched text) are
// dropped silently. When nothing matches, s is truncated to the last
// failSafeTruncateLen characters and returned as one user message —
// this never returns an error; it is a fail-safe, not a parse failure.
func Parse(s string) []Message {
	if s == "" {
		return []Message{}
	}

	matches := tagPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return []Message{singleUserMessage(truncateTail(s, failSafeTruncateLen))}
	}

	base := float64(time.Now().UnixNano()) / 1e9
	messages := make([]Message, 0, len(matches))
	for i, m := range matches {
		role, content := "", ""
		switch {
		case m[2] >= 0:
			role, content = RoleUser, s[m[2]:m[3]]
		case m[4] >= 0:
			role, content = RoleBot, s[m[4]:m[5]]
		case m[6] >= 0:
			role, content = RoleSale, s[m[6]:m[7]]
		default:
			continue
		}
		messages = append(messages, Message{
			Role:      role,
			Content:   content,
			Timestamp: base + float64(i)*0.001,
		})
	}
	return messages
}

func singleUserMessage(content string) Message {
	return Message{
		Role:      RoleUser,
		Content:   content,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
	}
}

func truncateTail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
