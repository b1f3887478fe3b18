package equivalence

import (
	"encoding/json"
	"strings"

	"inframap/internal/core"
)

// EnumCommentSentinel is the fixed short ASCII prefix marking the start
// of the embedded enum-metadata JSON inside an engine-side column
// comment (§4.3, §6.3).
const EnumCommentSentinel = "__moose_enum__:"

type enumCommentPayload struct {
	Enum enumCommentEnum `json:"enum"`
}

type enumCommentEnum struct {
	Name    string                `json:"name"`
	Members []enumCommentMember   `json:"members"`
}

type enumCommentMember struct {
	Name  string      `json:"name"`
	Value interface{} `json:"value"`
}

// BuildEnumComment composes the engine-side comment for an enum column:
// "<user comment> <sentinel><json>", omitting the leading space when
// userComment is empty.
func BuildEnumComment(userComment string, enum *core.DataEnum) string {
	payload := enumCommentPayload{Enum: enumCommentEnum{Name: enum.Name}}
	for _, m := range enum.Members {
		var v interface{}
		switch {
		case m.IntValue != nil:
			v = *m.IntValue
		case m.StringValue != nil:
			v = *m.StringValue
		}
		payload.Enum.Members = append(payload.Enum.Members, enumCommentMember{Name: m.Name, Value: v})
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		// DataEnum is built from plain values only; Marshal cannot fail.
		panic(err)
	}

	if userComment == "" {
		return EnumCommentSentinel + string(encoded)
	}
	return userComment + " " + EnumCommentSentinel + string(encoded)
}

// ParseEnumComment locates the sentinel in a raw engine comment and
// splits it into the kept user-comment portion and the parsed enum. If
// the sentinel is absent, the entire comment is treated as user
// comment and ok is false.
func ParseEnumComment(raw string) (userComment string, enum *core.DataEnum, ok bool) {
	idx := strings.Index(raw, EnumCommentSentinel)
	if idx < 0 {
		return raw, nil, false
	}

	userComment = strings.TrimSpace(raw[:idx])
	jsonPart := raw[idx+len(EnumCommentSentinel):]

	var payload enumCommentPayload
	if err := json.Unmarshal([]byte(jsonPart), &payload); err != nil {
		return raw, nil, false
	}

	parsed := &core.DataEnum{Name: payload.Enum.Name}
	for _, m := range payload.Enum.Members {
		member := core.EnumMember{Name: m.Name}
		switch v := m.Value.(type) {
		case float64:
			n := int(v)
			member.IntValue = &n
		case string:
			member.StringValue = &v
		}
		parsed.Members = append(parsed.Members, member)
	}

	return userComment, parsed, true
}
