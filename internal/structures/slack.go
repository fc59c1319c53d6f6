package structures

const (
	ResponseEphemeral = "ephemeral"
	ResponseInChannel = "in_channel"
)

type SlackText struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

type SlackButton struct {
	Type     string     `json:"type"`
	Text     *SlackText `json:"text"`
	ActionID string     `json:"action_id"`
	Value    string     `json:"value"`
	Style    string     `json:"style,omitempty"`
}

type SlackBlock struct {
	Type     string        `json:"type"`
	Text     *SlackText    `json:"text,omitempty"`
	Elements []SlackButton `json:"elements,omitempty"`
}

// SlackMessage is the response payload for slash commands, interactions and
// response_url posts alike.
type SlackMessage struct {
	ResponseType    string       `json:"response_type,omitempty"`
	Text            string       `json:"text,omitempty"`
	Blocks          []SlackBlock `json:"blocks,omitempty"`
	ReplaceOriginal bool         `json:"replace_original,omitempty"`
}
