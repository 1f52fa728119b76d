package wikiboot

import (
	"encoding/json"
	"maps"
)

// Bundle is a localization payload: message key to localized string, stamped
// with the engine version it matches and the language it satisfies. It is
// stored and transmitted as one flat JSON object.
type Bundle struct {
	Version  string
	Lang     string
	Messages map[string]string
}

// Clone returns a copy whose Messages map is detached from b.
func (b Bundle) Clone() Bundle {
	b.Messages = maps.Clone(b.Messages)
	return b
}

// Merge copies messages into b, overwriting existing keys.
func (b *Bundle) Merge(messages map[string]string) {
	if len(messages) == 0 {
		return
	}
	if b.Messages == nil {
		b.Messages = make(map[string]string, len(messages))
	}
	maps.Copy(b.Messages, messages)
}

// Flatten returns the flat object form handed to storage and the engine.
func (b Bundle) Flatten() map[string]any {
	out := make(map[string]any, len(b.Messages)+2)
	for key, value := range b.Messages {
		out[key] = value
	}
	out["version"] = b.Version
	out["lang"] = b.Lang
	return out
}

func (b Bundle) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Flatten())
}

func (b *Bundle) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*b = Bundle{}
	for key, value := range raw {
		text, ok := value.(string)
		if !ok {
			continue
		}
		switch key {
		case "version":
			b.Version = text
		case "lang":
			b.Lang = text
		default:
			if b.Messages == nil {
				b.Messages = map[string]string{}
			}
			b.Messages[key] = text
		}
	}
	return nil
}
