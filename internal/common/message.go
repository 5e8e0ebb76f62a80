package common

import (
	"encoding/json"
	"fmt"

	log "github.com/tuannvm/context-a2a/internal/logging"
	"github.com/tuannvm/context-a2a/internal/models"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

// ExtractMessageTask extracts a MessageAvailableTask from an A2A message.
// Peers send either a DataPart carrying the task object or a TextPart whose
// text is (or embeds) the task JSON; both shapes are accepted. Text is the
// only required field.
func ExtractMessageTask(message protocol.Message, task *models.MessageAvailableTask) error {
	if len(message.Parts) == 0 {
		return fmt.Errorf("message has no parts")
	}

	for _, part := range message.Parts {
		// DataPart first, value or pointer.
		var dp *protocol.DataPart
		switch v := part.(type) {
		case protocol.DataPart:
			dp = &v
		case *protocol.DataPart:
			dp = v
		}
		if dp != nil && dp.Data != nil {
			raw, err := json.Marshal(dp.Data)
			if err != nil {
				log.Debugf("Failed to marshal DataPart.Data: %v", err)
				continue
			}
			if err := json.Unmarshal(raw, task); err == nil && task.Text != "" {
				return nil
			}
			var dataMap map[string]interface{}
			if err := json.Unmarshal(raw, &dataMap); err == nil {
				if err := extractFromMap(dataMap, task); err == nil {
					return nil
				}
			}
		}

		// TextPart next, value or pointer.
		var text string
		switch v := part.(type) {
		case protocol.TextPart:
			text = v.Text
		case *protocol.TextPart:
			if v != nil {
				text = v.Text
			}
		}
		if text == "" {
			continue
		}

		if err := json.Unmarshal([]byte(text), task); err == nil && task.Text != "" {
			return nil
		}
		var dataMap map[string]interface{}
		if err := json.Unmarshal([]byte(text), &dataMap); err == nil {
			if err := extractFromMap(dataMap, task); err == nil {
				return nil
			}
		}
		// The text may embed the JSON in surrounding prose.
		if embedded, err := ExtractJSON(text); err == nil {
			if err := json.Unmarshal([]byte(embedded), task); err == nil && task.Text != "" {
				return nil
			}
		}
		// Plain text: treat the whole part as the message to process.
		task.Text = text
		return nil
	}

	return fmt.Errorf("could not extract message task from message")
}

// extractFromMap pulls the task fields out of a loosely-shaped map.
func extractFromMap(data map[string]interface{}, task *models.MessageAvailableTask) error {
	text, ok := GetStringValue(data, "text", "message", "body", "description")
	if !ok {
		return fmt.Errorf("no message text found in data")
	}
	task.Text = text

	if id, ok := GetStringValue(data, "messageId", "message_id", "id"); ok {
		task.MessageID = id
	}
	if name, ok := GetStringValue(data, "templateName", "template_name", "template"); ok {
		task.TemplateName = name
	}
	if intent, ok := GetStringValue(data, "intent"); ok {
		task.Intent = intent
	}
	if execute, ok := data["executeTasks"].(bool); ok {
		task.ExecuteTasks = execute
	}
	return nil
}
