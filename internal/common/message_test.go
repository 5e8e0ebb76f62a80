package common

import (
	"testing"

	"github.com/tuannvm/context-a2a/internal/models"
	"trpc.group/trpc-go/trpc-a2a-go/protocol"
)

func textMessage(text string) protocol.Message {
	return protocol.Message{Parts: []protocol.Part{protocol.NewTextPart(text)}}
}

func TestExtractMessageTask_JSONPayload(t *testing.T) {
	payload := `{"messageId":"m-1","text":"Fix issue #123","intent":"diagnose","templateName":"bug_analysis","executeTasks":true}`

	var task models.MessageAvailableTask
	if err := ExtractMessageTask(textMessage(payload), &task); err != nil {
		t.Fatalf("Failed to extract task: %v", err)
	}

	if task.MessageID != "m-1" {
		t.Errorf("Expected MessageID m-1, got %s", task.MessageID)
	}
	if task.Text != "Fix issue #123" {
		t.Errorf("Expected text to be extracted, got %q", task.Text)
	}
	if task.TemplateName != "bug_analysis" || task.Intent != "diagnose" || !task.ExecuteTasks {
		t.Errorf("Unexpected task fields: %+v", task)
	}
}

func TestExtractMessageTask_LooseMapKeys(t *testing.T) {
	payload := `{"id":"m-2","message":"look at acme/widgets","template":"default"}`

	var task models.MessageAvailableTask
	if err := ExtractMessageTask(textMessage(payload), &task); err != nil {
		t.Fatalf("Failed to extract task: %v", err)
	}
	if task.MessageID != "m-2" {
		t.Errorf("Expected MessageID m-2, got %s", task.MessageID)
	}
	if task.Text != "look at acme/widgets" {
		t.Errorf("Expected alternate message key to be accepted, got %q", task.Text)
	}
	if task.TemplateName != "default" {
		t.Errorf("Expected template name default, got %s", task.TemplateName)
	}
}

func TestExtractMessageTask_PlainTextFallback(t *testing.T) {
	var task models.MessageAvailableTask
	if err := ExtractMessageTask(textMessage("just fix issue #9 please"), &task); err != nil {
		t.Fatalf("Failed to extract task: %v", err)
	}
	if task.Text != "just fix issue #9 please" {
		t.Errorf("Expected plain text to become the message, got %q", task.Text)
	}
}

func TestExtractMessageTask_EmbeddedJSON(t *testing.T) {
	payload := `Here is the request: {"text":"Fix issue #123","intent":"diagnose"} thanks`

	var task models.MessageAvailableTask
	if err := ExtractMessageTask(textMessage(payload), &task); err != nil {
		t.Fatalf("Failed to extract task: %v", err)
	}
	if task.Text != "Fix issue #123" {
		t.Errorf("Expected embedded JSON to win over the prose, got %q", task.Text)
	}
}

func TestExtractMessageTask_EmptyMessage(t *testing.T) {
	var task models.MessageAvailableTask
	if err := ExtractMessageTask(protocol.Message{}, &task); err == nil {
		t.Error("Expected an error for a message with no parts")
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON(`prefix {"a": 1} suffix`)
	if err != nil {
		t.Fatalf("ExtractJSON failed: %v", err)
	}
	if got != `{"a": 1}` {
		t.Errorf("Unexpected extraction: %q", got)
	}

	if _, err := ExtractJSON("no json here"); err == nil {
		t.Error("Expected an error when no JSON is present")
	}
}
