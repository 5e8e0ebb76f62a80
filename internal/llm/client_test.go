package llm

import (
	"strings"
	"testing"

	"github.com/tuannvm/context-a2a/internal/models"
)

func TestBuildTaskPrompt_InstructionPerType(t *testing.T) {
	inputs := map[string]string{"message": "the widget crashes", "intent": "diagnose"}

	p := buildTaskPrompt(models.TaskBugDiagnosis, inputs)
	if !strings.Contains(p, "Diagnose the bug") {
		t.Errorf("Expected the bug-diagnosis instruction, got: %s", p)
	}
	if !strings.Contains(p, "message:\nthe widget crashes") {
		t.Errorf("Expected the message section, got: %s", p)
	}

	// Unknown types fall back to the generic instruction.
	p = buildTaskPrompt(models.TaskType("quantum_refactor"), inputs)
	if !strings.Contains(p, "Complete the following request") {
		t.Errorf("Expected the fallback instruction, got: %s", p)
	}
}

func TestBuildTaskPrompt_Deterministic(t *testing.T) {
	inputs := map[string]string{
		"message":    "text",
		"intent":     "analyze",
		"references": "issue:#1",
		"context":    "#1: crash",
	}
	first := buildTaskPrompt(models.TaskCodeAnalysis, inputs)
	for i := 0; i < 10; i++ {
		if buildTaskPrompt(models.TaskCodeAnalysis, inputs) != first {
			t.Fatal("Prompt building is not deterministic")
		}
	}
}

func TestBuildTaskPrompt_SkipsEmptyInputs(t *testing.T) {
	p := buildTaskPrompt(models.TaskCodeAnalysis, map[string]string{"message": "x", "context": ""})
	if strings.Contains(p, "context:") {
		t.Errorf("Expected empty inputs to be omitted, got: %s", p)
	}
}

func TestTruncateForLogging(t *testing.T) {
	short := "short prompt"
	if truncateForLogging(short) != short {
		t.Error("Short strings should pass through unchanged")
	}
	long := strings.Repeat("x", 2000)
	got := truncateForLogging(long)
	if len(got) >= len(long) {
		t.Error("Long strings should be truncated")
	}
	if !strings.HasSuffix(got, "... [truncated]") {
		t.Errorf("Expected truncation marker, got suffix %q", got[len(got)-20:])
	}
}
