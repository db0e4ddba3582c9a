package models

import "testing"

func TestCaptureStepsOrder(t *testing.T) {
	steps := CaptureSteps()
	want := []WorkflowStep{StepInput, StepAnalysis, StepICDSelection, StepTreatment, StepMedicine, StepExport}

	if len(steps) != len(want) {
		t.Fatalf("expected %d steps, got %d", len(want), len(steps))
	}
	for i, step := range want {
		if steps[i] != step {
			t.Fatalf("step %d = %s, want %s", i, steps[i], step)
		}
	}
}

func TestNextStep(t *testing.T) {
	next, ok := NextStep(StepInput)
	if !ok || next != StepAnalysis {
		t.Fatalf("NextStep(input) = %s, %v", next, ok)
	}

	if _, ok := NextStep(StepExport); ok {
		t.Fatal("expected no step after export")
	}
	if _, ok := NextStep(WorkflowStep("bogus")); ok {
		t.Fatal("expected no step for unknown input")
	}
}
