package scoring_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/modwarden/warden-api/internal/domain/catalog"
	"github.com/modwarden/warden-api/internal/domain/member"
	"github.com/modwarden/warden-api/internal/domain/prompt"
	"github.com/modwarden/warden-api/internal/domain/scoring"
	"github.com/modwarden/warden-api/internal/pkg/classifier"
)

type fakeClassifier struct {
	verdict *classifier.Verdict
	err     error
	calls   int
}

func (f *fakeClassifier) Classify(ctx context.Context, prompt string, levelNames []string, message string, contextMessages []string) (*classifier.Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

type fakePrompts struct {
	template *prompt.Template
	err      error
}

func (f *fakePrompts) GetActive(ctx context.Context) (*prompt.Template, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.template, nil
}

type fakeLevelLister struct {
	levels []*catalog.WarningLevel
}

func (f *fakeLevelLister) ListLevels(ctx context.Context) ([]*catalog.WarningLevel, error) {
	return f.levels, nil
}

func newTestPipeline(repo *fakeRepo, cls *fakeClassifier) *scoring.Pipeline {
	svc, _ := newTestService(repo, &fakeExecutor{})
	prompts := &fakePrompts{template: &prompt.Template{
		ID:       uuid.New(),
		Name:     "default",
		Content:  "You are a moderation assistant.",
		IsActive: true,
	}}
	levels := &fakeLevelLister{levels: []*catalog.WarningLevel{yellowLevel()}}
	return scoring.NewPipeline(svc, cls, prompts, levels)
}

func TestPipelineViolationRecorded(t *testing.T) {
	repo := &fakeRepo{user: &member.User{DiscordID: "42", TotalPoints: 1}}
	cls := &fakeClassifier{verdict: &classifier.Verdict{
		ViolationDetected: true,
		LevelName:         "Yellow",
		Explanation:       "spam link",
	}}
	p := newTestPipeline(repo, cls)

	result, err := p.HandleMessage(context.Background(), "42", "alice", "buy cheap coins", nil)
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if !result.ViolationDetected {
		t.Fatal("expected a violation")
	}
	if result.LevelName != "Yellow" || result.NewTotal != 1 {
		t.Fatalf("wrong result: %+v", result)
	}
	if len(repo.recorded) != 1 {
		t.Fatalf("expected one warning recorded, got %d", len(repo.recorded))
	}
}

func TestPipelineClassifierFailurePassesThrough(t *testing.T) {
	repo := &fakeRepo{}
	cls := &fakeClassifier{err: errors.New("all retries exhausted")}
	p := newTestPipeline(repo, cls)

	result, err := p.HandleMessage(context.Background(), "42", "alice", "hello", nil)
	if err != nil {
		t.Fatalf("classifier failure must degrade, not fail: %v", err)
	}
	if result.ViolationDetected {
		t.Fatal("no violation may be reported when the classifier is down")
	}
	if len(repo.recorded) != 0 {
		t.Fatal("no warning may be recorded when the classifier is down")
	}
}

func TestPipelineNoViolationVerdict(t *testing.T) {
	repo := &fakeRepo{}
	cls := &fakeClassifier{verdict: &classifier.Verdict{ViolationDetected: false}}
	p := newTestPipeline(repo, cls)

	result, err := p.HandleMessage(context.Background(), "42", "alice", "hello", nil)
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if result.ViolationDetected || len(repo.recorded) != 0 {
		t.Fatal("clean message must pass through untouched")
	}
}

func TestPipelineUnknownLevelPassesThrough(t *testing.T) {
	repo := &fakeRepo{}
	cls := &fakeClassifier{verdict: &classifier.Verdict{
		ViolationDetected: true,
		LevelName:         "Ultraviolet",
	}}
	p := newTestPipeline(repo, cls)

	result, err := p.HandleMessage(context.Background(), "42", "alice", "hello", nil)
	if err != nil {
		t.Fatalf("unknown level must degrade, not fail: %v", err)
	}
	if result.ViolationDetected {
		t.Fatal("unknown level name must not produce a violation")
	}
}

func TestPipelineNoActivePrompt(t *testing.T) {
	repo := &fakeRepo{}
	cls := &fakeClassifier{}
	svc, _ := newTestService(repo, &fakeExecutor{})
	p := scoring.NewPipeline(svc, cls,
		&fakePrompts{err: prompt.ErrNoActiveTemplate},
		&fakeLevelLister{levels: []*catalog.WarningLevel{yellowLevel()}})

	result, err := p.HandleMessage(context.Background(), "42", "alice", "hello", nil)
	if err != nil {
		t.Fatalf("missing prompt must degrade, not fail: %v", err)
	}
	if result.ViolationDetected {
		t.Fatal("no violation without an active prompt")
	}
	if cls.calls != 0 {
		t.Fatal("classifier must not be called without a prompt")
	}
}

func TestPipelineSkipsHiddenLevels(t *testing.T) {
	hidden := yellowLevel()
	hidden.IsVisible = false

	repo := &fakeRepo{}
	cls := &fakeClassifier{}
	svc, _ := newTestService(repo, &fakeExecutor{})
	p := scoring.NewPipeline(svc, cls,
		&fakePrompts{template: &prompt.Template{Content: "prompt", IsActive: true}},
		&fakeLevelLister{levels: []*catalog.WarningLevel{hidden}})

	result, err := p.HandleMessage(context.Background(), "42", "alice", "hello", nil)
	if err != nil {
		t.Fatalf("handle failed: %v", err)
	}
	if result.ViolationDetected || cls.calls != 0 {
		t.Fatal("with no visible levels the message must pass through unclassified")
	}
}
