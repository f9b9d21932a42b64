package scorehandlers

import (
	"context"

	scoreservice "github.com/Gr33nOps/VTcade/app/modules/score/application"
)

// FakeScoreService provides a programmable stub for the scoreservice.Service interface.
type FakeScoreService struct {
	trace []string

	SubmitFunc      func(ctx context.Context, playerID, gameID string, raw any) (*scoreservice.SubmissionResult, error)
	ResetGameFunc   func(ctx context.Context, gameID string) (int, error)
	DeleteEntryFunc func(ctx context.Context, gameID, playerID string) error
	FlagEntryFunc   func(ctx context.Context, gameID, playerID, reason string, flagged bool) error
}

func NewFakeScoreService() *FakeScoreService {
	return &FakeScoreService{trace: []string{}}
}

func (f *FakeScoreService) record(step string) {
	f.trace = append(f.trace, step)
}

// Trace returns the sequence of service methods called.
func (f *FakeScoreService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeScoreService) Submit(ctx context.Context, playerID, gameID string, raw any) (*scoreservice.SubmissionResult, error) {
	f.record("Submit")
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, playerID, gameID, raw)
	}
	return &scoreservice.SubmissionResult{}, nil
}

func (f *FakeScoreService) ResetGame(ctx context.Context, gameID string) (int, error) {
	f.record("ResetGame")
	if f.ResetGameFunc != nil {
		return f.ResetGameFunc(ctx, gameID)
	}
	return 0, nil
}

func (f *FakeScoreService) DeleteEntry(ctx context.Context, gameID, playerID string) error {
	f.record("DeleteEntry")
	if f.DeleteEntryFunc != nil {
		return f.DeleteEntryFunc(ctx, gameID, playerID)
	}
	return nil
}

func (f *FakeScoreService) FlagEntry(ctx context.Context, gameID, playerID, reason string, flagged bool) error {
	f.record("FlagEntry")
	if f.FlagEntryFunc != nil {
		return f.FlagEntryFunc(ctx, gameID, playerID, reason, flagged)
	}
	return nil
}

var _ scoreservice.Service = (*FakeScoreService)(nil)
