package mqtt

import "ledpulse/internal/player"

// FakeSubmitter records submitted requests for test assertions.
type FakeSubmitter struct {
	// Requests contains every request passed to Submit.
	Requests []player.Request

	// SubmitError, if set, is returned by Submit.
	SubmitError error
}

func (f *FakeSubmitter) Submit(req player.Request) error {
	if f.SubmitError != nil {
		return f.SubmitError
	}
	f.Requests = append(f.Requests, req)
	return nil
}
