package pwm

// Recorder is a test double that records every call made to the channel.
// It is not safe for concurrent use; tests that share it with a goroutine
// should only inspect it after the goroutine has stopped.
type Recorder struct {
	// Max is the value reported by MaxDuty.
	Max uint32

	// Writes contains every duty value passed to SetDuty, in order.
	Writes []uint32

	EnableCalls  int
	DisableCalls int

	duty uint32
}

// NewRecorder returns a Recorder reporting the given max duty.
func NewRecorder(maxDuty uint32) *Recorder {
	return &Recorder{Max: maxDuty}
}

func (r *Recorder) Enable()  { r.EnableCalls++ }
func (r *Recorder) Disable() { r.DisableCalls++ }

func (r *Recorder) SetDuty(duty uint32) {
	r.duty = duty
	r.Writes = append(r.Writes, duty)
}

func (r *Recorder) Duty() uint32    { return r.duty }
func (r *Recorder) MaxDuty() uint32 { return r.Max }
