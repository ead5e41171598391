package radio

type fakeStack struct {
	handler  func(EventType)
	dutyRate uint8
	dutySets int
}

func (f *fakeStack) TxPending() bool                        { return false }
func (f *fakeStack) SubmitUplink(uint8, []byte, bool) error { return nil }
func (f *fakeStack) MaxPayload() int                        { return 51 }
func (f *fakeStack) SetDutyRate(rate uint8)                 { f.dutyRate = rate; f.dutySets++ }
func (f *fakeStack) Service()                               {}
func (f *fakeStack) SetEventHandler(fn func(EventType))     { f.handler = fn }

type fakeWatchdog struct{ kicks int }

func (w *fakeWatchdog) KeepAlive() { w.kicks++ }
