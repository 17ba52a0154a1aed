package recorder

// NoopRecorder is used when the database cannot be opened. The bot keeps
// alerting; it just stops keeping history.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) AppendSignals(_ []SignalRow) error              { return nil }
func (n *NoopRecorder) InsertPaperEntry(_ PaperTradeRow) error         { return nil }
func (n *NoopRecorder) CompletePaperTrade(_, _, _ string, _ int) error { return nil }
func (n *NoopRecorder) AppendResolutions(_ []ResolutionRow) error      { return nil }
func (n *NoopRecorder) SignalsByResolutionDate(_ string) ([]SignalRow, error) {
	return nil, nil
}
func (n *NoopRecorder) AllSignals() ([]SignalRow, error)         { return nil, nil }
func (n *NoopRecorder) AllPaperTrades() ([]PaperTradeRow, error) { return nil, nil }
func (n *NoopRecorder) AllResolutions() ([]ResolutionRow, error) { return nil, nil }
func (n *NoopRecorder) Close() error                             { return nil }
