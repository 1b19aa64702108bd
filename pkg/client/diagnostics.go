package client

// DiagnosticSink receives every error the client swallows. The tracking
// layer's contract is to never visibly fail the host application, so
// errors are reported here instead of being returned or panicking.
type DiagnosticSink interface {
	// DroppedBatch is called when a batch delivery attempt failed and the
	// batch was discarded.
	DroppedBatch(count int, err error)
	// ClientError is called for any other swallowed error, tagged with
	// the operation that produced it.
	ClientError(op string, err error)
}

// NopSink is the default DiagnosticSink; it discards everything.
type NopSink struct{}

func (NopSink) DroppedBatch(int, error)  {}
func (NopSink) ClientError(string, error) {}
