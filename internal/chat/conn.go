//go:generate go run go.uber.org/mock/mockgen -source=conn.go -destination=../mocks/mock_conn.go -package=mocks
package chat

// ReadStatus tells how a ReadLine call ended.
type ReadStatus int

const (
	// ReadOK means Text holds one line without its terminator.
	ReadOK ReadStatus = iota
	// ReadEOF means the peer closed the stream in an orderly way.
	ReadEOF
	// ReadFailed means the transport reported an error, kept in Err.
	ReadFailed
)

func (s ReadStatus) String() string {
	switch s {
	case ReadOK:
		return "line"
	case ReadEOF:
		return "end-of-stream"
	case ReadFailed:
		return "failure"
	default:
		return "unknown"
	}
}

// ReadResult is the outcome of reading the next line from a connection.
type ReadResult struct {
	Status ReadStatus
	Text   string
	Err    error
}

// Line wraps a successfully read line.
func Line(text string) ReadResult {
	return ReadResult{Status: ReadOK, Text: text}
}

// EndOfStream reports an orderly disconnect.
func EndOfStream() ReadResult {
	return ReadResult{Status: ReadEOF}
}

// Failure reports a transport error.
func Failure(err error) ReadResult {
	return ReadResult{Status: ReadFailed, Err: err}
}

// Conn abstracts a line-oriented bidirectional connection for both TCP and
// WebSocket transports.
//
// ReadLine is only called from the session's reader goroutine and WriteLine only
// from its writer goroutine. Close may be called from any goroutine, more than
// once, and must unblock a pending ReadLine.
type Conn interface {
	ReadLine() ReadResult
	WriteLine(line string) error
	Close() error
	RemoteAddr() string
}
