package lineserver

import (
	"strings"
	"unicode/utf8"
)

// Delimiter terminates every request and response line.
const Delimiter = '\n'

// DefaultMaxLineBytes bounds a single request line.
const DefaultMaxLineBytes = 4 * 1024

// Op is the operation of a parsed command.
type Op uint8

const (
	// OpMalformed marks a line that is not a valid command.
	OpMalformed Op = iota
	// OpGet looks up Key.
	OpGet
	// OpPut stores Value under Key.
	OpPut
)

func (o Op) String() string {
	switch o {
	case OpGet:
		return "get"
	case OpPut:
		return "put"
	default:
		return "malformed"
	}
}

// Command is one parsed request line.
type Command struct {
	Op    Op
	Key   string
	Value string
}

// Parse decodes one line, without its delimiter, into a Command. It never
// fails: anything it cannot decode yields an OpMalformed command.
func Parse(line []byte) Command {
	if !utf8.Valid(line) {
		return Command{Op: OpMalformed}
	}

	fields := strings.Fields(string(line))
	if len(fields) < 2 {
		return Command{Op: OpMalformed}
	}

	switch fields[0] {
	case "GET":
		if len(fields) == 2 {
			return Command{Op: OpGet, Key: fields[1]}
		}
	case "PUT":
		if len(fields) == 3 {
			return Command{Op: OpPut, Key: fields[1], Value: fields[2]}
		}
	}
	return Command{Op: OpMalformed}
}

// Response lines, without the delimiter.
var (
	respOK          = []byte("OK")
	respNotFound    = []byte("ERR not found")
	respInvalid     = []byte("ERR invalid command")
	respLineTooLong = []byte("ERR line too long")
	respRateLimited = []byte("ERR rate limit exceeded")
	respMaxClients  = []byte("ERR max number of clients reached")
)
