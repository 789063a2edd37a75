package config

import (
	"time"

	"github.com/specialistvlad/partsegnet/internal/partseg"
)

// Model is the unified, format-agnostic representation of every network
// declared across all loaded files.
type Model struct {
	Networks []*Network
}

// Network is one `network` block or YAML entry.
type Network struct {
	Name string
	// Options starts from partseg.DefaultOptions with the declared
	// attributes applied on top. Options.Name equals Name.
	Options partseg.Options
	Output  Output
	// Source is the file the network was declared in.
	Source string
}

// Output lists where a network's artifacts go. With no destination set the
// prototxt is written to stdout.
type Output struct {
	Path      string
	Render    string
	UploadURL string
	SocketIO  *SocketIO
}

// SocketIO configures a socket.io destination.
type SocketIO struct {
	URL                string
	Namespace          string
	Event              string
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// IsEmpty reports whether no prototxt destination is configured. Render
// only adds the graph page and does not count.
func (o Output) IsEmpty() bool {
	return o.Path == "" && o.UploadURL == "" && o.SocketIO == nil
}
