package client

import (
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/lib/document"
)

// IHost is the plugin's handle on the host application. All host-state
// mutations go through this interface.
type IHost interface {
	// Play executes a single command against the given document and returns
	// the host's response. The returned error covers bridge failures and
	// host-level rejections; a Response with Ok=false and a non-empty Err
	// field is surfaced as an error.
	Play(doc document.DocumentID, cmd common.Command, opts common.PlayOptions) (common.Response, error)

	// PlayBatch executes an ordered list of commands atomically against the
	// given document. The host runs all commands or none. On success the
	// returned slice has exactly one response per command, in order.
	PlayBatch(doc document.DocumentID, cmds []common.Command, opts common.PlayOptions) ([]common.Response, error)

	// FetchDocument retrieves the current layer hierarchy of a document.
	FetchDocument(doc document.DocumentID) ([]document.LayerInfo, error)

	// Close releases the underlying transport resources.
	Close() error
}
