package sim

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/mbennett/easel/host/common"
	"github.com/mbennett/easel/host/serializer"
	"github.com/mbennett/easel/host/transport"
	"github.com/mbennett/easel/lib/document"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("sim")

// DemoDocumentID is the document the simulator seeds when no seed file is
// configured.
const DemoDocumentID document.DocumentID = "demo"

// simDocument is one in-memory document. The mutex serializes plays against
// the document so batches are atomic with respect to each other.
type simDocument struct {
	mu  sync.Mutex
	doc *document.Document
}

// seedEntry is one document in a JSON seed file.
type seedEntry struct {
	ID     document.DocumentID  `json:"id"`
	Layers []document.LayerInfo `json:"layers"`
}

// NewSimulator creates a new host simulator.
// It takes a config, transport and serializer as parameters.
//
// Usage:
//
//	s := sim.NewSimulator(
//		config,
//		tcp.NewTCPServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewSimulator(
	config common.SimulatorConfig,
	transport transport.IHostServerTransport,
	serializer serializer.IHostSerializer,
) *Simulator {
	Logger.Infof("Created host simulator")
	Logger.Infof(config.String())

	return &Simulator{
		config:     config,
		transport:  transport,
		serializer: serializer,
		documents:  xsync.NewMapOf[document.DocumentID, *simDocument](),
	}
}

type Simulator struct {
	config     common.SimulatorConfig
	transport  transport.IHostServerTransport
	serializer serializer.IHostSerializer
	documents  *xsync.MapOf[document.DocumentID, *simDocument]
}

// Serve initializes the simulator (loggers, documents, metrics endpoint,
// transport handler) and starts the transport layer. It blocks until the
// transport stops listening.
func (s *Simulator) Serve() error {
	if err := s.init(); err != nil {
		return err
	}
	return s.transport.Listen(s.config)
}

// --------------------------------------------------------------------------
// Setup Helpers
// --------------------------------------------------------------------------

func (s *Simulator) init() error {
	// Init loggers
	common.InitLoggers(s.config.LogLevel)

	// Seed documents
	if s.config.SeedFile != "" {
		if err := s.loadSeedFile(s.config.SeedFile); err != nil {
			return err
		}
	} else {
		s.seedDemoDocument()
	}

	// Optionally expose metrics
	if s.config.MetricsEndpoint != "" {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
				metrics.WritePrometheus(w, true)
			})
			Logger.Infof("Starting metrics server on %s", s.config.MetricsEndpoint)
			if err := http.ListenAndServe(s.config.MetricsEndpoint, mux); err != nil {
				Logger.Errorf("Metrics server stopped: %v", err)
			}
		}()
	}

	// Configure the transport layer
	s.registerTransportHandler()

	Logger.Infof("Simulator setup completed successfully")
	return nil
}

// loadSeedFile loads documents from a JSON seed file. The file holds an
// array of entries, each with a document id and a parents-first layer list.
func (s *Simulator) loadSeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %v", err)
	}

	var entries []seedEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse seed file: %v", err)
	}

	for _, entry := range entries {
		doc, err := document.FromSnapshot(entry.ID, entry.Layers)
		if err != nil {
			return fmt.Errorf("seed file entry %q: %v", entry.ID, err)
		}
		s.documents.Store(entry.ID, &simDocument{doc: doc})
		Logger.Infof("Seeded document %q with %d layers", entry.ID, len(entry.Layers))
	}

	return nil
}

// seedDemoDocument creates the built-in demo document used when no seed file
// is configured.
func (s *Simulator) seedDemoDocument() {
	doc, err := document.FromSnapshot(DemoDocumentID, []document.LayerInfo{
		{ID: 1, Name: "background", Locked: true},
		{ID: 2, Name: "artwork"},
		{ID: 3, Name: "sketch", Parent: 2},
		{ID: 4, Name: "ink", Parent: 2},
		{ID: 5, Name: "annotations", Locked: true},
	})
	if err != nil {
		// The fixture is static, this cannot happen
		panic(err)
	}

	s.documents.Store(DemoDocumentID, &simDocument{doc: doc})
	Logger.Infof("Seeded demo document %q", DemoDocumentID)
}

// --------------------------------------------------------------------------
// Request Handling
// --------------------------------------------------------------------------

func (s *Simulator) registerTransportHandler() {
	s.transport.RegisterHandler(func(req []byte) []byte {
		var msg common.Message
		var respMsg *common.Message

		// Decode the request
		if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			respMsg = s.handle(&msg)
		}

		// Encode the response
		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			Logger.Errorf("Failed to serialize response: %v", err)
			val, err = s.serializer.Serialize(*common.NewErrorResponse("failed to serialize response"))
			if err != nil {
				return nil
			}
		}
		return val
	})
}

// handle dispatches one decoded request message
func (s *Simulator) handle(req *common.Message) *common.Message {
	metrics.GetOrCreateCounter(fmt.Sprintf(`easel_sim_requests_total{type=%q}`, req.MsgType.String())).Inc()

	switch req.MsgType {
	case common.MsgTPlay:
		if len(req.Commands) != 1 {
			return common.NewErrorResponse(fmt.Sprintf("play request must carry exactly 1 command, got %d", len(req.Commands)))
		}
		resps, err := s.play(req.Document, req.Commands, req.Options)
		if err != nil {
			return common.NewPlayResponse(common.Response{}, err)
		}
		return common.NewPlayResponse(resps[0], nil)

	case common.MsgTPlayBatch:
		resps, err := s.play(req.Document, req.Commands, req.Options)
		return common.NewPlayBatchResponse(resps, err)

	case common.MsgTFetchDocument:
		layers, err := s.fetchDocument(req.Document)
		return common.NewFetchDocumentResponse(req.Document, layers, err)

	default:
		return common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", req.MsgType))
	}
}

// play executes commands against one document. Commands run in order and
// each one is validated against the document state its predecessors left
// behind, so an unlock early in a batch enables later commands. If any
// command is rejected the lock state is rolled back, making the batch
// all-or-nothing.
func (s *Simulator) play(docID document.DocumentID, cmds []common.Command, opts common.PlayOptions) ([]common.Response, error) {
	entry, ok := s.documents.Load(docID)
	if !ok {
		return nil, fmt.Errorf("document %q not found", docID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if opts.Modal {
		Logger.Debugf("Document %q: running %d command(s) modally", docID, len(cmds))
	}

	// Remember the lock state for rollback
	before := entry.doc.Snapshot()

	resps := make([]common.Response, 0, len(cmds))
	for _, cmd := range cmds {
		if err := s.validateCommand(entry.doc, cmd); err != nil {
			metrics.GetOrCreateCounter(`easel_sim_rejected_total`).Inc()

			// Roll back lock changes made by earlier commands
			for _, l := range before {
				entry.doc.SetLocked(l.ID, l.Locked)
			}
			return nil, err
		}
		resps = append(resps, s.applyCommand(entry.doc, cmd))
	}

	return resps, nil
}

// validateCommand checks a single command against the host's locking rules:
// setLocking only needs its targets to exist, every other command is
// rejected if a target or any of its ancestors or descendants is locked.
func (s *Simulator) validateCommand(doc *document.Document, cmd common.Command) error {
	for _, id := range cmd.Layers {
		if !doc.Has(id) {
			return fmt.Errorf("document %q: unknown layer %d", doc.ID(), id)
		}

		if cmd.Name == common.CommandSetLocking {
			continue
		}

		if locked := doc.LockedAncestors(id); len(locked) > 0 {
			return fmt.Errorf("document %q: layer %d is lock-protected (locked: %v)", doc.ID(), id, locked)
		}
		if locked := doc.LockedDescendants(id); len(locked) > 0 {
			return fmt.Errorf("document %q: layer %d is lock-protected (locked: %v)", doc.ID(), id, locked)
		}
	}
	return nil
}

// applyCommand applies one pre-validated command and builds its response.
// The simulator models lock state only; other commands succeed without
// changing document state.
func (s *Simulator) applyCommand(doc *document.Document, cmd common.Command) common.Response {
	if cmd.Name == common.CommandSetLocking {
		for _, id := range cmd.Layers {
			doc.SetLocked(id, cmd.Locked)
		}
	}

	return common.Response{Command: cmd.Name, Ok: true}
}

func (s *Simulator) fetchDocument(docID document.DocumentID) ([]document.LayerInfo, error) {
	entry, ok := s.documents.Load(docID)
	if !ok {
		return nil, fmt.Errorf("document %q not found", docID)
	}
	return entry.doc.Snapshot(), nil
}
