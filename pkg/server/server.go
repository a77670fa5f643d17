package server

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/contextserve/internal/logger"
	"github.com/bastiangx/contextserve/internal/utils"
	"github.com/bastiangx/contextserve/pkg/automaton"
	"github.com/bastiangx/contextserve/pkg/config"
	"github.com/bastiangx/contextserve/pkg/dictionary"
	"github.com/bastiangx/contextserve/pkg/suggest"
)

// Server handles the IPC for context-aware completions
type Server struct {
	index    *suggest.Index
	searcher *suggest.Searcher
	cfg      *config.Config
	dictPath string
	dec      *msgpack.Decoder
	enc      *msgpack.Encoder
	log      *log.Logger
}

// NewServer creates a completion server using stdin/stdout for IPC.
// dictPath is the dictionary file the reload action re-reads; empty
// disables reloads.
func NewServer(index *suggest.Index, cfg *config.Config, dictPath string) *Server {
	return NewServerWithIO(index, cfg, dictPath, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server on explicit streams.
func NewServerWithIO(index *suggest.Index, cfg *config.Config, dictPath string, r io.Reader, w io.Writer) *Server {
	return &Server{
		index:    index,
		searcher: suggest.NewSearcher(index, cfg.Suggest.WorkLimit),
		cfg:      cfg,
		dictPath: dictPath,
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
		log:      logger.New("ipc"),
	}
}

// Start begins listening for IPC requests. It returns nil when the
// client closes its end of the stream.
func (s *Server) Start() error {
	s.log.Debug("Starting server.")

	// Signal that the server is ready
	s.send(map[string]string{"status": "ready"})

	for {
		var request CompletionRequest
		if err := s.dec.Decode(&request); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(request)
	}
}

// handleRequest dispatches one decoded request
func (s *Server) handleRequest(request CompletionRequest) {
	if request.ID == "" {
		request.ID = uuid.NewString()
		s.log.Debugf("Assigned id %s to request without one", request.ID)
	}

	switch request.Action {
	case "", "complete":
		s.handleComplete(request)
	case "health":
		s.send(StatusResponse{ID: request.ID, Status: "ok"})
	case "info":
		s.log.Debug("query cache", "stats", s.searcher.CacheStats())
		s.send(StatusResponse{ID: request.ID, Status: "ok", Keys: s.index.Len()})
	case "reload":
		s.handleReload(request)
	default:
		s.sendError(request.ID, fmt.Sprintf("Unknown action: %s", request.Action), 400)
	}
}

// handleComplete processes a completion request. It validates the
// prefix against the configured bounds, clamps the limit, compiles the
// query with any context filters, and sends the ranked suggestions.
func (s *Server) handleComplete(request CompletionRequest) {
	prefix := request.Prefix

	if prefix == "" {
		s.sendError(request.ID, "Missing 'p' field", 400)
		s.log.Debug("Prefix is empty in request")
		return
	}
	if len(prefix) < s.cfg.Server.MinPrefix {
		s.sendError(request.ID, fmt.Sprintf("Prefix must be at least %d characters", s.cfg.Server.MinPrefix), 400)
		return
	}
	if len(prefix) > s.cfg.Server.MaxPrefix {
		s.sendError(request.ID, fmt.Sprintf("Prefix exceeds maximum length of %d characters", s.cfg.Server.MaxPrefix), 400)
		return
	}
	if s.cfg.Server.EnableFilter && !utils.IsValidInput(prefix) {
		// not an error: clients stream keystrokes and expect quiet
		// empties for inputs that cannot complete
		s.log.Debugf("Prefix %q rejected by input filter", prefix)
		s.send(CompletionResponse{ID: request.ID, Suggestions: []Suggestion{}, Count: 0})
		return
	}

	limit := request.Limit
	if limit < 1 {
		limit = s.cfg.Suggest.DefaultLimit
	}
	if limit > s.cfg.Server.MaxLimit {
		limit = s.cfg.Server.MaxLimit
	}

	query, err := s.buildQuery(request)
	if err != nil {
		s.sendError(request.ID, err.Error(), 400)
		s.log.Debugf("Rejected query for request %s: %v", request.ID, err)
		return
	}

	start := time.Now()
	results, err := s.searcher.Suggest(query, limit)
	elapsed := time.Since(start)
	if err != nil {
		if errors.Is(err, automaton.ErrWorkLimitExceeded) {
			s.sendError(request.ID, fmt.Sprintf("Query too complex: %v", err), 400)
		} else {
			s.sendError(request.ID, "Internal server error", 500)
			s.log.Errorf("Search failed for request %s: %v", request.ID, err)
		}
		return
	}

	ranks := utils.CreateRankList(len(results))
	suggestions := make([]Suggestion, len(results))
	for i, r := range results {
		suggestions[i] = Suggestion{
			Word:    r.Text,
			Context: r.Context,
			Rank:    ranks[i],
			Score:   r.Score,
		}
	}

	s.send(CompletionResponse{
		ID:          request.ID,
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

// buildQuery compiles the request into a query: the prefix or fuzzy
// base, wrapped with context filters when any are present.
func (s *Server) buildQuery(request CompletionRequest) (suggest.Query, error) {
	var base suggest.Query
	if request.Fuzzy {
		base = suggest.NewFuzzyQuery(request.Prefix, s.cfg.Suggest.FuzzyMaxEdits, s.cfg.Suggest.FuzzyMinLength)
	} else {
		base = suggest.NewPrefixQuery(request.Prefix)
	}

	if len(request.Contexts) == 0 && !request.MatchAll {
		return base, nil
	}

	cq, err := suggest.NewContextQuery(base)
	if err != nil {
		return nil, err
	}
	for _, filter := range request.Contexts {
		boost := filter.Boost
		if boost == 0 {
			boost = 1
		}
		if err := cq.AddContext(filter.Token, boost, !filter.Prefix); err != nil {
			return nil, err
		}
	}
	if request.MatchAll {
		cq.AddAllContexts()
	}
	return cq, nil
}

// handleReload drops the index and re-reads the dictionary file.
func (s *Server) handleReload(request CompletionRequest) {
	if s.dictPath == "" {
		s.sendError(request.ID, "No dictionary path configured", 400)
		return
	}

	s.index.Clear()
	n, err := dictionary.LoadIntoIndex(s.dictPath, s.index)
	if err != nil {
		s.sendError(request.ID, fmt.Sprintf("Reload failed: %v", err), 500)
		s.log.Errorf("Reload from %s failed: %v", s.dictPath, err)
		return
	}
	s.log.Debugf("Reloaded %d entries from %s", n, s.dictPath)
	s.send(StatusResponse{ID: request.ID, Status: "ok", Keys: s.index.Len()})
}

// send encodes one response onto the stream
func (s *Server) send(response interface{}) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
