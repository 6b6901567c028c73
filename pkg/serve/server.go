// Package serve answers NDJSON queries against one resident log file so
// callers can page through lines, search and classify without remapping or
// reindexing per query.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/praetorian-inc/logmap"
	"github.com/praetorian-inc/logmap/pkg/matcher"
	"github.com/praetorian-inc/logmap/pkg/rule"
	"github.com/praetorian-inc/logmap/pkg/tree"
	"github.com/praetorian-inc/logmap/pkg/types"
)

// Version is the server protocol version
const Version = "1.0.0"

// defaultCount is the number of lines a "lines" request returns when it
// does not set count.
const defaultCount = 100

// Server answers requests about one log file.
type Server struct {
	log     *logmap.LogMap
	rules   []*types.Rule
	encoder *json.Encoder
	decoder *json.Decoder
}

// NewServer creates a server over lm. rules are used by "resolve" requests
// that carry none.
func NewServer(lm *logmap.LogMap, rules []*types.Rule, in io.Reader, out io.Writer) *Server {
	return &Server{
		log:     lm,
		rules:   rules,
		encoder: json.NewEncoder(out),
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run answers requests until the input ends, a "close" request arrives or
// ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.sendReady()

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// Requests decoded before EOF are still answered.
			for {
				select {
				case req := <-reqChan:
					if s.processRequest(ctx, req) {
						return nil
					}
				default:
					if err == io.EOF {
						return nil
					}
					s.sendError("decode", err.Error())
					return nil
				}
			}
		case req := <-reqChan:
			if s.processRequest(ctx, req) {
				return nil
			}
		}
	}
}

// processRequest handles a single request and returns true if the server should exit
func (s *Server) processRequest(ctx context.Context, req Request) bool {
	var data any
	var err error

	switch req.Type {
	case "info":
		data = InfoData{Path: s.log.Path(), Bytes: s.log.Len(), Lines: s.log.LineCount()}
	case "lines":
		data, err = s.handleLines(req.Payload)
	case "find":
		data, err = s.handleFind(req.Payload)
	case "resolve":
		data, err = s.handleResolve(ctx, req.Payload)
	case "close":
		return true
	default:
		err = fmt.Errorf("unknown request type: %s", req.Type)
	}

	if err != nil {
		s.sendError(req.Type, err.Error())
		return false
	}
	s.send(req.Type, data)
	return false
}

func (s *Server) handleLines(payload json.RawMessage) (*LinesData, error) {
	p := LinesPayload{Count: defaultCount}
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}

	lines := s.log.Lines(p.Start, p.Count)
	out := &LinesData{Start: p.Start, Lines: make([]string, len(lines))}
	for i, line := range lines {
		out.Lines[i] = string(line)
	}
	return out, nil
}

func (s *Server) handleFind(payload json.RawMessage) (*FindData, error) {
	var p FindPayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}

	count := p.Count
	if count <= 0 {
		count = s.log.LineCount()
	}

	cfg := matcher.DefaultConfig()
	cfg.CaseInsensitive = p.IgnoreCase
	if p.Engine != "" {
		cfg.Engine = matcher.Engine(p.Engine)
	}

	found, err := s.log.FindInRanges(s.log.LineRanges(p.Start, count), p.Pattern, cfg)
	if err != nil {
		return nil, err
	}

	data := s.log.Bytes()
	out := &FindData{Matches: make([]Match, 0, len(found))}
	for _, r := range found {
		line, _ := s.log.LineOf(r.Start)
		out.Matches = append(out.Matches, Match{
			Line:  line,
			Start: r.Start,
			End:   r.End,
			Text:  string(r.Slice(data)),
		})
	}
	return out, nil
}

func (s *Server) handleResolve(ctx context.Context, payload json.RawMessage) (*ResolveData, error) {
	var p ResolvePayload
	if err := decodePayload(payload, &p); err != nil {
		return nil, err
	}

	rules := s.rules
	if p.Rules != "" {
		loaded, err := rule.NewLoader().LoadRules([]byte(p.Rules))
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	if p.Include != "" || p.Exclude != "" {
		filtered, err := rule.Filter(rules, rule.FilterConfig{
			Include: rule.ParsePatterns(p.Include),
			Exclude: rule.ParsePatterns(p.Exclude),
		})
		if err != nil {
			return nil, err
		}
		rules = filtered
	}

	root, err := s.log.ResolveRules(ctx, rules)
	if err != nil {
		return nil, err
	}
	return &ResolveData{
		Summary: tree.Summarize(root),
		Hits:    NewHits(root.Hits(s.log.Index())),
	}, nil
}

// decodePayload leaves v untouched when the payload is absent.
func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	return json.Unmarshal(payload, v)
}

func (s *Server) sendReady() {
	s.send("ready", ReadyData{Version: Version, Path: s.log.Path(), Lines: s.log.LineCount()})
}

func (s *Server) send(reqType string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.sendError(reqType, err.Error())
		return
	}
	s.encoder.Encode(Response{
		Success: true,
		Type:    reqType,
		Data:    data,
	})
}

func (s *Server) sendError(reqType, msg string) {
	s.encoder.Encode(Response{
		Success: false,
		Type:    reqType,
		Error:   msg,
	})
}
