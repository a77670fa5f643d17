// Package cli handles cmd line input and scored suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/contextserve/internal/utils"
	"github.com/bastiangx/contextserve/pkg/config"
	"github.com/bastiangx/contextserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler processes user input from stdin, providing scored
// suggestions. It accepts many flags to control behavior such as
// minimum and maximum prefix length, suggestion limits, and filtering options.
//
// Beyond a plain prefix, a line can carry context directives:
//
//	ctx:sports nba        only suggestions tagged sports
//	ctx:sp*^2 nba         any context starting with "sp", boosted by 2
//	ctx:sports^2 all: nba every context, sports entries scored higher
//	nba~                  fuzzy matching on the prefix
type InputHandler struct {
	searcher        *suggest.Searcher
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	fuzzyMaxEdits   int
	fuzzyMinLength  int
	noFilter        bool
}

// parsedInput is one REPL line split into its prefix and directives.
type parsedInput struct {
	prefix   string
	fuzzy    bool
	matchAll bool
	filters  []contextFilter
}

type contextFilter struct {
	token string
	boost float64
	exact bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(searcher *suggest.Searcher, cfg *config.Config, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		searcher:        searcher,
		minPrefixLength: cfg.Server.MinPrefix,
		maxPrefixLength: cfg.Server.MaxPrefix,
		suggestLimit:    limit,
		fuzzyMaxEdits:   cfg.Suggest.FuzzyMaxEdits,
		fuzzyMinLength:  cfg.Suggest.FuzzyMinLength,
		noFilter:        noFilter,
	}
}

// Start begins the interface loop.
// It continuously prompts for input, reads a line from stdin,
// and passes the trimmed input to the handleInput() for processing.
// Loop terminates if an error occurs while reading from stdin
func (h *InputHandler) Start() error {
	log.Print("ContextServe CLI [BETA]")
	reader := bufio.NewReader(os.Stdin)
	log.Print("type a prefix and press Enter to see the suggestions (Ctrl+C to exit):")
	log.Print("ctx:TOKEN[*][^BOOST] filters or boosts a context, all: keeps every context, trailing ~ goes fuzzy")

	for {
		log.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		h.handleInput(line)
	}
}

// handleInput processes a single line to generate suggestions.
// It splits off context directives, validates the prefix's length and
// content, then runs the query against the searcher. Results are
// formatted and printed to the log.
func (h *InputHandler) handleInput(line string) {
	in, err := parseInput(line)
	if err != nil {
		log.Errorf("Bad input: %v", err)
		return
	}

	if len(in.prefix) < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", in.prefix)
		return
	}

	if len(in.prefix) > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", in.prefix)
		return
	}

	// input filtering by default (unless --no-filter flag is used)
	if !h.noFilter {
		if !utils.IsValidInput(in.prefix) {
			log.Infof("No results found for prefix: '%s'", in.prefix)
			return
		}
	} else {
		log.Debug("Input filtering disabled - accepting all inputs")
	}

	// Keys are stored lowercase; capitals come back at render time.
	lowered, capsCh := utils.ProcessCapitals(in.prefix)
	in.prefix = lowered

	query, err := h.buildQuery(in)
	if err != nil {
		log.Errorf("Bad query: %v", err)
		return
	}

	start := time.Now()
	log.Debug("Processing request for", "query", query.String())

	results, err := h.searcher.Suggest(query, h.suggestLimit)

	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Search failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for prefix '%s'", elapsed, in.prefix)

	if len(results) == 0 {
		log.Warnf("No suggestions found for prefix: '%s'", in.prefix)
		return
	}
	h.render(in, results, <-capsCh)
}

// render prints one line per suggestion with its context tag and score.
func (h *InputHandler) render(in parsedInput, results []suggest.Result, caps *utils.CapitalInfo) {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	display := <-utils.ApplyCapitals(texts, caps)

	// A plain search fans out over every context, so the same text can
	// come back once per tag. Collapse repeats unless the user asked
	// for specific contexts.
	var filter *utils.SuggestionFilter
	if len(in.filters) == 0 {
		filter = utils.NewSuggestionFilter(in.prefix)
	}

	keep := make([]int, 0, len(results))
	for i, r := range results {
		if filter != nil && !filter.ShouldInclude(r.Text) {
			continue
		}
		keep = append(keep, i)
	}

	log.Printf("Found %d suggestions for prefix '%s':", len(keep), in.prefix)
	for n, i := range keep {
		r := results[i]
		clWord := fmt.Sprintf("\033[38;5;75m%s\033[0m", display[i])
		tag := "-"
		if r.Context != "" {
			tag = fmt.Sprintf("\033[2m[%s]\033[0m", r.Context)
		}
		fmtScore := utils.FormatWithCommas(int(r.Score))
		log.Printf("%2d. %-40s %-20s (score: %9s)", n+1, clWord, tag, fmtScore)
	}
}

// buildQuery turns a parsed line into a prefix or fuzzy query, wrapped
// in a context query when any directive asked for one.
func (h *InputHandler) buildQuery(in parsedInput) (suggest.Query, error) {
	var base suggest.Query
	if in.fuzzy {
		base = suggest.NewFuzzyQuery(in.prefix, h.fuzzyMaxEdits, h.fuzzyMinLength)
	} else {
		base = suggest.NewPrefixQuery(in.prefix)
	}
	if len(in.filters) == 0 && !in.matchAll {
		return base, nil
	}

	cq, err := suggest.NewContextQuery(base)
	if err != nil {
		return nil, err
	}
	for _, f := range in.filters {
		if err := cq.AddContext(f.token, f.boost, f.exact); err != nil {
			return nil, err
		}
	}
	if in.matchAll {
		cq.AddAllContexts()
	}
	return cq, nil
}

// parseInput splits a line into context directives and the prefix.
// Directive words start with "ctx:" or are the literal "all:"; every
// other word belongs to the prefix.
func parseInput(line string) (parsedInput, error) {
	var in parsedInput
	var words []string
	for _, field := range strings.Fields(line) {
		switch {
		case field == "all:":
			in.matchAll = true
		case strings.HasPrefix(field, "ctx:"):
			filter, err := parseContextToken(strings.TrimPrefix(field, "ctx:"))
			if err != nil {
				return in, err
			}
			in.filters = append(in.filters, filter)
		default:
			words = append(words, field)
		}
	}
	in.prefix = strings.Join(words, " ")
	if strings.HasSuffix(in.prefix, "~") {
		in.fuzzy = true
		in.prefix = strings.TrimSuffix(in.prefix, "~")
	}
	return in, nil
}

// parseContextToken reads one TOKEN[*][^BOOST] directive.
func parseContextToken(spec string) (contextFilter, error) {
	filter := contextFilter{boost: 1, exact: true}
	if idx := strings.IndexByte(spec, '^'); idx >= 0 {
		boost, err := strconv.ParseFloat(spec[idx+1:], 64)
		if err != nil {
			return filter, fmt.Errorf("invalid boost in %q", spec)
		}
		filter.boost = boost
		spec = spec[:idx]
	}
	if strings.HasSuffix(spec, "*") {
		filter.exact = false
		spec = strings.TrimSuffix(spec, "*")
	}
	if spec == "" {
		return filter, fmt.Errorf("empty context token in directive")
	}
	filter.token = spec
	return filter, nil
}
