package ytdlp

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nexusmusic/nexusdl/internal/shared"
)

var (
	featRe   = regexp.MustCompile(`(?i)\s*[\(\[]\s*(?:feat\.?|ft\.?|featuring|with)\s+[^\)\]]+[\)\]]`)
	parensRe = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]`)
)

// primaryArtist returns just the first artist from a semicolon-separated list.
func primaryArtist(artist string) string {
	first, _, _ := strings.Cut(artist, ";")
	return strings.TrimSpace(first)
}

// stripFeatured removes "(feat. …)" / "[ft. …]" from a track name.
func stripFeatured(name string) string {
	return strings.TrimSpace(featRe.ReplaceAllString(name, ""))
}

// stripAllParens removes all parenthetical or bracket content (Remix,
// Deluxe, etc.).
func stripAllParens(name string) string {
	return strings.TrimSpace(parensRe.ReplaceAllString(name, ""))
}

// allArtistsSpaced converts "A;B;C" to "A B C" for use in a search query.
func allArtistsSpaced(artist string) string {
	parts := strings.Split(artist, ";")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// BuildQueries builds a prioritised list of search queries for a track.
//
// Strategies, tried in order:
//  1. Full track name + all artists (spaces instead of semicolons)
//  2. Full track name + primary artist only
//  3. Track name with (feat …) stripped + primary artist
//  4. Track name with ALL parenthetical content stripped + primary artist
//  5. Track name + primary artist + "audio"
//  6. Track name + primary artist + "lyrics"
//
// Queries that normalize to the same text are emitted once.
func BuildQueries(trackName, artist string) []string {
	primary := primaryArtist(artist)
	allArtists := allArtistsSpaced(artist)
	cleanFeat := stripFeatured(trackName)
	cleanAll := stripAllParens(trackName)

	var queries []string
	seen := map[string]bool{}

	for _, q := range []string{
		trackName + " " + allArtists,
		trackName + " " + primary,
		cleanFeat + " " + primary,
		cleanAll + " " + primary,
		trackName + " " + primary + " audio",
		trackName + " " + primary + " lyrics",
	} {
		collapsed := strings.Join(strings.Fields(q), " ")
		norm := strings.ToLower(collapsed)
		if collapsed != "" && !seen[norm] {
			seen[norm] = true
			queries = append(queries, collapsed)
		}
	}

	return queries
}

// Candidate is one search result with its reported duration.
type Candidate struct {
	URL      string
	Duration float64 // seconds
}

// parseCandidates parses yt-dlp --print "%(webpage_url)s %(duration)s"
// output. Lines without a parseable duration keep the URL with duration 0.
func parseCandidates(output string) []Candidate {
	var candidates []Candidate
	for _, line := range strings.Split(strings.TrimSpace(output), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		url := line
		dur := 0.0
		if i := strings.LastIndexByte(line, ' '); i >= 0 {
			url = strings.TrimSpace(line[:i])
			dur, _ = strconv.ParseFloat(line[i+1:], 64)
		}

		if strings.HasPrefix(url, "http") {
			candidates = append(candidates, Candidate{URL: url, Duration: dur})
		}
	}
	return candidates
}

// pickBest returns the candidate whose duration is closest to targetMS.
// Candidates longer than 3x the expected duration are filtered first to
// skip compilations, falling back to the unfiltered list when the filter
// leaves nothing. Without a known target the top result wins.
func pickBest(candidates []Candidate, targetMS int) string {
	if len(candidates) == 0 {
		return ""
	}
	if targetMS <= 0 {
		return candidates[0].URL
	}

	targetS := float64(targetMS) / 1000.0
	reasonable := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Duration <= targetS*3 {
			reasonable = append(reasonable, c)
		}
	}
	if len(reasonable) == 0 {
		reasonable = candidates
	}

	best := reasonable[0]
	for _, c := range reasonable[1:] {
		if math.Abs(c.Duration-targetS) < math.Abs(best.Duration-targetS) {
			best = c
		}
	}
	return best.URL
}

// searchOnce runs one ytsearch query and returns up to candidatesPerQuery
// candidates. Query failures return an empty list, never an error: the
// caller moves on to the next strategy.
func (c *Client) searchOnce(ctx context.Context, query string) []Candidate {
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	stdout, _, err := c.run(ctx, c.binary,
		"--print", "%(webpage_url)s %(duration)s",
		"--no-download",
		fmt.Sprintf("ytsearch%d:%s", c.candidatesPerQuery, query),
	)
	if err != nil {
		return nil
	}
	return parseCandidates(stdout)
}

// Search finds the best-matching audio URL for a track using progressive
// query strategies, ranking candidates by proximity to the expected
// duration when one is known. Returns the URL and a description of the
// winning strategy, or [shared.ErrNoMatch] after all strategies fail.
func (c *Client) Search(ctx context.Context, trackName, artist string, durationMS int) (url, strategy string, err error) {
	queries := BuildQueries(trackName, artist)

	for i, query := range queries {
		if ctx.Err() != nil {
			return "", "", ctx.Err()
		}

		candidates := c.searchOnce(ctx, query)
		if best := pickBest(candidates, durationMS); best != "" {
			return best, fmt.Sprintf("strategy %d/%d: %q", i+1, len(queries), query), nil
		}
	}

	return "", "", fmt.Errorf("%w: no results after %d search strategies", shared.ErrNoMatch, len(queries))
}
