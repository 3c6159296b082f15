package record

import (
	"regexp"
	"sort"
	"strings"
)

// MaxExtractedKeywords caps ExtractKeywords output.
const MaxExtractedKeywords = 15

const bigramWeight = 1.4

var keywordRegex = regexp.MustCompile(`\b[a-z0-9\-']+\b`)

var stopwords = toStopwordSet(`a about above after again against all am an and any are aren't as at be
because been before being below between both but by can cannot could couldn't did didn't do does doesn't
doing don't down during each few for from further had hadn't has hasn't have haven't having he he'd he'll
he's her here here's hers herself him himself his how how's i i'd i'll i'm i've if in into is isn't it it's
its itself let's me more most mustn't my myself no nor not of off on once only or other ought our ours
ourselves out over own same shan't she she'd she'll she's should shouldn't so some such than that that's
the their theirs them themselves then there there's these they they'd they'll they're they've this those
through to too under until up very was wasn't we we'd we'll we're we've were weren't what what's when
when's where where's which while who who's whom why why's with won't would wouldn't you you'd you'll
you're you've your yours yourself yourselves`)

func toStopwordSet(list string) map[string]struct{} {
	words := strings.Fields(list)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// ExtractKeywords derives up to limit keywords from text: unigrams and
// bigrams over non-stopword tokens longer than two characters, ranked by
// frequency (bigrams weighted 1.4) then alphabetically. When nothing
// qualifies, the first non-stopword tokens are used as they appear.
func ExtractKeywords(text string, limit int) []string {
	if limit <= 0 {
		limit = MaxExtractedKeywords
	}
	words := keywordRegex.FindAllString(strings.ToLower(text), -1)
	if len(words) == 0 {
		return nil
	}

	kept := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := stopwords[w]; !stop && len(w) > 2 {
			kept = append(kept, w)
		}
	}

	scores := make(map[string]float64, 2*len(kept))
	for _, w := range kept {
		scores[w]++
	}
	for i := 1; i < len(kept); i++ {
		scores[kept[i-1]+" "+kept[i]] += bigramWeight
	}

	out := make([]string, 0, len(scores))
	for k := range scores {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool {
		if scores[out[i]] != scores[out[j]] {
			return scores[out[i]] > scores[out[j]]
		}
		return out[i] < out[j]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	if len(out) > 0 {
		return out
	}

	seen := make(map[string]struct{})
	for _, w := range words {
		if _, stop := stopwords[w]; stop {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
		if len(out) == limit {
			break
		}
	}
	return out
}
