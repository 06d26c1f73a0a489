package models

import (
	"sort"
	"strings"
)

// Algorithm names a summarization technique run by the remote service.
type Algorithm string

const (
	AlgorithmTextRankGensim Algorithm = "text-rank-gensim"
	AlgorithmFrequencySpacy Algorithm = "frequency-spacy"
	AlgorithmFrequencyNLTK  Algorithm = "frequency-nltk"
	AlgorithmLSASumy        Algorithm = "lsa-sumy"
	AlgorithmLuhnSumy       Algorithm = "luhn-sumy"
	AlgorithmTextRankSumy   Algorithm = "text-rank-sumy"

	DefaultAlgorithm = AlgorithmTextRankGensim
	DefaultPercent   = 20
)

type algorithmInfo struct {
	code        string
	description string
	order       int
}

// The service only understands its own short codes, so every algorithm
// carries the code sent on the wire.
var algorithms = map[Algorithm]algorithmInfo{
	AlgorithmTextRankGensim: {code: "gensim-sum", description: "Text Rank Algorithm Based (Gensim)", order: 0},
	AlgorithmFrequencySpacy: {code: "spacy-sum", description: "Frequency Based (Spacy)", order: 1},
	AlgorithmFrequencyNLTK:  {code: "nltk-sum", description: "Frequency Based (NLTK)", order: 2},
	AlgorithmLSASumy:        {code: "sumy-lsa-sum", description: "Latent Semantic Analysis Based (Sumy)", order: 3},
	AlgorithmLuhnSumy:       {code: "sumy-luhn-sum", description: "Luhn Algorithm Based (Sumy)", order: 4},
	AlgorithmTextRankSumy:   {code: "sumy-text-rank-sum", description: "Text Rank Algorithm Based (Sumy)", order: 5},
}

func (a Algorithm) Valid() bool {
	_, ok := algorithms[a]
	return ok
}

// Code returns the service wire code, or "" for an unknown algorithm.
func (a Algorithm) Code() string {
	return algorithms[a].code
}

func (a Algorithm) Description() string {
	return algorithms[a].description
}

func (a Algorithm) String() string {
	return string(a)
}

// Algorithms lists every accepted algorithm in a stable order.
func Algorithms() []Algorithm {
	list := make([]Algorithm, 0, len(algorithms))
	for a := range algorithms {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool {
		return algorithms[list[i]].order < algorithms[list[j]].order
	})
	return list
}

// AlgorithmNames renders the allow-list for error messages and help text.
func AlgorithmNames() string {
	names := make([]string, 0, len(algorithms))
	for _, a := range Algorithms() {
		names = append(names, `"`+string(a)+`"`)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

// AlgorithmInfo is the public view of one algorithm.
type AlgorithmInfo struct {
	Name        Algorithm `json:"name"`
	Description string    `json:"description"`
}

func AlgorithmCatalog() []AlgorithmInfo {
	catalog := make([]AlgorithmInfo, 0, len(algorithms))
	for _, a := range Algorithms() {
		catalog = append(catalog, AlgorithmInfo{Name: a, Description: a.Description()})
	}
	return catalog
}
