package domain

// TopicAll is the sentinel topic that leaves retrieval unfiltered.
const TopicAll = "All"

// NoResultsMessage is returned verbatim when retrieval finds nothing;
// the generation backend is never consulted for such turns.
const NoResultsMessage = "I could not find relevant information for that specific topic. " +
	"Please try another search or select 'All' from the dropdown."

type SearchFilter struct {
	// Topic restricts retrieval to chunks whose topics set contains it.
	// Empty means no filtering.
	Topic string
}

type RetrievedChunk struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Source string   `json:"source"`
	Topics []string `json:"topics,omitempty"`
	Score  float64  `json:"score"`
}

type AnswerOutcome string

const (
	OutcomeAnswered  AnswerOutcome = "answered"
	OutcomeNoResults AnswerOutcome = "no_results"
)

type Answer struct {
	Text    string           `json:"text"`
	Outcome AnswerOutcome    `json:"outcome"`
	Sources []RetrievedChunk `json:"sources,omitempty"`

	// RerankDegraded marks answers built from raw retrieval order because
	// the reranking backend was unavailable.
	RerankDegraded bool `json:"rerank_degraded,omitempty"`
}
