package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Manshi-Rathour/FilesGPT/internal/vectorstore"
)

const (
	// NoMatchesAnswer is returned verbatim when retrieval finds nothing in
	// the requested scope. No generation call is made in that case.
	NoMatchesAnswer = "No relevant documents found."

	// InsufficientContextAnswer is the sentence the model is instructed to
	// emit verbatim when the retrieved context cannot answer the question.
	// Callers can match on it to tell "no answer" from a real answer.
	InsufficientContextAnswer = "The provided context does not contain enough information to answer this question."

	defaultTopK       = 5
	answerMaxTokens   = 800
	generationTimeout = 60 * time.Second
)

var answerSystemPrompt = "You are a helpful assistant. Use only the provided context to answer. " +
	"If the context does not contain the information needed, reply exactly: " + InsufficientContextAnswer

// AnswerRequest scopes a question to one user's documents, optionally to a
// single document.
type AnswerRequest struct {
	UserID     uuid.UUID
	DocumentID *uuid.UUID
	Question   string
	TopK       int
}

type AnswerResult struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
	Matches int      `json:"matches"`
}

// AnswerService embeds a question, retrieves the best-matching chunks within
// the caller's scope and asks the chat model to answer from that context
// alone.
type AnswerService struct {
	embedder  Embedder
	store     vectorstore.Store
	chat      einomodel.BaseChatModel
	topK      int
	maxTokens int
	log       *zap.Logger
}

func NewAnswerService(embedder Embedder, store vectorstore.Store, chat einomodel.BaseChatModel, log *zap.Logger) *AnswerService {
	return &AnswerService{
		embedder:  embedder,
		store:     store,
		chat:      chat,
		topK:      defaultTopK,
		maxTokens: answerMaxTokens,
		log:       log,
	}
}

func (s *AnswerService) Answer(ctx context.Context, req AnswerRequest) (*AnswerResult, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	topK := req.TopK
	if topK <= 0 {
		topK = s.topK
	}
	filter := vectorstore.Filter{UserID: req.UserID.String()}
	if req.DocumentID != nil {
		filter.DocumentID = req.DocumentID.String()
	}

	matches, err := s.store.Query(ctx, vector, topK, filter)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return &AnswerResult{Answer: NoMatchesAnswer}, nil
	}

	contexts := make([]string, len(matches))
	for i, m := range matches {
		contexts[i] = m.Content
	}
	userPrompt := fmt.Sprintf("Context:\n\n%s\n\nQuestion: %s\n\nAnswer concisely.",
		strings.Join(contexts, "\n\n"), question)

	messages := []*schema.Message{
		schema.SystemMessage(answerSystemPrompt),
		schema.UserMessage(userPrompt),
	}

	// Temperature 0 keeps grounding behavior reproducible; one retry, then
	// the outage is surfaced rather than substituted with a canned answer.
	// Each attempt gets its own deadline so a hung upstream cannot hold the
	// request until the client disconnects.
	var out *schema.Message
	var genErr error
	for attempt := 0; attempt < 2; attempt++ {
		genCtx, cancel := context.WithTimeout(ctx, generationTimeout)
		out, genErr = s.chat.Generate(genCtx, messages,
			einomodel.WithTemperature(0),
			einomodel.WithMaxTokens(s.maxTokens))
		cancel()
		if genErr == nil {
			break
		}
		s.log.Warn("generation attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Error(genErr))
	}
	if genErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationUnavailable, genErr)
	}

	return &AnswerResult{
		Answer:  strings.TrimSpace(out.Content),
		Sources: collectSources(matches),
		Matches: len(matches),
	}, nil
}

// collectSources de-duplicates source names preserving similarity rank.
func collectSources(matches []vectorstore.Match) []string {
	seen := make(map[string]bool, len(matches))
	var sources []string
	for _, m := range matches {
		if m.Source == "" || seen[m.Source] {
			continue
		}
		seen[m.Source] = true
		sources = append(sources, m.Source)
	}
	return sources
}
