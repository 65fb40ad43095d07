package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"docqa/internal/config"
	"docqa/internal/llmservice"
	"docqa/internal/models"
)

// FallbackAnswer is the fixed answer returned when any query stage fails.
const FallbackAnswer = "Sorry, an error occurred."

const (
	stageRephrase = "rephrase"
	stageRetrieve = "retrieve"
	stageGenerate = "generate"
)

// Retriever is satisfied by *index.Retriever.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]models.Document, error)
}

// Result is what an Ask call hands back to the transport layer.
type Result struct {
	Answer  string            `json:"answer"`
	Sources []models.Citation `json:"sources"`
	History []models.Turn     `json:"conversation_history"`
}

// Engine sequences the query path: rephrase, retrieve, generate, dedup,
// history update. Failures inside the path collapse into the fixed
// fallback result; the failing stage is only logged.
type Engine struct {
	llm           llmservice.Client
	retriever     Retriever
	sessions      *SessionStore
	historyWindow int
	timeout       time.Duration
}

func NewEngine(llm llmservice.Client, retriever Retriever, cfg *config.Config) *Engine {
	return &Engine{
		llm:           llm,
		retriever:     retriever,
		sessions:      NewSessionStore(),
		historyWindow: cfg.RAG.HistoryWindow,
		timeout:       cfg.Timeout(),
	}
}

// Ask answers one question against the index. A non-nil history replaces
// the session's state before the question is appended. The session lock is
// held for the whole call, so concurrent asks on one session serialize.
func (e *Engine) Ask(ctx context.Context, question, sessionID string, history []models.Turn) Result {
	s := e.sessions.Get(sessionID)
	s.Lock()
	defer s.Unlock()

	if history != nil {
		s.Replace(history)
	}
	s.Append(models.RoleUser, question)

	finalQ := e.rephraseStage(ctx, question, s.RecentWindow(e.historyWindow))

	docs, err := e.retrieveStage(ctx, finalQ)
	if err != nil {
		return e.fallback(s, stageRetrieve, err)
	}

	answer, err := e.generateStage(ctx, finalQ, docs)
	if err != nil {
		return e.fallback(s, stageGenerate, err)
	}

	s.Append(models.RoleAI, answer)
	return Result{
		Answer:  answer,
		Sources: DedupSources(citations(docs)),
		History: s.Snapshot(),
	}
}

func (e *Engine) rephraseStage(ctx context.Context, question, chatHistory string) string {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.rephrase(ctx, question, chatHistory)
}

// retrieveStage retries once on failure: a nearest-neighbor search is
// idempotent, unlike the generation call.
func (e *Engine) retrieveStage(ctx context.Context, query string) ([]models.Document, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	docs, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		log.Warn().Err(err).Msg("Retrieval failed, retrying once")
		docs, err = e.retriever.Retrieve(ctx, query)
	}
	return docs, err
}

func (e *Engine) generateStage(ctx context.Context, question string, docs []models.Document) (string, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	contents := make([]string, len(docs))
	for i, doc := range docs {
		contents[i] = doc.Content
	}
	prompt := fmt.Sprintf(models.AnswerPromptTemplate, strings.Join(contents, "\n\n"), question)

	answer, err := e.llm.Generate(ctx, prompt)
	if err != nil {
		return "", &models.ModelInvocationError{Op: "answer", Err: err}
	}
	return answer, nil
}

// fallback converts a stage failure into the caller-visible fixed result.
// The history reflects everything appended up to the failure.
func (e *Engine) fallback(s *Session, stage string, err error) Result {
	log.Error().Err(err).Str("stage", stage).Msg("Error answering question")
	return Result{
		Answer:  FallbackAnswer,
		Sources: []models.Citation{},
		History: s.Snapshot(),
	}
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func citations(docs []models.Document) []models.Citation {
	out := make([]models.Citation, 0, len(docs))
	for _, doc := range docs {
		var c models.Citation
		if doc.Metadata.File != "" {
			f := doc.Metadata.File
			c.File = &f
		}
		if doc.Metadata.Page != 0 {
			p := doc.Metadata.Page
			c.Page = &p
		}
		out = append(out, c)
	}
	return out
}

type citationKey struct {
	file    string
	hasFile bool
	page    int
	hasPage bool
}

// DedupSources collapses structurally equal citations. Output order is not
// guaranteed to match retrieval order.
func DedupSources(sources []models.Citation) []models.Citation {
	seen := make(map[citationKey]bool)
	out := make([]models.Citation, 0, len(sources))
	for _, c := range sources {
		var key citationKey
		if c.File != nil {
			key.file = *c.File
			key.hasFile = true
		}
		if c.Page != nil {
			key.page = *c.Page
			key.hasPage = true
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out
}
