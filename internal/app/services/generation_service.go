package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/genai"
	"github.com/yigit/deptportal/internal/pkg/metrics"
)

// Source tells which path produced a generated result
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// ChatApology is the reply used whenever the model cannot answer
const ChatApology = "I'm sorry, I couldn't process your request right now. Please try again later."

const (
	defaultQuestionCount = 5
	defaultCardCount     = 10
)

// Generated carries a result together with the path that produced it.
// UpstreamErr is set when the model failed and Value is the fallback.
type Generated[T any] struct {
	Value       T
	Source      Source
	UpstreamErr error
}

// QuizQuestion is one multiple-choice question
type QuizQuestion struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Flashcard is one front/back pair
type Flashcard struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// GenerationService wraps the generative model with deterministic fallbacks
type GenerationService interface {
	GenerateQuiz(ctx context.Context, topic string, count int, difficulty string) Generated[[]QuizQuestion]
	GenerateFlashcards(ctx context.Context, topic string, count int) Generated[[]Flashcard]
	Chat(ctx context.Context, message string, history []genai.Turn) Generated[string]
	AnalyzePDF(ctx context.Context, pdf []byte, question string) Generated[string]
}

type generationServiceImpl struct {
	model  genai.Generator
	logger zerolog.Logger
}

// NewGenerationService creates a new GenerationService
func NewGenerationService(model genai.Generator, logger zerolog.Logger) GenerationService {
	return &generationServiceImpl{model: model, logger: logger}
}

func (s *generationServiceImpl) GenerateQuiz(ctx context.Context, topic string, count int, difficulty string) Generated[[]QuizQuestion] {
	if count <= 0 {
		count = defaultQuestionCount
	}
	if difficulty == "" {
		difficulty = "medium"
	}

	prompt := fmt.Sprintf(`Create %d %s multiple-choice questions about %q.
Respond with only a JSON array. Each element must have the keys "question" (string),
"options" (array of exactly 4 strings), "correctAnswer" (index of the correct option, 0-3)
and "explanation" (string).`, count, difficulty, topic)

	var questions []QuizQuestion
	err := s.generateJSON(ctx, prompt, &questions)
	if err == nil {
		err = validateQuestions(questions)
	}
	if err != nil {
		return fallback("quiz", s.logger, err, TemplateQuiz(topic, count))
	}
	return model("quiz", questions)
}

func (s *generationServiceImpl) GenerateFlashcards(ctx context.Context, topic string, count int) Generated[[]Flashcard] {
	if count <= 0 {
		count = defaultCardCount
	}

	prompt := fmt.Sprintf(`Create %d study flashcards about %q.
Respond with only a JSON array. Each element must have the keys "front" (a term or question)
and "back" (its definition or answer).`, count, topic)

	var cards []Flashcard
	err := s.generateJSON(ctx, prompt, &cards)
	if err == nil && len(cards) == 0 {
		err = fmt.Errorf("model returned no flashcards")
	}
	if err != nil {
		return fallback("flashcards", s.logger, err, TemplateFlashcards(topic, count))
	}
	return model("flashcards", cards)
}

func (s *generationServiceImpl) Chat(ctx context.Context, message string, history []genai.Turn) Generated[string] {
	prompt := "You are a helpful assistant for university students. Answer clearly and concisely.\n\n" + message
	reply, err := s.model.Generate(ctx, prompt, history...)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("model returned an empty reply")
	}
	if err != nil {
		return fallback("chat", s.logger, err, ChatApology)
	}
	return model("chat", strings.TrimSpace(reply))
}

func (s *generationServiceImpl) AnalyzePDF(ctx context.Context, pdf []byte, question string) Generated[string] {
	text := genai.ExtractPDFText(pdf)
	if text == "" {
		return fallback("pdf", s.logger, fmt.Errorf("no text could be extracted from the document"), ChatApology)
	}
	if strings.TrimSpace(question) == "" {
		question = "Summarise this document."
	}

	prompt := fmt.Sprintf("Use the following document to answer the question.\n\nDocument:\n%s\n\nQuestion: %s", text, question)
	reply, err := s.model.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("model returned an empty reply")
	}
	if err != nil {
		return fallback("pdf", s.logger, err, ChatApology)
	}
	return model("pdf", strings.TrimSpace(reply))
}

func (s *generationServiceImpl) generateJSON(ctx context.Context, prompt string, dst interface{}) error {
	raw, err := s.model.Generate(ctx, prompt)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(genai.StripCodeFence(raw)), dst); err != nil {
		return fmt.Errorf("model returned malformed JSON: %w", err)
	}
	return nil
}

func validateQuestions(qs []QuizQuestion) error {
	if len(qs) == 0 {
		return fmt.Errorf("model returned no questions")
	}
	for i, q := range qs {
		if strings.TrimSpace(q.Question) == "" || len(q.Options) < 2 {
			return fmt.Errorf("question %d is incomplete", i)
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return fmt.Errorf("question %d has an out of range answer", i)
		}
	}
	return nil
}

func model[T any](kind string, v T) Generated[T] {
	metrics.GenerationsTotal.WithLabelValues(kind, string(SourceModel)).Inc()
	return Generated[T]{Value: v, Source: SourceModel}
}

func fallback[T any](kind string, logger zerolog.Logger, err error, v T) Generated[T] {
	metrics.GenerationsTotal.WithLabelValues(kind, string(SourceFallback)).Inc()
	logger.Warn().Err(err).Str("kind", kind).Msg("Generative model unavailable, using fallback")
	return Generated[T]{Value: v, Source: SourceFallback, UpstreamErr: fmt.Errorf("%w: %v", apperrors.ErrUpstreamFailure, err)}
}

// TemplateQuiz builds a deterministic quiz for topic
func TemplateQuiz(topic string, count int) []QuizQuestion {
	stems := []struct {
		question string
		options  []string
	}{
		{"Which statement best describes the core idea of %s?", []string{"It is a foundational concept of %s", "It is unrelated to %s", "It only applies outside %s", "It has been fully replaced"}},
		{"What is a common application of %s?", []string{"Solving practical problems in %s", "Decorating documents", "Replacing all other subjects", "None of the above"}},
		{"Which skill helps most when studying %s?", []string{"Practising problems on %s regularly", "Memorising page numbers", "Skipping the fundamentals", "Avoiding examples"}},
		{"Why is %s taught in university courses?", []string{"Because %s builds important problem-solving skills", "Because it is never used", "Only for historical reasons", "It is not taught"}},
		{"Which resource is most useful for revising %s?", []string{"Past questions and notes on %s", "Unrelated novels", "Random guesses", "No resources are needed"}},
	}

	out := make([]QuizQuestion, 0, count)
	for i := 0; i < count; i++ {
		stem := stems[i%len(stems)]
		opts := make([]string, len(stem.options))
		for j, o := range stem.options {
			if strings.Contains(o, "%s") {
				o = fmt.Sprintf(o, topic)
			}
			opts[j] = o
		}
		out = append(out, QuizQuestion{
			Question:      fmt.Sprintf("%d. "+stem.question, i+1, topic),
			Options:       opts,
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("This is a practice question generated from a template for %s.", topic),
		})
	}
	return out
}

// TemplateFlashcards builds a deterministic flashcard set for topic
func TemplateFlashcards(topic string, count int) []Flashcard {
	prompts := []struct{ front, back string }{
		{"What is %s?", "%s is the subject of this flashcard set. Review your course notes for a full definition."},
		{"Key terms in %s", "List and define the most important terms you have met while studying %s."},
		{"A real-world example of %s", "Think of a situation where %s is applied and describe it in one sentence."},
		{"Common mistakes in %s", "Note the errors students often make with %s and how to avoid them."},
		{"How would you explain %s to a friend?", "Summarise %s in two or three plain sentences."},
	}

	out := make([]Flashcard, 0, count)
	for i := 0; i < count; i++ {
		p := prompts[i%len(prompts)]
		out = append(out, Flashcard{
			Front: fmt.Sprintf(p.front, topic),
			Back:  fmt.Sprintf(p.back, topic),
		})
	}
	return out
}
