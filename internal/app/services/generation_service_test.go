package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yigit/deptportal/internal/pkg/apperrors"
	"github.com/yigit/deptportal/internal/pkg/genai"
)

type stubModel struct {
	reply   string
	err     error
	prompts []string
}

func (m *stubModel) Generate(_ context.Context, prompt string, _ ...genai.Turn) (string, error) {
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func TestGenerateQuizFromModel(t *testing.T) {
	m := &stubModel{reply: "```json\n[{\"question\":\"2+2?\",\"options\":[\"3\",\"4\",\"5\",\"6\"],\"correctAnswer\":1}]\n```"}
	svc := NewGenerationService(m, nopLogger())

	got := svc.GenerateQuiz(context.Background(), "arithmetic", 1, "easy")
	require.Equal(t, SourceModel, got.Source)
	require.NoError(t, got.UpstreamErr)
	require.Len(t, got.Value, 1)
	require.Equal(t, 1, got.Value[0].CorrectAnswer)
	require.Contains(t, m.prompts[0], "arithmetic")
}

func TestGenerateQuizFallsBack(t *testing.T) {
	for name, m := range map[string]*stubModel{
		"upstream error": {err: errors.New("503")},
		"malformed":      {reply: "here are some questions!"},
		"bad answer":     {reply: `[{"question":"q","options":["a","b"],"correctAnswer":7}]`},
	} {
		t.Run(name, func(t *testing.T) {
			got := NewGenerationService(m, nopLogger()).GenerateQuiz(context.Background(), "graphs", 3, "")
			require.Equal(t, SourceFallback, got.Source)
			require.True(t, errors.Is(got.UpstreamErr, apperrors.ErrUpstreamFailure))
			require.Equal(t, TemplateQuiz("graphs", 3), got.Value)
		})
	}
}

func TestGenerateFlashcards(t *testing.T) {
	ok := NewGenerationService(&stubModel{reply: `[{"front":"TCP","back":"Transmission Control Protocol"}]`}, nopLogger())
	got := ok.GenerateFlashcards(context.Background(), "networks", 0)
	require.Equal(t, SourceModel, got.Source)
	require.Equal(t, "TCP", got.Value[0].Front)

	failing := NewGenerationService(&stubModel{err: genai.ErrNotConfigured}, nopLogger())
	fb := failing.GenerateFlashcards(context.Background(), "networks", 0)
	require.Equal(t, SourceFallback, fb.Source)
	require.Len(t, fb.Value, defaultCardCount)
	require.Equal(t, TemplateFlashcards("networks", defaultCardCount), fb.Value)
}

func TestChat(t *testing.T) {
	got := NewGenerationService(&stubModel{reply: "  Big-O describes growth.  "}, nopLogger()).
		Chat(context.Background(), "What is Big-O?", nil)
	require.Equal(t, SourceModel, got.Source)
	require.Equal(t, "Big-O describes growth.", got.Value)

	fb := NewGenerationService(&stubModel{err: errors.New("timeout")}, nopLogger()).
		Chat(context.Background(), "What is Big-O?", nil)
	require.Equal(t, SourceFallback, fb.Source)
	require.Equal(t, ChatApology, fb.Value)
}

func TestAnalyzePDF(t *testing.T) {
	pdf := []byte("%PDF-1.4\nBT (Operating systems manage processes) Tj ET\n%%EOF")
	m := &stubModel{reply: "It is about processes."}
	got := NewGenerationService(m, nopLogger()).AnalyzePDF(context.Background(), pdf, "What is it about?")
	require.Equal(t, SourceModel, got.Source)
	require.True(t, strings.Contains(m.prompts[0], "Operating systems manage processes"))

	empty := NewGenerationService(m, nopLogger()).AnalyzePDF(context.Background(), []byte("not a pdf"), "")
	require.Equal(t, SourceFallback, empty.Source)
	require.Equal(t, ChatApology, empty.Value)
}
